package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"sad/backend/internal/model"
	"sad/backend/pkg/jwt"
	"sad/backend/pkg/response"
)

// TokenBlacklist revoked token lookup; *redis.Client implements it.
type TokenBlacklist interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// JWTAuth validates the access token from Authorization: Bearer <token>.
// WebSocket upgrades may pass it as ?token= instead. blacklist nil skips the
// revocation check, as does a failing lookup.
func JWTAuth(jwtMgr *jwt.Manager, blacklist TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Unauthorized(c, 10002, "missing or malformed Authorization header")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(token)
		if err != nil {
			response.Unauthorized(c, 10002, "token invalid or expired")
			c.Abort()
			return
		}

		if claims.TokenType != jwt.TokenTypeAccess {
			response.Unauthorized(c, 10002, "wrong token type")
			c.Abort()
			return
		}

		if blacklist != nil && claims.ID != "" {
			revoked, err := blacklist.IsBlacklisted(c.Request.Context(), claims.ID)
			if err == nil && revoked {
				response.Unauthorized(c, 10002, "token revoked")
				c.Abort()
				return
			}
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("worker_id", claims.WorkerID)
		c.Set("token_jti", claims.ID)
		if claims.ExpiresAt != nil {
			c.Set("token_exp", claims.ExpiresAt.Time)
		}

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if c.IsWebsocket() {
			if t := c.Query("token"); t != "" {
				return t, true
			}
		}
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// RoleAuth allows only the listed roles.
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString("role")
		if userRole == "" {
			response.Unauthorized(c, 10002, "authentication required")
			c.Abort()
			return
		}

		for _, r := range allowedRoles {
			if userRole == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "access denied")
		c.Abort()
	}
}

// AdminOnly admin or super_admin.
func AdminOnly() gin.HandlerFunc {
	return RoleAuth(model.RoleAdmin, model.RoleSuperAdmin)
}

// SelfOrAdmin lets admins through and restricts workers to the resource whose
// worker id is the path parameter param.
func SelfOrAdmin(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if model.IsAdminRole(role) {
			c.Next()
			return
		}

		workerID := c.GetString("worker_id")
		if role == model.RoleWorker && workerID != "" && workerID == c.Param(param) {
			c.Next()
			return
		}

		response.Forbidden(c, 10003, "access denied")
		c.Abort()
	}
}
