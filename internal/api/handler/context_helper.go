package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sad/backend/internal/model"
	"sad/backend/pkg/response"
)

// Context keys set by middleware.JWTAuth.
const (
	CtxUserID   = "user_id"
	CtxRole     = "role"
	CtxWorkerID = "worker_id"
	CtxTokenJTI = "token_jti"
	CtxTokenExp = "token_exp"
)

// MustGetUserID extracts the caller's auth user id.
// Writes a 401 and returns false when the JWT middleware did not run;
// callers return immediately on false.
func MustGetUserID(c *gin.Context) (string, bool) {
	s := c.GetString(CtxUserID)
	if s == "" {
		response.Unauthorized(c, 10002, "authentication required")
		return "", false
	}
	return s, true
}

// MustGetRole extracts the caller's role.
func MustGetRole(c *gin.Context) (string, bool) {
	s := c.GetString(CtxRole)
	if s == "" {
		response.Unauthorized(c, 10002, "authentication required")
		return "", false
	}
	return s, true
}

// MustGetWorkerID extracts the worker profile linked to the caller's token.
// Logins without a worker profile get a 403.
func MustGetWorkerID(c *gin.Context) (string, bool) {
	if _, ok := MustGetUserID(c); !ok {
		return "", false
	}
	s := c.GetString(CtxWorkerID)
	if s == "" {
		response.Forbidden(c, 11003, "no worker profile linked to this account")
		return "", false
	}
	return s, true
}

// MustGetIDParam the :id path parameter in canonical UUID form.
// Anything else gets a 400 before it reaches a uuid column.
func MustGetIDParam(c *gin.Context) (string, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "invalid id")
		return "", false
	}
	return id.String(), true
}

// CallerWorkerID worker id of the caller, empty for admins without a profile.
func CallerWorkerID(c *gin.Context) string {
	return c.GetString(CtxWorkerID)
}

// IsAdmin reports whether the caller has an administrative role.
func IsAdmin(c *gin.Context) bool {
	return model.IsAdminRole(c.GetString(CtxRole))
}

// tokenMeta jti and expiry of the access token used for the request.
func tokenMeta(c *gin.Context) (string, time.Time) {
	jti := c.GetString(CtxTokenJTI)
	exp, _ := c.Get(CtxTokenExp)
	t, _ := exp.(time.Time)
	return jti, t
}
