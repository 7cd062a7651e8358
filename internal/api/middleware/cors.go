package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sad/backend/pkg/origin"
)

const (
	corsAllowHeaders  = "Content-Type, Authorization, X-Requested-With, X-Request-ID"
	corsAllowMethods  = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	corsExposeHeaders = "Content-Disposition, X-Request-ID"
)

// CORS allows the configured admin panel and worker app origins. "*" allows
// any origin; the origin is still echoed so credentials keep working.
func CORS(allowOrigins []string) gin.HandlerFunc {
	allowed := origin.New(allowOrigins)

	return func(c *gin.Context) {
		reqOrigin := c.GetHeader("Origin")
		c.Writer.Header().Add("Vary", "Origin")

		if !allowed.Allows(reqOrigin) {
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", reqOrigin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Expose-Headers", corsExposeHeaders)

		if c.Request.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			h.Set("Access-Control-Allow-Methods", corsAllowMethods)
			h.Set("Access-Control-Max-Age", "86400")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
