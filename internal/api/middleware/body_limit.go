package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sad/backend/pkg/response"
)

// BodyLimit caps request bodies at maxBytes. Handlers that fail to bind an
// oversized body record the error; the 413 is written here when nothing else
// has been written yet.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil && maxBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		if c.Request.ContentLength > maxBytes && maxBytes > 0 {
			response.PayloadTooLarge(c)
			c.Abort()
			return
		}

		c.Next()

		if c.IsAborted() || c.Writer.Written() {
			return
		}
		for _, err := range c.Errors {
			var tooLarge *http.MaxBytesError
			if errors.As(err.Err, &tooLarge) {
				response.PayloadTooLarge(c)
				return
			}
		}
	}
}
