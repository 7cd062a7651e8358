package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"sad/backend/pkg/response"
)

// RateLimiter sliding-window counter; *redis.Client implements it.
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit allows limit requests per window per caller and route. The caller
// is the authenticated user when known, the client IP otherwise. A nil or
// failing limiter lets requests through.
func RateLimit(limiter RateLimiter, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		caller := c.GetString("user_id")
		if caller == "" {
			caller = c.ClientIP()
		}
		key := fmt.Sprintf("rate_limit:%s:%s", caller, c.FullPath())

		allowed, err := limiter.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			c.Next()
			return
		}

		if !allowed {
			response.TooManyRequests(c)
			c.Abort()
			return
		}

		c.Next()
	}
}
