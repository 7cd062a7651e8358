package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"sad/backend/pkg/metrics"
)

// Metrics records request count and latency per matched route.
func Metrics(m *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := fmt.Sprintf("%dxx", c.Writer.Status()/100)

		m.HTTPRequests.WithLabelValues(route, c.Request.Method, status).Inc()
		m.HTTPDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
