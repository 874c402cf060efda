package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/formgrid/forms-api/internal/infrastructure/metrics"
)

// MetricsMiddleware records HTTP request metrics
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		metrics.RecordRequest(c.Request.Method, endpoint, c.Writer.Status(), duration)
	}
}
