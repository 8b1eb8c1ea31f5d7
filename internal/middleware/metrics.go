package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/assetmgr/assetmgr/pkg/metrics"
)

// Metrics records request latency for each routed HTTP request. Unmatched
// paths share one label so scanners cannot inflate series cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		status := strconv.Itoa(c.Writer.Status())
		metrics.APILatency.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}
