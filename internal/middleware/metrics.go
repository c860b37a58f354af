package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/org-registry/org-registry/internal/telemetry"
)

// MetricsMiddleware records a counter and latency observation for every
// request. Labels use c.FullPath(), the route template rather than the raw
// URL, so user-supplied values never create unbounded label cardinality.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched" // 404s on unregistered routes
		}

		telemetry.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method, path, strconv.Itoa(c.Writer.Status()),
		).Inc()
		telemetry.HTTPRequestDuration.WithLabelValues(
			c.Request.Method, path,
		).Observe(time.Since(start).Seconds())
	}
}
