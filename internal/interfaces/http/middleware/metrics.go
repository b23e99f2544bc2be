package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/prometheus"
)

// Metrics records each request under its route template so path
// parameters do not explode label cardinality. Unmatched routes are
// recorded as "unmatched".
func Metrics(m *prometheus.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		prometheus.TrackInFlight(m, c.Request.Method, 1)
		defer prometheus.TrackInFlight(m, c.Request.Method, -1)
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		prometheus.RecordHTTPRequest(m, c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

//Personal.AI order the ending
