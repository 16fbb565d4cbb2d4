package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/pitchbase/pkg/metrics"
)

// unmatchedRoute labels requests that hit no registered route, keeping arbitrary paths out
// of metric labels.
const unmatchedRoute = "unmatched"

// Metrics records latency per route template and status class, and counts responses per
// exact status code.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		path := c.FullPath()
		if path == "" {
			path = unmatchedRoute
		}

		code := c.Writer.Status()
		metrics.APILatency.WithLabelValues(c.Request.Method, path, statusClass(code)).Observe(duration)
		metrics.HTTPResponses.WithLabelValues(c.Request.Method, path, strconv.Itoa(code)).Inc()
	}
}

func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "other"
	}
	return strconv.Itoa(code/100) + "xx"
}
