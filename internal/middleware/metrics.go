package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oriel-mfg/factory-ops-api/internal/service"
)

// Metrics records per-route request durations and counts. Probe and
// scrape endpoints are skipped so the histograms reflect scheduling
// traffic only.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		switch path {
		case "/metrics", "/health", "/ready":
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
