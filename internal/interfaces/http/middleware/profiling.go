package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopflux/storefront/internal/infrastructure/telemetry"
)

// Profiling runs each API request under Pyroscope labels (area, route and
// method) so profiles can be split per storefront area. Health checks and
// the docs are served unlabelled.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return passThrough
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/health" || strings.HasPrefix(path, "/swagger") {
			c.Next()
			return
		}

		route := c.FullPath()
		labels := telemetry.HTTPRequestLabels(apiArea(route), route, c.Request.Method)
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
