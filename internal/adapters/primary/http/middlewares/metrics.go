package middlewares

import (
	"time"

	"github.com/bormotovilya-ops/SpaceGrow/internal/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// unmatchedRoute метка для запросов мимо маршрутов
const unmatchedRoute = "unmatched"

func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		metrics.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
