package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	applog "github.com/pageza/recipebox/backend/internal/logging"
)

// logging skips the health probes, which orchestrators hit every few seconds.
func logging(logger *zap.Logger) gin.HandlerFunc {
	requests := applog.GinLogger(logger)
	return func(c *gin.Context) {
		switch c.Request.URL.Path {
		case "/health", "/api/v1/health":
			c.Next()
		default:
			requests(c)
		}
	}
}
