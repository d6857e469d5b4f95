package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nexuscrm/fieldstudio/internal/logger"
)

// RequestLogger logs one line per request. Client errors are logged at warn level.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		kv := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
		}
		switch {
		case status >= 500:
			logger.Error("Request completed", kv...)
		case status >= 400:
			logger.Warn("Request completed", kv...)
		default:
			logger.Debug("Request completed", kv...)
		}
	}
}
