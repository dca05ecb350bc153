package middleware

import (
	"time"

	"task-tracker/backend/internal/logger"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs one line per request: method, path, status, duration.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}
