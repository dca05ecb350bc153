package middleware

import (
	"net/http"

	"task-tracker/backend/internal/logger"

	"github.com/gin-gonic/gin"
)

// RecoveryWithLog converts panics into the generic 500 body. Panic detail
// stays in the server log and never reaches the response.
func RecoveryWithLog(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Interface("panic", r).
					Str("path", c.Request.URL.Path).
					Msg("recovered from panic")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "internal server error",
				})
			}
		}()
		c.Next()
	}
}
