package middleware

import (
	"net/http"
	"strings"

	"task-tracker/backend/internal/services"

	"github.com/gin-gonic/gin"
)

// ContextUserID is the gin context key holding the authenticated user id.
const ContextUserID = "user_id"

// TokenCookie is the session cookie set on login, accepted as an
// alternative to the Authorization header.
const TokenCookie = "token"

// AuthMiddleware extracts the bearer token from the Authorization header or
// the session cookie, verifies it, and short-circuits with 401 when no valid
// identity can be established.
func AuthMiddleware(authService services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractToken(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "missing_token",
				"message": "Authentication required",
			})
			return
		}

		userID, ok := authService.VerifyToken(tokenStr)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_token",
				"message": "Token validation failed",
			})
			return
		}

		c.Set(ContextUserID, userID.String())
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie
	}

	return ""
}
