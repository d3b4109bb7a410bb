package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionMiddleware resolves the storefront session. Anonymous browsers get
// a generated session ID echoed back in the response header; cart, wishlist
// and view counters are keyed on it.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("X-Session-ID")
		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		c.Set("session_id", sessionID)
		c.Header("X-Session-ID", sessionID)
		c.Next()
	}
}

// GetSessionID retrieves the session ID from gin context
func GetSessionID(c *gin.Context) string {
	return c.GetString("session_id")
}
