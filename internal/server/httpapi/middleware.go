package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sealvault/sealvault/internal/server/auth"
)

const (
	// userIDKey is the gin context key under which the middleware stores
	// the verified user id.
	userIDKey = "userID"

	shutdownTimeout = 5 * time.Second
)

// authMiddleware validates the bearer token and puts the verified user id
// into the request context. Everything behind it can trust c.GetString(userIDKey).
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}
