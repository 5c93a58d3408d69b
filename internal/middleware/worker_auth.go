package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// WorkerAuthMiddleware creates middleware for audit worker
// authentication via a shared key.
func WorkerAuthMiddleware(workerKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-Worker-Key")

		if workerKey == "" || key == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing credentials"})
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(key), []byte(workerKey)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			c.Abort()
			return
		}

		c.Next()
	}
}
