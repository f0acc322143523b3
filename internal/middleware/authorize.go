package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"authgate/internal/models"
)

// RequireSuperuser guards administrative routes. It runs behind Auth, so a
// missing user means the middleware chain is miswired rather than a client
// error.
func RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userVal, exists := c.Get(CurrentUserKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		user, ok := userVal.(models.User)
		if !ok || !user.IsSuperuser {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Next()
	}
}
