package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"authgate/internal/cookies"
	"authgate/internal/service"
)

const CurrentUserKey = "current_user"

// Auth extracts the bearer access token from the Authorization header (or
// the access-token cookie as a fallback), resolves it to a user, and
// attaches the user to the request context. Handlers behind it never see an
// unauthenticated request.
func Auth(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			token, _ = c.Cookie(cookies.AccessTokenCookie)
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		user, err := auth.AuthenticatedUser(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrUserInactive) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "user_inactive"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		c.Set(CurrentUserKey, user)
		c.Next()
	}
}
