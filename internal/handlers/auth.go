package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"authgate/internal/cookies"
	"authgate/internal/middleware"
	"authgate/internal/models"
	"authgate/internal/service"
)

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=150"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	IsPublic bool   `json:"isPublic"`
}

type tokenResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	TokenType    string       `json:"tokenType"`
	User         userResponse `json:"user"`
}

type userResponse struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	IsPublic     bool   `json:"isPublic"`
	IsActive     bool   `json:"isActive"`
	IsSuperuser  bool   `json:"isSuperuser"`
	RegisteredAt string `json:"registeredAt"`
}

func (h HandlerSet) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		IsPublic: req.IsPublic,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "username_taken"})
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "email_taken"})
		default:
			h.serverError(c, err, "register failed")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": newUserResponse(user)})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, err := h.auth.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
		case errors.Is(err, service.ErrUserInactive):
			c.JSON(http.StatusForbidden, gin.H{"error": "user_inactive"})
		case errors.Is(err, service.ErrTooManyAttempts):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too_many_attempts"})
		default:
			h.serverError(c, err, "login failed")
		}
		return
	}

	h.sendTokenPair(c, pair)
}

func (h HandlerSet) Refresh(c *gin.Context) {
	token := h.refreshTokenFrom(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing_refresh_token"})
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), token)
	if err != nil {
		switch {
		// Not-found and expired collapse into one outcome so clients
		// cannot probe for session existence.
		case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrSessionExpired):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_refresh_token"})
		case errors.Is(err, service.ErrUserInactive):
			c.JSON(http.StatusForbidden, gin.H{"error": "user_inactive"})
		default:
			h.serverError(c, err, "refresh failed")
		}
		return
	}

	h.sendTokenPair(c, pair)
}

func (h HandlerSet) Logout(c *gin.Context) {
	if token := h.refreshTokenFrom(c); token != "" {
		if err := h.auth.Logout(c.Request.Context(), token); err != nil {
			h.serverError(c, err, "logout failed")
			return
		}
	}

	h.transport.ClearLogin(c.Writer)
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(user)})
}

// refreshTokenFrom reads the refresh token from the request body, falling
// back to the refresh-token cookie.
func (h HandlerSet) refreshTokenFrom(c *gin.Context) string {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.ShouldBindJSON(&req); err == nil && req.RefreshToken != "" {
		return req.RefreshToken
	}

	token, err := c.Cookie(cookies.RefreshTokenCookie)
	if err != nil {
		return ""
	}
	return token
}

func (h HandlerSet) sendTokenPair(c *gin.Context, pair service.TokenPair) {
	h.transport.SetLogin(c.Writer, pair.AccessToken, pair.RefreshToken)

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		User:         newUserResponse(pair.User),
	})
}

func (h HandlerSet) serverError(c *gin.Context, err error, msg string) {
	h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
}

func currentUser(c *gin.Context) (models.User, bool) {
	userVal, exists := c.Get(middleware.CurrentUserKey)
	if !exists {
		return models.User{}, false
	}
	user, ok := userVal.(models.User)
	return user, ok
}

func newUserResponse(user models.User) userResponse {
	return userResponse{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		IsPublic:     user.IsPublic,
		IsActive:     user.IsActive,
		IsSuperuser:  user.IsSuperuser,
		RegisteredAt: user.RegisteredAt.UTC().Format(time.RFC3339),
	}
}
