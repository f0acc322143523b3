package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"authgate/internal/service"
)

func (h HandlerSet) ListUsers(c *gin.Context) {
	limit := 50
	offset := 0

	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			offset = v
		}
	}

	users, err := h.users.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.serverError(c, err, "list users failed")
		return
	}

	items := make([]userResponse, 0, len(users))
	for _, user := range users {
		items = append(items, newUserResponse(user))
	}

	c.JSON(http.StatusOK, gin.H{"users": items})
}

func (h HandlerSet) GetUser(c *gin.Context) {
	username := c.Param("username")

	user, err := h.users.Get(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user_not_found"})
			return
		}
		h.serverError(c, err, "get user failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(user)})
}

type userStatusRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func (h HandlerSet) SetUserStatus(c *gin.Context) {
	var req userStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	if err := h.users.SetActive(c.Request.Context(), id, *req.Active); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user_not_found"})
			return
		}
		h.serverError(c, err, "set user status failed")
		return
	}

	c.Status(http.StatusNoContent)
}
