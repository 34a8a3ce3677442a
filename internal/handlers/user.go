package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/pulse/backend/internal/models"
	"github.com/JonnyWalker81/pulse/backend/internal/service"
)

type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new profile handler
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetMe handles GET /api/me
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := h.userService.GetMe(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err, "user", userID)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateMe handles PUT /api/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.UpdateMeRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateMe(c.Request.Context(), userID, &req)
	if err != nil {
		writeServiceError(c, err, "user", userID)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteMe handles DELETE /api/me
func (h *UserHandler) DeleteMe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.userService.DeleteMe(c.Request.Context(), userID); err != nil {
		writeServiceError(c, err, "user", userID)
		return
	}
	c.Status(http.StatusNoContent)
}
