package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/pulse/backend/internal/models"
	"github.com/JonnyWalker81/pulse/backend/internal/service"
)

type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	authResp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, err, "user", "")
		return
	}

	c.JSON(http.StatusCreated, authResp)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	authResp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		writeServiceError(c, err, "user", "")
		return
	}

	c.JSON(http.StatusOK, authResp)
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so the client
// just drops its copy.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
