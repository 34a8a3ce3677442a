package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/pulse/backend/internal/models"
	"github.com/JonnyWalker81/pulse/backend/internal/service"
)

type ReminderHandler struct {
	reminderService service.ReminderService
}

// NewReminderHandler creates a new reminder handler
func NewReminderHandler(reminderService service.ReminderService) *ReminderHandler {
	return &ReminderHandler{reminderService: reminderService}
}

// UpdateReminder handles PUT /api/reminders
func (h *ReminderHandler) UpdateReminder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.ReminderRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.reminderService.Update(c.Request.Context(), userID, &req)
	if err != nil {
		writeServiceError(c, err, "user", userID)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetReminderStatus handles GET /api/reminders/status
func (h *ReminderHandler) GetReminderStatus(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	status, err := h.reminderService.Status(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err, "reminder", "")
		return
	}
	c.JSON(http.StatusOK, status)
}

// CancelReminder handles DELETE /api/reminders
func (h *ReminderHandler) CancelReminder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	cancelled, err := h.reminderService.Cancel(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err, "user", userID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": cancelled})
}
