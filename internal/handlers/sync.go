package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/pulse/backend/internal/apierror"
	"github.com/JonnyWalker81/pulse/backend/internal/models"
	"github.com/JonnyWalker81/pulse/backend/internal/service"
)

type SyncHandler struct {
	syncService service.SyncService
}

func NewSyncHandler(syncService service.SyncService) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

// RegisterDevice handles POST /api/sync/devices
func (h *SyncHandler) RegisterDevice(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.RegisterDeviceRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.syncService.RegisterDevice(c.Request.Context(), userID, &req)
	if err != nil {
		writeServiceError(c, err, "device", "")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListDevices handles GET /api/sync/devices
func (h *SyncHandler) ListDevices(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	devices, err := h.syncService.ListDevices(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err, "device", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"devices": devices})
}

// RemoveDevice handles DELETE /api/sync/devices/:deviceId
func (h *SyncHandler) RemoveDevice(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	deviceID := c.Param("deviceId")
	resp, err := h.syncService.RemoveDevice(c.Request.Context(), userID, deviceID)
	if err != nil {
		writeServiceError(c, err, "device", deviceID)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetSyncData handles GET /api/sync/data?lastSync=RFC3339&deviceId=
func (h *SyncHandler) GetSyncData(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var lastSync *time.Time
	if raw := c.Query("lastSync"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			apierror.WriteProblem(c, apierror.NewValidationError(apierror.GetRequestID(c), []apierror.FieldError{{
				Field:   "lastSync",
				Message: "must be a valid RFC3339 timestamp",
				Code:    "invalid_format",
			}}))
			return
		}
		lastSync = &t
	}

	deviceID := c.Query("deviceId")
	data, err := h.syncService.GetSyncData(c.Request.Context(), userID, lastSync, deviceID)
	if err != nil {
		writeServiceError(c, err, "device", deviceID)
		return
	}
	c.JSON(http.StatusOK, data)
}

// GetSyncStatus handles GET /api/sync/status
func (h *SyncHandler) GetSyncStatus(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	status, err := h.syncService.GetStatus(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err, "user", userID)
		return
	}

	c.Header("Cache-Control", "private, max-age=30")
	c.JSON(http.StatusOK, status)
}
