package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/pulse/backend/internal/models"
	"github.com/JonnyWalker81/pulse/backend/internal/service"
)

type ExportHandler struct {
	exportService service.ExportService
}

// NewExportHandler creates a new export handler
func NewExportHandler(exportService service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// Export handles GET /api/export?format=csv|json|yaml (csv by default)
func (h *ExportHandler) Export(c *gin.Context) {
	h.export(c, models.ExportFormatCSV)
}

// SyncExport handles GET /api/sync/export, which defaults to json
func (h *ExportHandler) SyncExport(c *gin.Context) {
	h.export(c, models.ExportFormatJSON)
}

func (h *ExportHandler) export(c *gin.Context, def models.ExportFormat) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	format := def
	if raw := strings.TrimSpace(c.Query("format")); raw != "" {
		format = models.ExportFormat(strings.ToLower(raw))
	}

	file, err := h.exportService.Export(c.Request.Context(), userID, format)
	if err != nil {
		writeServiceError(c, err, "user", userID)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Body)
}
