package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/pulse/backend/internal/service"
)

// InsightsHandler handles insights-related HTTP requests
type InsightsHandler struct {
	insightsService service.InsightsService
}

// NewInsightsHandler creates a new insights handler
func NewInsightsHandler(insightsService service.InsightsService) *InsightsHandler {
	return &InsightsHandler{
		insightsService: insightsService,
	}
}

// GetInsights returns suggestion tips for the authenticated user
// GET /api/insights?window=7|14|30&useAI=true
func (h *InsightsHandler) GetInsights(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	useAI, _ := strconv.ParseBool(c.Query("useAI"))

	report, err := h.insightsService.GetInsights(c.Request.Context(), userID, queryWindow(c), useAI)
	if err != nil {
		writeServiceError(c, err, "insights", "")
		return
	}
	c.JSON(http.StatusOK, report)
}
