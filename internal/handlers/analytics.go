package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/pulse/backend/internal/service"
)

type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
	streakService    service.StreakService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService service.AnalyticsService, streakService service.StreakService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		streakService:    streakService,
	}
}

// GetStats handles GET /api/stats?window=7|14|30
func (h *AnalyticsHandler) GetStats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.analyticsService.GetStats(c.Request.Context(), userID, queryWindow(c))
	if err != nil {
		writeServiceError(c, err, "stats", "")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetStreaks handles GET /api/streaks
func (h *AnalyticsHandler) GetStreaks(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	streaks, err := h.streakService.GetStreaks(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err, "streaks", "")
		return
	}
	c.JSON(http.StatusOK, streaks)
}

// GetCorrelations handles GET /api/analytics/correlation?window=7|14|30
func (h *AnalyticsHandler) GetCorrelations(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	report, err := h.analyticsService.GetCorrelations(c.Request.Context(), userID, queryWindow(c))
	if err != nil {
		writeServiceError(c, err, "correlation", "")
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetAchievements handles GET /api/achievements
func (h *AnalyticsHandler) GetAchievements(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	report, err := h.analyticsService.GetAchievements(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err, "achievements", "")
		return
	}
	c.JSON(http.StatusOK, report)
}
