package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/pulse/backend/internal/apierror"
	"github.com/JonnyWalker81/pulse/backend/internal/models"
	"github.com/JonnyWalker81/pulse/backend/internal/service"
)

type EntryHandler struct {
	entryService service.EntryService
}

// NewEntryHandler creates a new entry handler
func NewEntryHandler(entryService service.EntryService) *EntryHandler {
	return &EntryHandler{entryService: entryService}
}

// CreateEntry handles POST /api/entries
func (h *EntryHandler) CreateEntry(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.EntryRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.entryService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		writeServiceError(c, err, "entry", "")
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// ListEntries handles GET /api/entries?from&to&page&limit
func (h *EntryHandler) ListEntries(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	filter, fieldErrors := parseEntryFilter(c)
	if len(fieldErrors) > 0 {
		apierror.WriteProblem(c, apierror.NewValidationError(apierror.GetRequestID(c), fieldErrors))
		return
	}

	page, err := h.entryService.List(c.Request.Context(), userID, filter)
	if err != nil {
		writeServiceError(c, err, "entry", "")
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetEntry handles GET /api/entries/:id
func (h *EntryHandler) GetEntry(c *gin.Context) {
	userID, id, ok := entryParams(c)
	if !ok {
		return
	}

	entry, err := h.entryService.Get(c.Request.Context(), userID, id)
	if err != nil {
		writeServiceError(c, err, "entry", id)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// UpdateEntry handles PUT /api/entries/:id
func (h *EntryHandler) UpdateEntry(c *gin.Context) {
	userID, id, ok := entryParams(c)
	if !ok {
		return
	}

	var req models.EntryRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.entryService.Update(c.Request.Context(), userID, id, &req)
	if err != nil {
		writeServiceError(c, err, "entry", id)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// DeleteEntry handles DELETE /api/entries/:id
func (h *EntryHandler) DeleteEntry(c *gin.Context) {
	userID, id, ok := entryParams(c)
	if !ok {
		return
	}

	if err := h.entryService.Delete(c.Request.Context(), userID, id); err != nil {
		writeServiceError(c, err, "entry", id)
		return
	}
	c.Status(http.StatusNoContent)
}

func entryParams(c *gin.Context) (string, string, bool) {
	userID, ok := currentUser(c)
	if !ok {
		return "", "", false
	}
	id := c.Param("id")
	if err := service.ParseID(id); err != nil {
		apierror.WriteProblem(c, apierror.NewInvalidUUIDError(apierror.GetRequestID(c), "id", err.Error()))
		return "", "", false
	}
	return userID, id, true
}

func parseEntryFilter(c *gin.Context) (models.EntryFilter, []apierror.FieldError) {
	var (
		filter models.EntryFilter
		errs   []apierror.FieldError
	)

	parseDay := func(field string) *time.Time {
		raw := c.Query(field)
		if raw == "" {
			return nil
		}
		day, err := service.ParseEntryDate(raw)
		if err != nil {
			errs = append(errs, apierror.FieldError{Field: field, Message: "must be a YYYY-MM-DD date or RFC 3339 timestamp", Code: "invalid_format"})
			return nil
		}
		return &day
	}
	parseInt := func(field string) int {
		raw := c.Query(field)
		if raw == "" {
			return 0
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			errs = append(errs, apierror.FieldError{Field: field, Message: "must be a positive integer", Code: "invalid_type"})
			return 0
		}
		return n
	}

	filter.From = parseDay("from")
	filter.To = parseDay("to")
	filter.Page = parseInt("page")
	filter.Limit = parseInt("limit")
	return filter, errs
}
