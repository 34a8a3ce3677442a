package handlers

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/JonnyWalker81/pulse/backend/internal/apierror"
	"github.com/JonnyWalker81/pulse/backend/internal/logger"
	"github.com/JonnyWalker81/pulse/backend/internal/middleware"
	"github.com/JonnyWalker81/pulse/backend/internal/reminder"
	"github.com/JonnyWalker81/pulse/backend/internal/service"
)

var registerOnce sync.Once

// RegisterValidators adds the hhmm tag to gin's validator and reports fields
// by their json names. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
			return reminder.ValidClock(fl.Field().String())
		})
	})
}

// currentUser returns the authenticated user id or writes a 401.
func currentUser(c *gin.Context) (string, bool) {
	userID := middleware.UserID(c)
	if userID == "" {
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c), ""))
		return "", false
	}
	return userID, true
}

// bindJSON binds the body into dst or writes a 400 problem.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		apierror.WriteProblem(c, apierror.NewBindError(apierror.GetRequestID(c), err))
		return false
	}
	return true
}

// queryWindow parses ?window; junk becomes 0 so the service applies its default.
func queryWindow(c *gin.Context) int {
	w, err := strconv.Atoi(c.Query("window"))
	if err != nil {
		return 0
	}
	return w
}

// writeServiceError maps service sentinels onto problem responses. resource
// and id only feed 404 details.
func writeServiceError(c *gin.Context, err error, resource, id string) {
	requestID := apierror.GetRequestID(c)

	var problem *apierror.ProblemDetails
	switch {
	case errors.Is(err, service.ErrInvalidUUID), errors.Is(err, service.ErrNotUUIDv7), errors.Is(err, service.ErrFutureTimestamp):
		problem = apierror.NewInvalidUUIDError(requestID, "id", err.Error())
	case errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidReminder),
		errors.Is(err, service.ErrInvalidClock),
		errors.Is(err, service.ErrUnsupportedFormat):
		problem = apierror.NewBadRequestError(requestID, err.Error(), "")
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		problem = apierror.NewUnauthorizedError(requestID, err.Error())
	case errors.Is(err, service.ErrEditWindowExceeded):
		problem = apierror.NewEditWindowError(requestID, service.EditWindowDays)
	case errors.Is(err, service.ErrEntryNotFound):
		problem = apierror.NewNotFoundError(requestID, "entry", id)
	case errors.Is(err, service.ErrUserNotFound):
		problem = apierror.NewNotFoundError(requestID, "user", id)
	case errors.Is(err, service.ErrDeviceNotFound):
		problem = apierror.NewNotFoundError(requestID, "device", id)
	case errors.Is(err, service.ErrEntryConflict), errors.Is(err, service.ErrEmailTaken):
		problem = apierror.NewConflictError(requestID, err.Error())
	case errors.Is(err, service.ErrInvalidRange):
		problem = apierror.NewUnprocessableError(requestID, err.Error())
	case errors.Is(err, service.ErrNotImplemented):
		problem = apierror.NewNotImplementedError(requestID, "Account deletion is not available yet")
	default:
		logger.Ctx(c.Request.Context()).Error("request failed",
			logger.Err(err),
			logger.String("resource", resource),
			logger.String("path", c.FullPath()),
		)
		problem = apierror.NewInternalError(requestID)
	}
	apierror.WriteProblem(c, problem)
}
