package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ContentTypeProblemJSON is the RFC 9457 media type.
const ContentTypeProblemJSON = "application/problem+json"

// WriteProblem aborts the request with problem as the body. A RetryAfter is
// mirrored into the Retry-After header.
func WriteProblem(c *gin.Context, problem *ProblemDetails) {
	if problem.Instance == "" && c.Request != nil {
		problem.Instance = c.Request.URL.Path
	}
	if problem.RetryAfter != nil {
		c.Header("Retry-After", strconv.Itoa(*problem.RetryAfter))
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.AbortWithStatusJSON(problem.Status, problem)
}

// GetRequestID returns the id set by the request id middleware, falling back
// to the X-Request-ID header.
func GetRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	if c.Request == nil {
		return ""
	}
	return c.GetHeader("X-Request-ID")
}

// NewValidationError reports every failed field at once.
func NewValidationError(requestID string, fields []FieldError) *ProblemDetails {
	return &ProblemDetails{
		Type:        TypeValidation,
		Title:       TitleValidation,
		Status:      http.StatusBadRequest,
		Detail:      "One or more fields failed validation",
		RequestID:   requestID,
		UserMessage: "Please check your input and try again",
		Errors:      fields,
	}
}

// NewBindError turns a gin binding error into a 400. Validator failures
// become a validation problem listing each field; anything else is a
// malformed body.
func NewBindError(requestID string, err error) *ProblemDetails {
	if fields := FieldErrors(err); len(fields) > 0 {
		return NewValidationError(requestID, fields)
	}
	return NewBadRequestError(requestID, "Request body is malformed", "Please check your input and try again")
}

// FieldErrors flattens validator and JSON type errors into FieldErrors.
func FieldErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, FieldError{Field: fe.Field(), Message: fieldMessage(fe), Code: fe.Tag()})
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []FieldError{{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("must be a %s", typeErr.Type.String()),
			Code:    "type",
		}}
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "hhmm":
		return "must be a 24h time formatted HH:mm"
	default:
		return "failed the " + fe.Tag() + " check"
	}
}

func NewBadRequestError(requestID, detail, userMessage string) *ProblemDetails {
	return &ProblemDetails{
		Type:        TypeBadRequest,
		Title:       TitleBadRequest,
		Status:      http.StatusBadRequest,
		Detail:      detail,
		RequestID:   requestID,
		UserMessage: userMessage,
	}
}

func NewInvalidUUIDError(requestID, field, detail string) *ProblemDetails {
	return &ProblemDetails{
		Type:        TypeInvalidUUID,
		Title:       TitleInvalidUUID,
		Status:      http.StatusBadRequest,
		Detail:      detail,
		RequestID:   requestID,
		UserMessage: "Invalid identifier format",
		Errors:      []FieldError{{Field: field, Message: "must be a valid UUIDv7", Code: "invalid_uuid"}},
	}
}

func NewUnauthorizedError(requestID, detail string) *ProblemDetails {
	if detail == "" {
		detail = "Authentication is required to access this resource"
	}
	return &ProblemDetails{
		Type:        TypeUnauthorized,
		Title:       TitleUnauthorized,
		Status:      http.StatusUnauthorized,
		Detail:      detail,
		RequestID:   requestID,
		UserMessage: "Please sign in to continue",
		Action:      "authenticate",
	}
}

// NewEditWindowError is returned when an entry is too old to change.
func NewEditWindowError(requestID string, days int) *ProblemDetails {
	return &ProblemDetails{
		Type:        TypeEditWindow,
		Title:       TitleEditWindow,
		Status:      http.StatusForbidden,
		Detail:      fmt.Sprintf("Entries older than %d days cannot be modified", days),
		RequestID:   requestID,
		UserMessage: "This check-in can no longer be edited",
	}
}

func NewNotFoundError(requestID, resource, id string) *ProblemDetails {
	detail := resource + " not found"
	if id != "" {
		detail = fmt.Sprintf("%s '%s' was not found", resource, id)
	}
	return &ProblemDetails{
		Type:        TypeNotFound,
		Title:       TitleNotFound,
		Status:      http.StatusNotFound,
		Detail:      detail,
		RequestID:   requestID,
		UserMessage: fmt.Sprintf("The requested %s could not be found", resource),
	}
}

func NewConflictError(requestID, detail string) *ProblemDetails {
	return &ProblemDetails{
		Type:        TypeConflict,
		Title:       TitleConflict,
		Status:      http.StatusConflict,
		Detail:      detail,
		RequestID:   requestID,
		UserMessage: "This action conflicts with existing data",
	}
}

func NewUnprocessableError(requestID, detail string) *ProblemDetails {
	return &ProblemDetails{
		Type:        TypeUnprocessable,
		Title:       TitleUnprocessable,
		Status:      http.StatusUnprocessableEntity,
		Detail:      detail,
		RequestID:   requestID,
		UserMessage: "The request could not be processed",
	}
}

// NewRateLimitError sets RetryAfter to the seconds left in the window.
func NewRateLimitError(requestID string, retryAfter int) *ProblemDetails {
	return &ProblemDetails{
		Type:        TypeRateLimit,
		Title:       TitleRateLimit,
		Status:      http.StatusTooManyRequests,
		Detail:      fmt.Sprintf("Rate limit exceeded, retry after %d seconds", retryAfter),
		RequestID:   requestID,
		UserMessage: "Too many requests. Please wait before trying again.",
		RetryAfter:  &retryAfter,
	}
}

// NewInternalError never carries the underlying error; log it instead.
func NewInternalError(requestID string) *ProblemDetails {
	return &ProblemDetails{
		Type:        TypeInternal,
		Title:       TitleInternal,
		Status:      http.StatusInternalServerError,
		Detail:      "An unexpected error occurred",
		RequestID:   requestID,
		UserMessage: "Something went wrong. Please try again later.",
	}
}

func NewNotImplementedError(requestID, detail string) *ProblemDetails {
	return &ProblemDetails{
		Type:      TypeNotImplemented,
		Title:     TitleNotImplemented,
		Status:    http.StatusNotImplemented,
		Detail:    detail,
		RequestID: requestID,
	}
}
