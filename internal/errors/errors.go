package errors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stwalsh4118/estatehub/internal/middleware"
	"github.com/stwalsh4118/estatehub/internal/services"
)

// Error code constants for standardized error responses
const (
	ErrNotFound        = "NOT_FOUND"
	ErrBadRequest      = "BAD_REQUEST"
	ErrInternalServer  = "INTERNAL_SERVER_ERROR"
	ErrValidation      = "VALIDATION_ERROR"
	ErrForbidden       = "FORBIDDEN"
	ErrConflict        = "CONFLICT"
	ErrUnauthenticated = "UNAUTHENTICATED"
)

// ErrorResponse is the top-level error response structure.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// respond logs a client error at warn level and writes the envelope.
func respond(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	requestID := middleware.GetRequestID(c)

	if log := middleware.GetLogger(c); log != nil {
		fields := map[string]interface{}{
			"code":       code,
			"message":    message,
			"request_id": requestID,
			"path":       c.Request.URL.Path,
		}
		if details != nil {
			fields["details"] = details
		}
		log.Warn("Request rejected", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: requestID,
		},
	})
}

// NotFound returns a 404 Not Found error response.
func NotFound(c *gin.Context, message string) {
	respond(c, http.StatusNotFound, ErrNotFound, message, nil)
}

// BadRequest returns a 400 Bad Request error response with optional details.
func BadRequest(c *gin.Context, message string, details map[string]interface{}) {
	respond(c, http.StatusBadRequest, ErrBadRequest, message, details)
}

// Forbidden returns a 403 when the caller is authenticated but does not own
// the resource.
func Forbidden(c *gin.Context, message string) {
	respond(c, http.StatusForbidden, ErrForbidden, message, nil)
}

// Conflict returns a 409 when the request clashes with current state.
func Conflict(c *gin.Context, message string) {
	respond(c, http.StatusConflict, ErrConflict, message, nil)
}

// Unauthenticated returns a 401 when no manager identity is present.
func Unauthenticated(c *gin.Context, message string) {
	respond(c, http.StatusUnauthorized, ErrUnauthenticated, message, nil)
}

// InternalServerError returns a 500 Internal Server Error response.
// The actual error is logged but never exposed to the client.
func InternalServerError(c *gin.Context, message string, err error) {
	log := middleware.GetLogger(c)
	requestID := middleware.GetRequestID(c)

	if log != nil {
		log.Error("Internal server error", err, map[string]interface{}{
			"message":    message,
			"request_id": requestID,
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
		})
	}

	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Error: ErrorDetail{
			Code:      ErrInternalServer,
			Message:   message,
			RequestID: requestID,
		},
	})
}

// ValidationError returns a 400 with one entry per rejected binding field.
func ValidationError(c *gin.Context, validationErrors validator.ValidationErrors) {
	details := make(map[string]interface{}, len(validationErrors))
	for _, err := range validationErrors {
		details[err.Field()] = formatValidationError(err)
	}
	respond(c, http.StatusBadRequest, ErrValidation, "Validation failed for one or more fields", details)
}

// BindingError reports a ShouldBind failure, keeping per-field details when
// the binder produced validation errors.
func BindingError(c *gin.Context, err error, message string) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		ValidationError(c, verrs)
		return
	}
	BadRequest(c, message, nil)
}

// FromService maps a service error onto the matching response. Errors of no
// known kind become a 500 with fallback as the client message.
func FromService(c *gin.Context, err error, fallback string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		details := make(map[string]interface{}, len(verr.Fields))
		for field, msg := range verr.Fields {
			details[field] = msg
		}
		respond(c, http.StatusBadRequest, ErrValidation, "Validation failed for one or more fields", details)
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrInvalidArgument):
		BadRequest(c, err.Error(), nil)
	case errors.Is(err, services.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		Forbidden(c, "Listing is owned by another manager")
	case errors.Is(err, services.ErrConflict):
		Conflict(c, err.Error())
	default:
		InternalServerError(c, fallback, err)
	}
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		return "Value is too short or small (minimum: " + err.Param() + ")"
	case "max":
		return "Value is too long or large (maximum: " + err.Param() + ")"
	case "gt":
		return "Must be greater than " + err.Param()
	case "gte":
		return "Must be greater than or equal to " + err.Param()
	case "lte":
		return "Must be less than or equal to " + err.Param()
	case "oneof":
		return "Must be one of: " + err.Param()
	case "url":
		return "Must be a valid URL"
	default:
		return "Validation failed for tag: " + err.Tag()
	}
}
