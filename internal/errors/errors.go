package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// New creates a new APIError
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

var (
	ErrInvalidRequest     = New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	ErrNotFound           = New(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrRateLimitExceeded  = New(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Rate limit exceeded")
	ErrInternalServer     = New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
	ErrServiceUnavailable = New(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "No biopsy data loaded")
	ErrExportQueueFull    = New(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Export queue is full, try again later")
)

// NotFoundError creates a not found error naming the resource
func NotFoundError(resource string) *APIError {
	return NewWithDetails(http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("%s not found", resource), resource)
}

// MissingFieldsError reports required form fields that are empty
func MissingFieldsError(fields []string) *APIError {
	return NewWithDetails(http.StatusUnprocessableEntity, "VALIDATION_FAILED",
		"Please fill in required fields", fields)
}

// RenderFailedError wraps a document generation failure
func RenderFailedError(err error) *APIError {
	return NewWithDetails(http.StatusInternalServerError, "RENDER_FAILED", "Failed to generate PDF", err.Error())
}

// ConflictError reports a request that clashes with the resource state
func ConflictError(message string, details interface{}) *APIError {
	return NewWithDetails(http.StatusConflict, "CONFLICT", message, details)
}
