package errors

import (
	"errors"
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

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// Predefined errors for the upload surface
var (
	ErrInvalidUpload     = New(http.StatusBadRequest, "INVALID_UPLOAD", "Please upload a non-empty .xlsx file")
	ErrRateLimitExceeded = New(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Too many requests, try again shortly")
	ErrInternalServer    = New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
)

// FromError maps a pipeline error to an APIError suitable for rendering.
// Schema and empty-result failures are client-visible (422), unreadable
// input is a bad request, everything else is a 500.
func FromError(err error) *APIError {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return ErrInternalServer
	}
	switch appErr.Type {
	case ErrTypeSchema:
		return New(http.StatusUnprocessableEntity, "SCHEMA_ERROR", appErr.Message)
	case ErrTypeEmptyResult:
		return New(http.StatusUnprocessableEntity, "EMPTY_RESULT", appErr.Message)
	case ErrTypeRead:
		return New(http.StatusBadRequest, "UNREADABLE_FILE", appErr.Message)
	default:
		return ErrInternalServer
	}
}

// ErrorResponse represents a standard error response envelope
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(err *APIError) *ErrorResponse {
	return &ErrorResponse{Success: false, Error: err}
}

// Render implements the render.Renderer interface
func (e *ErrorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return e.Error.Render(w, r)
}
