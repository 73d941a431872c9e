package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies pipeline failures
type ErrorType string

const (
	// ErrTypeSchema indicates structural problems with the input workbook:
	// no recognizable header row, or a required column header missing.
	ErrTypeSchema ErrorType = "SCHEMA"
	// ErrTypeEmptyResult indicates a structurally valid workbook from which
	// no usable data rows survived cleaning.
	ErrTypeEmptyResult ErrorType = "EMPTY_RESULT"
	// ErrTypeRead indicates the input bytes could not be parsed as a workbook.
	ErrTypeRead ErrorType = "READ"
	// ErrTypeRender indicates the cleaned workbook could not be produced.
	ErrTypeRender ErrorType = "RENDER"
	// ErrTypeConfig indicates invalid application configuration.
	ErrTypeConfig ErrorType = "CONFIG"
)

// AppError represents an application-specific error. The Message is written
// for direct display to an end user who has no access to logs.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// NewSchemaError creates a schema error for a malformed or unrecognized layout
func NewSchemaError(message string) *AppError {
	return NewAppError(ErrTypeSchema, message, nil)
}

// NewMissingColumnError creates a schema error naming the absent required column
func NewMissingColumnError(header string) *AppError {
	return NewAppError(ErrTypeSchema,
		fmt.Sprintf("required column %q was not found in the header row", header), nil)
}

// NewEmptyResultError creates an error for inputs with no surviving data rows
func NewEmptyResultError(message string) *AppError {
	return NewAppError(ErrTypeEmptyResult, message, nil)
}

// NewReadError creates an error for unreadable input bytes
func NewReadError(message string, cause error) *AppError {
	return NewAppError(ErrTypeRead, message, cause)
}

// NewRenderError creates an error for output workbook failures
func NewRenderError(message string, cause error) *AppError {
	return NewAppError(ErrTypeRender, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// TypeOf returns the ErrorType of err if it is (or wraps) an AppError,
// otherwise an empty type.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// IsSchemaError reports whether err is a schema error
func IsSchemaError(err error) bool {
	return TypeOf(err) == ErrTypeSchema
}

// IsEmptyResultError reports whether err is an empty-result error
func IsEmptyResultError(err error) bool {
	return TypeOf(err) == ErrTypeEmptyResult
}

// IsReadError reports whether err is an unreadable-input error
func IsReadError(err error) bool {
	return TypeOf(err) == ErrTypeRead
}

// UserMessage extracts a display-safe message from err. AppError messages are
// written for end users; anything else is reduced to a generic message.
func UserMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "The report could not be processed."
}
