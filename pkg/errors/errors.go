package errors

import (
	"fmt"
	"net/http"
)

// ErrorType represents different types of application errors
type ErrorType string

const (
	// ErrorTypeInvalidQuery covers malformed or missing query parameters,
	// rejected before the event source is touched.
	ErrorTypeInvalidQuery ErrorType = "invalid_query"
	// ErrorTypeSourceUnavailable covers event source failures, including
	// pagination failures mid-stream. Nothing partial is ever returned.
	ErrorTypeSourceUnavailable ErrorType = "source_unavailable"
	// ErrorTypeClassificationUnavailable marks an institution registry load
	// failure. Handled internally (classification degrades), never surfaced
	// to callers as a request failure.
	ErrorTypeClassificationUnavailable ErrorType = "classification_unavailable"
	ErrorTypeNotFound                  ErrorType = "not_found"
	ErrorTypeInternal                  ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	StatusCode int                    `json:"status_code"`
	Internal   error                  `json:"-"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Internal.Error())
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// NewInvalidQueryError creates an error for malformed request parameters
func NewInvalidQueryError(message string, details map[string]interface{}) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidQuery,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Details:    details,
	}
}

// NewSourceUnavailableError creates an error for event source fetch failures
func NewSourceUnavailableError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeSourceUnavailable,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Internal:   internal,
	}
}

// NewClassificationUnavailableError creates an error for registry load failures
func NewClassificationUnavailableError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeClassificationUnavailable,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   internal,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewInternalError creates a new internal server error
func NewInternalError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   internal,
	}
}
