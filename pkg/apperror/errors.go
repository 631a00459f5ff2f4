package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an error by where it came from so callers can react
// without parsing messages.
type Kind string

const (
	// KindValidation is raised locally before any backend call.
	KindValidation Kind = "validation"
	// KindNetwork covers transport failures talking to the practice backend.
	KindNetwork Kind = "network"
	// KindRejected means the practice backend answered with a failure.
	KindRejected Kind = "rejected"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Kind    Kind         `json:"kind,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
	cause   error
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// Authentication errors
var (
	ErrUnauthorized = &AppError{Code: http.StatusUnauthorized, Message: "Unauthorized"}
	ErrTokenExpired = &AppError{Code: http.StatusUnauthorized, Message: "Token has expired"}
	ErrInvalidToken = &AppError{Code: http.StatusUnauthorized, Message: "Invalid token"}
)

// NewValidationError creates a validation error with a single user-facing message
func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Message: message,
		Kind:    KindValidation,
	}
}

// NewFieldValidationError creates a validation error carrying per-field details
func NewFieldValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Kind:    KindValidation,
		Errors:  fieldErrors,
	}
}

// NewNetworkError wraps a transport failure
func NewNetworkError(message string, cause error) *AppError {
	return &AppError{
		Code:    http.StatusBadGateway,
		Message: message,
		Kind:    KindNetwork,
		cause:   cause,
	}
}

// NewRejectedError reports a failure answered by the practice backend
func NewRejectedError(code int, message string) *AppError {
	if code < http.StatusBadRequest {
		code = http.StatusBadGateway
	}
	return &AppError{
		Code:    code,
		Message: message,
		Kind:    KindRejected,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: resource + " not found",
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

// KindOf returns the error kind, or "" when err carries none.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: err.Error(),
	}
}
