// Package errors provides error types and handling for apphub.
// It includes custom error types with HTTP status codes and error codes.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents an application error with an associated HTTP status code.
type AppError struct {
	// Code is an optional error code string for programmatic handling
	Code string
	// Message is a user-friendly error message
	Message string
	// StatusCode is the HTTP status code to return
	StatusCode int
	// Cause is the underlying error (for error wrapping)
	Cause error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for error unwrapping.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is allows errors.Is to work with AppError.
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Code != "" && e.Code == t.Code
	}
	return false
}

// Predefined error codes.
const (
	// Client error codes.
	ErrCodeInvalidRequest  = "INVALID_REQUEST"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeConflict        = "CONFLICT"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeMissingVariable = "MISSING_VARIABLE"

	// Server error codes.
	ErrCodeInternalError  = "INTERNAL_ERROR"
	ErrCodeTimeout        = "TIMEOUT"
	ErrCodeTokenLifecycle = "TOKEN_LIFECYCLE" //nolint:gosec // error code, not a credential
	ErrCodeHubAPIError    = "HUB_API_ERROR"
)

// NewClientError creates a new client error (4xx status codes).
func NewClientError(statusCode int, code, message string, cause error) *AppError {
	if statusCode < 400 || statusCode >= 500 {
		panic(fmt.Sprintf("NewClientError called with non-client status code: %d", statusCode))
	}
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Cause:      cause,
	}
}

// NewServerError creates a new server error (5xx status codes).
func NewServerError(statusCode int, code, message string, cause error) *AppError {
	if statusCode < 500 || statusCode >= 600 {
		panic(fmt.Sprintf("NewServerError called with non-server status code: %d", statusCode))
	}
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Cause:      cause,
	}
}

// Convenience constructors for common errors

// ErrNotFound creates a not found error (404).
func ErrNotFound(message string, cause error) *AppError {
	return NewClientError(http.StatusNotFound, ErrCodeNotFound, message, cause)
}

// ErrConflict creates a conflict error (409).
func ErrConflict(message string, cause error) *AppError {
	return NewClientError(http.StatusConflict, ErrCodeConflict, message, cause)
}

// ErrBadRequest creates a bad request error (400).
func ErrBadRequest(message string, cause error) *AppError {
	return NewClientError(http.StatusBadRequest, ErrCodeInvalidRequest, message, cause)
}

// ErrForbidden creates a forbidden error (403).
func ErrForbidden(message string, cause error) *AppError {
	return NewClientError(http.StatusForbidden, ErrCodeForbidden, message, cause)
}

// ErrValidation creates a validation error (422) for malformed app specs.
func ErrValidation(message string, cause error) *AppError {
	return NewClientError(http.StatusUnprocessableEntity, ErrCodeValidation, message, cause)
}

// ErrMissingVariable creates an error for a template placeholder with no
// binding provided (422).
func ErrMissingVariable(message string, cause error) *AppError {
	return NewClientError(http.StatusUnprocessableEntity, ErrCodeMissingVariable, message, cause)
}

// ErrTimeout creates a timeout error (504).
func ErrTimeout(message string, cause error) *AppError {
	return NewServerError(http.StatusGatewayTimeout, ErrCodeTimeout, message, cause)
}

// ErrTokenLifecycle creates an error for a failed scoped-token revocation
// (500). These are logged, never returned, so they cannot mask the
// wrapped operation's own result.
func ErrTokenLifecycle(message string, cause error) *AppError {
	return NewServerError(http.StatusInternalServerError, ErrCodeTokenLifecycle, message, cause)
}

// ErrInternalError creates an internal server error (500).
func ErrInternalError(message string, cause error) *AppError {
	return NewServerError(http.StatusInternalServerError, ErrCodeInternalError, message, cause)
}

// FromHubStatus converts a non-2xx hub control API response into an
// AppError, preserving the hub's error detail verbatim.
func FromHubStatus(statusCode int, detail string) *AppError {
	switch statusCode {
	case http.StatusNotFound:
		return ErrNotFound(detail, nil)
	case http.StatusForbidden:
		return ErrForbidden(detail, nil)
	case http.StatusConflict:
		return ErrConflict(detail, nil)
	}
	if statusCode >= 400 && statusCode < 500 {
		return NewClientError(statusCode, ErrCodeHubAPIError, detail, nil)
	}
	if statusCode >= 500 && statusCode < 600 {
		return NewServerError(statusCode, ErrCodeHubAPIError, detail, nil)
	}
	return ErrInternalError(detail, nil)
}

// GetStatusCode extracts the HTTP status code from an error.
// Returns 500 if the error is not an AppError.
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// GetErrorCode extracts the error code from an error.
// Returns empty string if the error is not an AppError.
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetErrorMessage extracts a user-friendly message from an error.
func GetErrorMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// GetErrorDetails extracts detailed error information including the underlying cause.
// Returns the underlying error message if available, otherwise returns the main error message.
func GetErrorDetails(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Cause != nil {
			return appErr.Cause.Error()
		}
		return appErr.Message
	}
	return err.Error()
}
