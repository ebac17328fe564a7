package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode string

// Error codes used across all packages
const (
	// Generic errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"

	// Tenant errors
	ErrCodeTenantNotFound  ErrorCode = "TENANT_NOT_FOUND"
	ErrCodeTenantSuspended ErrorCode = "TENANT_SUSPENDED"

	// Token errors
	ErrCodeTokenExpired          ErrorCode = "TOKEN_EXPIRED"
	ErrCodeTokenInvalidSignature ErrorCode = "TOKEN_INVALID_SIGNATURE"
	ErrCodeTokenInvalid          ErrorCode = "TOKEN_INVALID"

	// Impersonation errors
	ErrCodeNoActingPrincipal ErrorCode = "NO_ACTING_PRINCIPAL"
	ErrCodeAuditWriteFailed  ErrorCode = "AUDIT_WRITE_FAILED"

	// Sequence errors
	ErrCodeSequenceContention ErrorCode = "SEQUENCE_CONTENTION"
)

// Error represents a structured error with code, message, and optional details
type Error struct {
	Code    ErrorCode              // Unique error code
	Message string                 // Human-readable error message
	Details map[string]interface{} // Optional additional details
	Err     error                  // Wrapped underlying error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// HTTPStatusCode returns the appropriate HTTP status code for this error
func (e *Error) HTTPStatusCode() int {
	return MapErrorCodeToHTTPStatus(e.Code)
}

// Retryable reports whether the caller may retry the failed operation.
// Only sequence contention is retryable in this core; everything else
// requires caller intervention (re-authenticate, fix input, etc.).
func (e *Error) Retryable() bool {
	return e.Code == ErrCodeSequenceContention
}

// New creates a new Error with the given code and message
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new Error with formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with code and message
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrapf wraps an existing error with code and formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// As is a passthrough to the standard library's errors.As so callers don't
// need a second errors import
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Is is a passthrough to the standard library's errors.Is
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// IsCode checks if an error has a specific error code
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error
// Returns ErrCodeInternal if the error is not a structured Error
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

// MapErrorCodeToHTTPStatus maps error codes to HTTP status codes
func MapErrorCodeToHTTPStatus(code ErrorCode) int {
	switch code {
	// 400 Bad Request
	case ErrCodeInvalidInput:
		return http.StatusBadRequest

	// 401 Unauthorized
	case ErrCodeUnauthorized, ErrCodeTokenExpired, ErrCodeTokenInvalidSignature,
		ErrCodeTokenInvalid:
		return http.StatusUnauthorized

	// 403 Forbidden
	case ErrCodeForbidden, ErrCodeTenantSuspended:
		return http.StatusForbidden

	// 404 Not Found
	case ErrCodeNotFound, ErrCodeTenantNotFound:
		return http.StatusNotFound

	// 422 Unprocessable Entity
	case ErrCodeNoActingPrincipal:
		return http.StatusUnprocessableEntity

	// 503 Service Unavailable (retryable)
	case ErrCodeSequenceContention:
		return http.StatusServiceUnavailable

	// 500 Internal Server Error (default)
	case ErrCodeInternal, ErrCodeAuditWriteFailed:
		fallthrough
	default:
		return http.StatusInternalServerError
	}
}

// TenantNotFound creates a "tenant not found" error
func TenantNotFound(tenantID int64) *Error {
	return Newf(ErrCodeTenantNotFound, "tenant not found: %d", tenantID)
}

// TenantSuspended creates a "tenant suspended" error
func TenantSuspended(tenantID int64, status string) *Error {
	return Newf(ErrCodeTenantSuspended, "tenant %d is %s", tenantID, status).
		WithDetail("status", status)
}

// NoActingPrincipal creates a "no acting principal" error with a remediation hint
func NoActingPrincipal(tenantID int64) *Error {
	return Newf(ErrCodeNoActingPrincipal,
		"tenant %d has no admin user to act as; create an admin user for the tenant first", tenantID)
}

// SequenceContention creates a retryable "sequence contention" error
func SequenceContention(tenantID int64, name string) *Error {
	return Newf(ErrCodeSequenceContention, "sequence %q contended for tenant %d, retry", name, tenantID).
		WithDetail("sequence", name)
}

// Unauthorized creates an "unauthorized" error
func Unauthorized(message string) *Error {
	return New(ErrCodeUnauthorized, message)
}

// Forbidden creates a "forbidden" error
func Forbidden(message string) *Error {
	return New(ErrCodeForbidden, message)
}

// Internal creates an "internal error"
func Internal(message string) *Error {
	return New(ErrCodeInternal, message)
}
