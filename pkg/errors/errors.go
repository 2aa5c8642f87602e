package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the error type that crosses layer boundaries.
//
// Code is the business code returned to clients, Message is safe to show to a
// user, and Err keeps the underlying cause for logs and errors.Is checks. Err
// is never serialized.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches two AppErrors by code, so predefined errors can be compared
// after being wrapped with a different cause.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code && t.Err == nil
}

// HTTPStatus derives the HTTP status from the code family: 40400 -> 404,
// 50001 -> 500. Unknown families fall back to 500.
func (e *AppError) HTTPStatus() int {
	status := e.Code / 100
	if status < http.StatusBadRequest || status > 599 {
		return http.StatusInternalServerError
	}
	return status
}

// New creates an AppError without a cause.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap attaches a system error (database, redis, broker) to an internal AppError.
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// WithCause returns a copy of e carrying err. Predefined errors stay untouched.
func (e *AppError) WithCause(err error) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// =========================================
// Error codes
// =========================================
// 4xxxx are client errors, 5xxxx are server errors. The first three digits
// are the HTTP status the code is rendered with.

const (
	// 50000-50099 system
	ErrCodeInternal      = 50000
	ErrCodeDatabaseError = 50001
	ErrCodeRedisError    = 50002
	ErrCodeBrokerError   = 50003

	// 40100-40199 authentication
	ErrCodeUnauthorized = 40100
	ErrCodeInvalidToken = 40101
	ErrCodeTokenExpired = 40102
	ErrCodeForbidden    = 40300

	// 40400-40499 missing resources
	ErrCodeNotFound     = 40400
	ErrCodeBookNotFound = 40401

	// 40000-40099 request and business rules
	ErrCodeInvalidParams  = 40000
	ErrCodeInvalidID      = 40001
	ErrCodeEmptyMembers   = 40002
	ErrCodeInvalidGenre   = 40003
	ErrCodeBindError      = 40004
	ErrCodeDuplicateEntry = 40900
)

var (
	ErrInternal      = New(ErrCodeInternal, "internal server error")
	ErrDatabaseError = New(ErrCodeDatabaseError, "database error")
	ErrRedisError    = New(ErrCodeRedisError, "cache service error")
	ErrBrokerError   = New(ErrCodeBrokerError, "message broker error")

	ErrUnauthorized = New(ErrCodeUnauthorized, "authentication required")
	ErrInvalidToken = New(ErrCodeInvalidToken, "invalid token")
	ErrTokenExpired = New(ErrCodeTokenExpired, "token expired")
	ErrForbidden    = New(ErrCodeForbidden, "access denied")

	ErrNotFound = New(ErrCodeNotFound, "resource not found")

	ErrInvalidParams  = New(ErrCodeInvalidParams, "invalid parameters")
	ErrInvalidID      = New(ErrCodeInvalidID, "invalid id")
	ErrBindError      = New(ErrCodeBindError, "malformed request body")
	ErrDuplicateEntry = New(ErrCodeDuplicateEntry, "duplicate entry")
)

// IsAppError reports whether err is or wraps an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts the AppError from err, wrapping anything else as internal.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "internal server error")
}

// Is is errors.Is, re-exported so callers importing this package as
// apperrors do not need the stdlib one too.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
