// Package errors provides the typed application errors shared by the
// repositories, services and transport handlers.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Code classifies an application error.
type Code string

const (
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeForbidden    Code = "FORBIDDEN"
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeConflict     Code = "CONFLICT"
	ErrCodeUnauthorized Code = "UNAUTHORIZED"
	ErrCodeInternal     Code = "INTERNAL"
)

// AppError is the error type returned across package boundaries.
type AppError struct {
	Code    Code
	Message string
	// Field is set for INVALID_INPUT errors caused by a single input field.
	Field string
	// Retryable marks a CONFLICT caused by a serialization failure or
	// deadlock; re-running the whole transaction may succeed.
	Retryable bool
	Err       error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an error with the given code and message.
func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error. Wrapping an
// AppError keeps its original code so lower layers decide classification.
func Wrap(err error, code Code, message string) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		code = appErr.Code
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// NotFound reports a missing resource.
func NotFound(resource, id string) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: fmt.Sprintf("%s '%s' not found", resource, id)}
}

// InvalidInput reports a structurally invalid input or an illegal transition.
func InvalidInput(field, message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message, Field: field}
}

// Forbidden reports an actor lacking rights over a resource.
func Forbidden(message string) *AppError {
	return &AppError{Code: ErrCodeForbidden, Message: message}
}

// Conflict reports a concurrent modification that may succeed on retry.
func Conflict(message string) *AppError {
	return &AppError{Code: ErrCodeConflict, Message: message}
}

// Retryable reports a transient storage conflict.
func Retryable(err error, message string) *AppError {
	return &AppError{Code: ErrCodeConflict, Message: message, Retryable: true, Err: err}
}

// IsRetryable reports whether any AppError in err's chain is retryable.
func IsRetryable(err error) bool {
	for err != nil {
		var appErr *AppError
		if !stderrors.As(err, &appErr) {
			return false
		}
		if appErr.Retryable {
			return true
		}
		err = appErr.Err
	}
	return false
}

// CodeOf returns the code of the first AppError in err's chain, or
// ErrCodeInternal for foreign errors.
func CodeOf(err error) Code {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// HTTPStatus maps an error code to the status the HTTP layer responds with.
func HTTPStatus(code Code) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeInvalidInput:
		return http.StatusBadRequest
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Is and As forward to the standard library so callers need one errors import.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }
