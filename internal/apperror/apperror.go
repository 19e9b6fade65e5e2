// Package apperror defines the error taxonomy shared by every layer.
//
// Components return one of the constructors below; the HTTP layer maps the
// wrapped sentinel to a status code with errors.Is. Anything that does not
// wrap a sentinel is treated as an internal error.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation error")
	ErrDuplicate           = errors.New("duplicate")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrUpstreamProtocol    = errors.New("upstream protocol error")
)

type AppError struct {
	Err     error  // sentinel
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	Cause   error  // Optional: underlying failure, never part of Message
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Duplicate reports a uniqueness violation caught by an application-level check.
func Duplicate(resource, key string) *AppError {
	return &AppError{
		Err:     ErrDuplicate,
		Message: fmt.Sprintf("%s already exists for %s", resource, key),
	}
}

// UpstreamUnavailable reports a transport-level failure: timeout, refused
// connection, or an upstream 5xx. The message is fixed because transport
// errors carry the signed request URL; cause is kept only in Cause.
func UpstreamUnavailable(cause error) *AppError {
	return &AppError{
		Err:     ErrUpstreamUnavailable,
		Message: "upstream unavailable",
		Cause:   cause,
	}
}

// UpstreamProtocol reports an upstream that answered but flagged a failure
// inside its own envelope.
func UpstreamProtocol(code int, status string) *AppError {
	return &AppError{
		Err:     ErrUpstreamProtocol,
		Message: fmt.Sprintf("upstream error %d: %s", code, status),
	}
}
