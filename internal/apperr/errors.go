// internal/apperr/errors.go
//
// Error taxonomy shared by the storage layer, the auth middleware and the
// HTTP handlers. Every error a client is allowed to see is an *Error carrying
// the HTTP status it maps to; anything else is treated as an internal failure.

package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a client-facing failure with an HTTP status.
type Error struct {
	Status  int      // HTTP status code the error maps to
	Message string   // safe to return to the client
	Details []string // optional per-field problems (validation)
	Err     error    // underlying cause, never serialized
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error with the given status and message.
func New(status int, msg string) *Error {
	return &Error{Status: status, Message: msg}
}

// Wrap builds an Error that keeps err as its cause.
func Wrap(status int, msg string, err error) *Error {
	return &Error{Status: status, Message: msg, Err: err}
}

// BadRequest reports invalid caller input.
func BadRequest(msg string, details ...string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg, Details: details}
}

// Unauthorized reports a missing or failed authentication ("who are you").
func Unauthorized(msg string) *Error {
	if msg == "" {
		msg = "Unauthorized"
	}
	return New(http.StatusUnauthorized, msg)
}

// Forbidden reports an authenticated caller lacking privilege ("you may not do this").
func Forbidden(msg string) *Error {
	if msg == "" {
		msg = "Forbidden"
	}
	return New(http.StatusForbidden, msg)
}

// NotFound reports a missing resource.
func NotFound(format string, args ...any) *Error {
	return New(http.StatusNotFound, fmt.Sprintf(format, args...))
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// StatusOf returns the HTTP status for err, 500 when err is not an *Error.
func StatusOf(err error) int {
	if e, ok := As(err); ok {
		return e.Status
	}
	return http.StatusInternalServerError
}

func IsBadRequest(err error) bool   { return StatusOf(err) == http.StatusBadRequest }
func IsUnauthorized(err error) bool { return StatusOf(err) == http.StatusUnauthorized }
func IsForbidden(err error) bool    { return StatusOf(err) == http.StatusForbidden }
func IsNotFound(err error) bool     { return StatusOf(err) == http.StatusNotFound }
