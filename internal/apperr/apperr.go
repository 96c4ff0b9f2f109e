// Package apperr defines the error taxonomy shared by the booking, venue and
// invite packages and its mapping onto HTTP responses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrConflict         = errors.New("slot unavailable")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrAlreadyProcessed = errors.New("already processed")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrUnauthenticated  = errors.New("unauthenticated")
)

// Error carries a short human readable reason alongside one of the sentinels.
type Error struct {
	Kind   error
	Reason string
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Reason
}

func (e *Error) Unwrap() error { return e.Kind }

func newf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error {
	return newf(ErrValidation, format, args...)
}

func Conflict(format string, args ...any) error {
	return newf(ErrConflict, format, args...)
}

func Forbidden(format string, args ...any) error {
	return newf(ErrForbidden, format, args...)
}

func NotFound(format string, args ...any) error {
	return newf(ErrNotFound, format, args...)
}

func AlreadyProcessed(format string, args ...any) error {
	return newf(ErrAlreadyProcessed, format, args...)
}

func CapacityExceeded(format string, args ...any) error {
	return newf(ErrCapacityExceeded, format, args...)
}

func Unauthenticated(format string, args ...any) error {
	return newf(ErrUnauthenticated, format, args...)
}

// Code returns the machine readable reason for err. Anything outside the
// taxonomy is an internal error.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyProcessed):
		return "already_processed"
	case errors.Is(err, ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	default:
		return "internal_error"
	}
}

// HTTPStatus maps err to the status code returned to API clients.
func HTTPStatus(err error) int {
	switch Code(err) {
	case "validation_error", "already_processed":
		return http.StatusBadRequest
	case "conflict", "capacity_exceeded":
		return http.StatusConflict
	case "forbidden":
		return http.StatusForbidden
	case "not_found":
		return http.StatusNotFound
	case "unauthenticated":
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Message is the text shown to clients. Internal errors are never echoed.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Error()
	}
	if Code(err) != "internal_error" {
		return err.Error()
	}
	return "internal server error"
}
