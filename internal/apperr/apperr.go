// Package apperr defines the error categories shared by the ordering core,
// the services and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Categories. Callers wrap these with a user-facing message and test with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrBoundary   = errors.New("boundary reached")
	ErrConflict   = errors.New("conflict")
)

// Error carries a message meant for the API client alongside its category.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// NotFound reports a missing record, e.g. NotFound("slide %s", id).
func NotFound(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...) + " not found"}
}

// Validation reports a malformed or missing field.
func Validation(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// Boundary reports a move that would leave the scope.
func Boundary(format string, args ...any) error {
	return &Error{Kind: ErrBoundary, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a uniqueness violation.
func Conflict(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

// Status maps an error to the HTTP status code the API responds with.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation), errors.Is(err, ErrBoundary):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing text for err. Unexpected errors are not
// echoed back since they can carry storage details.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	if Status(err) == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}
