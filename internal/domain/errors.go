package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError carries a human-readable message for malformed or
// out-of-range input. The HTTP layer surfaces it as a 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func Validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// statusError pairs a display message with one of the sentinel errors so
// errors.Is still classifies it.
type statusError struct {
	msg  string
	kind error
}

func (e *statusError) Error() string { return e.msg }
func (e *statusError) Unwrap() error { return e.kind }

func Unauthorized(msg string) error { return &statusError{msg, ErrUnauthorized} }
func NotFound(msg string) error     { return &statusError{msg, ErrNotFound} }
func Conflict(msg string) error     { return &statusError{msg, ErrConflict} }
