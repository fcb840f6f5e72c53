package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNameTooLong       = errors.New("name too long")
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrStorage           = errors.New("storage failure")
)

// Error carries one of the sentinel kinds above plus a message that is safe
// to show to the caller. Cause, if any, is for logs only.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// StorageError wraps an unexpected repository failure.
func StorageError(op string, cause error) *Error {
	return &Error{Kind: ErrStorage, Message: "failed to " + op, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

// Message returns the caller-facing text of err, or fallback when err
// carries none.
func Message(err error, fallback string) string {
	var de *Error
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	return fallback
}
