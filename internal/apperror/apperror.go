// Package apperror defines the error taxonomy shared by services and the
// HTTP boundary.
package apperror

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindAuth
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuth:
		return "auth"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error carries a kind, a machine-readable code and a client-safe message.
// Err holds the underlying cause and is never shown to clients.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Wrap(err error, kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

func Validation(code, message string) *Error { return New(KindValidation, code, message) }
func NotFound(code, message string) *Error   { return New(KindNotFound, code, message) }
func Auth(code, message string) *Error       { return New(KindAuth, code, message) }
func Conflict(code, message string) *Error   { return New(KindConflict, code, message) }

// Internal wraps a dependency failure.
func Internal(err error, code, message string) *Error {
	return Wrap(err, KindInternal, code, message)
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf reports the kind of err. Errors outside the taxonomy are internal.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}
