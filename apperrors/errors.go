package apperrors

import (
	"errors"
	"fmt"
)

// Error represents an application error
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches by code, so a sentinel compares equal to any copy of it
// carrying a cause.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// With returns a copy of the error carrying a cause. The sentinel
// itself is never mutated.
func (e *Error) With(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Err: err}
}

// New creates a new Error
func New(code, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error types
var (
	ErrNotAuthenticated = New("not_authenticated", "user not logged in", nil)
	ErrInvalidInput     = New("invalid_input", "invalid input", nil)
	ErrNotFound         = New("not_found", "not found", nil)
	ErrTransport        = New("transport", "remote store unreachable", nil)
	ErrIDAllocation     = New("id_allocation", "failed to allocate payment id", nil)
	ErrPaymentFailed    = New("payment_failed", "payment failed", nil)
)
