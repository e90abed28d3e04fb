package session

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes session errors.
type ErrorCode string

const (
	// ErrCodeClosed indicates the session no longer accepts commands.
	ErrCodeClosed ErrorCode = "SESSION_CLOSED"

	// ErrCodeLoadFailed indicates the facility source returned an error.
	// The session keeps running; pending selections stay pending.
	ErrCodeLoadFailed ErrorCode = "LOAD_FAILED"
)

// Error is a session-level failure.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Session identifies the affected session.
	Session string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Session != "" {
		msg += fmt.Sprintf(" (session=%s)", e.Session)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsClosed returns true if err is a closed-session error.
// Uses errors.As to handle wrapped errors.
func IsClosed(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == ErrCodeClosed
	}
	return false
}

// IsLoadFailed returns true if err is a facility load failure.
func IsLoadFailed(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == ErrCodeLoadFailed
	}
	return false
}

func newClosedError(session string) *Error {
	return &Error{
		Code:    ErrCodeClosed,
		Message: "session is closed",
		Session: session,
	}
}

func newLoadError(session string, err error) *Error {
	return &Error{
		Code:    ErrCodeLoadFailed,
		Message: "facility load failed",
		Session: session,
		Err:     err,
	}
}
