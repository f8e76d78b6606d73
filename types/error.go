package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unified error code across the bridge.
type ErrorCode string

// Startup error codes. Failures with these codes are fatal: the process
// cannot serve tools without a session and a loaded document.
const (
	ErrAuthentication ErrorCode = "AUTHENTICATION"
	ErrSpecFetch      ErrorCode = "SPEC_FETCH"
	ErrSpecFormat     ErrorCode = "SPEC_FORMAT"
)

// Invocation error codes. Failures with these codes are reported to the
// caller as a text result and never terminate the process.
const (
	ErrNotInitialized    ErrorCode = "NOT_INITIALIZED"
	ErrOperationNotFound ErrorCode = "OPERATION_NOT_FOUND"
	ErrRemoteCall        ErrorCode = "REMOTE_CALL"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Cause      error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithHTTPStatus sets the HTTP status code reported by the remote service.
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsFatal reports whether an error belongs to the startup phase, after which
// the process cannot usefully continue.
func IsFatal(err error) bool {
	switch GetErrorCode(err) {
	case ErrAuthentication, ErrSpecFetch, ErrSpecFormat:
		return true
	}
	return false
}
