package protocol

import "errors"

// Code is a machine-readable protocol error code.
type Code string

const (
	// CodeInvalidFrame means the bytes were not a frame envelope.
	CodeInvalidFrame Code = "INVALID_FRAME"
	// CodeUnknownType means the frame type is not handled in this direction.
	CodeUnknownType Code = "UNKNOWN_TYPE"
	// CodeInvalidPayload means the payload did not match the frame type.
	CodeInvalidPayload Code = "INVALID_PAYLOAD"
	// CodeMissingID means a required participant or room id was absent.
	CodeMissingID Code = "MISSING_ID"
)

// Error is a structured protocol error.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable detail for logs
	Cause   error  // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a protocol error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a protocol error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
