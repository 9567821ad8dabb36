package apperrors

import (
	"errors"
	"fmt"
)

// Code is a stable machine-readable error identifier. Presentation of the
// human-readable message is the caller's responsibility.
type Code string

const (
	CodeUnsupportedCapability Code = "unsupported_capability"
	CodeEngineInit            Code = "engine_init_failed"
	CodeNetwork               Code = "network_error"
	CodeNotAllowed            Code = "not_allowed"
	CodeNoSpeech              Code = "no_speech"
	CodeTimeout               Code = "timeout"
	CodeUnknownEngine         Code = "unknown_engine"
)

// Error is a coded error with an optional cause and a retryability hint.
type Error struct {
	Code      Code
	Message   string
	Retryable bool
	cause     error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches errors by code so callers can compare against sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new coded error
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message, Retryable: defaultRetryable(code)}
}

// Newf creates a new formatted coded error
func Newf(code Code, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap attaches a code and message to an underlying error
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Retryable: defaultRetryable(code), cause: err}
}

// Wrapf attaches a code and formatted message to an underlying error
func Wrapf(err error, code Code, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

func defaultRetryable(code Code) bool {
	switch code {
	case CodeNetwork, CodeNoSpeech:
		return true
	default:
		return false
	}
}

// Sentinels for errors.Is comparisons.
var (
	ErrUnsupportedCapability = New(CodeUnsupportedCapability, "no usable recognition engine for this environment")
	ErrEngineInit            = New(CodeEngineInit, "engine initialization failed")
	ErrNetwork               = New(CodeNetwork, "network error")
	ErrNotAllowed            = New(CodeNotAllowed, "permission denied")
	ErrNoSpeech              = New(CodeNoSpeech, "no speech detected")
	ErrTimeout               = New(CodeTimeout, "operation timed out")
	ErrUnknownEngine         = New(CodeUnknownEngine, "unknown recognition engine")
)

// IsRetryable reports whether err carries a retryable code anywhere in its chain.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}

// CodeOf extracts the code from err, or empty string if it is not a coded error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
