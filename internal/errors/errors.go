// Package errors provides coded errors for ptool. Codes split failures into
// informational ones, which the user can correct and which are reported as a
// single message, and hard ones, which carry full context.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a failure category for stable handling and testing.
type ErrorCode string

const (
	ErrUnknown  ErrorCode = "UNKNOWN"
	ErrInternal ErrorCode = "INTERNAL"

	// Informational: user-correctable, reported without a stack of context.
	ErrOutputExists     ErrorCode = "OUTPUT_EXISTS"
	ErrTemplateNotFound ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrMissingValues    ErrorCode = "MISSING_VALUES"
	ErrIncompatibleRepo ErrorCode = "INCOMPATIBLE_REPO"

	// Manifest and extension errors
	ErrManifestInvalid  ErrorCode = "MANIFEST_INVALID"
	ErrExtensionInvalid ErrorCode = "EXTENSION_INVALID"

	// Rendering errors
	ErrRender              ErrorCode = "RENDER"
	ErrFilterInvalid       ErrorCode = "FILTER_INVALID"
	ErrUnsupportedProtocol ErrorCode = "UNSUPPORTED_PROTOCOL"
	ErrUnsupportedValue    ErrorCode = "UNSUPPORTED_VALUE"
	ErrKeyNotFound         ErrorCode = "KEY_NOT_FOUND"

	// Generation errors
	ErrPathEscape    ErrorCode = "PATH_ESCAPE"
	ErrCommandFailed ErrorCode = "COMMAND_FAILED"

	// Environment errors
	ErrGit        ErrorCode = "GIT"
	ErrConfigLoad ErrorCode = "CONFIG_LOAD"
)

var informational = map[ErrorCode]bool{
	ErrOutputExists:     true,
	ErrTemplateNotFound: true,
	ErrMissingValues:    true,
	ErrIncompatibleRepo: true,
}

// Error is a structured error with a code and optional details.
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Wrapped)
	}
	return e.Message
}

// Unwrap implements the errors.Unwrap interface.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	var targetErr *Error
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new Error with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps err with a code and message. It returns nil when err is nil.
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	e := New(code, message)
	e.Wrapped = err
	return e
}

// Wrapf wraps err with a code and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WithDetail adds a detail to the error.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// As is errors.As from the standard library.
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is errors.Is from the standard library.
func Is(err, target error) bool { return errors.Is(err, target) }

// IsErrorCode checks if an error has a specific error code.
func IsErrorCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetErrorCode returns the code of the outermost *Error in the chain, or
// ErrUnknown.
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details of the outermost *Error, or nil.
func GetErrorDetails(err error) map[string]interface{} {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}

// IsInformational reports whether err is a user-correctable condition that
// should be shown as a plain message.
func IsInformational(err error) bool {
	return informational[GetErrorCode(err)]
}

// Message returns the message of the outermost *Error without wrapped
// context, falling back to err.Error().
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
