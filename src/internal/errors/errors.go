// Package errors provides domain-specific error types for listgen.
//
// Every failure that can reach the run summary carries an error code, so callers
// can decide whether the failure is fatal for a source, a list, or the whole run
// without string matching.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a category of error that can occur in the application.
type ErrorCode string

const (
	// ErrCodeConfig indicates that the list configuration could not be loaded or validated.
	ErrCodeConfig ErrorCode = "CONFIG_ERROR"

	// ErrCodeFetch indicates a network, timeout or HTTP status failure while retrieving a source.
	ErrCodeFetch ErrorCode = "FETCH_ERROR"

	// ErrCodeDecompression indicates that a payload did not match its declared compression.
	ErrCodeDecompression ErrorCode = "DECOMPRESSION_ERROR"

	// ErrCodeParse indicates a malformed payload (container level) or a malformed entry.
	ErrCodeParse ErrorCode = "PARSE_ERROR"

	// ErrCodeValidation indicates an entry that is not a valid IP address or CIDR.
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"

	// ErrCodeIO indicates that an output file could not be written.
	ErrCodeIO ErrorCode = "IO_ERROR"

	// ErrCodeListFailed indicates that one or more lists failed during a run.
	ErrCodeListFailed ErrorCode = "LIST_FAILED"

	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Error represents a domain-specific error with an error code and optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error for errors.Is and errors.As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a new domain error with the specified code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf returns the code of the outermost *Error in err's chain,
// or an empty code if there is none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

// HasCode reports whether any error in err's chain carries the given code.
func HasCode(err error, code ErrorCode) bool {
	return stderrors.Is(err, &Error{Code: code})
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string, cause error) *Error {
	return Wrap(ErrCodeConfig, message, cause)
}

// NewFetchError creates a new source retrieval error.
func NewFetchError(message string, cause error) *Error {
	return Wrap(ErrCodeFetch, message, cause)
}

// NewDecompressionError creates a new decompression error.
func NewDecompressionError(message string, cause error) *Error {
	return Wrap(ErrCodeDecompression, message, cause)
}

// NewParseError creates a new parse error.
func NewParseError(message string, cause error) *Error {
	return Wrap(ErrCodeParse, message, cause)
}

// NewValidationError creates a new validation error.
func NewValidationError(message string, cause error) *Error {
	return Wrap(ErrCodeValidation, message, cause)
}

// NewIOError creates a new output write error.
func NewIOError(message string, cause error) *Error {
	return Wrap(ErrCodeIO, message, cause)
}

// NewListFailedError creates an error reporting failed lists.
func NewListFailedError(message string, cause error) *Error {
	return Wrap(ErrCodeListFailed, message, cause)
}

// NewInternalError creates a new internal error.
func NewInternalError(message string, cause error) *Error {
	return Wrap(ErrCodeInternal, message, cause)
}
