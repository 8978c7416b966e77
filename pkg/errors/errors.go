// Package errors provides structured error types for the namesplit application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and any embedding caller
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes identify the failure class the split pipeline distinguishes:
//   - CONFIG_INVALID: malformed or contradictory configuration, fatal before I/O
//   - IMAGE_READ: unreadable, corrupt, or unsupported input
//   - LIMIT_EXCEEDED: canvas exceeds the configured size limit
//   - RENDER_IO: a write failure while persisting one page
//   - PAGE_RANGE: a requested test page is outside the grid
//
// # Usage
//
//	err := errors.New(errors.ErrCodeConfigInvalid, "grid.rows must be positive, got %d", rows)
//	if errors.Is(err, errors.ErrCodeConfigInvalid) {
//	    // Handle configuration error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeImageRead, origErr, "failed to decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Configuration errors
	ErrCodeConfigInvalid Code = "CONFIG_INVALID"

	// Input errors
	ErrCodeImageRead     Code = "IMAGE_READ"
	ErrCodeLimitExceeded Code = "LIMIT_EXCEEDED"
	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"

	// Render errors
	ErrCodeRenderIO  Code = "RENDER_IO"
	ErrCodePageRange Code = "PAGE_RANGE"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsFatalRender reports whether a per-cell render failure should abort the
// whole job rather than being recorded and skipped. Resource exhaustion is
// the only class treated as fatal; an isolated write failure is not.
func IsFatalRender(err error) bool {
	return Is(err, ErrCodeInternal)
}
