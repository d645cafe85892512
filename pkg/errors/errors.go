// Package errors provides structured error types for the sitebuilder engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI, API and storefront rendering
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow the taxonomy of the document engine:
//   - CORRUPT_GRAPH: structural corruption detected at the save boundary
//   - INVALID_*, UNSUPPORTED_VERSION, EMPTY_CONTENT: unusable input
//   - NOT_FOUND, PAGE_NOT_FOUND: missing resources
//   - NETWORK_*, TIMEOUT: storage collaborator failures
//   - INTERNAL_*: unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeCorruptGraph, "node %q is its own ancestor", id)
//	if errors.Is(err, errors.ErrCodeCorruptGraph) {
//	    // Report to the editor operator, do not persist
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "failed to fetch draft %s", projectID)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Structural corruption of an editor graph (cycles, dangling ids, missing ROOT).
	ErrCodeCorruptGraph Code = "CORRUPT_GRAPH"

	// Input validation errors
	ErrCodeInvalidInput        Code = "INVALID_INPUT"
	ErrCodeInvalidDocument     Code = "INVALID_DOCUMENT"
	ErrCodeInvalidFormat       Code = "INVALID_FORMAT"
	ErrCodeInvalidProjectID    Code = "INVALID_PROJECT_ID"
	ErrCodeUnsupportedVersion  Code = "UNSUPPORTED_VERSION"
	ErrCodeEmptyContent        Code = "EMPTY_CONTENT"
	ErrCodeInvalidRenderOption Code = "INVALID_RENDER_OPTION"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodePageNotFound Code = "PAGE_NOT_FOUND"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

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

// IsStructural reports whether err describes a corrupt editor graph that
// must never be persisted.
func IsStructural(err error) bool {
	return Is(err, ErrCodeCorruptGraph)
}

// IsUnusableContent reports whether err means stored content cannot be
// turned into a document at all (bad JSON, unknown shape, unsupported
// version, empty content). Callers show a "no content" state for these.
func IsUnusableContent(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidFormat, ErrCodeInvalidDocument, ErrCodeUnsupportedVersion, ErrCodeEmptyContent:
		return true
	}
	return false
}
