// Package errors provides structured error types for mindcanvas.
//
// Errors carry a machine-readable [Code] so the CLI, the HTTP API and the
// editor can tell the taxonomy apart:
//   - INVALID_*: rejected input, nothing was changed
//   - UNKNOWN_NODE_TYPE: a serialized node is neither a circle nor a rectangle
//   - UNSUPPORTED: an operation has no definition for the given shapes
//   - NOT_FOUND / ALREADY_EXISTS: store and session lookups
//   - STORAGE / RENDER / INTERNAL: failures of collaborators
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "radius must be positive, got %v", r)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // report and carry on, the tree is untouched
//	}
//
//	err := errors.Wrap(errors.ErrCodeStorage, origErr, "save %s", name)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidName     Code = "INVALID_NAME"
	ErrCodeInvalidColor    Code = "INVALID_COLOR"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidTree     Code = "INVALID_TREE"
	ErrCodeUnknownNodeType Code = "UNKNOWN_NODE_TYPE"

	// Lookup errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeAlreadyExists   Code = "ALREADY_EXISTS"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"
	ErrCodeConflict        Code = "CONFLICT"

	// Collaborator failures
	ErrCodeStorage Code = "STORAGE_ERROR"
	ErrCodeRender  Code = "RENDER_ERROR"

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

// HTTPStatus maps an error to the status code the HTTP API answers with.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidName, ErrCodeInvalidColor,
		ErrCodeInvalidFormat, ErrCodeInvalidTree, ErrCodeUnknownNodeType:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeSessionNotFound:
		return http.StatusNotFound
	case ErrCodeAlreadyExists, ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
