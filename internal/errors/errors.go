package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors.
//
// TRANSPORT, STATUS and DECODE cover the three ways a fetch against the
// telemetry service can fail. RENDER is raised when the page is missing an
// element the projection needs.
const (
	ErrConfig    = "CONFIG"
	ErrTransport = "TRANSPORT"
	ErrStatus    = "STATUS"
	ErrDecode    = "DECODE"
	ErrRender    = "RENDER"
	ErrStore     = "STORE"
	ErrSSH       = "SSH"
)

// Error represents a structured error with code, message, suggestion, and optional cause.
// Rendered as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message, defaulting to ErrTransport code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrTransport,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Short returns the message and cause on a single line, for places where the
// multi-line form doesn't fit (status bars, log lines).
func (e *Error) Short() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Cause.Error())
	}
	return e.Message
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var sdErr *Error
	if errors.As(err, &sdErr) {
		return sdErr.Code == code
	}
	return false
}

// Short flattens any error to one line. Structured errors use their Short form.
func Short(err error) string {
	if err == nil {
		return ""
	}
	var sdErr *Error
	if errors.As(err, &sdErr) {
		return sdErr.Short()
	}
	return err.Error()
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
