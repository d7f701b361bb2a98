// Package errors provides structured error types for ckanindex.
//
// Callers of the catalog layer only ever observe two failure shapes: a typed
// not-found error (organization or package) or an absent result. Not-found
// errors carry a machine-readable [Code], a human-readable message naming the
// unresolved identifier and, when available, fuzzy-search suggestions.
//
// # Error Codes
//
//   - ORGANIZATION_NOT_FOUND / PACKAGE_NOT_FOUND: identifier not in the catalog
//   - INVALID_INPUT: rejected user input
//   - NETWORK_ERROR / UPSTREAM_ERROR: surfaced only by the CLI and HTTP API
//   - RESULT_TOO_LARGE: bounded aggregation refused an oversized organization
//
// # Usage
//
//	err := errors.OrganizationNotFound("No organization named %q was found", name)
//	if errors.IsOrganizationNotFound(err) {
//	    fmt.Println("did you mean:", errors.Suggestions(err))
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput Code = "INVALID_INPUT"

	ErrCodeOrganizationNotFound Code = "ORGANIZATION_NOT_FOUND"
	ErrCodePackageNotFound      Code = "PACKAGE_NOT_FOUND"

	ErrCodeNetwork        Code = "NETWORK_ERROR"
	ErrCodeUpstream       Code = "UPSTREAM_ERROR"
	ErrCodeResultTooLarge Code = "RESULT_TOO_LARGE"

	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code        Code     // Machine-readable error code
	Message     string   // Human-readable message
	Suggestions []string // Close catalog names, if any were found
	Cause       error    // Underlying error (optional)
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

// WithSuggestions returns a copy of e carrying the given suggestions.
func (e *Error) WithSuggestions(s []string) *Error {
	c := *e
	c.Suggestions = append([]string(nil), s...)
	return &c
}

// OrganizationNotFound returns an ORGANIZATION_NOT_FOUND error.
func OrganizationNotFound(format string, args ...any) *Error {
	return New(ErrCodeOrganizationNotFound, format, args...)
}

// PackageNotFound returns a PACKAGE_NOT_FOUND error.
func PackageNotFound(format string, args ...any) *Error {
	return New(ErrCodePackageNotFound, format, args...)
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

// IsOrganizationNotFound reports whether err is an ORGANIZATION_NOT_FOUND error.
func IsOrganizationNotFound(err error) bool { return Is(err, ErrCodeOrganizationNotFound) }

// IsPackageNotFound reports whether err is a PACKAGE_NOT_FOUND error.
func IsPackageNotFound(err error) bool { return Is(err, ErrCodePackageNotFound) }

// IsNotFound reports whether err is either not-found error.
func IsNotFound(err error) bool {
	return IsOrganizationNotFound(err) || IsPackageNotFound(err)
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

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Suggestions returns the suggestions attached to err, or nil.
func Suggestions(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.Suggestions
	}
	return nil
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
