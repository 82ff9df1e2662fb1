// Package errors provides the shared error type used across jig. Every error
// carries a Kind that decides the process exit code, so the commit-msg hook and
// the CLI report failures the same way.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind represents the category of an error, which determines the CLI exit code.
type Kind int

const (
	// KindGeneral represents a general error that doesn't fit other categories.
	// CLI exit code: 1
	KindGeneral Kind = iota

	// KindInvalidArgs represents invalid input arguments.
	// CLI exit code: 2
	KindInvalidArgs

	// KindUsageConflict represents mutually exclusive options used together.
	// CLI exit code: 2
	KindUsageConflict

	// KindNotFound represents a missing resource.
	// CLI exit code: 3
	KindNotFound

	// KindBranchState represents a repository whose current branch cannot be
	// determined.
	// CLI exit code: 4
	KindBranchState

	// KindInternal represents an internal error (cache, filesystem, git).
	// CLI exit code: 5
	KindInternal

	// KindRemote represents a failed call to the Jira API.
	// CLI exit code: 6
	KindRemote

	// KindMalformedKey represents text that contains no issue key.
	// CLI exit code: 7
	KindMalformedKey

	// KindKeyMismatch represents a commit message whose issue key differs from
	// the branch's.
	// CLI exit code: 8
	KindKeyMismatch

	// KindMissingKey represents a branch without an issue key.
	// CLI exit code: 9
	KindMissingKey

	// KindConformanceViolation represents a corrected commit message that still
	// fails the final format check.
	// CLI exit code: 10
	KindConformanceViolation
)

// String returns a human-readable name for the error kind.
func (k Kind) String() string {
	switch k {
	case KindGeneral:
		return "General"
	case KindInvalidArgs:
		return "InvalidArgs"
	case KindUsageConflict:
		return "UsageConflict"
	case KindNotFound:
		return "NotFound"
	case KindBranchState:
		return "BranchState"
	case KindInternal:
		return "Internal"
	case KindRemote:
		return "Remote"
	case KindMalformedKey:
		return "MalformedKey"
	case KindKeyMismatch:
		return "KeyMismatch"
	case KindMissingKey:
		return "MissingKey"
	case KindConformanceViolation:
		return "ConformanceViolation"
	default:
		return "Unknown"
	}
}

// Error represents a structured error with kind, message, cause, and optional details.
type Error struct {
	Kind       Kind
	Message    string
	Cause      error
	Details    map[string]interface{}
	Suggestion string // Optional suggestion for resolving the error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// CLIExitCode returns the appropriate CLI exit code for this error.
func (e *Error) CLIExitCode() int {
	switch e.Kind {
	case KindInvalidArgs, KindUsageConflict:
		return 2
	case KindNotFound:
		return 3
	case KindBranchState:
		return 4
	case KindInternal:
		return 5
	case KindRemote:
		return 6
	case KindMalformedKey:
		return 7
	case KindKeyMismatch:
		return 8
	case KindMissingKey:
		return 9
	case KindConformanceViolation:
		return 10
	default:
		return 1
	}
}

// WithDetails adds details to the error and returns it for chaining.
func (e *Error) WithDetails(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds a suggestion to the error and returns it for chaining.
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestion = suggestion
	return e
}

// WithCause attaches an underlying error and returns it for chaining.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// Constructor functions

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// General creates a general error.
func General(format string, args ...interface{}) *Error {
	return newf(KindGeneral, format, args...)
}

// InvalidArgs creates an error for invalid arguments.
func InvalidArgs(format string, args ...interface{}) *Error {
	return newf(KindInvalidArgs, format, args...)
}

// UsageConflict creates an error for mutually exclusive options.
func UsageConflict(format string, args ...interface{}) *Error {
	return newf(KindUsageConflict, format, args...)
}

// NotFound creates an error for missing resources.
func NotFound(format string, args ...interface{}) *Error {
	return newf(KindNotFound, format, args...)
}

// BranchState creates an error for an undeterminable current branch.
func BranchState(format string, args ...interface{}) *Error {
	return newf(KindBranchState, format, args...)
}

// Internal creates an error for internal failures.
func Internal(format string, args ...interface{}) *Error {
	return newf(KindInternal, format, args...)
}

// Remote creates an error for failed Jira calls.
func Remote(format string, args ...interface{}) *Error {
	return newf(KindRemote, format, args...)
}

// MalformedKey creates an error for text without an issue key.
func MalformedKey(format string, args ...interface{}) *Error {
	return newf(KindMalformedKey, format, args...)
}

// KeyMismatch creates an error for a commit message naming another issue.
func KeyMismatch(format string, args ...interface{}) *Error {
	return newf(KindKeyMismatch, format, args...)
}

// MissingKey creates an error for a branch without an issue key.
func MissingKey(format string, args ...interface{}) *Error {
	return newf(KindMissingKey, format, args...)
}

// ConformanceViolation creates an error for a message failing the final check.
func ConformanceViolation(format string, args ...interface{}) *Error {
	return newf(KindConformanceViolation, format, args...)
}

// Wrap wraps an existing error with a specific kind and message.
func Wrap(err error, kind Kind, format string, args ...interface{}) *Error {
	e := newf(kind, format, args...)
	e.Cause = err
	return e
}

// WrapInternal wraps an error as an internal error.
func WrapInternal(err error, format string, args ...interface{}) *Error {
	return Wrap(err, KindInternal, format, args...)
}

// KindFromHTTPStatus maps a Jira response status to an error kind.
func KindFromHTTPStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest:
		return KindInvalidArgs
	case http.StatusNotFound:
		return KindNotFound
	default:
		return KindRemote
	}
}

// Helper functions for extracting error information

// GetKind extracts the Kind from an error chain, returning KindGeneral if no
// *Error is found.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindGeneral
}

// GetCLIExitCode extracts the CLI exit code from an error chain.
func GetCLIExitCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.CLIExitCode()
	}
	return 1 // General error
}

// Is returns true if the error chain holds an *Error of the specified kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
