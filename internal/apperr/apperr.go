// Package apperr defines the error kinds surfaced to callers of the analyzer
// tools. Every kind is recoverable; the tool boundary turns each one into a
// failure envelope carrying Error().
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an Error.
type Kind string

const (
	NotInstalled       Kind = "NOT_INSTALLED"
	InvalidProjectPath Kind = "INVALID_PROJECT_PATH"
	ExecutionFailed    Kind = "EXECUTION_FAILED"
	Timeout            Kind = "TIMEOUT"
	ParsingFailed      Kind = "PARSING_FAILED"
	InvalidVersion     Kind = "INVALID_VERSION"
	InvalidFilter      Kind = "INVALID_FILTER"
	InvalidArguments   Kind = "INVALID_ARGUMENTS"
	MissingParameter   Kind = "MISSING_PARAMETER"
	UnknownTool        Kind = "UNKNOWN_TOOL"
)

// InstallHint is appended to NotInstalled messages.
const InstallHint = "brew install peripheryapp/periphery/periphery"

// Error is a classified failure with an optional human-readable detail.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	switch e.Kind {
	case NotInstalled:
		return "Periphery is not installed. Install it using: " + InstallHint
	case InvalidProjectPath:
		return "Invalid project path: " + e.Detail
	case ExecutionFailed:
		return "Periphery execution failed: " + e.Detail
	case ParsingFailed:
		return "Failed to parse output: " + e.Detail
	case Timeout:
		return "Scan timed out after the configured timeout period"
	case InvalidVersion:
		return "Invalid or unsupported Periphery version: " + e.Detail
	case InvalidFilter:
		return "Invalid filter expression: " + e.Detail
	case InvalidArguments:
		return "Invalid arguments: " + e.Detail
	case MissingParameter:
		return "Missing required parameter: " + e.Detail
	case UnknownTool:
		return "Unknown tool: " + e.Detail
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Is matches any *Error of the same kind, so errors.Is(err, apperr.New(Timeout, ""))
// and errors.Is(err, apperr.ErrTimeout) both work regardless of detail.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// New returns an *Error of the given kind.
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Newf formats detail with fmt.Sprintf.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Sentinels for errors.Is comparisons.
var (
	ErrNotInstalled       = New(NotInstalled, "")
	ErrInvalidProjectPath = New(InvalidProjectPath, "")
	ErrExecutionFailed    = New(ExecutionFailed, "")
	ErrTimeout            = New(Timeout, "")
	ErrParsingFailed      = New(ParsingFailed, "")
	ErrInvalidVersion     = New(InvalidVersion, "")
	ErrInvalidFilter      = New(InvalidFilter, "")
	ErrInvalidArguments   = New(InvalidArguments, "")
	ErrMissingParameter   = New(MissingParameter, "")
	ErrUnknownTool        = New(UnknownTool, "")
)

// KindOf reports the kind of err when it is (or wraps) an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
