package errors

import (
	"fmt"
)

// BuildError is the structured error type for crucible. Every preflight
// failure is one of these: the code identifies the failed check, the message
// names the offending command, path, or configuration value, and the
// suggestion carries remediation guidance when the fix is non-obvious.
type BuildError struct {
	// Code is the unique error code (e.g., "ERR_201_TOOL_NOT_FOUND").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, Tool, Validation, Internal).
	Category Category

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *BuildError) Unwrap() error {
	return e.Cause
}

// Is matches BuildErrors by code, enabling errors.Is() comparisons.
func (e *BuildError) Is(target error) bool {
	if t, ok := target.(*BuildError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *BuildError) WithDetail(key, value string) *BuildError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
// Returns the error for method chaining.
func (e *BuildError) WithSuggestion(suggestion string) *BuildError {
	e.Suggestion = suggestion
	return e
}

// New creates a new BuildError with the given code and message.
// The category is derived from the code.
func New(code string, message string, cause error) *BuildError {
	return &BuildError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Cause:    cause,
	}
}

// Newf creates a new BuildError with a formatted message and no cause.
func Newf(code string, format string, args ...any) *BuildError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Wrap creates a BuildError from an existing error.
// The error's message becomes the BuildError message.
func Wrap(code string, err error) *BuildError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ToolNotFound creates the missing-required-command error. The message names
// the exact command that could not be located on the search path.
func ToolNotFound(cmd string) *BuildError {
	return Newf(ErrCodeToolNotFound, "couldn't find required command: %q", cmd).
		WithDetail("command", cmd)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *BuildError {
	return New(ErrCodeConfigInvalid, message, cause)
}
