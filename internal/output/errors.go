package output

import (
	"errors"
	"fmt"
)

// Error is a structured error with code, message, and optional hint.
type Error struct {
	Code       string
	Message    string
	Hint       string
	HTTPStatus int
	Stat       string // Provider-reported status for provider_error
	Cause      error
}

func (e *Error) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Hint)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *Error) ExitCode() int {
	return ExitCodeFor(e.Code)
}

// Error constructors for the taxonomy.

func ErrUsage(msg string) *Error {
	return &Error{Code: CodeUsage, Message: msg}
}

func ErrUsageHint(msg, hint string) *Error {
	return &Error{Code: CodeUsage, Message: msg, Hint: hint}
}

// ErrMissingConfigField reports a required key absent from a config section.
func ErrMissingConfigField(section, key string) *Error {
	return &Error{
		Code:    CodeMissingConfig,
		Message: fmt.Sprintf("missing config field %q in section %q", key, section),
		Hint:    "Add the key to your pardot_demo.ini",
	}
}

// ErrMissingSection reports an absent config section.
func ErrMissingSection(section string) *Error {
	return &Error{
		Code:    CodeMissingConfig,
		Message: fmt.Sprintf("missing config section %q", section),
		Hint:    "Add the section to your pardot_demo.ini",
	}
}

// ErrAuthentication reports a failed credential exchange or an
// unauthenticated client.
func ErrAuthentication(msg string, cause error) *Error {
	return &Error{
		Code:    CodeAuth,
		Message: msg,
		Cause:   cause,
	}
}

// ErrCorruptedResponse reports a Pardot envelope missing its status field.
func ErrCorruptedResponse() *Error {
	return &Error{
		Code:    CodeCorrupted,
		Message: "Pardot request failure: corrupted response",
	}
}

// ErrProviderRequest reports a non-ok status from Pardot, carrying the
// reported status string.
func ErrProviderRequest(stat string) *Error {
	return &Error{
		Code:    CodeProvider,
		Message: fmt.Sprintf("Pardot request failure: %s", stat),
		Stat:    stat,
	}
}

func ErrNetwork(cause error) *Error {
	return &Error{
		Code:    CodeNetwork,
		Message: "network error",
		Hint:    cause.Error(),
		Cause:   cause,
	}
}

func ErrAPI(status int, msg string) *Error {
	return &Error{
		Code:       CodeAPI,
		Message:    msg,
		HTTPStatus: status,
	}
}

// AsError attempts to convert an error to an *Error.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{
		Code:    CodeAPI,
		Message: err.Error(),
		Cause:   err,
	}
}
