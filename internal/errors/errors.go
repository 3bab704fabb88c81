// Package errors defines the stable error code system for djboot.
package errors

import (
	"errors"
	"fmt"
	"io"
)

// Code is a stable error code string.
type Code string

// Error codes. Stable public contract; wrapper scripts may match on these.
const (
	EUsage Code = "E_USAGE"

	// Input collection error codes
	EEmptyName   Code = "E_EMPTY_NAME"
	EInvalidName Code = "E_INVALID_NAME"
	EDirExists   Code = "E_DIR_EXISTS"

	// Prerequisite error codes
	EPythonNotInstalled Code = "E_PYTHON_NOT_INSTALLED"
	EPythonTooOld       Code = "E_PYTHON_TOO_OLD"
	EVenvUnavailable    Code = "E_VENV_UNAVAILABLE"

	// Provisioning error codes
	ELayoutFailed    Code = "E_LAYOUT_FAILED"
	EVenvFailed      Code = "E_VENV_FAILED"
	EPipFailed       Code = "E_PIP_FAILED"
	EGeneratorFailed Code = "E_GENERATOR_FAILED"
	ESkeletonInvalid Code = "E_SKELETON_INVALID"
	ESettingsFailed  Code = "E_SETTINGS_FAILED"
	EEntryPointDrift Code = "E_ENTRY_POINT_DRIFT"
	EEnvWriteFailed  Code = "E_ENV_WRITE_FAILED"
	EComposeInvalid  Code = "E_COMPOSE_INVALID"
	EArtifactFailed  Code = "E_ARTIFACT_FAILED"
	EFreezeFailed    Code = "E_FREEZE_FAILED"

	// Concurrency/persistence error codes
	ELocked       Code = "E_LOCKED"
	EStoreCorrupt Code = "E_STORE_CORRUPT"

	EInternal Code = "E_INTERNAL"
)

// BootError is the standard error type for djboot errors.
type BootError struct {
	Code    Code
	Msg     string
	Cause   error
	Details map[string]string // optional structured context
}

// Error returns the stable error format: "CODE: message".
func (e *BootError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *BootError) Unwrap() error {
	return e.Cause
}

// New creates a new BootError with the given code and message.
func New(code Code, msg string) error {
	return &BootError{Code: code, Msg: msg}
}

// NewWithDetails creates a new BootError with code, message, and details.
// Details map is defensively copied (nil if empty).
func NewWithDetails(code Code, msg string, details map[string]string) error {
	return &BootError{Code: code, Msg: msg, Details: copyDetails(details)}
}

// Wrap creates a new BootError wrapping an underlying error.
func Wrap(code Code, msg string, err error) error {
	return &BootError{Code: code, Msg: msg, Cause: err}
}

// WrapWithDetails creates a new BootError wrapping an underlying error with details.
// Details map is defensively copied (nil if empty).
func WrapWithDetails(code Code, msg string, err error, details map[string]string) error {
	return &BootError{Code: code, Msg: msg, Cause: err, Details: copyDetails(details)}
}

// GetCode extracts the error code from an error, or empty string if not a BootError.
func GetCode(err error) Code {
	var be *BootError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// AsBootError returns (*BootError, true) if err is or wraps a BootError.
func AsBootError(err error) (*BootError, bool) {
	var be *BootError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// copyDetails returns a defensive copy of the details map, or nil if empty/nil.
func copyDetails(details map[string]string) map[string]string {
	if len(details) == 0 {
		return nil
	}
	cp := make(map[string]string, len(details))
	for k, v := range details {
		cp[k] = v
	}
	return cp
}

// ExitCode returns the appropriate exit code for an error.
// Returns 0 if err is nil, 2 for E_USAGE, 1 for all other errors.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if GetCode(err) == EUsage {
		return 2
	}
	return 1
}

// Print writes the error to w in the stable stderr format:
//
//	error_code: <CODE>
//	<message>
func Print(w io.Writer, err error) {
	if err == nil {
		return
	}
	var be *BootError
	if errors.As(err, &be) {
		fmt.Fprintf(w, "error_code: %s\n", be.Code)
		fmt.Fprintln(w, be.Msg)
	} else {
		// Fallback for non-BootError errors (should not happen in practice)
		fmt.Fprintln(w, err.Error())
	}
}
