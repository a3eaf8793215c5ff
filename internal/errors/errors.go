// Package errors provides structured error types for up.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error codes for up operations.
const (
	// Guard evaluation errors
	CodeEvalInputType    = "EVAL_001" // Guard is neither bool nor string
	CodeEvalSyntax       = "EVAL_002" // Malformed guard expression
	CodeEvalUnboundName  = "EVAL_003" // Identifier not in the namespace
	CodeEvalTypeMismatch = "EVAL_004" // Operand type mismatch during evaluation

	// File resolution errors
	CodeFileNotFound = "FILE_001" // Lookup exhausted all search roots

	// Permission spec errors
	CodePermInvalidSpec = "PERM_001" // Malformed symbolic permission clause

	// Duration errors
	CodeDurationInvalid = "TIME_001" // No parsable magnitude in duration string

	// Playbook errors
	CodePlaybookParse   = "PLAY_001" // YAML parse error
	CodePlaybookInvalid = "PLAY_002" // Structurally invalid playbook or task

	// Run lock errors
	CodeRunLocked = "LOCK_001" // Another run holds the playbook lock

	// Config errors
	CodeConfigMissingField = "CONFIG_001" // Missing required field
	CodeConfigInvalidValue = "CONFIG_002" // Invalid value type
)

// UpError is the structured error type for up operations.
type UpError struct {
	Code    string         `json:"code"`              // Error code (e.g., "EVAL_002")
	Message string         `json:"message"`           // Human-readable message
	Details map[string]any `json:"details,omitempty"` // Context (task key, path, etc.)
	Cause   error          `json:"-"`                 // Wrapped error (not serialized)
}

// Error implements the error interface.
func (e *UpError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *UpError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error.
func (e *UpError) WithDetail(key string, value any) *UpError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause wraps an underlying error.
func (e *UpError) WithCause(err error) *UpError {
	e.Cause = err
	return e
}

// MarshalJSON implements json.Marshaler with cause error message.
func (e *UpError) MarshalJSON() ([]byte, error) {
	type alias UpError
	aux := struct {
		*alias
		CauseMsg string `json:"cause,omitempty"`
	}{
		alias: (*alias)(e),
	}
	if e.Cause != nil {
		aux.CauseMsg = e.Cause.Error()
	}
	return json.Marshal(aux)
}

// New creates a new UpError.
func New(code, message string) *UpError {
	return &UpError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new UpError with formatted message.
func Newf(code, format string, args ...any) *UpError {
	return &UpError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with an UpError.
func Wrap(code, message string, err error) *UpError {
	return &UpError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with a formatted UpError.
func Wrapf(code string, err error, format string, args ...any) *UpError {
	return &UpError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// --- Guard evaluation errors ---

// EvalInputType creates an error for a guard of the wrong type.
func EvalInputType(value any) *UpError {
	return Newf(CodeEvalInputType, "guard must be bool or string, got %T", value).
		WithDetail("type", fmt.Sprintf("%T", value))
}

// EvalSyntax creates an error for a malformed guard expression.
func EvalSyntax(expr string, reason string) *UpError {
	return Newf(CodeEvalSyntax, "invalid guard expression %q: %s", expr, reason).
		WithDetail("expression", expr).
		WithDetail("reason", reason)
}

// EvalUnboundName creates an error for an identifier missing from the namespace.
func EvalUnboundName(expr, name string) *UpError {
	return Newf(CodeEvalUnboundName, "undefined variable %q in guard %q", name, expr).
		WithDetail("expression", expr).
		WithDetail("name", name)
}

// EvalTypeMismatch creates an error for incompatible operand types.
func EvalTypeMismatch(expr, reason string) *UpError {
	return Newf(CodeEvalTypeMismatch, "type mismatch in guard %q: %s", expr, reason).
		WithDetail("expression", expr).
		WithDetail("reason", reason)
}

// --- File resolution errors ---

// FileNotFound creates an error for a lookup that exhausted all search roots.
func FileNotFound(name string, roots []string) *UpError {
	return Newf(CodeFileNotFound, "file not found: %s (searched %v)", name, roots).
		WithDetail("name", name).
		WithDetail("roots", roots)
}

// --- Permission spec errors ---

// PermInvalidSpec creates an error for a malformed symbolic permission spec.
func PermInvalidSpec(spec, reason string) *UpError {
	return Newf(CodePermInvalidSpec, "invalid permission spec %q: %s", spec, reason).
		WithDetail("spec", spec).
		WithDetail("reason", reason)
}

// --- Duration errors ---

// DurationInvalid creates an error for a duration string with no magnitude.
func DurationInvalid(text string) *UpError {
	return Newf(CodeDurationInvalid, "no duration found in %q", text).
		WithDetail("text", text)
}

// --- Playbook errors ---

// PlaybookParse creates an error for a YAML parse failure.
func PlaybookParse(path string, err error) *UpError {
	return Wrap(CodePlaybookParse, "failed to parse playbook", err).
		WithDetail("path", path)
}

// PlaybookInvalid creates an error for a structurally invalid playbook.
func PlaybookInvalid(reason string) *UpError {
	return Newf(CodePlaybookInvalid, "invalid playbook: %s", reason).
		WithDetail("reason", reason)
}

// --- Run lock errors ---

// RunLocked creates an error for a playbook already locked by another run.
func RunLocked(path string) *UpError {
	return Newf(CodeRunLocked, "another run holds the lock: %s", path).
		WithDetail("path", path)
}

// --- Config errors ---

// ConfigMissingField creates an error for a missing config field.
func ConfigMissingField(field string) *UpError {
	return Newf(CodeConfigMissingField, "missing required config field: %s", field).
		WithDetail("field", field)
}

// ConfigInvalidValue creates an error for an invalid config value.
func ConfigInvalidValue(field string, value any, reason string) *UpError {
	return Newf(CodeConfigInvalidValue, "invalid config value for %s: %s", field, reason).
		WithDetail("field", field).
		WithDetail("value", value).
		WithDetail("reason", reason)
}

// HasCode checks if an error is an UpError with the given code.
// It handles wrapped errors by unwrapping to find an UpError.
func HasCode(err error, code string) bool {
	var uerr *UpError
	if errors.As(err, &uerr) {
		return uerr.Code == code
	}
	return false
}

// Code returns the error code if err is an UpError, empty string otherwise.
// It handles wrapped errors by unwrapping to find an UpError.
func Code(err error) string {
	var uerr *UpError
	if errors.As(err, &uerr) {
		return uerr.Code
	}
	return ""
}
