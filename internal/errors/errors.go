// Package errors provides structured error types for chainflow.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error codes for chainflow operations.
const (
	// Config errors: missing or malformed definitions. Fatal before execution.
	CodeConfigFlowNotFound  = "CONFIG_001" // Flow definition not found
	CodeConfigToolNotFound  = "CONFIG_002" // Tool definition not found
	CodeConfigAliasNotFound = "CONFIG_003" // Alias not found in tool
	CodeConfigParseError    = "CONFIG_004" // Malformed definition file
	CodeConfigToolExists    = "CONFIG_005" // Tool already exists (scaffold)

	// Validation errors: structural flow problems. Fatal before execution.
	CodeValidStageNotDefined  = "VALID_001" // Ordered stage missing from stage map
	CodeValidNoTasks          = "VALID_002" // Stage has an empty task list
	CodeValidTaskKind         = "VALID_003" // Zero or multiple task kinds
	CodeValidParallelChained  = "VALID_004" // parallel=true with distribution=chained
	CodeValidSettingNotBool   = "VALID_005" // Non-boolean task setting
	CodeValidVariableMissing  = "VALID_006" // Placeholder with no binding
	CodeValidStdinNotAccepted = "VALID_007" // pipe_input on a tool without stdin support
	CodeValidNoStages         = "VALID_008" // Flow declares no stages or no order
	CodeValidDistribution     = "VALID_009" // Unrecognized distribution mode
)

// Runtime failures (launch errors, non-zero exits, the nesting cap) carry no
// codes: they surface as failed TaskResults, never as errors.

// FlowError is the structured error type for chainflow operations.
type FlowError struct {
	Code    string         `json:"code"`              // Error code (e.g. "VALID_004")
	Message string         `json:"message"`           // Human-readable message
	Details map[string]any `json:"details,omitempty"` // Context (stage, task, tool, ...)
	Cause   error          `json:"-"`                 // Wrapped error (not serialized)
}

// Error implements the error interface.
func (e *FlowError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *FlowError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error.
func (e *FlowError) WithDetail(key string, value any) *FlowError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause wraps an underlying error.
func (e *FlowError) WithCause(err error) *FlowError {
	e.Cause = err
	return e
}

// MarshalJSON implements json.Marshaler with cause error message.
func (e *FlowError) MarshalJSON() ([]byte, error) {
	type alias FlowError
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

// New creates a new FlowError.
func New(code, message string) *FlowError {
	return &FlowError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new FlowError with formatted message.
func Newf(code, format string, args ...any) *FlowError {
	return &FlowError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with a FlowError.
func Wrap(code, message string, err error) *FlowError {
	return &FlowError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with a formatted FlowError.
func Wrapf(code string, err error, format string, args ...any) *FlowError {
	return &FlowError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// --- Config Errors ---

// FlowNotFound creates an error for a missing flow definition.
func FlowNotFound(name string) *FlowError {
	return Newf(CodeConfigFlowNotFound, "flow not found: %s", name).
		WithDetail("flow", name)
}

// ToolNotFound creates an error for a missing tool definition.
func ToolNotFound(name string) *FlowError {
	return Newf(CodeConfigToolNotFound, "tool not found: %s", name).
		WithDetail("tool", name)
}

// AliasNotFound creates an error for an alias missing from a tool.
func AliasNotFound(tool, alias string) *FlowError {
	return Newf(CodeConfigAliasNotFound, "alias %q not found in tool %q", alias, tool).
		WithDetail("tool", tool).
		WithDetail("alias", alias)
}

// ConfigParseError creates an error for a malformed definition file.
func ConfigParseError(path string, err error) *FlowError {
	return Wrapf(CodeConfigParseError, err, "failed to parse %s", path).
		WithDetail("path", path)
}

// ToolExists creates an error for scaffolding over an existing tool.
func ToolExists(name string) *FlowError {
	return Newf(CodeConfigToolExists, "tool %q already exists", name).
		WithDetail("tool", name)
}

// --- Validation Errors ---

// StageNotDefined creates an error for an ordered stage missing from the map.
func StageNotDefined(stage string) *FlowError {
	return Newf(CodeValidStageNotDefined, "stage %q is not defined in stages", stage).
		WithDetail("stage", stage)
}

// StageNoTasks creates an error for a stage with an empty task list.
func StageNoTasks(stage string) *FlowError {
	return Newf(CodeValidNoTasks, "stage %q has no tasks defined", stage).
		WithDetail("stage", stage)
}

// TaskKindInvalid creates an error for a task with zero or multiple kinds.
func TaskKindInvalid(stage string, err error) *FlowError {
	return Wrapf(CodeValidTaskKind, err, "invalid task in stage %q", stage).
		WithDetail("stage", stage)
}

// ParallelChained creates an error for the forbidden parallel+chained combination.
func ParallelChained(stage string) *FlowError {
	return Newf(CodeValidParallelChained,
		"stage %q is parallel with distribution=chained, which is not allowed", stage).
		WithDetail("stage", stage)
}

// SettingNotBool creates an error for a non-boolean task setting.
func SettingNotBool(stage, task string, err error) *FlowError {
	return Wrapf(CodeValidSettingNotBool, err, "task %q in stage %q", task, stage).
		WithDetail("stage", stage).
		WithDetail("task", task)
}

// VariableMissing creates an error for a placeholder with no binding.
func VariableMissing(stage, task, variable string) *FlowError {
	return Newf(CodeValidVariableMissing,
		"variable %q not provided for task %q in stage %q", variable, task, stage).
		WithDetail("stage", stage).
		WithDetail("task", task).
		WithDetail("variable", variable)
}

// StdinNotAccepted creates an error for piping into a tool without stdin support.
func StdinNotAccepted(stage, tool string) *FlowError {
	return Newf(CodeValidStdinNotAccepted,
		"tool %q does not accept stdin, but pipe_input is true in stage %q", tool, stage).
		WithDetail("stage", stage).
		WithDetail("tool", tool)
}

// NoStages creates an error for a flow without stages or execution order.
func NoStages(reason string) *FlowError {
	return New(CodeValidNoStages, reason)
}

// DistributionInvalid creates an error for an unrecognized distribution mode.
func DistributionInvalid(stage, distribution string) *FlowError {
	return Newf(CodeValidDistribution,
		"stage %q has unrecognized distribution %q", stage, distribution).
		WithDetail("stage", stage).
		WithDetail("distribution", distribution)
}

// HasCode checks if an error is a FlowError with the given code.
// It handles wrapped errors by unwrapping to find a FlowError.
func HasCode(err error, code string) bool {
	var ferr *FlowError
	if errors.As(err, &ferr) {
		return ferr.Code == code
	}
	return false
}

// Code returns the error code if err is a FlowError, empty string otherwise.
// It handles wrapped errors by unwrapping to find a FlowError.
func Code(err error) string {
	var ferr *FlowError
	if errors.As(err, &ferr) {
		return ferr.Code
	}
	return ""
}

// IsConfig reports whether err carries a CONFIG_* code.
func IsConfig(err error) bool {
	return hasPrefix(err, "CONFIG_")
}

// IsValidation reports whether err carries a VALID_* code.
func IsValidation(err error) bool {
	return hasPrefix(err, "VALID_")
}

func hasPrefix(err error, prefix string) bool {
	code := Code(err)
	return len(code) >= len(prefix) && code[:len(prefix)] == prefix
}
