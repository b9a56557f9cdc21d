package errors

import (
	"fmt"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// ExitCode is the recommended process exit code for this error.
	ExitCode int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an AppError with the same code. It lets the
// package sentinels work with the standard errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with the exit code derived from code.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		ExitCode: ExitCodeFor(code),
	}
}

// Sentinels for errors.Is. Only the code is compared.
var (
	ErrDuplicateName     = &AppError{Code: ErrCodeDuplicateName}
	ErrDuplicateAction   = &AppError{Code: ErrCodeDuplicateAction}
	ErrUnknownDependency = &AppError{Code: ErrCodeUnknownDependency}
	ErrCycleDetected     = &AppError{Code: ErrCodeCycleDetected}
	ErrInvalidAction     = &AppError{Code: ErrCodeInvalidAction}
	ErrGraphMutation     = &AppError{Code: ErrCodeGraphMutation}
	ErrNotFound          = &AppError{Code: ErrCodeNotFound}
	ErrInvalidOverride   = &AppError{Code: ErrCodeInvalidOverride}
	ErrInvalidInput      = &AppError{Code: ErrCodeInvalidInput}
	ErrInvalidReturnType = &AppError{Code: ErrCodeInvalidReturnType}
	ErrTaskFailed        = &AppError{Code: ErrCodeTaskFailed}
	ErrCanceled          = &AppError{Code: ErrCodeCanceled}
	ErrLoad              = &AppError{Code: ErrCodeLoadError}
	ErrProcessFailed     = &AppError{Code: ErrCodeProcessFailed}
)

// --- Registration ---

// DuplicateName creates an error for a task name that is already registered.
func DuplicateName(name string) *AppError {
	return New(ErrCodeDuplicateName, fmt.Sprintf("Name is already registered: %s", name)).
		WithDetail("task", name)
}

// DuplicateAction creates an error for an action that is already registered
// under another name.
func DuplicateAction(name, registeredAs string) *AppError {
	return New(ErrCodeDuplicateAction, fmt.Sprintf("Action of %s is already registered as %s", name, registeredAs)).
		WithDetails(map[string]any{"task": name, "registered_as": registeredAs})
}

// UnknownDependency creates an error for a depends or extends entry that
// does not reference a registered task. kind is "dependency" or "hook".
func UnknownDependency(name, kind, ref string) *AppError {
	return New(ErrCodeUnknownDependency, fmt.Sprintf("Unregistered %s of %s: %s", kind, name, ref)).
		WithDetails(map[string]any{"task": name, "kind": kind, "ref": ref})
}

// CycleDetected creates an error for an edge that would close a cycle.
func CycleDetected(name, from, to string) *AppError {
	return New(ErrCodeCycleDetected, fmt.Sprintf("Registering %s would create a cycle through %s -> %s", name, from, to)).
		WithDetails(map[string]any{"task": name, "from": from, "to": to})
}

// InvalidAction creates an error for an action that cannot be registered.
func InvalidAction(name, reason string) *AppError {
	return New(ErrCodeInvalidAction, fmt.Sprintf("Invalid action for %s: %s", name, reason)).
		WithDetail("task", name)
}

// GraphMutation creates an error for a registration attempted during a run.
func GraphMutation(name string) *AppError {
	return New(ErrCodeGraphMutation, fmt.Sprintf("Cannot register %s while a run is in progress", name)).
		WithDetail("task", name)
}

// --- Lookup and input ---

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	msg := fmt.Sprintf("No such %s", resource)
	if id != "" {
		msg = fmt.Sprintf("No such %s: %s", resource, id)
	}
	return New(ErrCodeNotFound, msg).WithDetails(details)
}

// InvalidOverride creates an error for a malformed "<task>.<argument>" key.
func InvalidOverride(key string) *AppError {
	return New(ErrCodeInvalidOverride, fmt.Sprintf("Override key must have the form <task>.<argument>: %q", key)).
		WithDetail("key", key)
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return New(ErrCodeInvalidInput, fmt.Sprintf("Invalid input: %s", reason)).WithDetails(details)
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message)
}

// --- Execution ---

// InvalidReturnType creates an error for a task result of an unsupported shape.
func InvalidReturnType(value any) *AppError {
	return New(ErrCodeInvalidReturnType, fmt.Sprintf("Invalid return type: %T", value)).
		WithDetail("type", fmt.Sprintf("%T", value))
}

// TaskFailed wraps an error raised by a task action.
func TaskFailed(name string, cause error) *AppError {
	return New(ErrCodeTaskFailed, fmt.Sprintf("Task %s failed", name)).
		WithDetail("task", name).
		WithCause(cause)
}

// Canceled wraps a context error observed between layers.
func Canceled(cause error) *AppError {
	return New(ErrCodeCanceled, "Run canceled").WithCause(cause)
}

// --- Collaborators ---

// LoadError creates an error for a task file that could not be loaded.
func LoadError(path string, cause error) *AppError {
	return New(ErrCodeLoadError, fmt.Sprintf("Could not load task file: %s", path)).
		WithDetail("path", path).
		WithCause(cause)
}

// ProcessFailed creates an error for a subprocess that exited unsuccessfully.
func ProcessFailed(binary string, exitCode int, cause error) *AppError {
	return New(ErrCodeProcessFailed, fmt.Sprintf("%s exited with code %d", binary, exitCode)).
		WithDetails(map[string]any{"binary": binary, "exit_code": exitCode}).
		WithCause(cause)
}

// Internal creates a new AppError for a broken invariant.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "An unexpected error occurred.").WithCause(cause)
}
