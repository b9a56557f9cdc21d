package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Registration errors. They fail the registering call and leave the graph
// in its prior state.
const (
	// ErrCodeDuplicateName indicates a task name is already registered.
	ErrCodeDuplicateName ErrorCode = "DUPLICATE_NAME"
	// ErrCodeDuplicateAction indicates a task action is already registered.
	ErrCodeDuplicateAction ErrorCode = "DUPLICATE_ACTION"
	// ErrCodeUnknownDependency indicates a depends/extends entry references an unregistered task.
	ErrCodeUnknownDependency ErrorCode = "UNKNOWN_DEPENDENCY"
	// ErrCodeCycleDetected indicates an edge would close a cycle.
	ErrCodeCycleDetected ErrorCode = "CYCLE_DETECTED"
	// ErrCodeInvalidAction indicates the action is nil or cannot serve as a lookup key.
	ErrCodeInvalidAction ErrorCode = "INVALID_ACTION"
	// ErrCodeGraphMutation indicates a registration was attempted while a run holds the graph.
	ErrCodeGraphMutation ErrorCode = "GRAPH_MUTATION_DURING_RUN"
)

// Lookup and input errors
const (
	// ErrCodeNotFound indicates the requested task or executable was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInvalidOverride indicates a parameter override key is malformed.
	ErrCodeInvalidOverride ErrorCode = "INVALID_OVERRIDE"
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Execution errors
const (
	// ErrCodeInvalidReturnType indicates a task returned an unsupported shape.
	ErrCodeInvalidReturnType ErrorCode = "INVALID_RETURN_TYPE"
	// ErrCodeTaskFailed indicates a task action returned an error or panicked.
	ErrCodeTaskFailed ErrorCode = "TASK_FAILED"
	// ErrCodeCanceled indicates the run was canceled between layers.
	ErrCodeCanceled ErrorCode = "CANCELED"
)

// Collaborator errors
const (
	// ErrCodeLoadError indicates a task file could not be found or evaluated.
	ErrCodeLoadError ErrorCode = "LOAD_ERROR"
	// ErrCodeProcessFailed indicates a subprocess exited unsuccessfully.
	ErrCodeProcessFailed ErrorCode = "PROCESS_FAILED"
	// ErrCodeInternal indicates a broken engine invariant.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Exit codes used by the command line front end.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitUsage    = 2
	ExitLoad     = 3
	ExitCanceled = 130
)

var exitCodes = map[ErrorCode]int{
	ErrCodeDuplicateName:     ExitLoad,
	ErrCodeDuplicateAction:   ExitLoad,
	ErrCodeUnknownDependency: ExitLoad,
	ErrCodeCycleDetected:     ExitLoad,
	ErrCodeInvalidAction:     ExitLoad,
	ErrCodeLoadError:         ExitLoad,
	ErrCodeNotFound:          ExitUsage,
	ErrCodeInvalidOverride:   ExitUsage,
	ErrCodeInvalidInput:      ExitUsage,
	ErrCodeCanceled:          ExitCanceled,
}

// ExitCodeFor returns the process exit code associated with an error code.
func ExitCodeFor(code ErrorCode) int {
	if c, ok := exitCodes[code]; ok {
		return c
	}
	return ExitFailure
}
