package toolkit

import "fmt"

// Status indicates whether a tool invocation succeeded.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Machine-readable error codes carried in Result.Error.Code.
const (
	// ErrCodeUnknownTool: the requested tool name is not registered.
	// Distinct from validation failure so clients can tell the two apart.
	ErrCodeUnknownTool = "UNKNOWN_TOOL"
	// ErrCodeValidation: arguments failed the schema check; the handler
	// never ran.
	ErrCodeValidation = "VALIDATION"
	// ErrCodeSecurity: sandbox or allowlist rejection.
	ErrCodeSecurity = "SECURITY"
	// ErrCodeNotFound: the target of the operation does not exist.
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeExecution: the underlying command or operation failed.
	ErrCodeExecution = "EXECUTION"
	// ErrCodeIO: a filesystem operation failed.
	ErrCodeIO = "IO"
	// ErrCodeInternal: handler error or panic caught at the dispatch boundary.
	ErrCodeInternal = "INTERNAL"
)

// Error is the structured failure half of a Result.
type Error struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Result is the uniform envelope every tool handler returns: either a
// success payload or a structured error, never both.
type Result struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Success builds a success Result.
func Success(message string, data any) Result {
	return Result{Status: StatusSuccess, Message: message, Data: data}
}

// Errorf builds an error Result with a formatted message.
func Errorf(code, format string, args ...any) Result {
	return Result{
		Status: StatusError,
		Error:  &Error{Code: code, Message: fmt.Sprintf(format, args...)},
	}
}

// ErrorWithDetails builds an error Result carrying extra detail fields.
func ErrorWithDetails(code, message string, details map[string]any) Result {
	return Result{
		Status: StatusError,
		Error:  &Error{Code: code, Message: message, Details: details},
	}
}
