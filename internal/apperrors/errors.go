// Package apperrors defines the error taxonomy used across automationd.
//
// Errors fall into two classes. Fatal/startup errors (CONFIG_ERROR,
// DEPENDENCY_CYCLE, INSTANCE_INIT_ERROR) abort the boot sequence and
// propagate all the way to main. Recoverable/steady-state errors
// (OPERATION_ERROR, DISPATCH_ERROR, ENCODING_ERROR) are logged by the
// caller and never stop the process — a failed publish or a malformed
// inbound frame doesn't take down the runtime.
package apperrors

import "fmt"

// AppError is a structured error carrying a machine-readable Code, a
// human-readable Message, and an optional wrapped cause in Details.
type AppError struct {
	// Code is a machine-readable identifier, UPPER_SNAKE_CASE.
	Code string `json:"code"`
	// Message is a human-readable description of the failure.
	Message string `json:"message"`
	// Details carries the wrapped error's message, if any.
	Details string `json:"details,omitempty"`
	// Component names the package or instance that raised the error.
	Component string `json:"component,omitempty"`

	err error
}

func (e *AppError) Error() string {
	if e.Component != "" {
		if e.Details != "" {
			return fmt.Sprintf("%s: %s: %s - %s", e.Code, e.Component, e.Message, e.Details)
		}
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Component, e.Message)
	}
	if e.Details != "" {
		return fmt.Sprintf("%s: %s - %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.err
}

// Error codes, one per taxonomy entry.
const (
	CodeConfigError       = "CONFIG_ERROR"
	CodeDependencyCycle   = "DEPENDENCY_CYCLE"
	CodeInstanceInitError = "INSTANCE_INIT_ERROR"
	CodeOperationError    = "OPERATION_ERROR"
	CodeDispatchError     = "DISPATCH_ERROR"
	CodeEncodingError     = "ENCODING_ERROR"
)

// Fatal reports whether the error belongs to the fatal/startup class,
// i.e. whether main should abort rather than log and continue.
func (e *AppError) Fatal() bool {
	switch e.Code {
	case CodeConfigError, CodeDependencyCycle, CodeInstanceInitError:
		return true
	default:
		return false
	}
}

func wrap(code, component, message string, err error) *AppError {
	a := &AppError{Code: code, Component: component, Message: message, err: err}
	if err != nil {
		a.Details = err.Error()
	}
	return a
}

// Config wraps a configuration-binding failure: a missing plugin_base, a
// schema rejection, a malformed document shape.
func Config(component, message string, err error) *AppError {
	return wrap(CodeConfigError, component, message, err)
}

// DependencyCycle reports that the dependency resolver could not produce a
// topological order because a Predicate cycle exists among Kinds.
func DependencyCycle(component, message string) *AppError {
	return wrap(CodeDependencyCycle, component, message, nil)
}

// InstanceInit wraps a failure from a Handler's OnInit hook during startup.
func InstanceInit(component, message string, err error) *AppError {
	return wrap(CodeInstanceInitError, component, message, err)
}

// Operation wraps a steady-state failure performing a unit of work (a
// transport publish/consume call, a job action). Recoverable.
func Operation(component, message string, err error) *AppError {
	return wrap(CodeOperationError, component, message, err)
}

// Dispatch wraps a failure delivering an Envelope to a matched hook
// callback. Recoverable.
func Dispatch(component, message string, err error) *AppError {
	return wrap(CodeDispatchError, component, message, err)
}

// Encoding wraps an Envelope marshal/unmarshal failure. Recoverable.
func Encoding(component, message string, err error) *AppError {
	return wrap(CodeEncodingError, component, message, err)
}
