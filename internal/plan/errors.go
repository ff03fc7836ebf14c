package plan

import (
	"errors"
	"fmt"
)

var (
	errEmptyInputs     = errors.New("plan has no inputs")
	errEmptyOperations = errors.New("plan has no operations")
)

// RunError is a custom error type that carries a process exit code. Commands
// in the CLI use this to communicate specific exit codes back to main.go. It
// implements the error interface and supports unwrapping via errors.Is and
// errors.As.
type RunError struct {
	// Code is the process exit code associated with this error.
	Code int

	// Message is a human-readable description of what went wrong.
	Message string

	// Err is the underlying error that caused this RunError, if any.
	Err error
}

// Error returns the formatted error message. If an underlying error is
// present, it is included in the output separated by a colon.
func (e *RunError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As to
// traverse the error chain.
func (e *RunError) Unwrap() error {
	return e.Err
}

// NewInvocationError creates a RunError with ExitError for invocation/input
// errors that must fail the run before any item is processed.
func NewInvocationError(msg string, err error) *RunError {
	return &RunError{Code: int(ExitError), Message: msg, Err: err}
}

// NewPolicyError creates a RunError with ExitPolicy for post-execution
// policy violations.
func NewPolicyError(msg string) *RunError {
	return &RunError{Code: int(ExitPolicy), Message: msg}
}

// NewTransactionalError creates a RunError with ExitTransactional for
// staging/commit failures during the transaction phase.
func NewTransactionalError(msg string, err error) *RunError {
	return &RunError{Code: int(ExitTransactional), Message: msg, Err: err}
}
