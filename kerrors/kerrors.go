// Package kerrors provides the wrapped-error vocabulary shared by the
// kernel core's packages: a panic capture type for recovered goroutine
// panics, an aggregate for reporting failures from more than one core
// at once, and a thin WrapError helper for causal chains usable with
// errors.Is/errors.As.
package kerrors

import (
	"errors"
	"fmt"
)

// PanicError wraps a panic value recovered from a thread or task
// goroutine. Kernel threads and async tasks both run user-supplied
// closures/futures; a panic there must not take down the whole core,
// so it is captured and reported through the normal error path.
type PanicError struct {
	// Value is the recovered panic value (may be any type, including error).
	Value any
	// Stack is the captured stack trace at the point of recovery, if known.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("kernelcore: panic recovered: %v", e.Value)
}

// Unwrap returns the underlying error if the panic value is an error,
// enabling errors.Is/errors.As through the cause chain.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// AggregateError collects failures from independent goroutines (one
// per core, in boot.Boot) that fail concurrently and must all be
// reported rather than only the first.
type AggregateError struct {
	Errors []error
}

// Error implements the error interface.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("kernelcore: %d errors occurred, first: %v", len(e.Errors), e.Errors[0])
}

// Cause returns the first error in the Errors slice, if any.
func (e *AggregateError) Cause() error {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return nil
}

// Unwrap returns the errors slice for multi-error unwrapping.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// Is reports whether target is an *AggregateError. It does not compare
// target against the wrapped errors; errors.Is reaches those through
// Unwrap.
func (e *AggregateError) Is(target error) bool {
	var aggTarget *AggregateError
	return errors.As(target, &aggTarget)
}

// WrapError wraps cause with a message, preserving it for errors.Is.
func WrapError(message string, cause error) error {
	return fmt.Errorf("%s: %w", message, cause)
}
