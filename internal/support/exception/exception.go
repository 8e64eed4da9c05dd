// Package exception provides the error type used to classify failures inside
// the ingestion pipeline. Every error crossing a component boundary is wrapped
// in a PipelineError carrying the component name and a retryable flag, so the
// poll loop can decide whether a source is worth retrying on the next cycle.
package exception

import (
	"errors"
	"fmt"
	"strings"
)

// PipelineError is a custom error type raised during pipeline processing.
// It holds the component where the error occurred, a message, the wrapped
// original error, and a flag indicating whether the condition is transient.
type PipelineError struct {
	// Component indicates where the error occurred (e.g. "source", "sink",
	// "progress", "delivery").
	Component string
	// Message is a concise description of the error.
	Message string
	// Cause is the wrapped original error, if any.
	Cause error
	// retryable indicates whether a later cycle may succeed without operator
	// intervention (network hiccups, transient storage errors).
	retryable bool
}

// New creates a new PipelineError.
func New(component, message string, cause error, retryable bool) *PipelineError {
	return &PipelineError{
		Component: component,
		Message:   message,
		Cause:     cause,
		retryable: retryable,
	}
}

// Newf creates a new non-retryable PipelineError with a formatted message.
// If the final argument is an error it is extracted as the cause.
func Newf(component, format string, a ...interface{}) *PipelineError {
	var cause error
	if len(a) > 0 {
		if err, ok := a[len(a)-1].(error); ok {
			cause = err
			a = a[:len(a)-1]
		}
	}
	return &PipelineError{
		Component: component,
		Message:   fmt.Sprintf(format, a...),
		Cause:     cause,
	}
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Component, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Component, e.Message)
}

// Unwrap returns the wrapped cause for errors.Is / errors.As.
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns whether this error is expected to clear on a later cycle.
func (e *PipelineError) IsRetryable() bool {
	return e.retryable
}

// IsTemporary reports whether an error should be treated as transient.
// A PipelineError's retryable flag takes precedence; otherwise a few common
// transport failure signatures are recognized.
func IsTemporary(err error) bool {
	if err == nil {
		return false
	}
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.IsRetryable()
	}
	errStr := err.Error()
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset")
}
