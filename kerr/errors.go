// Package kerr defines the kernel's error taxonomy: a small set of wrapped
// error types distinguishing programmer-error invariant violations (fatal),
// resource exhaustion (recoverable), and boot-time configuration errors
// (fatal at startup), each supporting errors.Is/errors.As through a cause
// chain.
package kerr

import (
	"errors"
	"fmt"
)

// Fault represents a programmer-error invariant violation: a magic-word
// mismatch, a call to a blocking primitive from ISR context, a status field
// in the wrong state on entry to a primitive, or interrupts enabled when they
// must be disabled. Every Fault is paired with a panic at the call site; it
// is never handled, only reported on the way down.
type Fault struct {
	Cause   error
	Message string
}

func (e *Fault) Error() string {
	if e.Message == "" {
		return "kernel: invariant violation"
	}
	return e.Message
}

// Unwrap returns the underlying cause for use with errors.Is and errors.As.
func (e *Fault) Unwrap() error {
	return e.Cause
}

// NewFault constructs a Fault, optionally wrapping cause.
func NewFault(message string, cause error) *Fault {
	return &Fault{Cause: cause, Message: message}
}

// Exhausted represents recoverable resource exhaustion, such as a failed TCB
// page allocation. Callers decide policy; it is never fatal at the core
// level.
type Exhausted struct {
	Cause   error
	Message string
}

func (e *Exhausted) Error() string {
	if e.Message == "" {
		return "kernel: resource exhausted"
	}
	return e.Message
}

// Unwrap returns the underlying cause for use with errors.Is and errors.As.
func (e *Exhausted) Unwrap() error {
	return e.Cause
}

// NewExhausted constructs an Exhausted, optionally wrapping cause.
func NewExhausted(message string, cause error) *Exhausted {
	return &Exhausted{Cause: cause, Message: message}
}

// BootError represents a fatal boot-time configuration problem: an unknown
// command-line option, or a missing action argument.
type BootError struct {
	Cause   error
	Message string
}

func (e *BootError) Error() string {
	if e.Message == "" {
		return "kernel: boot configuration error"
	}
	return e.Message
}

// Unwrap returns the underlying cause for use with errors.Is and errors.As.
func (e *BootError) Unwrap() error {
	return e.Cause
}

// NewBootError constructs a BootError, optionally wrapping cause.
func NewBootError(message string, cause error) *BootError {
	return &BootError{Cause: cause, Message: message}
}

// Wrap wraps err with a message, preserving the chain for errors.Is/errors.As.
func Wrap(message string, err error) error {
	return fmt.Errorf("%s: %w", message, err)
}

// IsFault reports whether err's chain contains a *Fault.
func IsFault(err error) bool {
	var f *Fault
	return errors.As(err, &f)
}

// IsExhausted reports whether err's chain contains an *Exhausted.
func IsExhausted(err error) bool {
	var e *Exhausted
	return errors.As(err, &e)
}
