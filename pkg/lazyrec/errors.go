package lazyrec

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors.
var (
	// ErrCycle indicates a compute function re-entered its own field
	// while the cycle guard was enabled.
	ErrCycle = errors.New("field computation cycle detected")
)

// ComputeError wraps a compute function failure with field context.
// It is returned by Get when a specification compute function fails;
// the failure is never memoized, so a subsequent Get re-invokes the
// function.
type ComputeError struct {
	// Field is the field whose compute function failed.
	Field string
	// RecordID is the identifier of the record being computed.
	RecordID string
	// Err is the underlying error from the compute function.
	Err error
}

// Error implements the error interface.
func (e *ComputeError) Error() string {
	return fmt.Sprintf("compute field %s: %v", e.Field, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ComputeError) Unwrap() error {
	return e.Err
}

// CycleError reports a cyclic field dependency caught by the cycle
// guard. Path lists the in-flight fields from the outermost Get down
// to the re-entered field.
type CycleError struct {
	// Field is the field that was re-entered.
	Field string
	// Path is the chain of in-flight computations, outermost first.
	Path []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("field %s depends on itself (%s)", e.Field, strings.Join(e.Path, " -> "))
}

// Unwrap returns ErrCycle for errors.Is support.
func (e *CycleError) Unwrap() error {
	return ErrCycle
}
