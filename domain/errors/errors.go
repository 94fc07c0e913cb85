// Package errors provides the typed error layer of the host runtime.
// All types support errors.Is / errors.As unwrapping. Errors that cross the
// guest boundary are reduced to the numeric codes or strings of the wire
// contract; the typed form is for the embedding chain.
package errors

import (
	stdErrors "errors"
	"fmt"
)

// GenericError is an unclassified host failure with an optional backtrace.
type GenericError struct {
	Msg       string
	Backtrace *Backtrace
}

func (e *GenericError) Error() string {
	return e.Msg
}

// Generic creates a GenericError, capturing a backtrace when enabled.
func Generic(format string, args ...any) *GenericError {
	return &GenericError{Msg: fmt.Sprintf(format, args...), Backtrace: Capture(1)}
}

// OutOfGasError aborts an invocation that exceeded its gas limit.
type OutOfGasError struct {
	Descriptor string
	Limit      uint64
	Wanted     uint64
}

func (e *OutOfGasError) Error() string {
	return fmt.Sprintf("out of gas: %s (limit %d, wanted %d)", e.Descriptor, e.Limit, e.Wanted)
}

// AbortError carries the message of a guest-initiated abort (panic in the
// contract with the abort capability enabled).
type AbortError struct {
	Message string
}

func (e *AbortError) Error() string {
	return "contract aborted: " + e.Message
}

// RegionError reports invalid region descriptors or out-of-bounds memory
// access at the guest boundary. Always fatal for the invocation.
type RegionError struct {
	Op  string
	Msg string
}

func (e *RegionError) Error() string {
	return fmt.Sprintf("region %s: %s", e.Op, e.Msg)
}

// FeatureError reports use of a capability outside the enabled feature set.
type FeatureError struct {
	Feature string
	Subject string
}

func (e *FeatureError) Error() string {
	return fmt.Sprintf("%s requires feature %q which is not enabled", e.Subject, e.Feature)
}

// SizeLimitError reports a payload exceeding a boundary limit.
type SizeLimitError struct {
	Subject string
	Size    int
	Limit   int
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("%s too large: %d bytes exceeds limit of %d", e.Subject, e.Size, e.Limit)
}

// IsOutOfGas reports whether err wraps an OutOfGasError.
func IsOutOfGas(err error) bool {
	var oog *OutOfGasError
	return stdErrors.As(err, &oog)
}

// IsAbort extracts an AbortError if err wraps one.
func IsAbort(err error) (*AbortError, bool) {
	var abort *AbortError
	if stdErrors.As(err, &abort) {
		return abort, true
	}
	return nil, false
}
