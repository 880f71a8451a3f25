// Package saqerrors provides the structured error type used for every
// construction-time failure in the estimation core (see spec §7). Hot-path
// functions never return errors; only constructors and Prepare calls do.
package saqerrors

import "fmt"

// Kind enumerates the construction-time failure categories from spec §7.
type Kind string

const (
	// KindConfigMismatch fires when the quantizer config's distance type
	// conflicts with the searcher config's, or fast-scan is required but the
	// quantizer data isn't laid out for it (or vice versa).
	KindConfigMismatch Kind = "config_mismatch"
	// KindQuantizeOutOfRange fires when num_bits exceeds saq.KMaxQuantizeBits.
	KindQuantizeOutOfRange Kind = "quantize_out_of_range"
	// KindNotImplemented fires for the IP path of the single-cluster estimator.
	KindNotImplemented Kind = "not_implemented"
	// KindAllocationError fires when the aligned allocator can't satisfy a request.
	KindAllocationError Kind = "allocation_error"
	// KindPreconditionViolated names a CompAccurateDist call without a
	// preceding CompFastDist on the same block. CompAccurateDist does not
	// return errors, so no code path in this module produces this kind.
	KindPreconditionViolated Kind = "precondition_violated"
)

// Error is a structured error carrying a failure Kind, the operation that
// raised it, and an optional wrapped cause.
type Error struct {
	Kind      Kind
	Operation string
	Message   string
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", e.Kind, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Operation, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error with no wrapped cause.
func New(kind Kind, operation, message string) *Error {
	return &Error{Kind: kind, Operation: operation, Message: message}
}

// Wrap builds an Error around an existing cause.
func Wrap(err error, kind Kind, operation, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Operation: operation, Message: message, Cause: err}
}

// Is reports whether err is a *Error of the given kind, unwrapping as needed.
func Is(err error, kind Kind) bool {
	for err != nil {
		if se, ok := err.(*Error); ok {
			if se.Kind == kind {
				return true
			}
			err = se.Cause
			continue
		}
		break
	}
	return false
}
