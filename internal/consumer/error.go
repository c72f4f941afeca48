package consumer

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a pipeline failure so the status-mapping policy
// can distinguish "permanently malformed, never retry" from "transient
// downstream outage, should retry".
type ErrorKind int

const (
	// KindPermanent covers failures that redelivery cannot fix,
	// including panics recovered from a handler.
	KindPermanent ErrorKind = iota
	// KindMalformed marks an unparseable or structurally invalid event.
	KindMalformed
	// KindValidation marks an event missing required business fields.
	KindValidation
	// KindTransient marks a downstream collaborator failure worth
	// redelivering.
	KindTransient
)

func (k ErrorKind) String() string {
	switch k {
	case KindMalformed:
		return "malformed"
	case KindValidation:
		return "validation"
	case KindTransient:
		return "transient"
	default:
		return "permanent"
	}
}

// Error is a pipeline failure carrying its kind.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Malformed wraps err as a malformed-event failure.
func Malformed(err error) error { return &Error{Kind: KindMalformed, Err: err} }

// Validation wraps err as a missing-required-fields failure.
func Validation(err error) error { return &Error{Kind: KindValidation, Err: err} }

// Transient wraps err as a retryable downstream failure.
func Transient(err error) error { return &Error{Kind: KindTransient, Err: err} }

// Permanent wraps err as a non-retryable failure.
func Permanent(err error) error { return &Error{Kind: KindPermanent, Err: err} }

// KindOf extracts the error kind; errors without a tag are permanent.
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindPermanent
}
