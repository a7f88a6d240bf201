package model

import (
	"errors"
	"fmt"
)

// Sentinel error kinds shared across layers. Match them with errors.Is.
var (
	// ErrUnknownDomain marks an unrecognized trainer identifier. Callers
	// present the placeholder question instead of failing.
	ErrUnknownDomain = errors.New("unknown domain")
	// ErrGenerationUnavailable marks a failed or empty external lookup.
	ErrGenerationUnavailable = errors.New("question generation unavailable")
	// ErrPersistence marks a ledger read or write failure.
	ErrPersistence = errors.New("persistence failure")
	// ErrValidation marks malformed input, such as a non-integer contract field.
	ErrValidation = errors.New("validation failed")
)

// OpError ties an operation name and an error kind to the underlying cause.
type OpError struct {
	Op   string
	Kind error
	Err  error
}

func (e *OpError) Error() string {
	switch {
	case e.Err == nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	case e.Kind == nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	}
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *OpError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// NewKind returns an error of the given kind raised by op.
func NewKind(op string, kind error) error {
	return &OpError{Op: op, Kind: kind}
}

// WrapKind wraps err with op and kind. A nil err yields nil.
func WrapKind(op string, kind error, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Kind: kind, Err: err}
}
