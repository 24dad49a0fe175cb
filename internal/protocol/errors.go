package protocol

import (
	"errors"
	"fmt"
)

// Failure categories. Match with errors.Is; the concrete error types below
// report themselves as members of exactly one category.
var (
	ErrFormat              = errors.New("protocol: malformed data")
	ErrViolation           = errors.New("protocol: constraint violation")
	ErrUnknownDiscriminant = errors.New("protocol: unknown discriminant")
)

// FormatError reports bytes that do not parse at a named stage, such as
// "frame.id" or "Handshake.server_port".
type FormatError struct {
	Stage string
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("protocol: %s: %v", e.Stage, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Is reports ErrFormat unless the wrapped error already belongs to another
// category, in which case only the stage context is added.
func (e *FormatError) Is(target error) bool {
	if target != ErrFormat {
		return false
	}
	return !errors.Is(e.Err, ErrViolation) && !errors.Is(e.Err, ErrUnknownDiscriminant)
}

// Format wraps err as a FormatError at stage. A nil err stays nil and an
// existing FormatError gains the outer stage as a prefix.
func Format(stage string, err error) error {
	if err == nil {
		return nil
	}
	var fe *FormatError
	if errors.As(err, &fe) {
		return &FormatError{Stage: stage + "." + fe.Stage, Err: fe.Err}
	}
	return &FormatError{Stage: stage, Err: err}
}

// ViolationError reports a peer that declared a value outside a protocol
// bound. Callers should treat it as connection-fatal.
type ViolationError struct {
	Reason   error
	Declared int64
	Bound    int64
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("%v: declared=%d bound=%d", e.Reason, e.Declared, e.Bound)
}

func (e *ViolationError) Unwrap() error { return e.Reason }

func (e *ViolationError) Is(target error) bool { return target == ErrViolation }

// UnknownDiscriminantError reports a tagged-union literal with no
// registered variant.
type UnknownDiscriminantError struct {
	Union string
	Value any
}

func (e *UnknownDiscriminantError) Error() string {
	return fmt.Sprintf("protocol: no discriminant for enum %q matched value %#v", e.Union, e.Value)
}

func (e *UnknownDiscriminantError) Is(target error) bool {
	return target == ErrUnknownDiscriminant
}
