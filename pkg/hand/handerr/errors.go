// Package handerr defines the error taxonomy of the protocol engine.
//
// Every failure mode surfaces as one of the sentinel classes below so
// callers can branch with errors.Is. The structured types carry the
// detail (offending joint, expected lengths) and unwrap to their class.
package handerr

import (
	"errors"
	"fmt"
)

// Error classes. Validation and generation errors are raised before any
// bytes touch the wire; the remaining classes describe link failures.
var (
	// ErrValidation marks bad caller input.
	ErrValidation = errors.New("validation error")

	// ErrGeneration marks an operation unsupported by the current
	// hardware generation.
	ErrGeneration = errors.New("generation error")

	// ErrUnsupportedField marks a register field absent from a
	// generation's catalog.
	ErrUnsupportedField = errors.New("unsupported register field")

	// ErrFraming marks a malformed serial frame (missing header,
	// inconsistent length).
	ErrFraming = errors.New("framing error")

	// ErrChecksum marks a serial frame whose checksum did not match.
	ErrChecksum = errors.New("checksum error")

	// ErrDecode marks a reply whose byte length does not match the
	// expected shape.
	ErrDecode = errors.New("decode error")

	// ErrCommunication marks a transport-level failure: timeout,
	// socket error, unexpected disconnect.
	ErrCommunication = errors.New("communication error")

	// ErrConnection marks an operation attempted while the link is
	// not connected.
	ErrConnection = errors.New("not connected")
)

// ValidationError reports a semantic input violation, naming the
// offending joint index and value where one exists.
type ValidationError struct {
	Field string // register field or parameter name
	Joint int    // offending joint index, -1 when not joint-specific
	Value int32
	Min   int32
	Max   int32
	Msg   string // used when the violation is not a range check
}

func (e *ValidationError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("validation: %s: %s", e.Field, e.Msg)
	}
	return fmt.Sprintf("validation: %s: joint %d value %d out of range [%d, %d]",
		e.Field, e.Joint, e.Value, e.Min, e.Max)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// GenerationError reports an operation that the current hardware
// generation cannot perform.
type GenerationError struct {
	Generation fmt.Stringer
	Field      string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation %s does not support %s", e.Generation, e.Field)
}

func (e *GenerationError) Unwrap() error { return ErrGeneration }

// DecodeError reports a reply byte-length mismatch.
type DecodeError struct {
	Want int
	Got  int
	What string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: want %d bytes, got %d", e.What, e.Want, e.Got)
}

func (e *DecodeError) Unwrap() error { return ErrDecode }

// Framingf wraps ErrFraming with detail.
func Framingf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrFraming, fmt.Sprintf(format, args...))
}

// Checksumf wraps ErrChecksum with detail.
func Checksumf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrChecksum, fmt.Sprintf(format, args...))
}

// Communicationf wraps ErrCommunication with detail. The underlying
// transport error, when present, stays reachable through errors.Is.
func Communicationf(cause error, format string, args ...any) error {
	if cause != nil {
		return fmt.Errorf("%w: %s: %w", ErrCommunication, fmt.Sprintf(format, args...), cause)
	}
	return fmt.Errorf("%w: %s", ErrCommunication, fmt.Sprintf(format, args...))
}
