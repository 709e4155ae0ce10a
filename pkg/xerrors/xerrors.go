// Package xerrors defines the error taxonomy shared across the module:
// sentinel errors callers match with errors.Is, and DecodeError, which
// pins a malformed persisted index to the decode stage that rejected it.
package xerrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks a referenced file (dataset or index) that does
	// not exist. Surfaced to the caller, never retried.
	ErrNotFound = errors.New("not found")

	// ErrDecode marks a persisted index that could not be decoded. Every
	// *DecodeError matches it.
	ErrDecode = errors.New("malformed index data")

	// ErrEncodingViolation marks a value that does not fit the fixed
	// binary layout, detected at encode time rather than truncated.
	ErrEncodingViolation = errors.New("encoding violation")
)

// DecodeStage identifies which part of the decode pipeline rejected the
// input.
type DecodeStage string

const (
	// StageHeaderLength: the stream is too short to hold the declared
	// lengths (fewer than 4 bytes, or fewer than 4+H bytes).
	StageHeaderLength DecodeStage = "header-length"
	// StageHeaderParse: the metadata header is not a well-formed
	// term-to-count object.
	StageHeaderParse DecodeStage = "header-parse"
	// StagePayloadLength: the payload byte count disagrees with the sum
	// of the declared counts.
	StagePayloadLength DecodeStage = "payload-length"
	// StagePayloadParse: the payload decoded but the reconstructed
	// posting lists violate the index invariant.
	StagePayloadParse DecodeStage = "payload-parse"
	// StageBodyParse: the text format's single structured object is
	// malformed (the text codec has no header/payload split).
	StageBodyParse DecodeStage = "body-parse"
)

// DecodeError wraps the cause of a failed index decode with the format
// name and the stage that failed.
type DecodeError struct {
	Format string
	Stage  DecodeStage
	Err    error
}

// NewDecodeError builds a DecodeError for the given codec format.
func NewDecodeError(format string, stage DecodeStage, err error) *DecodeError {
	return &DecodeError{Format: format, Stage: stage, Err: err}
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s index (%s): %v", e.Format, e.Stage, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *DecodeError) Unwrap() error { return e.Err }

// Is makes every DecodeError match the ErrDecode sentinel.
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }
