package vm

import "errors"

// The error taxonomy of the translator. Every translation failure wraps
// exactly one of these, so callers can classify it with errors.Is. None of
// them is recoverable: a failed run produces no output.
var (
	// ErrMalformedInstruction reports a wrong operand count or type.
	ErrMalformedInstruction = errors.New("malformed instruction")

	// ErrUnknownOpcode reports a mnemonic without a handler.
	ErrUnknownOpcode = errors.New("unknown opcode")

	// ErrTemplateNotFound reports a missing (opcode, addressing) entry in
	// the template table. It points at a configuration defect.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrInvalidSegmentOffset reports an offset outside the range allowed
	// for the segment and the instruction origin.
	ErrInvalidSegmentOffset = errors.New("invalid segment offset")
)
