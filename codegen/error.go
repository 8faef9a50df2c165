package codegen

import "fmt"

// Error locates a translation failure. Err wraps one of the vm sentinel
// errors.
type Error struct {
	Index int    // Position of the source instruction in the program
	Raw   string // Text of the failing instruction
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("instruction %d (%s): %v", e.Index, e.Raw, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
