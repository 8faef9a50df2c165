// Package vm defines the instruction model of the stack VM: opcodes,
// memory segments and validated, immutable instructions.
package vm

import (
	"fmt"
	"strconv"
	"strings"
)

// Origin tells whether an instruction was written by the user or produced
// by the macro expansion of function, call and return.
type Origin int

const (
	FromSource Origin = iota
	Synthesized
)

func (o Origin) String() string {
	if o == Synthesized {
		return "synthesized"
	}
	return "source"
}

// Instruction represents a structured VM instruction
type Instruction struct {
	Opcode   Opcode   // The operation to perform
	Operands []string // Operands as written
	Raw      string   // Raw text, used for comments and diagnostics

	origin  Origin
	segment Segment
	index   int
	symbol  string
	count   int
}

// New builds a source-level instruction from its tokens.
func New(tokens ...string) (Instruction, error) {
	return build(FromSource, tokens)
}

// Parse builds a source-level instruction from a line that has already
// been stripped of comments.
func Parse(line string) (Instruction, error) {
	return New(strings.Fields(line)...)
}

// Push returns a synthesized push. Negative indices are allowed for the
// indirect segments and for pointer.
func Push(seg Segment, index int) Instruction {
	return mustSynthesize(string(OpPush), string(seg), strconv.Itoa(index))
}

// PushSymbol returns a synthesized push of the address of a label.
func PushSymbol(symbol string) Instruction {
	return mustSynthesize(string(OpPush), string(Constant), symbol)
}

// Pop returns a synthesized pop.
func Pop(seg Segment, index int) Instruction {
	return mustSynthesize(string(OpPop), string(seg), strconv.Itoa(index))
}

// Arithmetic returns a synthesized operand-free instruction such as add.
func Arithmetic(op Opcode) Instruction {
	return mustSynthesize(string(op))
}

// Label returns a synthesized label declaration.
func Label(name string) Instruction {
	return mustSynthesize(string(OpLabel), name)
}

// Goto returns a synthesized unconditional jump.
func Goto(name string) Instruction {
	return mustSynthesize(string(OpGoto), name)
}

// GotoIndirect returns the jump through the saved return address.
func GotoIndirect() Instruction {
	return mustSynthesize(string(OpGotoIndirect))
}

func mustSynthesize(tokens ...string) Instruction {
	inst, err := build(Synthesized, tokens)
	if err != nil {
		panic(err)
	}

	return inst
}

func build(origin Origin, tokens []string) (Instruction, error) {
	if len(tokens) == 0 {
		return Instruction{}, fmt.Errorf("%w: empty instruction", ErrMalformedInstruction)
	}

	inst := Instruction{
		Opcode:   Opcode(tokens[0]),
		Operands: append([]string(nil), tokens[1:]...),
		Raw:      strings.Join(tokens, " "),
		origin:   origin,
	}

	if !inst.Opcode.Valid() ||
		(inst.Opcode.Kind() == KindInternal && origin == FromSource) {
		return Instruction{}, fmt.Errorf("%w: %q", ErrUnknownOpcode, tokens[0])
	}

	if want := inst.Opcode.arity(); len(inst.Operands) != want {
		return Instruction{}, fmt.Errorf("%w: %q expects %d operands, got %d",
			ErrMalformedInstruction, inst.Raw, want, len(inst.Operands))
	}

	var err error
	switch inst.Opcode.Kind() {
	case KindMemory:
		err = inst.bindMemory()
	case KindFlow:
		err = inst.bindSymbol(inst.Operands[0])
	case KindProcedure:
		if inst.Opcode != OpReturn {
			err = inst.bindProcedure()
		}
	}

	if err != nil {
		return Instruction{}, err
	}

	return inst, nil
}

func (i *Instruction) bindMemory() error {
	seg, ok := ParseSegment(i.Operands[0])
	if !ok {
		return fmt.Errorf("%w: %q: unknown segment %q",
			ErrMalformedInstruction, i.Raw, i.Operands[0])
	}
	i.segment = seg

	if i.Opcode == OpPop && seg == Constant {
		return fmt.Errorf("%w: %q: cannot pop into constant",
			ErrMalformedInstruction, i.Raw)
	}

	index, err := strconv.Atoi(i.Operands[1])
	if err == nil {
		i.index = index
		return nil
	}

	// Return addresses are pushed as label constants.
	if i.origin == Synthesized && seg == Constant && IsSymbol(i.Operands[1]) {
		i.symbol = i.Operands[1]
		return nil
	}

	return fmt.Errorf("%w: %q: offset %q is not an integer",
		ErrMalformedInstruction, i.Raw, i.Operands[1])
}

func (i *Instruction) bindSymbol(name string) error {
	if !IsSymbol(name) {
		return fmt.Errorf("%w: %q: invalid symbol %q",
			ErrMalformedInstruction, i.Raw, name)
	}
	i.symbol = name

	return nil
}

func (i *Instruction) bindProcedure() error {
	if err := i.bindSymbol(i.Operands[0]); err != nil {
		return err
	}

	count, err := strconv.Atoi(i.Operands[1])
	if err != nil || count < 0 {
		return fmt.Errorf("%w: %q: count %q must be a non-negative integer",
			ErrMalformedInstruction, i.Raw, i.Operands[1])
	}
	i.count = count

	return nil
}

// Origin returns where the instruction came from.
func (i Instruction) Origin() Origin { return i.origin }

// Segment returns the segment of a push or pop.
func (i Instruction) Segment() Segment { return i.segment }

// Index returns the integer offset of a push or pop.
func (i Instruction) Index() int { return i.index }

// Symbol returns the label, function name, or the symbolic constant of a
// synthesized push.
func (i Instruction) Symbol() string { return i.symbol }

// Count returns the local count of function or the argument count of
// call.
func (i Instruction) Count() int { return i.count }

// IsSymbolic reports whether a push constant carries a label instead of a
// number.
func (i Instruction) IsSymbolic() bool {
	return i.Opcode == OpPush && i.symbol != ""
}

// Module returns the prefix of a function name up to its first dot.
func (i Instruction) Module() string {
	name, _, _ := strings.Cut(i.symbol, ".")
	return name
}

func (i Instruction) String() string {
	return i.Raw
}

// IsSymbol reports whether s is a valid assembly symbol: a letter or one
// of _ . $ : followed by letters, digits or the same punctuation.
func IsSymbol(s string) bool {
	if s == "" {
		return false
	}

	for n, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r == '_', r == '.', r == '$', r == ':':
		case r >= '0' && r <= '9' && n > 0:
		default:
			return false
		}
	}

	return true
}
