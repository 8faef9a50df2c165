package vm

// Opcode represents the operation code for an instruction
type Opcode string

const (
	OpAdd Opcode = "add"
	OpSub Opcode = "sub"
	OpNeg Opcode = "neg"
	OpAnd Opcode = "and"
	OpOr  Opcode = "or"
	OpNot Opcode = "not"

	OpEq Opcode = "eq"
	OpGt Opcode = "gt"
	OpLt Opcode = "lt"

	OpPush Opcode = "push"
	OpPop  Opcode = "pop"

	OpLabel  Opcode = "label"
	OpGoto   Opcode = "goto"
	OpIfGoto Opcode = "if-goto"

	OpFunction Opcode = "function"
	OpCall     Opcode = "call"
	OpReturn   Opcode = "return"

	// OpGotoIndirect jumps to the return address saved by the return
	// sequence. It only exists in synthesized code.
	OpGotoIndirect Opcode = "goto-indirect"
)

// Kind groups opcodes that share operand shape and emission rules.
type Kind int

const (
	KindInvalid Kind = iota
	KindBinary
	KindUnary
	KindComparison
	KindMemory
	KindFlow
	KindProcedure
	KindInternal
)

var opcodeKinds = map[Opcode]Kind{
	OpAdd:          KindBinary,
	OpSub:          KindBinary,
	OpAnd:          KindBinary,
	OpOr:           KindBinary,
	OpNeg:          KindUnary,
	OpNot:          KindUnary,
	OpEq:           KindComparison,
	OpGt:           KindComparison,
	OpLt:           KindComparison,
	OpPush:         KindMemory,
	OpPop:          KindMemory,
	OpLabel:        KindFlow,
	OpGoto:         KindFlow,
	OpIfGoto:       KindFlow,
	OpFunction:     KindProcedure,
	OpCall:         KindProcedure,
	OpReturn:       KindProcedure,
	OpGotoIndirect: KindInternal,
}

// Opcodes lists every opcode the instruction model can build, in a fixed
// order.
func Opcodes() []Opcode {
	return []Opcode{
		OpAdd, OpSub, OpNeg, OpAnd, OpOr, OpNot,
		OpEq, OpGt, OpLt,
		OpPush, OpPop,
		OpLabel, OpGoto, OpIfGoto,
		OpFunction, OpCall, OpReturn,
		OpGotoIndirect,
	}
}

// Kind returns the group of the opcode, or KindInvalid.
func (op Opcode) Kind() Kind {
	return opcodeKinds[op]
}

// Valid reports whether the opcode is known.
func (op Opcode) Valid() bool {
	return op.Kind() != KindInvalid
}

// IsComposite reports whether the opcode is expanded into primitive
// instructions before emission.
func (op Opcode) IsComposite() bool {
	return op.Kind() == KindProcedure
}

func (op Opcode) arity() int {
	switch op.Kind() {
	case KindMemory, KindProcedure:
		if op == OpReturn {
			return 0
		}
		return 2
	case KindFlow:
		return 1
	default:
		return 0
	}
}
