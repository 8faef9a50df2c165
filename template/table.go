// Package template maps (opcode, addressing) keys to typed emitters that
// render Hack assembly.
package template

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sarchlab/vmtrans/vm"
)

var (
	// ErrDuplicateKey is returned when two entries share a lookup key.
	ErrDuplicateKey = errors.New("duplicate template key")

	// ErrIncomplete is returned when an opcode has no entry.
	ErrIncomplete = errors.New("incomplete template table")
)

// Args are the positional values an emitter fills in.
type Args struct {
	Base   string // Register, symbol or literal operand
	Offset int    // Offset from Base for indirect addressing
	Label  string // Unique label stem for comparisons
}

// An Emitter renders one primitive instruction.
type Emitter func(Args) []string

// Key identifies an emitter.
type Key struct {
	Op   vm.Opcode
	Mode Addressing
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.Op, k.Mode)
}

// Entry binds a key to an emitter.
type Entry struct {
	Key  Key
	Emit Emitter
}

// Table is a read-only emitter table.
type Table struct {
	emitters map[Key]Emitter
}

// DefaultEntries returns the Hack assembly emitters for every opcode.
func DefaultEntries() []Entry {
	none := func(op vm.Opcode, e Emitter) Entry {
		return Entry{Key: Key{Op: op, Mode: AddrNone}, Emit: e}
	}

	return []Entry{
		none(vm.OpAdd, binary("D+M")),
		none(vm.OpSub, binary("M-D")),
		none(vm.OpAnd, binary("D&M")),
		none(vm.OpOr, binary("D|M")),
		none(vm.OpNeg, unary("-M")),
		none(vm.OpNot, unary("!M")),

		none(vm.OpEq, compare("JEQ")),
		none(vm.OpGt, compare("JGT")),
		none(vm.OpLt, compare("JLT")),

		{Key{vm.OpPush, AddrConstant}, pushConstant},
		{Key{vm.OpPush, AddrStatic}, pushDirect},
		{Key{vm.OpPush, AddrTemp}, pushDirect},
		{Key{vm.OpPush, AddrPointer}, pushDirect},
		{Key{vm.OpPush, AddrIndirect}, pushIndirect},
		{Key{vm.OpPop, AddrStatic}, popDirect},
		{Key{vm.OpPop, AddrTemp}, popDirect},
		{Key{vm.OpPop, AddrPointer}, popDirect},
		{Key{vm.OpPop, AddrIndirect}, popIndirect},

		none(vm.OpLabel, label),
		none(vm.OpGoto, jump),
		none(vm.OpIfGoto, jumpIfTrue),

		none(vm.OpFunction, nothing),
		none(vm.OpCall, nothing),
		none(vm.OpReturn, nothing),
		none(vm.OpGotoIndirect, jumpIndirect),
	}
}

// Load builds the default table.
func Load() (*Table, error) {
	return Build(DefaultEntries())
}

// MustLoad builds the default table and panics if it is inconsistent.
func MustLoad() *Table {
	t, err := Load()
	if err != nil {
		panic(err)
	}

	return t
}

// Build creates a table from entries and validates that it covers the
// whole instruction model without collisions.
func Build(entries []Entry) (*Table, error) {
	t := &Table{emitters: make(map[Key]Emitter, len(entries))}

	for _, e := range entries {
		if e.Emit == nil {
			return nil, fmt.Errorf("%w: %s has no emitter", ErrIncomplete, e.Key)
		}

		if _, exists := t.emitters[e.Key]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, e.Key)
		}

		t.emitters[e.Key] = e.Emit
	}

	if err := t.validate(); err != nil {
		return nil, err
	}

	return t, nil
}

func (t *Table) validate() error {
	covered := make(map[vm.Opcode]bool)
	for k := range t.emitters {
		if !k.Op.Valid() {
			return fmt.Errorf("%w: %s is not an opcode", vm.ErrUnknownOpcode, k)
		}
		covered[k.Op] = true
	}

	for _, op := range vm.Opcodes() {
		if !covered[op] {
			return fmt.Errorf("%w: no entry for %s", ErrIncomplete, op)
		}
	}

	for _, seg := range vm.Segments() {
		mode := AddressingOf(seg)
		if _, ok := t.emitters[Key{vm.OpPush, mode}]; !ok {
			return fmt.Errorf("%w: no push for %s", ErrIncomplete, seg)
		}

		if seg == vm.Constant {
			continue
		}

		if _, ok := t.emitters[Key{vm.OpPop, mode}]; !ok {
			return fmt.Errorf("%w: no pop for %s", ErrIncomplete, seg)
		}
	}

	return nil
}

// Lookup returns the emitter for a key.
func (t *Table) Lookup(op vm.Opcode, mode Addressing) (Emitter, error) {
	e, ok := t.emitters[Key{Op: op, Mode: mode}]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", vm.ErrTemplateNotFound, op, mode)
	}

	return e, nil
}

// Keys returns the keys of the table in a stable order.
func (t *Table) Keys() []Key {
	keys := make([]Key, 0, len(t.emitters))
	for k := range t.emitters {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Op != keys[j].Op {
			return keys[i].Op < keys[j].Op
		}
		return keys[i].Mode < keys[j].Mode
	})

	return keys
}
