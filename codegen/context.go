package codegen

import (
	"fmt"

	"github.com/sarchlab/vmtrans/vm"
)

// Context is the mutable state of one translation run. It is owned by a
// single run and must not be shared between concurrent translations.
type Context struct {
	compares  map[vm.Opcode]int
	callSites int
	module    string
}

// NewContext creates a context whose module, until the first function
// instruction, is defaultModule.
func NewContext(defaultModule string) *Context {
	return &Context{
		compares: map[vm.Opcode]int{vm.OpEq: 0, vm.OpGt: 0, vm.OpLt: 0},
		module:   defaultModule,
	}
}

// Module returns the module used to name static variables.
func (c *Context) Module() string {
	return c.module
}

// CompareCount returns how many times a comparison operator was emitted.
func (c *Context) CompareCount(op vm.Opcode) int {
	return c.compares[op]
}

// CallSites returns how many call instructions were expanded.
func (c *Context) CallSites() int {
	return c.callSites
}

func (c *Context) enterFunction(inst vm.Instruction) {
	c.module = inst.Module()
}

// nextCompare bumps the counter of op and returns the index this
// occurrence owns.
func (c *Context) nextCompare(op vm.Opcode) int {
	c.compares[op]++
	return c.compares[op] - 1
}

// nextReturnLabel numbers call sites in the order they are expanded.
func (c *Context) nextReturnLabel() string {
	c.callSites++
	return fmt.Sprintf("RETURN_%d", c.callSites-1)
}
