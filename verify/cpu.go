package verify

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/sarchlab/akita/v4/sim"
)

var (
	// ErrStepLimit reports a program that did not halt in time.
	ErrStepLimit = errors.New("step limit reached")
	// ErrAddress reports a memory access outside RAM.
	ErrAddress = errors.New("address out of range")
)

const (
	RAMSize          = 32768
	DefaultStackBase = 256
	DefaultMaxSteps  = 100000
)

type cpuState struct {
	PC     int
	A, D   int16
	RAM    []int16
	Steps  int
	Halted bool
	Err    error

	Code *Program
}

// CPU executes a loaded Hack program, one instruction per tick. It halts
// when the program counter leaves the code, on a jump to itself, on an
// error or at the step limit.
type CPU struct {
	*sim.TickingComponent

	state     cpuState
	maxSteps  int
	stackBase int
}

// CPUBuilder can create CPUs.
type CPUBuilder struct {
	engine    sim.Engine
	freq      sim.Freq
	maxSteps  int
	stackBase int
}

// WithEngine sets the engine that drives the CPU.
func (b CPUBuilder) WithEngine(engine sim.Engine) CPUBuilder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the CPU.
func (b CPUBuilder) WithFreq(freq sim.Freq) CPUBuilder {
	b.freq = freq
	return b
}

// WithMaxSteps bounds the number of executed instructions.
func (b CPUBuilder) WithMaxSteps(n int) CPUBuilder {
	b.maxSteps = n
	return b
}

// WithStackBase sets the initial value of SP.
func (b CPUBuilder) WithStackBase(base int) CPUBuilder {
	b.stackBase = base
	return b
}

// Build creates a CPU.
func (b CPUBuilder) Build(name string) *CPU {
	if b.engine == nil {
		b.engine = sim.NewSerialEngine()
	}
	if b.freq == 0 {
		b.freq = 1 * sim.GHz
	}
	if b.maxSteps <= 0 {
		b.maxSteps = DefaultMaxSteps
	}
	if b.stackBase <= 0 {
		b.stackBase = DefaultStackBase
	}

	c := &CPU{maxSteps: b.maxSteps, stackBase: b.stackBase}
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)
	c.state = cpuState{RAM: make([]int16, RAMSize)}
	c.state.RAM[0] = int16(b.stackBase)

	return c
}

// Load sets the program and resets the program counter.
func (c *CPU) Load(p *Program) {
	c.state.Code = p
	c.state.PC = 0
	c.state.Steps = 0
	c.state.Halted = false
	c.state.Err = nil
}

// Run executes until the CPU halts.
func (c *CPU) Run() error {
	if c.state.Code == nil {
		return fmt.Errorf("no program loaded")
	}

	c.TickNow()
	if err := c.Engine.Run(); err != nil {
		return err
	}

	return c.state.Err
}

// Tick runs one instruction.
func (c *CPU) Tick() (madeProgress bool) {
	s := &c.state
	if s.Halted {
		return false
	}

	if s.PC < 0 || s.PC >= len(s.Code.Insts) {
		c.halt(nil)
		return false
	}

	if s.Steps >= c.maxSteps {
		c.halt(fmt.Errorf("%w after %d instructions", ErrStepLimit, s.Steps))
		return false
	}

	if err := c.execute(s.Code.Insts[s.PC]); err != nil {
		c.halt(err)
		return false
	}
	s.Steps++

	return !s.Halted
}

func (c *CPU) halt(err error) {
	c.state.Halted = true
	c.state.Err = err

	slog.Debug("CPU halted",
		"PC", c.state.PC,
		"Steps", c.state.Steps,
		"SP", c.state.RAM[0],
		"Error", err,
	)
}

func (c *CPU) execute(inst Inst) error {
	s := &c.state

	if inst.IsA {
		s.A = int16(inst.Value)
		s.PC++
		return nil
	}

	addr := int(uint16(s.A))
	var m int16
	if inst.readsM() || containsM(inst.Dest) {
		if addr >= len(s.RAM) {
			return fmt.Errorf("%w: line %d: %q with A=%d", ErrAddress, inst.Line, inst.Text, addr)
		}
		m = s.RAM[addr]
	}

	v, err := compute(inst.Comp, s.A, s.D, m)
	if err != nil {
		return err
	}

	for _, r := range inst.Dest {
		switch r {
		case 'M':
			s.RAM[addr] = v
		case 'D':
			s.D = v
		case 'A':
			s.A = v
		}
	}

	if !inst.jumps(v) {
		s.PC++
		return nil
	}

	// A jump onto the A-instruction that loaded its own target is the
	// conventional end-of-program loop.
	if addr == s.PC-1 && inst.Jump == "JMP" {
		s.Halted = true
		return nil
	}

	s.PC = addr

	return nil
}

func containsM(dest string) bool {
	for _, r := range dest {
		if r == 'M' {
			return true
		}
	}
	return false
}

// RAM returns the word at addr.
func (c *CPU) RAM(addr int) int16 {
	return c.state.RAM[addr]
}

// SetRAM writes the word at addr.
func (c *CPU) SetRAM(addr int, v int16) {
	c.state.RAM[addr] = v
}

// SP returns the stack pointer.
func (c *CPU) SP() int {
	return int(c.state.RAM[0])
}

// Top returns the word on top of the stack.
func (c *CPU) Top() int16 {
	return c.state.RAM[c.SP()-1]
}

// Stack returns the words between base and SP.
func (c *CPU) Stack(base int) []int16 {
	sp := c.SP()
	if sp < base {
		return nil
	}
	return append([]int16(nil), c.state.RAM[base:sp]...)
}

// Variable returns the word stored in an assembly variable such as a
// static of the VM program.
func (c *CPU) Variable(name string) (int16, bool) {
	if c.state.Code == nil {
		return 0, false
	}

	addr, ok := c.state.Code.Variables[name]
	if !ok {
		return 0, false
	}

	return c.state.RAM[addr], true
}

// StackBase returns the initial value of SP.
func (c *CPU) StackBase() int {
	return c.stackBase
}

// Steps returns the number of executed instructions.
func (c *CPU) Steps() int {
	return c.state.Steps
}

// Halted reports whether the CPU stopped.
func (c *CPU) Halted() bool {
	return c.state.Halted
}

// Execute loads an assembly listing into a fresh CPU and runs it. setup,
// when given, runs before the first instruction to preset RAM.
func Execute(lines []string, maxSteps int, setup func(c *CPU)) (*CPU, error) {
	return ExecuteOn(CPUBuilder{}.WithMaxSteps(maxSteps), lines, setup)
}

// ExecuteOn is Execute with a CPU made by b.
func ExecuteOn(b CPUBuilder, lines []string, setup func(c *CPU)) (*CPU, error) {
	prog, err := LoadProgram(lines)
	if err != nil {
		return nil, err
	}

	cpu := b.Build("CPU")
	cpu.Load(prog)

	if setup != nil {
		setup(cpu)
	}

	return cpu, cpu.Run()
}
