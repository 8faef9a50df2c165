// Package api defines the driver that turns a VM program into Hack
// assembly.
package api

import (
	"fmt"
	"log/slog"

	"github.com/rs/xid"

	"github.com/sarchlab/vmtrans/codegen"
	"github.com/sarchlab/vmtrans/vm"
)

// Source provides the instructions of a program.
type Source interface {
	// Name identifies the source in logs and errors.
	Name() string

	// Load returns the instructions in program order.
	Load() ([]vm.Instruction, error)
}

// Sink receives the generated assembly.
type Sink interface {
	Write(lines []string) error
}

// Driver provides the interface to translate programs.
type Driver interface {
	// HasEntry reports whether the program declares the entry function.
	HasEntry(prog []vm.Instruction) bool

	// Expand runs the macro expansion pass only. The bootstrap jump, if
	// any, is the first step.
	Expand(prog []vm.Instruction) ([]codegen.Step, error)

	// Translate returns the assembly of the program. When the entry
	// function exists, a jump to it comes first.
	Translate(prog []vm.Instruction) ([]string, error)

	// Run loads the program from src, translates it and writes the result
	// to sink. Nothing is written if any step fails.
	Run(src Source, sink Sink) error
}

// bootstrapOrigin marks the steps of the bootstrap jump, which has no
// source instruction.
const bootstrapOrigin = -1

type driverImpl struct {
	entry         string
	defaultModule string
	generator     *codegen.Generator
}

func (d *driverImpl) HasEntry(prog []vm.Instruction) bool {
	if d.entry == "" {
		return false
	}

	for _, inst := range prog {
		if inst.Opcode == vm.OpFunction && inst.Symbol() == d.entry {
			return true
		}
	}

	return false
}

func (d *driverImpl) Expand(prog []vm.Instruction) ([]codegen.Step, error) {
	_, steps, err := d.expand(prog)
	return steps, err
}

func (d *driverImpl) Translate(prog []vm.Instruction) ([]string, error) {
	ctx, steps, err := d.expand(prog)
	if err != nil {
		return nil, err
	}

	out := codegen.NewOutput()
	if err := d.generator.Emit(steps, ctx, out); err != nil {
		return nil, err
	}

	return out.Lines(), nil
}

func (d *driverImpl) Run(src Source, sink Sink) error {
	runID := xid.New().String()

	prog, err := src.Load()
	if err != nil {
		return fmt.Errorf("loading %s: %w", src.Name(), err)
	}

	slog.Info("Translation started",
		"Run", runID,
		"Source", src.Name(),
		"Instructions", len(prog),
		"Entry", d.HasEntry(prog),
	)

	lines, err := d.Translate(prog)
	if err != nil {
		slog.Error("Translation failed", "Run", runID, "Error", err)
		return fmt.Errorf("translating %s: %w", src.Name(), err)
	}

	if err := sink.Write(lines); err != nil {
		return fmt.Errorf("writing %s: %w", src.Name(), err)
	}

	slog.Info("Translation finished",
		"Run", runID,
		"Lines", len(lines),
	)

	return nil
}

func (d *driverImpl) expand(prog []vm.Instruction) (*codegen.Context, []codegen.Step, error) {
	if !d.HasEntry(prog) {
		ctx := codegen.NewContext(d.defaultModule)
		steps, err := codegen.Expand(prog, ctx)
		return ctx, steps, err
	}

	// The entry name was validated as a function symbol by HasEntry.
	jump := vm.Goto(d.entry)
	ctx := codegen.NewContext(jump.Module())

	steps, err := codegen.Expand(prog, ctx)
	if err != nil {
		return nil, nil, err
	}

	boot := codegen.Step{
		Inst:   jump,
		Origin: bootstrapOrigin,
		Source: jump.Raw,
		Module: jump.Module(),
	}

	return ctx, append([]codegen.Step{boot}, steps...), nil
}
