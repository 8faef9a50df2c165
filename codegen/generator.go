// Package codegen translates VM instructions into Hack assembly. It runs
// in two passes: Expand rewrites function, call and return into primitive
// instructions, and Emit renders every primitive through the template
// table.
package codegen

import (
	"fmt"
	"strings"

	"github.com/sarchlab/vmtrans/template"
	"github.com/sarchlab/vmtrans/vm"
)

type handler func(g *Generator, step Step, ctx *Context) ([]string, error)

var dispatch = map[vm.Opcode]handler{
	vm.OpAdd: (*Generator).emitPlain,
	vm.OpSub: (*Generator).emitPlain,
	vm.OpAnd: (*Generator).emitPlain,
	vm.OpOr:  (*Generator).emitPlain,
	vm.OpNeg: (*Generator).emitPlain,
	vm.OpNot: (*Generator).emitPlain,

	vm.OpEq: (*Generator).emitCompare,
	vm.OpGt: (*Generator).emitCompare,
	vm.OpLt: (*Generator).emitCompare,

	vm.OpPush: (*Generator).emitMemory,
	vm.OpPop:  (*Generator).emitMemory,

	vm.OpLabel:  (*Generator).emitFlow,
	vm.OpGoto:   (*Generator).emitFlow,
	vm.OpIfGoto: (*Generator).emitFlow,

	vm.OpFunction: (*Generator).emitHeader,
	vm.OpCall:     (*Generator).emitHeader,
	vm.OpReturn:   (*Generator).emitHeader,

	vm.OpGotoIndirect: (*Generator).emitReturnJump,
}

// Generator renders expanded instructions. It holds no per-run state and
// can be shared by translations that each own their Context and Output.
type Generator struct {
	table    *template.Table
	comments bool
}

// GeneratorBuilder can create generators.
type GeneratorBuilder struct {
	table      *template.Table
	noComments bool
}

// WithTable sets the template table. The default table is used otherwise.
func (b GeneratorBuilder) WithTable(t *template.Table) GeneratorBuilder {
	b.table = t
	return b
}

// WithComments controls the "// <instruction>" line before each block.
func (b GeneratorBuilder) WithComments(on bool) GeneratorBuilder {
	b.noComments = !on
	return b
}

// Build creates a generator.
func (b GeneratorBuilder) Build() *Generator {
	g := &Generator{
		table:    b.table,
		comments: !b.noComments,
	}

	if g.table == nil {
		g.table = template.MustLoad()
	}

	return g
}

// Emit appends the assembly of every step to out.
func (g *Generator) Emit(steps []Step, ctx *Context, out *Output) error {
	for _, step := range steps {
		lines, err := g.emitStep(step, ctx)
		if err != nil {
			return &Error{Index: step.Origin, Raw: step.Source, Err: err}
		}

		out.append(lines...)
	}

	return nil
}

// Translate expands and emits a single instruction.
func (g *Generator) Translate(inst vm.Instruction, ctx *Context, out *Output) error {
	return g.TranslateProgram([]vm.Instruction{inst}, ctx, out)
}

// TranslateProgram expands and emits a whole program.
func (g *Generator) TranslateProgram(prog []vm.Instruction, ctx *Context, out *Output) error {
	steps, err := Expand(prog, ctx)
	if err != nil {
		return err
	}

	return g.Emit(steps, ctx, out)
}

func (g *Generator) emitStep(step Step, ctx *Context) ([]string, error) {
	h, ok := dispatch[step.Inst.Opcode]
	if !ok {
		return nil, fmt.Errorf("%w: %q", vm.ErrUnknownOpcode, step.Inst.Opcode)
	}

	body, err := h(g, step, ctx)
	if err != nil {
		return nil, err
	}

	Trace("Emit",
		"Instruction", step.Inst.Raw,
		"Origin", step.Origin,
		"Lines", len(body),
	)

	if !g.comments || step.Inst.Opcode == vm.OpLabel {
		return body, nil
	}

	return append([]string{"// " + step.Inst.Raw}, body...), nil
}

func (g *Generator) render(op vm.Opcode, mode template.Addressing, args template.Args) ([]string, error) {
	emit, err := g.table.Lookup(op, mode)
	if err != nil {
		return nil, err
	}

	return emit(args), nil
}

func (g *Generator) emitPlain(step Step, _ *Context) ([]string, error) {
	return g.render(step.Inst.Opcode, template.AddrNone, template.Args{})
}

func (g *Generator) emitCompare(step Step, ctx *Context) ([]string, error) {
	op := step.Inst.Opcode
	stem := fmt.Sprintf("%s_%d", strings.ToUpper(string(op)), ctx.nextCompare(op))

	return g.render(op, template.AddrNone, template.Args{Label: stem})
}

func (g *Generator) emitMemory(step Step, _ *Context) ([]string, error) {
	mode, args, err := resolve(step.Inst, step.Module)
	if err != nil {
		return nil, err
	}

	return g.render(step.Inst.Opcode, mode, args)
}

func (g *Generator) emitFlow(step Step, _ *Context) ([]string, error) {
	return g.render(step.Inst.Opcode, template.AddrNone, template.Args{Base: step.Inst.Symbol()})
}

func (g *Generator) emitHeader(step Step, _ *Context) ([]string, error) {
	if !step.Header {
		return nil, fmt.Errorf("%w: %q was not expanded", vm.ErrMalformedInstruction, step.Inst.Raw)
	}

	return g.render(step.Inst.Opcode, template.AddrNone, template.Args{})
}

func (g *Generator) emitReturnJump(step Step, _ *Context) ([]string, error) {
	return g.render(step.Inst.Opcode, template.AddrNone, template.Args{Base: template.RegReturnScratch})
}
