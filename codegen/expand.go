package codegen

import (
	"github.com/sarchlab/vmtrans/template"
	"github.com/sarchlab/vmtrans/vm"
)

// Offsets of the frame registers inside the pointer segment. Source code
// only reaches THIS and THAT; synthesized code uses the whole R0..R15 range.
const (
	pointerSP            = 0 - template.PointerBase
	pointerLCL           = 1 - template.PointerBase
	pointerARG           = 2 - template.PointerBase
	pointerTHIS          = 3 - template.PointerBase
	pointerTHAT          = 4 - template.PointerBase
	pointerFrameScratch  = 14 - template.PointerBase
	pointerReturnScratch = 15 - template.PointerBase

	// frameSize counts the return address and the four saved base
	// pointers pushed by a call.
	frameSize = 5
)

// Step is one instruction of the expanded program.
type Step struct {
	Inst   vm.Instruction
	Origin int    // Index of the source instruction that produced the step
	Source string // Text of that source instruction
	Module string // Module naming static variables at this point
	Header bool   // Comment-only step standing for a composite instruction
}

// Expand replaces function, call and return with the primitive
// instructions that implement them. Other instructions pass through. The
// module and call-site counter of ctx advance as a side effect.
func Expand(prog []vm.Instruction, ctx *Context) ([]Step, error) {
	steps := make([]Step, 0, len(prog))

	for idx, inst := range prog {
		if !inst.Opcode.IsComposite() {
			steps = append(steps, Step{
				Inst:   inst,
				Origin: idx,
				Source: inst.Raw,
				Module: ctx.Module(),
			})
			continue
		}

		var body []vm.Instruction
		switch inst.Opcode {
		case vm.OpFunction:
			ctx.enterFunction(inst)
			body = functionBody(inst)
		case vm.OpCall:
			body = callSequence(inst, ctx.nextReturnLabel())
		case vm.OpReturn:
			body = returnSequence()
		}

		steps = append(steps, Step{
			Inst:   inst,
			Origin: idx,
			Source: inst.Raw,
			Module: ctx.Module(),
			Header: true,
		})

		for _, sub := range body {
			steps = append(steps, Step{
				Inst:   sub,
				Origin: idx,
				Source: inst.Raw,
				Module: ctx.Module(),
			})
		}

		Trace("Expand",
			"Instruction", inst.Raw,
			"Primitives", len(body),
		)
	}

	return steps, nil
}

// functionBody declares the entry label and zeroes the locals.
func functionBody(inst vm.Instruction) []vm.Instruction {
	body := []vm.Instruction{vm.Label(inst.Symbol())}
	for i := 0; i < inst.Count(); i++ {
		body = append(body, vm.Push(vm.Constant, 0))
	}

	return body
}

// callSequence saves the caller frame, repositions ARG and LCL, and jumps
// to the callee.
func callSequence(inst vm.Instruction, ret string) []vm.Instruction {
	seq := []vm.Instruction{vm.PushSymbol(ret)}

	for _, p := range []int{pointerLCL, pointerARG, pointerTHIS, pointerTHAT} {
		seq = append(seq, vm.Push(vm.Pointer, p))
	}

	// ARG = SP - 5 - nArgs
	seq = append(seq,
		vm.Push(vm.Pointer, pointerSP),
		vm.Push(vm.Constant, frameSize),
		vm.Arithmetic(vm.OpSub),
		vm.Push(vm.Constant, inst.Count()),
		vm.Arithmetic(vm.OpSub),
		vm.Pop(vm.Pointer, pointerARG),
	)

	// LCL = SP
	seq = append(seq,
		vm.Push(vm.Pointer, pointerSP),
		vm.Pop(vm.Pointer, pointerLCL),
	)

	return append(seq, vm.Goto(inst.Symbol()), vm.Label(ret))
}

// returnSequence hands the return value to the caller and restores its
// frame. The return address is saved first because with no arguments it
// shares a slot with argument 0. LCL is restored last so every restore
// reads the frame through the callee's LCL.
func returnSequence() []vm.Instruction {
	seq := []vm.Instruction{
		vm.Push(vm.Local, -frameSize),
		vm.Pop(vm.Pointer, pointerReturnScratch),

		vm.Pop(vm.Argument, 0),

		vm.Push(vm.Pointer, pointerARG),
		vm.Push(vm.Constant, 1),
		vm.Arithmetic(vm.OpAdd),
		vm.Pop(vm.Pointer, pointerFrameScratch),
	}

	for i, p := range []int{pointerTHAT, pointerTHIS, pointerARG, pointerLCL} {
		seq = append(seq,
			vm.Push(vm.Local, -(i+1)),
			vm.Pop(vm.Pointer, p),
		)
	}

	return append(seq,
		vm.Push(vm.Pointer, pointerFrameScratch),
		vm.Pop(vm.Pointer, pointerSP),
		vm.GotoIndirect(),
	)
}
