package codegen

import (
	"fmt"
	"strconv"

	"github.com/sarchlab/vmtrans/template"
	"github.com/sarchlab/vmtrans/vm"
)

// maxConstant is the largest literal an A-instruction can load.
const maxConstant = 1<<15 - 1

// resolve turns the segment operand of a push or pop into an addressing
// mode and emitter arguments. Source instructions get the narrow,
// user-facing ranges; synthesized ones may reach below a base pointer and
// the whole pointer window used by the frame code.
func resolve(inst vm.Instruction, module string) (template.Addressing, template.Args, error) {
	seg := inst.Segment()
	i := inst.Index()
	mode := template.AddressingOf(seg)
	fromSource := inst.Origin() == vm.FromSource

	invalid := func(limits string) error {
		return fmt.Errorf("%w: %s %d from %s code, expected %s",
			vm.ErrInvalidSegmentOffset, seg, i, inst.Origin(), limits)
	}

	switch mode {
	case template.AddrConstant:
		if inst.IsSymbolic() {
			return mode, template.Args{Base: inst.Symbol()}, nil
		}
		if i < 0 || i > maxConstant {
			return mode, template.Args{}, invalid(fmt.Sprintf("0..%d", maxConstant))
		}
		return mode, template.Args{Base: strconv.Itoa(i)}, nil

	case template.AddrStatic:
		if i < 0 {
			return mode, template.Args{}, invalid("a non-negative offset")
		}
		return mode, template.Args{Base: fmt.Sprintf("%s.%d", module, i)}, nil

	case template.AddrTemp:
		if i < 0 || i >= template.TempSize {
			return mode, template.Args{}, invalid(fmt.Sprintf("0..%d", template.TempSize-1))
		}
		return mode, template.Args{Base: template.RegisterName(template.TempBase + i)}, nil

	case template.AddrPointer:
		lo, hi := pointerTHIS, pointerTHAT
		if !fromSource {
			lo, hi = pointerSP, pointerReturnScratch
		}
		if i < lo || i > hi {
			return mode, template.Args{}, invalid(fmt.Sprintf("%d..%d", lo, hi))
		}
		return mode, template.Args{Base: template.RegisterName(template.PointerBase + i)}, nil

	case template.AddrIndirect:
		if fromSource && i < 0 {
			return mode, template.Args{}, invalid("a non-negative offset")
		}
		return mode, template.Args{Base: template.BaseRegister(seg), Offset: i}, nil
	}

	return mode, template.Args{}, fmt.Errorf("%w: %q has no segment", vm.ErrMalformedInstruction, inst.Raw)
}
