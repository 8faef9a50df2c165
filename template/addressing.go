package template

import "github.com/sarchlab/vmtrans/vm"

// Addressing selects how a memory operand is resolved.
type Addressing int

const (
	AddrNone Addressing = iota
	AddrConstant
	AddrStatic
	AddrTemp
	AddrPointer
	AddrIndirect
)

func (a Addressing) String() string {
	switch a {
	case AddrNone:
		return "none"
	case AddrConstant:
		return "constant"
	case AddrStatic:
		return "static"
	case AddrTemp:
		return "temp"
	case AddrPointer:
		return "pointer"
	case AddrIndirect:
		return "indirect"
	default:
		return "invalid"
	}
}

// AddressingOf maps a segment to its addressing mode.
func AddressingOf(seg vm.Segment) Addressing {
	switch seg {
	case vm.Constant:
		return AddrConstant
	case vm.Static:
		return AddrStatic
	case vm.Temp:
		return AddrTemp
	case vm.Pointer:
		return AddrPointer
	case vm.Local, vm.Argument, vm.This, vm.That:
		return AddrIndirect
	default:
		return AddrNone
	}
}

// Registers of the target machine used by generated code.
const (
	RegSP   = "SP"
	RegLCL  = "LCL"
	RegARG  = "ARG"
	RegTHIS = "THIS"
	RegTHAT = "THAT"

	// PointerBase is the RAM address of pointer 0 (THIS). Synthesized code
	// reaches SP, LCL and ARG at pointer -3, -2 and -1, and the scratch
	// registers at pointer 10 to 12.
	PointerBase = 3
	TempBase    = 5
	TempSize    = 8

	// RegPopScratch stages the target address of an indirect pop.
	RegPopScratch = "R13"
	// RegFrameScratch holds the caller's stack pointer during return.
	RegFrameScratch = "R14"
	// RegReturnScratch holds the return address during return.
	RegReturnScratch = "R15"
)

var registerNames = map[int]string{
	0: RegSP,
	1: RegLCL,
	2: RegARG,
	3: RegTHIS,
	4: RegTHAT,
}

// RegisterName returns the symbolic name of RAM[addr] for addr in 0..15.
func RegisterName(addr int) string {
	if name, ok := registerNames[addr]; ok {
		return name
	}
	return "R" + itoa(addr)
}

// BaseRegister returns the base pointer register of an indirect segment.
func BaseRegister(seg vm.Segment) string {
	switch seg {
	case vm.Local:
		return RegLCL
	case vm.Argument:
		return RegARG
	case vm.This:
		return RegTHIS
	case vm.That:
		return RegTHAT
	default:
		return ""
	}
}
