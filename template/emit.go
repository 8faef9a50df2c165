package template

import "strconv"

func itoa(n int) string { return strconv.Itoa(n) }

func at(sym string) string { return "@" + sym }

func pushD() []string {
	return []string{"@SP", "A=M", "M=D", "@SP", "M=M+1"}
}

func popD() []string {
	return []string{"@SP", "AM=M-1", "D=M"}
}

func join(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// addressD leaves base+offset in D, reading the base pointer from RAM.
func addressD(base string, offset int) []string {
	if offset < 0 {
		return []string{at(itoa(-offset)), "D=A", at(base), "D=M-D"}
	}
	return []string{at(itoa(offset)), "D=A", at(base), "D=D+M"}
}

func pushConstant(a Args) []string {
	return join([]string{at(a.Base), "D=A"}, pushD())
}

func pushDirect(a Args) []string {
	return join([]string{at(a.Base), "D=M"}, pushD())
}

func pushIndirect(a Args) []string {
	return join(addressD(a.Base, a.Offset), []string{"A=D", "D=M"}, pushD())
}

func popDirect(a Args) []string {
	return join(popD(), []string{at(a.Base), "M=D"})
}

func popIndirect(a Args) []string {
	return join(
		addressD(a.Base, a.Offset),
		[]string{at(RegPopScratch), "M=D"},
		popD(),
		[]string{at(RegPopScratch), "A=M", "M=D"},
	)
}

func binary(expr string) Emitter {
	return func(Args) []string {
		return join(popD(), []string{"A=A-1", "M=" + expr})
	}
}

func unary(expr string) Emitter {
	return func(Args) []string {
		return []string{"@SP", "A=M-1", "M=" + expr}
	}
}

// compare replaces x and y with x OP y, using -1 for true and 0 for false.
func compare(jump string) Emitter {
	return func(a Args) []string {
		onTrue := a.Label + "_TRUE"
		end := a.Label + "_END"

		return join(
			popD(),
			[]string{
				"A=A-1", "D=M-D",
				at(onTrue), "D;" + jump,
				"@SP", "A=M-1", "M=0",
				at(end), "0;JMP",
				"(" + onTrue + ")",
				"@SP", "A=M-1", "M=-1",
				"(" + end + ")",
			},
		)
	}
}

func label(a Args) []string {
	return []string{"(" + a.Base + ")"}
}

func jump(a Args) []string {
	return []string{at(a.Base), "0;JMP"}
}

func jumpIfTrue(a Args) []string {
	return join(popD(), []string{at(a.Base), "D;JNE"})
}

func jumpIndirect(a Args) []string {
	return []string{at(a.Base), "A=M", "0;JMP"}
}

// nothing is used by the composite opcodes, whose code comes from the
// instructions they expand into.
func nothing(Args) []string {
	return nil
}
