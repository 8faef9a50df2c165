// Package verify provides debugging tools for generated Hack assembly.
//
// This package implements two complementary verification stages:
//
// 1. Static Lint (lint.go): Fast structural checks on the listing
//   - STRUCT checks: every label is declared exactly once
//   - FLOW checks: every direct jump targets a declared label
//
// 2. Emulator (cpu.go): A Hack CPU driven by an akita engine
//   - LoadProgram resolves labels, predefined symbols and variables
//   - CPU executes one instruction per tick until it halts
//   - Useful for checking that VM semantics survive translation
//
// # Machine Model
//
// The CPU has 16-bit A and D registers and a 32K word RAM. RAM[0..4] hold
// SP, LCL, ARG, THIS and THAT; RAM[5..12] are the temp segment; RAM[13..15]
// are scratch registers; variables are allocated from RAM[16]. The stack
// starts at RAM[256].
//
// The CPU halts when the program counter runs past the last instruction,
// on the end-of-program idiom "(END) @END 0;JMP", on an out-of-range
// memory access, or at the step limit.
//
// # Usage Example
//
//	issues := verify.RunLint(lines)
//	for _, issue := range issues {
//	    log.Printf("[%s] line %d: %s", issue.Type, issue.Line, issue.Message)
//	}
//
//	cpu, err := verify.Execute(lines, 10000, func(c *verify.CPU) {
//	    c.SetRAM(1, 300) // LCL
//	})
//	if err != nil {
//	    panic(err)
//	}
//	fmt.Println(cpu.Top())
//
//	report := verify.GenerateReport(lines, 10000)
//	report.WriteReport(os.Stdout)
package verify
