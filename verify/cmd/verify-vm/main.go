package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/vmtrans/verify"
)

func main() {
	maxSteps := flag.Int("steps", verify.DefaultMaxSteps, "instruction limit of the emulator")
	stackBase := flag.Int("stack", verify.DefaultStackBase, "initial stack pointer")
	reportPath := flag.String("report", "", "also save the report to this file")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: verify-vm [flags] <file.asm>")
		atexit.Exit(2)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "verify-vm: %v\n", err)
		atexit.Exit(1)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")

	b := verify.CPUBuilder{}.
		WithMaxSteps(*maxSteps).
		WithStackBase(*stackBase)
	report := verify.GenerateReportOn(b, lines)

	report.WriteReport(os.Stdout)

	if *reportPath != "" {
		if err := report.SaveReportToFile(*reportPath); err != nil {
			fmt.Fprintf(os.Stderr, "verify-vm: %v\n", err)
			atexit.Exit(1)
		}
		fmt.Printf("Report saved to %s\n", *reportPath)
	}

	if !report.OK() {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
