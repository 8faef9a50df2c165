package main

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/vmtrans/api"
	"github.com/sarchlab/vmtrans/program"
	"github.com/sarchlab/vmtrans/verify"
	"github.com/sarchlab/vmtrans/vm"
)

// Files are concatenated in name order, as LoadDir does.
var (
	//go:embed Main.vm
	mainVM string

	//go:embed Sys.vm
	sysVM string
)

func load() []vm.Instruction {
	var prog []vm.Instruction

	for _, f := range []struct{ name, src string }{
		{"Main.vm", mainVM},
		{"Sys.vm", sysVM},
	} {
		insts, err := program.ParseLines(f.name, strings.NewReader(f.src))
		if err != nil {
			panic(err)
		}
		prog = append(prog, insts...)
	}

	return prog
}

func main() {
	driver := api.DriverBuilder{}.Build()

	lines, err := driver.Translate(load())
	if err != nil {
		panic(err)
	}

	report := verify.GenerateReport(lines, verify.DefaultMaxSteps)
	report.WriteReport(os.Stdout)

	if !report.OK() {
		atexit.Exit(1)
	}

	result, _ := report.CPU.Variable("Sys.0")
	fmt.Printf("fibonacci(10) = %d after %d instructions\n", result, report.CPU.Steps())

	atexit.Exit(0)
}
