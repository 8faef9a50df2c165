package main

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/vmtrans/api"
	"github.com/sarchlab/vmtrans/program"
	"github.com/sarchlab/vmtrans/verify"
)

//go:embed SimpleAdd.vm
var source string

func main() {
	prog, err := program.ParseLines("SimpleAdd.vm", strings.NewReader(source))
	if err != nil {
		panic(err)
	}

	driver := api.DriverBuilder{}.
		WithDefaultModule("SimpleAdd").
		Build()

	lines, err := driver.Translate(prog)
	if err != nil {
		panic(err)
	}

	for _, l := range lines {
		fmt.Println(l)
	}

	cpu, err := verify.Execute(lines, verify.DefaultMaxSteps, nil)
	if err != nil {
		panic(err)
	}

	fmt.Println(verify.StateTable(cpu, verify.DefaultStackBase))
	fmt.Printf("7 + 8 = %d\n", cpu.Top())

	atexit.Exit(0)
}
