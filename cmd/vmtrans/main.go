// Command vmtrans translates a .vm file, or a directory of them, into a
// single Hack assembly file.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/vmtrans/api"
	"github.com/sarchlab/vmtrans/codegen"
	"github.com/sarchlab/vmtrans/config"
	"github.com/sarchlab/vmtrans/program"
	"github.com/sarchlab/vmtrans/verify"
)

var (
	configPath = flag.String("c", "", "YAML configuration file")
	outPath    = flag.String("o", "", "output .asm file, - for stdout")
	logPath    = flag.String("log", "", "write logs to this file instead of stderr")
	entry      = flag.String("entry", "", "entry function of the bootstrap jump")
	noComments = flag.Bool("no-comments", false, "leave instruction comments out")
	showTree   = flag.Bool("tree", false, "print the macro expansion tree")
	runVerify  = flag.Bool("verify", false, "lint and emulate the generated assembly")
)

// captureSink keeps the lines it forwards so they can be verified after
// the run.
type captureSink struct {
	next  api.Sink
	lines []string
}

func (s *captureSink) Write(lines []string) error {
	s.lines = lines
	return s.next.Write(lines)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "vmtrans: "+format+"\n", args...)
	atexit.Exit(1)
}

func loadConfig() config.Config {
	cfg := config.Default()

	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fail("%v", err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		fail("%v", err)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "entry":
			cfg.Entry = *entry
		case "no-comments":
			cfg.Comments = !*noComments
		}
	})

	return cfg
}

func setupLogging(cfg config.Config) {
	w := os.Stderr

	if *logPath != "" {
		f, err := os.Create(*logPath)
		if err != nil {
			fail("%v", err)
		}
		atexit.Register(func() { f.Close() })
		w = f
	}

	slog.SetDefault(slog.New(cfg.Handler(w)))
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: vmtrans [flags] <dir|file.vm>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		atexit.Exit(2)
	}

	cfg := loadConfig()
	setupLogging(cfg)

	src, err := program.Open(flag.Arg(0))
	if err != nil {
		fail("%v", err)
	}

	driver := api.DriverBuilder{}.
		WithEntry(cfg.Entry).
		WithDefaultModule(cfg.Module).
		WithComments(cfg.Comments).
		Build()

	if *showTree {
		printTree(driver, src)
	}

	var sink api.Sink
	switch *outPath {
	case "-":
		sink = program.StreamSink{W: os.Stdout}
	case "":
		sink = program.FileSink{Path: src.OutputPath()}
	default:
		sink = program.FileSink{Path: *outPath}
	}

	capture := &captureSink{next: sink}
	if err := driver.Run(src, capture); err != nil {
		fail("%v", err)
	}

	if *runVerify {
		b := verify.CPUBuilder{}.
			WithMaxSteps(cfg.Verify.MaxSteps).
			WithStackBase(cfg.Verify.StackBase)

		report := verify.GenerateReportOn(b, capture.lines)
		report.WriteReport(os.Stderr)

		if !report.OK() {
			atexit.Exit(1)
		}
	}

	atexit.Exit(0)
}

func printTree(driver api.Driver, src *program.PathSource) {
	prog, err := src.Load()
	if err != nil {
		fail("%v", err)
	}

	steps, err := driver.Expand(prog)
	if err != nil {
		fail("%v", err)
	}

	fmt.Fprintln(os.Stderr, codegen.ExpansionTree(src.Name(), steps))
}
