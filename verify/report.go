package verify

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// VerificationReport represents a complete verification report
type VerificationReport struct {
	LineCount     int
	LintIssues    []Issue
	StructIssues  []Issue
	FlowIssues    []Issue
	SimulationErr error
	SimulationOK  bool
	CPU           *CPU
	StackBase     int
}

// GenerateReport runs both lint and the emulator, returns a report
func GenerateReport(lines []string, maxSteps int) *VerificationReport {
	return GenerateReportOn(CPUBuilder{}.WithMaxSteps(maxSteps), lines)
}

// GenerateReportOn is GenerateReport with a CPU made by b.
func GenerateReportOn(b CPUBuilder, lines []string) *VerificationReport {
	report := &VerificationReport{
		LineCount: len(lines),
		StackBase: DefaultStackBase,
	}

	report.LintIssues = RunLint(lines)
	for _, issue := range report.LintIssues {
		if issue.Type == IssueStruct {
			report.StructIssues = append(report.StructIssues, issue)
		} else {
			report.FlowIssues = append(report.FlowIssues, issue)
		}
	}

	report.CPU, report.SimulationErr = ExecuteOn(b, lines, nil)
	report.SimulationOK = report.SimulationErr == nil
	if report.CPU != nil {
		report.StackBase = report.CPU.StackBase()
	}

	return report
}

// StateTable renders the registers and the stack of a CPU.
func StateTable(c *CPU, stackBase int) string {
	regTable := table.NewWriter()
	regTable.SetTitle("Registers")
	regTable.AppendHeader(table.Row{"SP", "LCL", "ARG", "THIS", "THAT", "R13", "R14", "R15", "Steps"})
	regTable.AppendRow(table.Row{
		c.RAM(0), c.RAM(1), c.RAM(2), c.RAM(3), c.RAM(4),
		c.RAM(13), c.RAM(14), c.RAM(15), c.Steps(),
	})

	tempTable := table.NewWriter()
	tempTable.SetTitle("Temp")
	header := table.Row{}
	row := table.Row{}
	for i := 0; i < 8; i++ {
		header = append(header, fmt.Sprintf("R%d", 5+i))
		row = append(row, c.RAM(5+i))
	}
	tempTable.AppendHeader(header)
	tempTable.AppendRow(row)

	stackTable := table.NewWriter()
	stackTable.SetTitle("Stack")
	stackTable.AppendHeader(table.Row{"Address", "Value"})
	for i, v := range c.Stack(stackBase) {
		stackTable.AppendRow(table.Row{stackBase + i, v})
	}

	return regTable.Render() + "\n" + tempTable.Render() + "\n" + stackTable.Render()
}

// IssueTable renders lint issues.
func IssueTable(issues []Issue) string {
	t := table.NewWriter()
	t.SetTitle("Lint Issues")
	t.AppendHeader(table.Row{"#", "Type", "Line", "Message"})
	for i, issue := range issues {
		t.AppendRow(table.Row{i + 1, issue.Type, issue.Line, issue.Message})
	}

	return t.Render()
}

// WriteReport writes a formatted report to a writer
func (r *VerificationReport) WriteReport(w io.Writer) {
	separator := strings.Repeat("=", 60)

	fmt.Fprintln(w, separator)
	fmt.Fprintln(w, "ASSEMBLY VERIFICATION REPORT")
	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "\n✓ Loaded %d lines\n", r.LineCount)

	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "STAGE 1: STATIC LINT CHECKS")
	fmt.Fprintln(w, separator)

	if len(r.LintIssues) == 0 {
		fmt.Fprintln(w, "✓ No lint issues found!")
	} else {
		fmt.Fprintf(w, "⚠ Found %d lint issues:\n", len(r.LintIssues))
		fmt.Fprintln(w, IssueTable(r.LintIssues))
	}

	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "STAGE 2: EMULATION")
	fmt.Fprintln(w, separator)

	if r.SimulationOK {
		fmt.Fprintln(w, "✓ Emulation completed successfully")
	} else {
		fmt.Fprintf(w, "⚠ Emulation error: %v\n", r.SimulationErr)
	}

	if r.CPU != nil {
		fmt.Fprintln(w, StateTable(r.CPU, r.StackBase))
	}

	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "VERIFICATION SUMMARY")
	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "Lint Result: %d issues detected (%d STRUCT, %d FLOW)\n",
		len(r.LintIssues), len(r.StructIssues), len(r.FlowIssues))

	simStatus := "SUCCESS"
	if !r.SimulationOK {
		simStatus = "FAILED: " + r.SimulationErr.Error()
	}
	fmt.Fprintf(w, "Emulation Result: %s\n", simStatus)
	fmt.Fprintln(w)
}

// OK reports whether lint and emulation both passed.
func (r *VerificationReport) OK() bool {
	return len(r.LintIssues) == 0 && r.SimulationOK
}

// SaveReportToFile saves the report to a file
func (r *VerificationReport) SaveReportToFile(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	r.WriteReport(file)
	return nil
}
