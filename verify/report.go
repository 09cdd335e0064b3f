package verify

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Report is the outcome of linting, assembling and running a program.
type Report struct {
	Lines       int
	LintIssues  []Issue
	AssemblyErr error
	Machine     *Machine

	SimulationErr error
	SimulationOK  bool

	// StackBase is the address the stack dump starts at.
	StackBase int
}

// ReportOptions controls how GenerateReport runs the program.
type ReportOptions struct {
	MaxSteps  int
	Until     string
	StackBase int

	// Setup prepares the machine before it runs, e.g. by setting SP.
	Setup func(m *Machine)
}

// GenerateReport lints and assembles the program, then runs it on a
// Machine.
func GenerateReport(lines []string, opts ReportOptions) *Report {
	r := &Report{
		Lines:      len(lines),
		LintIssues: RunLint(lines),
		StackBase:  opts.StackBase,
	}

	img, err := Assemble(lines)
	if err != nil {
		r.AssemblyErr = err
		return r
	}

	r.Machine = NewMachine(img)
	if opts.Setup != nil {
		opts.Setup(r.Machine)
	}

	if opts.Until != "" {
		r.SimulationErr = r.Machine.RunUntilLabel(opts.Until, opts.MaxSteps)
	} else {
		r.SimulationErr = r.Machine.Run(opts.MaxSteps)
	}
	r.SimulationOK = r.SimulationErr == nil

	return r
}

// WriteReport writes a formatted report to a writer.
func (r *Report) WriteReport(w io.Writer) {
	separator := strings.Repeat("=", 60)

	fmt.Fprintln(w, separator)
	fmt.Fprintln(w, "STAGE 1: LINT")
	fmt.Fprintln(w, separator)
	if len(r.LintIssues) == 0 {
		fmt.Fprintln(w, "No lint issues found")
	}
	for _, issue := range r.LintIssues {
		fmt.Fprintf(w, "  %s\n", issue)
	}

	fmt.Fprintln(w, separator)
	fmt.Fprintln(w, "STAGE 2: SIMULATION")
	fmt.Fprintln(w, separator)
	switch {
	case r.AssemblyErr != nil:
		fmt.Fprintf(w, "Assembly failed: %v\n", r.AssemblyErr)
		return
	case r.SimulationOK:
		fmt.Fprintf(w, "Stopped after %d steps at pc=%d\n",
			r.Machine.Steps, r.Machine.PC)
	default:
		fmt.Fprintf(w, "Simulation error: %v\n", r.SimulationErr)
	}

	fmt.Fprintln(w, StateTable(r.Machine, r.StackBase))
}

var pointerNames = []string{"SP", "LCL", "ARG", "THIS", "THAT"}

// StateTable renders the pointer registers, temp segment and the stack
// from stackBase up to SP.
func StateTable(m *Machine, stackBase int) string {
	regTable := table.NewWriter()
	regTable.SetTitle("Registers")
	regTable.AppendHeader(table.Row{"Name", "Address", "Value"})

	for addr, name := range pointerNames {
		regTable.AppendRow(table.Row{name, addr, m.RAM[addr]})
	}
	for i := 0; i < 8; i++ {
		regTable.AppendRow(table.Row{fmt.Sprintf("temp %d", i), 5 + i, m.RAM[5+i]})
	}
	for i := 13; i < 16; i++ {
		regTable.AppendRow(table.Row{fmt.Sprintf("R%d", i), i, m.RAM[i]})
	}
	regTable.AppendFooter(table.Row{"A / D / PC", "", fmt.Sprintf("%d / %d / %d", m.A, m.D, m.PC)})

	stackTable := table.NewWriter()
	stackTable.SetTitle("Stack")
	stackTable.AppendHeader(table.Row{"Address", "Value"})
	for i, v := range m.Stack(stackBase) {
		stackTable.AppendRow(table.Row{stackBase + i, v})
	}

	return regTable.Render() + "\n" + stackTable.Render()
}
