// Package testbench holds the VM programs used by the end-to-end tests and
// the plumbing to translate and run them.
package testbench

import (
	"embed"
	"io/fs"
	"sort"

	"github.com/pkg/errors"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/hackvm/api"
	"github.com/sarchlab/hackvm/verify"
	"github.com/sarchlab/hackvm/vm"
)

//go:embed */*.vm
var programs embed.FS

// Units parses the units of the named program in file name order.
func Units(name string) ([]vm.Unit, error) {
	files, err := fs.Glob(programs, name+"/*.vm")
	if err != nil {
		return nil, errors.Wrap(err, "testbench")
	}
	if len(files) == 0 {
		return nil, errors.Errorf("testbench: no program %q", name)
	}
	sort.Strings(files)

	units := make([]vm.Unit, 0, len(files))
	for _, file := range files {
		f, err := programs.Open(file)
		if err != nil {
			return nil, errors.Wrap(err, "testbench")
		}

		u, err := vm.Parse(vm.UnitName(file), f)
		f.Close()
		if err != nil {
			return nil, err
		}

		units = append(units, u)
	}

	return units, nil
}

// Translate translates the named program with d.
func Translate(name string, d api.Driver) ([]string, error) {
	units, err := Units(name)
	if err != nil {
		return nil, err
	}

	lines, _, err := d.TranslateUnits(units)
	return lines, err
}

// RunOptions controls Run.
type RunOptions struct {
	// Until stops the program at a label. Empty means run until the program
	// leaves its code.
	Until string

	MaxSteps int

	// Setup prepares the machine before the first instruction.
	Setup func(m *verify.Machine)
}

// Run assembles the program and runs it on an akita serial engine.
func Run(lines []string, opts RunOptions) (*verify.Machine, error) {
	img, err := verify.Assemble(lines)
	if err != nil {
		return nil, err
	}

	m := verify.NewMachine(img)
	if opts.Setup != nil {
		opts.Setup(m)
	}

	engine := sim.NewSerialEngine()
	builder := verify.NewRunnerBuilder().
		WithEngine(engine).
		WithFreq(1 * sim.GHz).
		WithMachine(m).
		WithMaxSteps(opts.MaxSteps)
	if opts.Until != "" {
		addr, ok := img.Labels[opts.Until]
		if !ok {
			return nil, errors.Errorf("testbench: unknown label %q", opts.Until)
		}
		builder = builder.WithBreakpoint(addr)
	}
	runner := builder.Build("CPU")

	runner.Start()
	if err := engine.Run(); err != nil {
		return nil, err
	}

	return m, runner.Err()
}
