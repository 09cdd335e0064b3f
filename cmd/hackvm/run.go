package main

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/spf13/cobra"

	"github.com/sarchlab/hackvm/api"
	"github.com/sarchlab/hackvm/codegen"
	"github.com/sarchlab/hackvm/verify"
)

var runFlags struct {
	steps     int
	until     string
	bootstrap string
	stackBase int
	monitor   bool
}

var runCmd = &cobra.Command{
	Use:   "run <file.asm | paths...>",
	Short: "Run a program on the Hack CPU simulator",
	Long: `Run executes a program on a simulated Hack CPU and prints the
registers and the stack when it stops. A single .asm file is run as is;
anything else is translated first, like the translate command does.

The program stops when it runs off the end of its code, reaches the label
given with --until, or exceeds --steps instructions. Without a bootstrap,
SP is set to --stack-base before the first instruction.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if runFlags.stackBase < 0 || runFlags.stackBase > codegen.MaxConstant {
			return errors.Errorf("stack base %d out of range", runFlags.stackBase)
		}

		lines, err := programLines(args)
		if err != nil {
			return err
		}

		img, err := verify.Assemble(lines)
		if err != nil {
			return err
		}

		m := verify.NewMachine(img)
		m.Poke(verify.SP, int16(runFlags.stackBase))

		engine := sim.NewSerialEngine()
		builder := verify.NewRunnerBuilder().
			WithEngine(engine).
			WithFreq(1 * sim.GHz).
			WithMachine(m).
			WithMaxSteps(runFlags.steps)
		if runFlags.until != "" {
			addr, ok := img.Labels[runFlags.until]
			if !ok {
				return errors.Errorf("unknown label %q", runFlags.until)
			}
			builder = builder.WithBreakpoint(addr)
		}
		runner := builder.Build("CPU")

		if runFlags.monitor {
			monitor := monitoring.NewMonitor()
			monitor.RegisterEngine(engine)
			monitor.RegisterComponent(runner)
			monitor.StartServer()
		}

		runner.Start()
		if err := engine.Run(); err != nil {
			return err
		}

		report := &verify.Report{
			Lines:         len(lines),
			LintIssues:    verify.RunLint(lines),
			Machine:       m,
			SimulationErr: runner.Err(),
			SimulationOK:  runner.Err() == nil,
			StackBase:     runFlags.stackBase,
		}
		report.WriteReport(cmd.OutOrStdout())

		return runner.Err()
	},
}

func init() {
	f := runCmd.Flags()
	f.IntVar(&runFlags.steps, "steps", 1000000, "maximum number of instructions")
	f.StringVar(&runFlags.until, "until", "", "stop at this label")
	f.StringVar(&runFlags.bootstrap, "bootstrap", "auto",
		"when to emit the bootstrap: auto, always or never")
	f.IntVar(&runFlags.stackBase, "stack-base", codegen.DefaultStackBase,
		"initial stack pointer")
	f.BoolVar(&runFlags.monitor, "monitor", false,
		"serve the akita monitor while running")

	rootCmd.AddCommand(runCmd)
}

func programLines(args []string) ([]string, error) {
	if len(args) == 1 && filepath.Ext(args[0]) == ".asm" {
		return readLines(args[0])
	}

	mode, err := api.ParseBootstrapMode(runFlags.bootstrap)
	if err != nil {
		return nil, err
	}

	units, err := api.FileSource{Paths: args}.Units()
	if err != nil {
		return nil, err
	}

	d := api.DriverBuilder{}.
		WithWriterBuilder(codegen.NewBuilder().WithStackBase(runFlags.stackBase)).
		WithBootstrap(mode).
		Build()
	lines, _, err := d.TranslateUnits(units)

	return lines, err
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "readLines")
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	return lines, errors.Wrap(scanner.Err(), "readLines")
}
