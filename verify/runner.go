package verify

import (
	"github.com/pkg/errors"
	"github.com/sarchlab/akita/v4/sim"
)

// Runner executes a Machine from an akita engine, one instruction per
// tick. It stops ticking when the machine halts, reaches the breakpoint,
// exceeds the step limit or faults.
type Runner struct {
	*sim.TickingComponent

	machine    *Machine
	breakpoint int
	maxSteps   int
	err        error
}

// RunnerBuilder creates Runners.
type RunnerBuilder struct {
	engine     sim.Engine
	freq       sim.Freq
	machine    *Machine
	breakpoint int
	maxSteps   int
}

// NewRunnerBuilder returns a builder with no breakpoint and no step limit.
func NewRunnerBuilder() RunnerBuilder {
	return RunnerBuilder{
		freq:       1 * sim.GHz,
		breakpoint: -1,
	}
}

// WithEngine sets the engine.
func (b RunnerBuilder) WithEngine(engine sim.Engine) RunnerBuilder {
	b.engine = engine
	return b
}

// WithFreq sets the instruction rate.
func (b RunnerBuilder) WithFreq(freq sim.Freq) RunnerBuilder {
	b.freq = freq
	return b
}

// WithMachine sets the machine to drive.
func (b RunnerBuilder) WithMachine(m *Machine) RunnerBuilder {
	b.machine = m
	return b
}

// WithBreakpoint stops the runner when PC reaches addr.
func (b RunnerBuilder) WithBreakpoint(addr int) RunnerBuilder {
	b.breakpoint = addr
	return b
}

// WithMaxSteps bounds the number of executed instructions. Zero means no
// bound.
func (b RunnerBuilder) WithMaxSteps(n int) RunnerBuilder {
	b.maxSteps = n
	return b
}

// Build creates a Runner.
func (b RunnerBuilder) Build(name string) *Runner {
	if b.machine == nil {
		panic("runner needs a machine")
	}

	r := &Runner{
		machine:    b.machine,
		breakpoint: b.breakpoint,
		maxSteps:   b.maxSteps,
	}
	r.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, r)

	return r
}

// Start schedules the first tick.
func (r *Runner) Start() {
	r.TickNow()
}

// Machine returns the driven machine.
func (r *Runner) Machine() *Machine {
	return r.machine
}

// Err returns the fault that stopped the runner, if any.
func (r *Runner) Err() error {
	return r.err
}

// AtBreakpoint reports whether the runner stopped at its breakpoint.
func (r *Runner) AtBreakpoint() bool {
	return r.breakpoint >= 0 && r.machine.PC == r.breakpoint
}

// Tick executes one instruction.
func (r *Runner) Tick() (madeProgress bool) {
	if r.err != nil || r.machine.Halted() || r.AtBreakpoint() {
		return false
	}

	if r.maxSteps > 0 && r.machine.Steps >= r.maxSteps {
		r.err = errors.Wrapf(ErrStepLimit, "%d steps, pc=%d",
			r.maxSteps, r.machine.PC)
		return false
	}

	if err := r.machine.Step(); err != nil {
		r.err = err
		return false
	}

	return true
}
