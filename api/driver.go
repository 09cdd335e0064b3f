// Package api defines the driver that turns a sequence of VM units into
// one Hack assembly program.
package api

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	"github.com/sarchlab/hackvm/codegen"
	"github.com/sarchlab/hackvm/vm"
)

// ErrNoUnits is returned when a source yields nothing to translate.
var ErrNoUnits = errors.New("no units to translate")

// Source supplies the units of a program in translation order.
type Source interface {
	Units() ([]vm.Unit, error)
}

// Sink consumes the assembled program.
type Sink interface {
	WriteLines(lines []string) error
}

// Driver translates whole programs.
type Driver interface {
	// Translate reads all units from src and, if every unit translates,
	// writes the program to sink. Nothing is written on failure.
	Translate(src Source, sink Sink) (Stats, error)

	// TranslateUnits returns the assembly of a program made of units.
	TranslateUnits(units []vm.Unit) ([]string, Stats, error)
}

// BootstrapMode decides whether a program starts with the bootstrap.
type BootstrapMode int

// Bootstrap modes. BootstrapAuto emits the bootstrap only when more than
// one unit is linked together.
const (
	BootstrapAuto BootstrapMode = iota
	BootstrapAlways
	BootstrapNever
)

var bootstrapModeNames = []string{"auto", "always", "never"}

func (m BootstrapMode) String() string {
	if m < 0 || int(m) >= len(bootstrapModeNames) {
		return fmt.Sprintf("BootstrapMode(%d)", int(m))
	}
	return bootstrapModeNames[m]
}

// ParseBootstrapMode maps "auto", "always" or "never" to a mode.
func ParseBootstrapMode(s string) (BootstrapMode, error) {
	for i, name := range bootstrapModeNames {
		if strings.EqualFold(s, name) {
			return BootstrapMode(i), nil
		}
	}
	return 0, errors.Errorf("unknown bootstrap mode %q", s)
}

func (m BootstrapMode) enabled(numUnits int) bool {
	switch m {
	case BootstrapAlways:
		return true
	case BootstrapNever:
		return false
	}
	return numUnits > 1
}

// UnitStats describes the translation of one unit.
type UnitStats struct {
	Name         string
	Instructions int
	Lines        int
}

// Stats describes the translation of a program.
type Stats struct {
	Units           []UnitStats
	BootstrapLines  int
	ComparatorLines int
	TotalLines      int
}

// TranslationError locates a failing instruction.
type TranslationError struct {
	Unit string

	// Index is the 0-based position of the instruction in the unit.
	Index int

	// Line is the source line, or 0 if unknown.
	Line int

	Inst vm.Instruction
	Err  error
}

func (e *TranslationError) Error() string {
	pos := fmt.Sprintf("instruction %d", e.Index+1)
	if e.Line > 0 {
		pos = fmt.Sprintf("line %d", e.Line)
	}

	inst := "<nil>"
	if e.Inst != nil {
		inst = e.Inst.String()
	}

	return fmt.Sprintf("%s: %s: %s: %v", e.Unit, pos, inst, e.Err)
}

func (e *TranslationError) Unwrap() error { return e.Err }

type driverImpl struct {
	writerBuilder codegen.Builder
	bootstrap     BootstrapMode
}

func (d *driverImpl) Translate(src Source, sink Sink) (Stats, error) {
	units, err := src.Units()
	if err != nil {
		return Stats{}, errors.Wrap(err, "read units")
	}

	lines, stats, err := d.TranslateUnits(units)
	if err != nil {
		return stats, err
	}

	if err := sink.WriteLines(lines); err != nil {
		return stats, errors.Wrap(err, "write program")
	}

	return stats, nil
}

func (d *driverImpl) TranslateUnits(units []vm.Unit) ([]string, Stats, error) {
	if len(units) == 0 {
		return nil, Stats{}, ErrNoUnits
	}

	// Each program gets fresh generation state.
	w := d.writerBuilder.Build()

	var stats Stats
	var lines []string

	if d.bootstrap.enabled(len(units)) {
		boot := w.Bootstrap()
		stats.BootstrapLines = len(boot)
		lines = append(lines, boot...)
	}

	cmp := w.Comparators()
	stats.ComparatorLines = len(cmp)
	lines = append(lines, cmp...)

	for _, u := range units {
		out, err := translateUnit(w, u)
		if err != nil {
			return nil, stats, err
		}

		stats.Units = append(stats.Units, UnitStats{
			Name:         u.Name,
			Instructions: len(u.Instructions),
			Lines:        len(out),
		})
		lines = append(lines, out...)

		slog.Info("Translated unit",
			"Unit", u.Name,
			"Instructions", len(u.Instructions),
			"Lines", len(out),
		)
	}

	stats.TotalLines = len(lines)

	return lines, stats, nil
}

// translateUnit buffers the unit so that a failure leaves no partial
// output behind.
func translateUnit(w *codegen.Writer, u vm.Unit) ([]string, error) {
	var out []string

	for i, inst := range u.Instructions {
		block, err := w.Translate(u.Name, inst)
		if err != nil {
			return nil, &TranslationError{
				Unit:  u.Name,
				Index: i,
				Line:  u.Line(i),
				Inst:  inst,
				Err:   err,
			}
		}
		out = append(out, block...)
	}

	return out, nil
}
