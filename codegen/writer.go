// Package codegen translates VM instructions into Hack assembly.
//
// A Writer owns the generation state of one assembled program: a counter
// that makes comparison labels unique and a counter that numbers call
// sites. Both only grow, so units translated by the same Writer can be
// concatenated into one assembly file without label collisions. Translating
// an unrelated program requires a new Writer.
//
// The fixed routines (Comparators and Bootstrap) must each be emitted once
// per program, ahead of the translated units.
package codegen

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sarchlab/hackvm/vm"
)

// Translation errors.
var (
	ErrUnknownInstruction = errors.New("unknown instruction")
	ErrUnknownSegment     = errors.New("unknown segment")
	ErrIndexOutOfRange    = errors.New("index out of range")
	ErrReadOnlySegment    = errors.New("segment is read-only")
	ErrNoUnit             = errors.New("static access outside a unit")
	ErrInvalidOperand     = errors.New("invalid operand")
)

const (
	// DefaultEntryPoint is the function the bootstrap calls.
	DefaultEntryPoint = "Sys.init"

	// DefaultStackBase is where the bootstrap places the stack.
	DefaultStackBase = 256

	// MaxConstant is the largest value an A-instruction can load.
	MaxConstant = 1<<15 - 1
)

// Builder creates Writers.
type Builder struct {
	comments   bool
	entryPoint string
	stackBase  int
}

// NewBuilder returns a Builder with comments enabled and the standard entry
// point and stack base.
func NewBuilder() Builder {
	return Builder{
		comments:   true,
		entryPoint: DefaultEntryPoint,
		stackBase:  DefaultStackBase,
	}
}

// WithComments sets whether each translated block is preceded by a comment
// that echoes the VM instruction.
func (b Builder) WithComments(comments bool) Builder {
	b.comments = comments
	return b
}

// WithEntryPoint sets the function called by the bootstrap.
func (b Builder) WithEntryPoint(name string) Builder {
	if name == "" {
		panic("entry point must not be empty")
	}
	b.entryPoint = name
	return b
}

// WithStackBase sets the address the bootstrap loads into SP.
func (b Builder) WithStackBase(base int) Builder {
	if base < 0 || base > MaxConstant {
		panic(fmt.Sprintf("stack base %d out of range", base))
	}
	b.stackBase = base
	return b
}

// Build creates a Writer with fresh counters.
func (b Builder) Build() *Writer {
	if b.entryPoint == "" {
		b.entryPoint = DefaultEntryPoint
	}
	return &Writer{
		comments:   b.comments,
		entryPoint: b.entryPoint,
		stackBase:  b.stackBase,
	}
}

// Writer generates Hack assembly for one program.
type Writer struct {
	comments   bool
	entryPoint string
	stackBase  int

	uniqueCounter   int
	callSiteCounter int
}

// Counters returns the number of instructions translated and call sites
// emitted so far.
func (w *Writer) Counters() (unique, callSites int) {
	return w.uniqueCounter, w.callSiteCounter
}

// Translate returns the assembly for one instruction of the named unit.
// The unit name scopes static segment accesses.
func (w *Writer) Translate(unit string, inst vm.Instruction) ([]string, error) {
	id := w.uniqueCounter
	w.uniqueCounter++

	a := &asm{}
	if w.comments && inst != nil {
		a.comment(inst.String())
	}

	var err error
	switch inst := inst.(type) {
	case vm.Arithmetic:
		err = w.arithmetic(a, inst.Op, id)
	case vm.Push:
		err = w.push(a, unit, inst)
	case vm.Pop:
		err = w.pop(a, unit, inst)
	case vm.Label:
		err = w.label(a, inst.Name)
	case vm.Goto:
		err = w.goTo(a, inst.Name)
	case vm.IfGoto:
		err = w.ifGoto(a, inst.Name)
	case vm.Function:
		err = w.function(a, inst)
	case vm.Call:
		err = w.call(a, inst.Name, inst.NumArgs)
	case vm.Return:
		w.ret(a)
	default:
		err = errors.Wrapf(ErrUnknownInstruction, "%T", inst)
	}

	if err != nil {
		return nil, err
	}

	Trace("Translate",
		"Unit", unit,
		"Inst", inst.String(),
		"Lines", len(a.lines),
		"Counter", id,
	)

	return a.lines, nil
}

// asm accumulates assembly lines.
type asm struct {
	lines []string
}

func (a *asm) emit(lines ...string) {
	a.lines = append(a.lines, lines...)
}

func (a *asm) emitf(format string, args ...any) {
	a.lines = append(a.lines, fmt.Sprintf(format, args...))
}

func (a *asm) comment(text string) {
	a.emitf("// %s", text)
}

// pushD pushes the D register.
func (a *asm) pushD() {
	a.emit("@SP", "A=M", "M=D", "@SP", "M=M+1")
}

// popD pops the stack into the D register, leaving A at the popped slot.
func (a *asm) popD() {
	a.emit("@SP", "AM=M-1", "D=M")
}
