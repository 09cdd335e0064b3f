// Package vm defines the instructions of the stack-based VM language and a
// scanner that reads them from .vm source text.
package vm

import "fmt"

// Op is the operation of an arithmetic or logic instruction.
type Op int

// The arithmetic and logic operations.
const (
	OpAdd Op = iota
	OpSub
	OpNeg
	OpEq
	OpGt
	OpLt
	OpAnd
	OpOr
	OpNot
	numOps
)

var opNames = [numOps]string{
	OpAdd: "add",
	OpSub: "sub",
	OpNeg: "neg",
	OpEq:  "eq",
	OpGt:  "gt",
	OpLt:  "lt",
	OpAnd: "and",
	OpOr:  "or",
	OpNot: "not",
}

func (o Op) String() string {
	if o < 0 || o >= numOps {
		return fmt.Sprintf("Op(%d)", int(o))
	}
	return opNames[o]
}

// IsUnary reports whether the operation consumes a single operand.
func (o Op) IsUnary() bool {
	return o == OpNeg || o == OpNot
}

// IsComparison reports whether the operation produces a boolean.
func (o Op) IsComparison() bool {
	return o == OpEq || o == OpGt || o == OpLt
}

// Segment names a category of addressable storage.
type Segment int

// The memory segments.
const (
	SegConstant Segment = iota
	SegLocal
	SegArgument
	SegThis
	SegThat
	SegTemp
	SegPointer
	SegStatic
	numSegments
)

var segmentNames = [numSegments]string{
	SegConstant: "constant",
	SegLocal:    "local",
	SegArgument: "argument",
	SegThis:     "this",
	SegThat:     "that",
	SegTemp:     "temp",
	SegPointer:  "pointer",
	SegStatic:   "static",
}

func (s Segment) String() string {
	if s < 0 || s >= numSegments {
		return fmt.Sprintf("Segment(%d)", int(s))
	}
	return segmentNames[s]
}

// Instruction is one VM instruction. The set of implementations is closed:
// Arithmetic, Push, Pop, Label, Goto, IfGoto, Function, Call and Return.
type Instruction interface {
	fmt.Stringer
	isInstruction()
}

// Arithmetic applies Op to the top of the stack.
type Arithmetic struct {
	Op Op
}

// Push pushes the value at Segment[Index] onto the stack. For the constant
// segment, Index is the value itself.
type Push struct {
	Segment Segment
	Index   int
}

// Pop pops the top of the stack into Segment[Index].
type Pop struct {
	Segment Segment
	Index   int
}

// Label marks a jump target.
type Label struct {
	Name string
}

// Goto jumps unconditionally to a label.
type Goto struct {
	Name string
}

// IfGoto pops the stack and jumps to a label if the value is nonzero.
type IfGoto struct {
	Name string
}

// Function marks the entry of a function that uses NumVars local
// variables.
type Function struct {
	Name    string
	NumVars int
}

// Call calls a function after NumArgs arguments have been pushed.
type Call struct {
	Name    string
	NumArgs int
}

// Return returns from the current function.
type Return struct{}

func (Arithmetic) isInstruction() {}
func (Push) isInstruction()       {}
func (Pop) isInstruction()        {}
func (Label) isInstruction()      {}
func (Goto) isInstruction()       {}
func (IfGoto) isInstruction()     {}
func (Function) isInstruction()   {}
func (Call) isInstruction()       {}
func (Return) isInstruction()     {}

func (i Arithmetic) String() string { return i.Op.String() }

func (i Push) String() string {
	return fmt.Sprintf("push %s %d", i.Segment, i.Index)
}

func (i Pop) String() string {
	return fmt.Sprintf("pop %s %d", i.Segment, i.Index)
}

func (i Label) String() string  { return "label " + i.Name }
func (i Goto) String() string   { return "goto " + i.Name }
func (i IfGoto) String() string { return "if-goto " + i.Name }

func (i Function) String() string {
	return fmt.Sprintf("function %s %d", i.Name, i.NumVars)
}

func (i Call) String() string {
	return fmt.Sprintf("call %s %d", i.Name, i.NumArgs)
}

func (Return) String() string { return "return" }

// Unit is the instruction stream of one source file. The unit name scopes
// the static segment.
type Unit struct {
	Name         string
	Instructions []Instruction

	// Lines holds the 1-based source line of each instruction. It may be
	// nil for units that were not scanned from text.
	Lines []int
}

// Line returns the source line of the i-th instruction, or 0 if unknown.
func (u Unit) Line(i int) int {
	if i < 0 || i >= len(u.Lines) {
		return 0
	}
	return u.Lines[i]
}
