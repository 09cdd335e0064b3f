package codegen

// comparator describes one routine of the shared comparator block. skip is
// the jump condition on x-y under which the result is false.
type comparator struct {
	name string
	skip string
}

var comparators = []comparator{
	{name: "EQ", skip: "JNE"},
	{name: "LT", skip: "JGE"},
	{name: "GT", skip: "JLE"},
}

// CodeLabel marks the end of the comparator block.
const CodeLabel = "CODE"

// Comparators returns the shared comparator block. A comparison site
// leaves x-y at *SP and its resume address in R13; the routine overwrites
// *SP with -1 (true) or 0 (false) and jumps back through R13. The block is
// jumped over, so it may sit anywhere before the first comparison.
func (w *Writer) Comparators() []string {
	a := &asm{}
	if w.comments {
		a.comment("comparator routines")
	}

	a.emit("@"+CodeLabel, "0;JMP")
	for _, c := range comparators {
		notLabel := "NOT_" + c.name
		a.emit(
			"("+c.name+")",
			"@SP", "A=M", "D=M",
			"@"+notLabel, "D;"+c.skip,
			"@SP", "A=M", "M=-1",
			"@R13", "A=M", "0;JMP",
			"("+notLabel+")",
			"@SP", "A=M", "M=0",
			"@R13", "A=M", "0;JMP",
		)
	}
	a.emit("(" + CodeLabel + ")")

	return a.lines
}

// Bootstrap returns the program prologue: it points SP at the stack base
// and calls the entry point with no arguments. The call consumes a call
// site number like any other call.
func (w *Writer) Bootstrap() []string {
	a := &asm{}
	if w.comments {
		a.comment("bootstrap")
	}

	a.emitf("@%d", w.stackBase)
	a.emit("D=A", "@SP", "M=D")

	if w.comments {
		a.comment("call " + w.entryPoint + " 0")
	}
	if err := w.call(a, w.entryPoint, 0); err != nil {
		panic(err)
	}

	Trace("Bootstrap", "Entry", w.entryPoint, "Lines", len(a.lines))

	return a.lines
}
