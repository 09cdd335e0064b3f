package codegen

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/sarchlab/hackvm/vm"
)

// frameSize is the number of words a call site pushes before the callee
// runs: the return address and the four saved base pointers.
const frameSize = 5

// savedPointers lists the base pointers in the order a call saves them.
var savedPointers = []string{"LCL", "ARG", "THIS", "THAT"}

// ReturnLabel names the return address of the n-th call site.
func ReturnLabel(n int) string {
	return "$ret." + strconv.Itoa(n)
}

func (w *Writer) function(a *asm, inst vm.Function) error {
	if err := nameMustBeValid("function", inst.Name); err != nil {
		return err
	}
	if inst.NumVars < 0 {
		return errors.Wrapf(ErrInvalidOperand, "function %s has %d locals",
			inst.Name, inst.NumVars)
	}

	a.emit("(" + inst.Name + ")")
	for i := 0; i < inst.NumVars; i++ {
		a.emit("@0", "D=A")
		a.pushD()
	}

	return nil
}

func (w *Writer) call(a *asm, name string, numArgs int) error {
	if err := nameMustBeValid("call", name); err != nil {
		return err
	}
	if numArgs < 0 || numArgs > MaxConstant-frameSize {
		return errors.Wrapf(ErrInvalidOperand, "call %s with %d arguments",
			name, numArgs)
	}

	ret := ReturnLabel(w.callSiteCounter)
	w.callSiteCounter++

	a.emit("@"+ret, "D=A")
	a.pushD()

	for _, reg := range savedPointers {
		a.emit("@"+reg, "D=M")
		a.pushD()
	}

	// ARG = SP - 5 - numArgs
	a.emit("@SP", "D=M")
	a.emitf("@%d", frameSize+numArgs)
	a.emit("D=D-A", "@ARG", "M=D")

	// LCL = SP
	a.emit("@SP", "D=M", "@LCL", "M=D")

	a.emit("@"+name, "0;JMP")
	a.emit("(" + ret + ")")

	return nil
}

// ret unwinds the callee's frame. The frame base goes to R13 and the return
// address to R14 before anything is overwritten: with zero arguments the
// return value lands on the slot that holds the return address.
func (w *Writer) ret(a *asm) {
	a.emit("@LCL", "D=M", "@R13", "M=D")

	a.emitf("@%d", frameSize)
	a.emit("A=D-A", "D=M", "@R14", "M=D")

	// *ARG = pop()
	a.popD()
	a.emit("@ARG", "A=M", "M=D")

	// SP = ARG + 1
	a.emit("@ARG", "D=M+1", "@SP", "M=D")

	for i := len(savedPointers) - 1; i >= 0; i-- {
		restore(a, savedPointers[i], len(savedPointers)-i)
	}

	a.emit("@R14", "A=M", "0;JMP")
}

// restore loads reg from the word offset slots below the frame base.
func restore(a *asm, reg string, offset int) {
	if offset == 1 {
		a.emit("@R13", "A=M-1")
	} else {
		a.emitf("@%d", offset)
		a.emit("D=A", "@R13", "A=M-D")
	}
	a.emit("D=M", "@"+reg, "M=D")
}
