package codegen

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sarchlab/hackvm/vm"
)

// binaryComp is the computation that combines x (in M) with y (in D).
var binaryComp = map[vm.Op]string{
	vm.OpAdd: "M=M+D",
	vm.OpSub: "M=M-D",
	vm.OpAnd: "M=D&M",
	vm.OpOr:  "M=D|M",
}

var unaryComp = map[vm.Op]string{
	vm.OpNeg: "M=-M",
	vm.OpNot: "M=!M",
}

func (w *Writer) arithmetic(a *asm, op vm.Op, id int) error {
	if comp, ok := binaryComp[op]; ok {
		a.popD()
		a.emit("A=A-1", comp)
		return nil
	}

	if comp, ok := unaryComp[op]; ok {
		a.emit("@SP", "A=M-1", comp)
		return nil
	}

	if op.IsComparison() {
		w.compare(a, op, id)
		return nil
	}

	return errors.Wrapf(ErrUnknownInstruction, "%s", op)
}

// CompareLabel names the resume point of the comparison translated as the
// id-th instruction of the program.
func CompareLabel(id int) string {
	return "COMPARE_" + strconv.Itoa(id)
}

// compare leaves x-y in the slot of x, calls the shared comparator routine
// with the resume address in R13, and pushes the slot back once the
// routine has replaced the difference with a boolean.
func (w *Writer) compare(a *asm, op vm.Op, id int) {
	resume := CompareLabel(id)

	a.popD()
	a.emit("@SP", "AM=M-1", "D=M-D", "M=D")
	a.emit("@"+resume, "D=A", "@R13", "M=D")
	a.emit("@"+strings.ToUpper(op.String()), "0;JMP")
	a.emit("(" + resume + ")")
	a.emit("@SP", "M=M+1")
}
