package codegen

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/sarchlab/hackvm/vm"
)

const (
	tempBase  = 5
	tempSlots = 8

	pointerSlots = 2
)

// baseRegisters holds the base-pointer register of each indirect segment.
var baseRegisters = map[vm.Segment]string{
	vm.SegLocal:    "LCL",
	vm.SegArgument: "ARG",
	vm.SegThis:     "THIS",
	vm.SegThat:     "THAT",
}

var pointerRegisters = [pointerSlots]string{"THIS", "THAT"}

// location describes how a segment slot is reached. Exactly one of base
// and symbol is set.
type location struct {
	base   string
	offset int
	symbol string
}

func (w *Writer) resolve(unit string, seg vm.Segment, index int) (location, error) {
	if index < 0 {
		return location{}, errors.Wrapf(ErrIndexOutOfRange, "%s %d", seg, index)
	}

	switch seg {
	case vm.SegLocal, vm.SegArgument, vm.SegThis, vm.SegThat:
		return location{base: baseRegisters[seg], offset: index}, nil
	case vm.SegTemp:
		if index >= tempSlots {
			return location{}, errors.Wrapf(ErrIndexOutOfRange,
				"temp %d: temp has %d slots", index, tempSlots)
		}
		return location{symbol: "R" + strconv.Itoa(tempBase+index)}, nil
	case vm.SegPointer:
		if index >= pointerSlots {
			return location{}, errors.Wrapf(ErrIndexOutOfRange,
				"pointer %d: pointer has %d slots", index, pointerSlots)
		}
		return location{symbol: pointerRegisters[index]}, nil
	case vm.SegStatic:
		if unit == "" {
			return location{}, errors.Wrapf(ErrNoUnit, "static %d", index)
		}
		return location{symbol: StaticSymbol(unit, index)}, nil
	case vm.SegConstant:
		return location{}, errors.Wrap(ErrReadOnlySegment, "constant")
	}

	return location{}, errors.Wrapf(ErrUnknownSegment, "%s", seg)
}

// StaticSymbol names the variable backing static slot index of a unit. The
// assembler allocates a distinct address for every distinct symbol, so
// units never share static storage.
func StaticSymbol(unit string, index int) string {
	return unit + "." + strconv.Itoa(index)
}

func (w *Writer) push(a *asm, unit string, inst vm.Push) error {
	if inst.Segment == vm.SegConstant {
		if inst.Index < 0 || inst.Index > MaxConstant {
			return errors.Wrapf(ErrIndexOutOfRange,
				"constant %d: must be within 0..%d", inst.Index, MaxConstant)
		}
		a.emitf("@%d", inst.Index)
		a.emit("D=A")
		a.pushD()
		return nil
	}

	loc, err := w.resolve(unit, inst.Segment, inst.Index)
	if err != nil {
		return err
	}

	if loc.symbol != "" {
		a.emit("@"+loc.symbol, "D=M")
	} else {
		a.emitf("@%d", loc.offset)
		a.emit("D=A", "@"+loc.base, "A=D+M", "D=M")
	}
	a.pushD()

	return nil
}

func (w *Writer) pop(a *asm, unit string, inst vm.Pop) error {
	loc, err := w.resolve(unit, inst.Segment, inst.Index)
	if err != nil {
		return err
	}

	if loc.symbol != "" {
		a.popD()
		a.emit("@"+loc.symbol, "M=D")
		return nil
	}

	// The target address is staged in R13 because D is needed for the
	// popped value.
	a.emitf("@%d", loc.offset)
	a.emit("D=A", "@"+loc.base, "D=D+M", "@R13", "M=D")
	a.popD()
	a.emit("@R13", "A=M", "M=D")

	return nil
}
