package codegen

import (
	"github.com/pkg/errors"
)

func nameMustBeValid(kind, name string) error {
	if name == "" {
		return errors.Wrapf(ErrInvalidOperand, "%s without a name", kind)
	}
	return nil
}

func (w *Writer) label(a *asm, name string) error {
	if err := nameMustBeValid("label", name); err != nil {
		return err
	}
	a.emit("(" + name + ")")
	return nil
}

func (w *Writer) goTo(a *asm, name string) error {
	if err := nameMustBeValid("goto", name); err != nil {
		return err
	}
	a.emit("@"+name, "0;JMP")
	return nil
}

func (w *Writer) ifGoto(a *asm, name string) error {
	if err := nameMustBeValid("if-goto", name); err != nil {
		return err
	}
	a.popD()
	a.emit("@"+name, "D;JNE")
	return nil
}
