package verify

import (
	"github.com/pkg/errors"
)

// Simulator errors.
var (
	ErrHalted    = errors.New("machine halted")
	ErrStepLimit = errors.New("step limit exceeded")
	ErrAddress   = errors.New("address out of range")
)

// MemorySize is the number of RAM words.
const MemorySize = 1 << 15

// Machine is a functional model of the Hack CPU.
type Machine struct {
	image *Image

	RAM  []int16
	A, D int16
	PC   int

	// Steps counts executed instructions.
	Steps int
}

// NewMachine creates a machine with zeroed RAM that starts at ROM address 0.
func NewMachine(img *Image) *Machine {
	return &Machine{
		image: img,
		RAM:   make([]int16, MemorySize),
	}
}

// Image returns the program the machine runs.
func (m *Machine) Image() *Image {
	return m.image
}

// Halted reports whether PC has left the ROM.
func (m *Machine) Halted() bool {
	return m.PC < 0 || m.PC >= len(m.image.ROM)
}

// Step executes one instruction.
func (m *Machine) Step() error {
	if m.Halted() {
		return errors.Wrapf(ErrHalted, "pc=%d", m.PC)
	}

	inst := m.image.ROM[m.PC]
	m.Steps++

	if inst.IsA {
		m.A = int16(inst.Value)
		m.PC++
		return nil
	}

	addr := int(uint16(m.A))
	needM := inst.readM || inst.Dest&DestM != 0
	if needM && addr >= len(m.RAM) {
		return errors.Wrapf(ErrAddress, "line %d: M[%d]", inst.Line, addr)
	}

	var mval int16
	if inst.readM {
		mval = m.RAM[addr]
	}

	out := inst.comp(m.A, m.D, mval)
	oldA := m.A

	if inst.Dest&DestM != 0 {
		m.RAM[addr] = out
	}
	if inst.Dest&DestA != 0 {
		m.A = out
	}
	if inst.Dest&DestD != 0 {
		m.D = out
	}

	if jumpTaken(inst.Jump, out) {
		m.PC = int(uint16(oldA))
	} else {
		m.PC++
	}

	return nil
}

func jumpTaken(jump string, v int16) bool {
	switch jump {
	case "JGT":
		return v > 0
	case "JEQ":
		return v == 0
	case "JGE":
		return v >= 0
	case "JLT":
		return v < 0
	case "JNE":
		return v != 0
	case "JLE":
		return v <= 0
	case "JMP":
		return true
	}
	return false
}

// Run executes until the machine halts. It fails if that takes more than
// maxSteps instructions.
func (m *Machine) Run(maxSteps int) error {
	for i := 0; i < maxSteps; i++ {
		if m.Halted() {
			return nil
		}
		if err := m.Step(); err != nil {
			return err
		}
	}

	if m.Halted() {
		return nil
	}
	return errors.Wrapf(ErrStepLimit, "%d steps, pc=%d", maxSteps, m.PC)
}

// RunUntil executes until PC reaches addr.
func (m *Machine) RunUntil(addr int, maxSteps int) error {
	for i := 0; i < maxSteps; i++ {
		if m.PC == addr {
			return nil
		}
		if err := m.Step(); err != nil {
			return err
		}
	}

	if m.PC == addr {
		return nil
	}
	return errors.Wrapf(ErrStepLimit, "%d steps, pc=%d", maxSteps, m.PC)
}

// RunUntilLabel executes until PC reaches the named label.
func (m *Machine) RunUntilLabel(label string, maxSteps int) error {
	addr, ok := m.image.Labels[label]
	if !ok {
		return errors.Errorf("unknown label %q", label)
	}
	return m.RunUntil(addr, maxSteps)
}

// Peek reads a RAM word.
func (m *Machine) Peek(addr int) int16 {
	return m.RAM[addr]
}

// Poke writes a RAM word.
func (m *Machine) Poke(addr int, v int16) {
	m.RAM[addr] = v
}

// Symbol reads the RAM word backing a variable or predefined symbol.
func (m *Machine) Symbol(sym string) (int16, bool) {
	if addr, ok := predefined[sym]; ok {
		return m.RAM[addr], true
	}
	if addr, ok := m.image.Variables[sym]; ok {
		return m.RAM[addr], true
	}
	return 0, false
}

// SP returns the stack pointer.
func (m *Machine) SP() int {
	return int(m.RAM[SP])
}

// Top returns the word below the stack pointer.
func (m *Machine) Top() int16 {
	return m.RAM[m.SP()-1]
}

// Stack returns the words from base up to the stack pointer.
func (m *Machine) Stack(base int) []int16 {
	sp := m.SP()
	if sp > len(m.RAM) {
		sp = len(m.RAM)
	}
	if base < 0 || sp <= base {
		return nil
	}
	out := make([]int16, sp-base)
	copy(out, m.RAM[base:sp])
	return out
}
