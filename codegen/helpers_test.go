package codegen_test

import (
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hackvm/codegen"
	"github.com/sarchlab/hackvm/verify"
	"github.com/sarchlab/hackvm/vm"
)

// Initial machine state used when a program runs without a bootstrap.
const (
	stackBase = 256
	initLCL   = 300
	initARG   = 400
	initTHIS  = 3000
	initTHAT  = 3010

	maxSteps = 1000000
)

// program collects the assembly of one test program.
type program struct {
	w     *codegen.Writer
	lines []string
}

func newProgram() *program {
	w := codegen.NewBuilder().Build()
	return &program{w: w, lines: w.Comparators()}
}

func (p *program) add(unit string, insts ...vm.Instruction) *program {
	for _, inst := range insts {
		out, err := p.w.Translate(unit, inst)
		Expect(err).NotTo(HaveOccurred(), "translating %s", inst)
		p.lines = append(p.lines, out...)
	}
	return p
}

func (p *program) machine() *verify.Machine {
	Expect(verify.RunLint(p.lines)).To(BeEmpty())

	img, err := verify.Assemble(p.lines)
	Expect(err).NotTo(HaveOccurred())

	m := verify.NewMachine(img)
	m.Poke(verify.SP, stackBase)
	m.Poke(verify.LCL, initLCL)
	m.Poke(verify.ARG, initARG)
	m.Poke(verify.THIS, initTHIS)
	m.Poke(verify.THAT, initTHAT)

	return m
}

// run executes the program until it falls off the end.
func (p *program) run() *verify.Machine {
	m := p.machine()
	Expect(m.Run(maxSteps)).To(Succeed())
	return m
}

// runUntil executes the program until it reaches label.
func (p *program) runUntil(label string) *verify.Machine {
	m := p.machine()
	Expect(m.RunUntilLabel(label, maxSteps)).To(Succeed())
	return m
}

func expectPointersRestored(m *verify.Machine) {
	Expect(m.Peek(verify.LCL)).To(Equal(int16(initLCL)), "LCL")
	Expect(m.Peek(verify.ARG)).To(Equal(int16(initARG)), "ARG")
	Expect(m.Peek(verify.THIS)).To(Equal(int16(initTHIS)), "THIS")
	Expect(m.Peek(verify.THAT)).To(Equal(int16(initTHAT)), "THAT")
}

func pushConst(v int) vm.Instruction {
	return vm.Push{Segment: vm.SegConstant, Index: v}
}

func push(seg vm.Segment, i int) vm.Instruction {
	return vm.Push{Segment: seg, Index: i}
}

func pop(seg vm.Segment, i int) vm.Instruction {
	return vm.Pop{Segment: seg, Index: i}
}

func op(o vm.Op) vm.Instruction {
	return vm.Arithmetic{Op: o}
}

func count(lines []string, line string) int {
	n := 0
	for _, l := range lines {
		if l == line {
			n++
		}
	}
	return n
}
