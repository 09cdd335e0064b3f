package verify_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hackvm/verify"
)

func machineFor(lines ...string) *verify.Machine {
	img, err := verify.Assemble(lines)
	Expect(err).NotTo(HaveOccurred())
	return verify.NewMachine(img)
}

var _ = Describe("Machine", func() {
	It("should compute and store", func() {
		m := machineFor("@2", "D=A", "@3", "D=D+A", "@0", "M=D")

		Expect(m.Run(100)).To(Succeed())
		Expect(m.Peek(0)).To(Equal(int16(5)))
		Expect(m.Halted()).To(BeTrue())
		Expect(m.Steps).To(Equal(6))
	})

	It("should address memory with the old A when A is also a destination", func() {
		m := machineFor("@SP", "AM=M-1", "D=M")
		m.Poke(verify.SP, 258)
		m.Poke(257, 42)

		Expect(m.Run(10)).To(Succeed())
		Expect(m.SP()).To(Equal(257))
		Expect(m.D).To(Equal(int16(42)))
	})

	It("should wrap at sixteen bits", func() {
		m := machineFor("@32767", "D=A", "D=D+1")

		Expect(m.Run(10)).To(Succeed())
		Expect(m.D).To(Equal(int16(-32768)))
	})

	DescribeTable("conditional jumps",
		func(value int16, jump string, taken bool) {
			m := machineFor("@R5", "D=M", "@TAKEN", "D;"+jump, "@R6", "M=0", "@END", "0;JMP", "(TAKEN)", "@R6", "M=1", "(END)")
			m.Poke(5, value)

			Expect(m.Run(100)).To(Succeed())
			if taken {
				Expect(m.Peek(6)).To(Equal(int16(1)))
			} else {
				Expect(m.Peek(6)).To(Equal(int16(0)))
			}
		},
		Entry("JEQ on zero", int16(0), "JEQ", true),
		Entry("JEQ on nonzero", int16(3), "JEQ", false),
		Entry("JNE on negative", int16(-1), "JNE", true),
		Entry("JLT on negative", int16(-4), "JLT", true),
		Entry("JLT on zero", int16(0), "JLT", false),
		Entry("JGE on zero", int16(0), "JGE", true),
		Entry("JGT on zero", int16(0), "JGT", false),
		Entry("JLE on positive", int16(9), "JLE", false),
	)

	It("should stop at a label", func() {
		m := machineFor("(LOOP)", "@LOOP", "0;JMP", "(NEVER)")

		Expect(m.RunUntilLabel("LOOP", 10)).To(Succeed())
		Expect(m.Run(50)).To(MatchError(verify.ErrStepLimit))
	})

	It("should refuse to step once halted", func() {
		m := machineFor("@1")

		Expect(m.Run(10)).To(Succeed())
		Expect(m.Step()).To(MatchError(verify.ErrHalted))
	})

	It("should fault on out of range memory access", func() {
		m := machineFor("@0", "A=A-1", "M=1")

		Expect(m.Run(10)).To(MatchError(verify.ErrAddress))
	})

	It("should expose the stack and named variables", func() {
		m := machineFor("@x", "M=1")
		m.Poke(verify.SP, 258)
		m.Poke(256, 7)
		m.Poke(257, 8)

		Expect(m.Run(10)).To(Succeed())
		Expect(m.Stack(256)).To(Equal([]int16{7, 8}))
		Expect(m.Top()).To(Equal(int16(8)))
		v, ok := m.Symbol("x")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(int16(1)))
	})
})
