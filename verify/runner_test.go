package verify_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/hackvm/verify"
)

var _ = Describe("Runner", func() {
	var engine sim.Engine

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
	})

	It("should run the machine until it halts", func() {
		m := machineFor("@7", "D=A", "@R5", "M=D")
		runner := verify.NewRunnerBuilder().
			WithEngine(engine).
			WithFreq(1 * sim.GHz).
			WithMachine(m).
			Build("Runner")

		runner.Start()
		Expect(engine.Run()).To(Succeed())

		Expect(runner.Err()).NotTo(HaveOccurred())
		Expect(m.Halted()).To(BeTrue())
		Expect(m.Peek(5)).To(Equal(int16(7)))
	})

	It("should stop at the breakpoint", func() {
		m := machineFor("@R5", "M=1", "(HALT)", "@HALT", "0;JMP")
		runner := verify.NewRunnerBuilder().
			WithEngine(engine).
			WithMachine(m).
			WithBreakpoint(m.Image().Labels["HALT"]).
			Build("Runner")

		runner.Start()
		Expect(engine.Run()).To(Succeed())

		Expect(runner.AtBreakpoint()).To(BeTrue())
		Expect(m.Peek(5)).To(Equal(int16(1)))
	})

	It("should report the step limit", func() {
		m := machineFor("(LOOP)", "@LOOP", "0;JMP")
		runner := verify.NewRunnerBuilder().
			WithEngine(engine).
			WithMachine(m).
			WithMaxSteps(20).
			Build("Runner")

		runner.Start()
		Expect(engine.Run()).To(Succeed())

		Expect(runner.Err()).To(MatchError(verify.ErrStepLimit))
		Expect(m.Steps).To(Equal(20))
	})
})

var _ = Describe("Report", func() {
	It("should lint, run and dump the state", func() {
		lines := []string{"@5", "D=A", "@SP", "A=M", "M=D", "@SP", "M=M+1"}

		r := verify.GenerateReport(lines, verify.ReportOptions{
			MaxSteps:  100,
			StackBase: 256,
			Setup:     func(m *verify.Machine) { m.Poke(verify.SP, 256) },
		})

		Expect(r.LintIssues).To(BeEmpty())
		Expect(r.AssemblyErr).NotTo(HaveOccurred())
		Expect(r.SimulationOK).To(BeTrue())
		Expect(r.Machine.Stack(256)).To(Equal([]int16{5}))

		var buf bytes.Buffer
		r.WriteReport(&buf)
		Expect(buf.String()).To(ContainSubstring("No lint issues found"))
		Expect(buf.String()).To(ContainSubstring("Stopped after 7 steps"))
	})

	It("should record assembly failures", func() {
		r := verify.GenerateReport([]string{"D=D*D"}, verify.ReportOptions{MaxSteps: 10})

		Expect(r.AssemblyErr).To(MatchError(verify.ErrSyntax))
		Expect(r.SimulationOK).To(BeFalse())
	})
})
