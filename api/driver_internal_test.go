package api

import (
	"errors"

	gomock "github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hackvm/codegen"
	"github.com/sarchlab/hackvm/verify"
	"github.com/sarchlab/hackvm/vm"
)

var _ = Describe("Driver", func() {
	var (
		mockCtrl   *gomock.Controller
		mockSource *MockSource
		mockSink   *MockSink
		written    []string
	)

	sysUnit := vm.Unit{
		Name: "Sys",
		Instructions: []vm.Instruction{
			vm.Function{Name: "Sys.init", NumVars: 0},
			vm.Push{Segment: vm.SegConstant, Index: 6},
			vm.Push{Segment: vm.SegConstant, Index: 7},
			vm.Call{Name: "Main.add", NumArgs: 2},
			vm.Pop{Segment: vm.SegStatic, Index: 0},
			vm.Label{Name: "END"},
			vm.Goto{Name: "END"},
		},
	}
	mainUnit := vm.Unit{
		Name: "Main",
		Instructions: []vm.Instruction{
			vm.Function{Name: "Main.add", NumVars: 0},
			vm.Push{Segment: vm.SegArgument, Index: 0},
			vm.Push{Segment: vm.SegArgument, Index: 1},
			vm.Arithmetic{Op: vm.OpAdd},
			vm.Return{},
		},
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		mockSource = NewMockSource(mockCtrl)
		mockSink = NewMockSink(mockCtrl)
		written = nil
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	expectWrite := func() {
		mockSink.EXPECT().
			WriteLines(gomock.Any()).
			Do(func(lines []string) {
				written = lines
			}).
			Return(nil)
	}

	It("should translate a single unit without a bootstrap", func() {
		mockSource.EXPECT().Units().Return([]vm.Unit{mainUnit}, nil)
		expectWrite()

		d := DriverBuilder{}.Build()
		stats, err := d.Translate(mockSource, mockSink)

		Expect(err).NotTo(HaveOccurred())
		Expect(written[0]).To(Equal("// comparator routines"))
		Expect(written).NotTo(ContainElement("// bootstrap"))
		Expect(stats.BootstrapLines).To(BeZero())
		Expect(stats.Units).To(HaveLen(1))
		Expect(stats.Units[0].Name).To(Equal("Main"))
		Expect(stats.Units[0].Instructions).To(Equal(5))
		Expect(stats.TotalLines).To(Equal(len(written)))
	})

	It("should bootstrap a program linked from several units", func() {
		mockSource.EXPECT().Units().Return([]vm.Unit{mainUnit, sysUnit}, nil)
		expectWrite()

		d := DriverBuilder{}.Build()
		stats, err := d.Translate(mockSource, mockSink)

		Expect(err).NotTo(HaveOccurred())
		Expect(written[0]).To(Equal("// bootstrap"))
		Expect(stats.BootstrapLines).To(BeNumerically(">", 0))
		Expect(written[stats.BootstrapLines]).To(Equal("// comparator routines"))

		img, err := verify.Assemble(written)
		Expect(err).NotTo(HaveOccurred())
		m := verify.NewMachine(img)
		Expect(m.RunUntilLabel("END", 100000)).To(Succeed())
		result, _ := m.Symbol("Sys.0")
		Expect(result).To(Equal(int16(13)))
	})

	DescribeTable("bootstrap modes",
		func(mode BootstrapMode, units []vm.Unit, want bool) {
			d := DriverBuilder{}.WithBootstrap(mode).Build()

			lines, _, err := d.TranslateUnits(units)

			Expect(err).NotTo(HaveOccurred())
			Expect(lines[0] == "// bootstrap").To(Equal(want))
		},
		Entry("auto, one unit", BootstrapAuto, []vm.Unit{mainUnit}, false),
		Entry("auto, two units", BootstrapAuto, []vm.Unit{mainUnit, sysUnit}, true),
		Entry("always", BootstrapAlways, []vm.Unit{mainUnit}, true),
		Entry("never", BootstrapNever, []vm.Unit{mainUnit, sysUnit}, false),
	)

	It("should use the configured writer", func() {
		d := DriverBuilder{}.
			WithWriterBuilder(codegen.NewBuilder().WithComments(false)).
			WithBootstrap(BootstrapAlways).
			Build()

		lines, _, err := d.TranslateUnits([]vm.Unit{mainUnit})

		Expect(err).NotTo(HaveOccurred())
		Expect(lines[0]).To(Equal("@256"))
	})

	It("should start every program with fresh counters", func() {
		d := DriverBuilder{}.Build()

		first, _, err := d.TranslateUnits([]vm.Unit{mainUnit, sysUnit})
		Expect(err).NotTo(HaveOccurred())
		second, _, err := d.TranslateUnits([]vm.Unit{mainUnit, sysUnit})
		Expect(err).NotTo(HaveOccurred())

		Expect(second).To(Equal(first))
	})

	It("should write nothing when a unit fails", func() {
		bad := vm.Unit{
			Name: "Bad",
			Instructions: []vm.Instruction{
				vm.Push{Segment: vm.SegConstant, Index: 1},
				vm.Pop{Segment: vm.SegTemp, Index: 8},
			},
			Lines: []int{3, 4},
		}
		mockSource.EXPECT().Units().Return([]vm.Unit{mainUnit, bad}, nil)

		d := DriverBuilder{}.Build()
		_, err := d.Translate(mockSource, mockSink)

		Expect(err).To(MatchError(codegen.ErrIndexOutOfRange))
		var terr *TranslationError
		Expect(errors.As(err, &terr)).To(BeTrue())
		Expect(terr.Unit).To(Equal("Bad"))
		Expect(terr.Index).To(Equal(1))
		Expect(terr.Line).To(Equal(4))
		Expect(err.Error()).To(HavePrefix("Bad: line 4: pop temp 8: "))
	})

	It("should report the instruction position when lines are unknown", func() {
		bad := vm.Unit{
			Name:         "Bad",
			Instructions: []vm.Instruction{vm.Pop{Segment: vm.SegConstant, Index: 0}},
		}

		_, _, err := DriverBuilder{}.Build().TranslateUnits([]vm.Unit{bad})

		Expect(err).To(MatchError(codegen.ErrReadOnlySegment))
		Expect(err.Error()).To(HavePrefix("Bad: instruction 1: pop constant 0: "))
	})

	It("should propagate source errors", func() {
		boom := errors.New("boom")
		mockSource.EXPECT().Units().Return(nil, boom)

		_, err := DriverBuilder{}.Build().Translate(mockSource, mockSink)

		Expect(err).To(MatchError(boom))
	})

	It("should propagate sink errors", func() {
		boom := errors.New("disk full")
		mockSource.EXPECT().Units().Return([]vm.Unit{mainUnit}, nil)
		mockSink.EXPECT().WriteLines(gomock.Any()).Return(boom)

		_, err := DriverBuilder{}.Build().Translate(mockSource, mockSink)

		Expect(err).To(MatchError(boom))
	})

	It("should refuse an empty program", func() {
		mockSource.EXPECT().Units().Return(nil, nil)

		_, err := DriverBuilder{}.Build().Translate(mockSource, mockSink)

		Expect(err).To(MatchError(ErrNoUnits))
	})
})

var _ = Describe("BootstrapMode", func() {
	It("should parse mode names", func() {
		for _, mode := range []BootstrapMode{BootstrapAuto, BootstrapAlways, BootstrapNever} {
			parsed, err := ParseBootstrapMode(mode.String())
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed).To(Equal(mode))
		}

		parsed, err := ParseBootstrapMode("ALWAYS")
		Expect(err).NotTo(HaveOccurred())
		Expect(parsed).To(Equal(BootstrapAlways))

		_, err = ParseBootstrapMode("sometimes")
		Expect(err).To(HaveOccurred())
	})
})
