package codegen_test

import (
	"errors"
	"strconv"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/m1gwings/treedrawer/tree"

	"github.com/sarchlab/vmtrans/codegen"
	"github.com/sarchlab/vmtrans/verify"
	"github.com/sarchlab/vmtrans/vm"
)

func parseAll(src ...string) []vm.Instruction {
	prog := make([]vm.Instruction, 0, len(src))
	for _, line := range src {
		inst, err := vm.Parse(line)
		Expect(err).NotTo(HaveOccurred(), line)
		prog = append(prog, inst)
	}
	return prog
}

func translate(g *codegen.Generator, ctx *codegen.Context, src ...string) []string {
	out := codegen.NewOutput()
	Expect(g.TranslateProgram(parseAll(src...), ctx, out)).To(Succeed())
	return out.Lines()
}

func run(lines []string, setup func(c *verify.CPU)) *verify.CPU {
	cpu, err := verify.Execute(lines, verify.DefaultMaxSteps, setup)
	Expect(err).NotTo(HaveOccurred())
	return cpu
}

var _ = Describe("Generator", func() {
	var (
		g   *codegen.Generator
		ctx *codegen.Context
	)

	BeforeEach(func() {
		g = codegen.GeneratorBuilder{}.Build()
		ctx = codegen.NewContext("Main")
	})

	Context("arithmetic", func() {
		It("should add two constants", func() {
			lines := translate(g, ctx, "push constant 7", "push constant 8", "add")

			cpu := run(lines, nil)
			Expect(cpu.SP()).To(Equal(verify.DefaultStackBase + 1))
			Expect(cpu.Top()).To(Equal(int16(15)))
		})

		DescribeTable("binary and unary operators",
			func(want int16, src ...string) {
				cpu := run(translate(g, ctx, src...), nil)
				Expect(cpu.SP()).To(Equal(verify.DefaultStackBase + 1))
				Expect(cpu.Top()).To(Equal(want))
			},
			Entry("sub", int16(5), "push constant 8", "push constant 3", "sub"),
			Entry("and", int16(4), "push constant 12", "push constant 5", "and"),
			Entry("or", int16(13), "push constant 12", "push constant 5", "or"),
			Entry("neg", int16(-9), "push constant 9", "neg"),
			Entry("not", int16(-1), "push constant 0", "not"),
			Entry("eq true", int16(-1), "push constant 5", "push constant 5", "eq"),
			Entry("eq false", int16(0), "push constant 5", "push constant 6", "eq"),
			Entry("gt true", int16(-1), "push constant 7", "push constant 3", "gt"),
			Entry("gt false", int16(0), "push constant 3", "push constant 7", "gt"),
			Entry("lt true", int16(-1), "push constant 3", "push constant 7", "lt"),
			Entry("lt false", int16(0), "push constant 7", "push constant 3", "lt"),
		)

		It("should name comparison labels after the operator and its count", func() {
			lines := translate(g, ctx, "push constant 5", "push constant 5", "eq")

			Expect(lines).To(ContainElement("(EQ_0_TRUE)"))
			Expect(lines).To(ContainElement("(EQ_0_END)"))
		})

		It("should count each comparison operator independently", func() {
			lines := translate(g, ctx, "eq", "gt", "eq", "lt", "eq")

			for _, l := range []string{"(EQ_0_TRUE)", "(GT_0_TRUE)", "(EQ_1_TRUE)", "(LT_0_TRUE)", "(EQ_2_TRUE)"} {
				Expect(lines).To(ContainElement(l))
			}
			Expect(ctx.CompareCount(vm.OpEq)).To(Equal(3))
			Expect(ctx.CompareCount(vm.OpGt)).To(Equal(1))
			Expect(ctx.CompareCount(vm.OpLt)).To(Equal(1))
		})

		It("should keep counting across translations sharing a context", func() {
			translate(g, ctx, "eq")
			lines := translate(g, ctx, "eq")

			Expect(lines).To(ContainElement("(EQ_1_TRUE)"))
		})
	})

	Context("memory access", func() {
		setup := func(c *verify.CPU) {
			c.SetRAM(1, 300)  // LCL
			c.SetRAM(2, 400)  // ARG
			c.SetRAM(3, 3000) // THIS
			c.SetRAM(4, 3010) // THAT
		}

		DescribeTable("pop then push restores the value",
			func(seg string, index int, addr int) {
				pop := "pop " + seg + " " + strconv.Itoa(index)
				push := "push " + seg + " " + strconv.Itoa(index)
				lines := translate(g, ctx, "push constant 11", pop, push)

				cpu := run(lines, setup)
				Expect(cpu.SP()).To(Equal(verify.DefaultStackBase + 1))
				Expect(cpu.Top()).To(Equal(int16(11)))
				Expect(cpu.RAM(addr)).To(Equal(int16(11)))
			},
			Entry("local", "local", 2, 302),
			Entry("argument", "argument", 1, 401),
			Entry("this", "this", 4, 3004),
			Entry("that", "that", 0, 3010),
			Entry("temp", "temp", 6, 11),
			Entry("pointer 0", "pointer", 0, 3),
			Entry("pointer 1", "pointer", 1, 4),
			Entry("static", "static", 3, 16),
		)

		It("should name static variables after the module", func() {
			lines := translate(g, ctx, "push constant 9", "pop static 3", "push static 3")

			Expect(lines).To(ContainElement("@Main.3"))
		})

		It("should switch the static module at each function", func() {
			lines := translate(g, ctx,
				"function Foo.bar 0",
				"push static 0",
				"function Baz.qux 0",
				"push static 0",
			)

			Expect(lines).To(ContainElement("@Foo.0"))
			Expect(lines).To(ContainElement("@Baz.0"))
			Expect(ctx.Module()).To(Equal("Baz"))
		})

		It("should reach RAM through pointer segments", func() {
			lines := translate(g, ctx,
				"push constant 3020", "pop pointer 1",
				"push constant 42", "pop that 5",
			)

			cpu := run(lines, nil)
			Expect(cpu.RAM(4)).To(Equal(int16(3020)))
			Expect(cpu.RAM(3025)).To(Equal(int16(42)))
			Expect(cpu.SP()).To(Equal(verify.DefaultStackBase))
		})

		DescribeTable("offsets out of range from source code",
			func(line string) {
				out := codegen.NewOutput()
				err := g.TranslateProgram(parseAll(line), ctx, out)

				Expect(err).To(MatchError(vm.ErrInvalidSegmentOffset))
				var cgErr *codegen.Error
				Expect(errors.As(err, &cgErr)).To(BeTrue())
				Expect(cgErr.Index).To(Equal(0))
				Expect(cgErr.Raw).To(Equal(line))
			},
			Entry("negative local", "pop local -1"),
			Entry("negative argument", "push argument -2"),
			Entry("pointer 2", "push pointer 2"),
			Entry("pointer -1", "pop pointer -1"),
			Entry("temp 8", "push temp 8"),
			Entry("negative static", "push static -1"),
			Entry("constant too large", "push constant 32768"),
			Entry("negative constant", "push constant -1"),
		)
	})

	Context("program flow", func() {
		It("should jump on any non-zero value", func() {
			lines := translate(g, ctx,
				"push constant 3",
				"if-goto SKIP",
				"push constant 1",
				"pop temp 0",
				"label SKIP",
				"push constant 0",
				"if-goto NEVER",
				"push constant 2",
				"pop temp 1",
				"label NEVER",
			)

			cpu := run(lines, nil)
			Expect(cpu.RAM(5)).To(Equal(int16(0)))
			Expect(cpu.RAM(6)).To(Equal(int16(2)))
			Expect(cpu.SP()).To(Equal(verify.DefaultStackBase))
		})

		It("should loop with goto", func() {
			// temp 0 counts from 0 up to 5.
			lines := translate(g, ctx,
				"label LOOP",
				"push temp 0",
				"push constant 5",
				"eq",
				"if-goto DONE",
				"push temp 0",
				"push constant 1",
				"add",
				"pop temp 0",
				"goto LOOP",
				"label DONE",
			)

			cpu := run(lines, nil)
			Expect(cpu.RAM(5)).To(Equal(int16(5)))
		})
	})

	Context("functions", func() {
		It("should expand function into a label and zeroed locals", func() {
			steps, err := codegen.Expand(parseAll("function F 2"), ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(steps).To(HaveLen(4))
			Expect(steps[0].Header).To(BeTrue())
			Expect(steps[1].Inst.Raw).To(Equal("label F"))
			Expect(steps[2].Inst.Raw).To(Equal("push constant 0"))
			Expect(steps[3].Inst.Raw).To(Equal("push constant 0"))
			for _, s := range steps {
				Expect(s.Origin).To(Equal(0))
			}
			for _, s := range steps[1:] {
				Expect(s.Inst.Origin()).To(Equal(vm.Synthesized))
			}
		})

		It("should give every call site its own return label", func() {
			lines := translate(g, ctx, "call F 0", "call F 0", "call G 1")

			Expect(lines).To(ContainElement("(RETURN_0)"))
			Expect(lines).To(ContainElement("(RETURN_1)"))
			Expect(lines).To(ContainElement("(RETURN_2)"))
			Expect(ctx.CallSites()).To(Equal(3))
		})

		It("should call and return with the caller frame restored", func() {
			lines := translate(g, ctx,
				"push constant 3",
				"push constant 4",
				"call Math.add 2",
				"label END",
				"goto END",
				"function Math.add 1",
				"push argument 0",
				"push argument 1",
				"add",
				"pop local 0",
				"push local 0",
				"return",
			)

			cpu := run(lines, func(c *verify.CPU) {
				c.SetRAM(1, 1000)
				c.SetRAM(2, 2000)
				c.SetRAM(3, 3000)
				c.SetRAM(4, 4000)
			})

			Expect(cpu.Halted()).To(BeTrue())
			Expect(cpu.SP()).To(Equal(verify.DefaultStackBase + 1))
			Expect(cpu.RAM(verify.DefaultStackBase)).To(Equal(int16(7)))
			Expect(cpu.RAM(1)).To(Equal(int16(1000)))
			Expect(cpu.RAM(2)).To(Equal(int16(2000)))
			Expect(cpu.RAM(3)).To(Equal(int16(3000)))
			Expect(cpu.RAM(4)).To(Equal(int16(4000)))
		})

		It("should return from a function without arguments", func() {
			lines := translate(g, ctx,
				"call Main.seven 0",
				"label END",
				"goto END",
				"function Main.seven 0",
				"push constant 7",
				"return",
			)

			cpu := run(lines, nil)
			Expect(cpu.SP()).To(Equal(verify.DefaultStackBase + 1))
			Expect(cpu.Top()).To(Equal(int16(7)))
		})

		It("should handle nested calls", func() {
			lines := translate(g, ctx,
				"push constant 6",
				"call Main.double 1",
				"label END",
				"goto END",
				"function Main.double 0",
				"push argument 0",
				"call Main.inc 1",
				"push argument 0",
				"add",
				"return",
				"function Main.inc 0",
				"push argument 0",
				"push constant 0",
				"add",
				"return",
			)

			cpu := run(lines, nil)
			Expect(cpu.SP()).To(Equal(verify.DefaultStackBase + 1))
			Expect(cpu.Top()).To(Equal(int16(12)))
		})
	})

	Context("comments", func() {
		It("should precede each block with the instruction", func() {
			lines := translate(g, ctx, "push constant 1", "label X")

			Expect(lines[0]).To(Equal("// push constant 1"))
			Expect(lines).NotTo(ContainElement("// label X"))
			Expect(lines).To(ContainElement("(X)"))
		})

		It("should leave comments out when disabled", func() {
			g = codegen.GeneratorBuilder{}.WithComments(false).Build()
			lines := translate(g, ctx, "push constant 1", "call F 0")

			for _, l := range lines {
				Expect(strings.HasPrefix(l, "//")).To(BeFalse(), l)
			}
		})
	})

	Context("errors", func() {
		It("should reject opcodes without a handler", func() {
			steps := []codegen.Step{{Inst: vm.Instruction{Opcode: "mul", Raw: "mul"}}}

			err := g.Emit(steps, ctx, codegen.NewOutput())
			Expect(err).To(MatchError(vm.ErrUnknownOpcode))
		})

		It("should reject composite instructions that were not expanded", func() {
			steps := []codegen.Step{{Inst: parseAll("return")[0], Origin: 4}}

			err := g.Emit(steps, ctx, codegen.NewOutput())
			Expect(err).To(MatchError(vm.ErrMalformedInstruction))

			var cgErr *codegen.Error
			Expect(errors.As(err, &cgErr)).To(BeTrue())
			Expect(cgErr.Index).To(Equal(4))
		})

		It("should translate a single instruction", func() {
			out := codegen.NewOutput()
			Expect(g.Translate(parseAll("push constant 2")[0], ctx, out)).To(Succeed())
			Expect(out.Len()).To(Equal(8))
		})
	})
})

var _ = Describe("ExpansionTree", func() {
	It("should hang primitives below their composite instruction", func() {
		ctx := codegen.NewContext("Main")
		steps, err := codegen.Expand(parseAll("push constant 1", "call F 0", "add"), ctx)
		Expect(err).NotTo(HaveOccurred())

		root := codegen.ExpansionTree("Main.vm", steps)

		first, err := root.Child(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(first.Val()).To(Equal(tree.NodeString("push constant 1")))

		call, err := root.Child(1)
		Expect(err).NotTo(HaveOccurred())
		Expect(call.Val()).To(Equal(tree.NodeString("call F 0")))

		ret, err := call.Child(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(ret.Val()).To(Equal(tree.NodeString("push constant RETURN_0")))

		last, err := root.Child(2)
		Expect(err).NotTo(HaveOccurred())
		Expect(last.Val()).To(Equal(tree.NodeString("add")))

		_, err = root.Child(3)
		Expect(err).To(HaveOccurred())
	})
})
