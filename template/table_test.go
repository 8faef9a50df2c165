package template_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vmtrans/template"
	"github.com/sarchlab/vmtrans/vm"
)

var _ = Describe("Table", func() {
	var table *template.Table

	BeforeEach(func() {
		var err error
		table, err = template.Load()
		Expect(err).NotTo(HaveOccurred())
	})

	It("should cover every opcode", func() {
		ops := make(map[vm.Opcode]bool)
		for _, k := range table.Keys() {
			ops[k.Op] = true
		}

		for _, op := range vm.Opcodes() {
			Expect(ops).To(HaveKey(op))
		}
	})

	It("should fail lookups for missing keys", func() {
		_, err := table.Lookup(vm.OpPop, template.AddrConstant)
		Expect(err).To(MatchError(vm.ErrTemplateNotFound))

		_, err = table.Lookup("mul", template.AddrNone)
		Expect(err).To(MatchError(vm.ErrTemplateNotFound))
	})

	It("should render a constant push", func() {
		emit, err := table.Lookup(vm.OpPush, template.AddrConstant)
		Expect(err).NotTo(HaveOccurred())

		Expect(emit(template.Args{Base: "7"})).To(Equal([]string{
			"@7", "D=A", "@SP", "A=M", "M=D", "@SP", "M=M+1",
		}))
	})

	It("should reach below the base for negative offsets", func() {
		emit, err := table.Lookup(vm.OpPush, template.AddrIndirect)
		Expect(err).NotTo(HaveOccurred())

		lines := emit(template.Args{Base: template.RegLCL, Offset: -5})
		Expect(lines[:4]).To(Equal([]string{"@5", "D=A", "@LCL", "D=M-D"}))
	})

	It("should build comparison labels from the stem", func() {
		emit, err := table.Lookup(vm.OpGt, template.AddrNone)
		Expect(err).NotTo(HaveOccurred())

		lines := emit(template.Args{Label: "GT_2"})
		Expect(lines).To(ContainElements("@GT_2_TRUE", "D;JGT", "(GT_2_TRUE)", "(GT_2_END)"))
	})

	It("should emit nothing for composite opcodes", func() {
		for _, op := range []vm.Opcode{vm.OpFunction, vm.OpCall, vm.OpReturn} {
			emit, err := table.Lookup(op, template.AddrNone)
			Expect(err).NotTo(HaveOccurred())
			Expect(emit(template.Args{})).To(BeEmpty())
		}
	})

	Context("when building custom tables", func() {
		It("should reject duplicate keys", func() {
			entries := append(template.DefaultEntries(), template.DefaultEntries()[0])

			_, err := template.Build(entries)
			Expect(err).To(MatchError(template.ErrDuplicateKey))
		})

		It("should reject tables missing an opcode", func() {
			var entries []template.Entry
			for _, e := range template.DefaultEntries() {
				if e.Key.Op != vm.OpNot {
					entries = append(entries, e)
				}
			}

			_, err := template.Build(entries)
			Expect(err).To(MatchError(template.ErrIncomplete))
		})

		It("should reject tables missing a segment", func() {
			var entries []template.Entry
			for _, e := range template.DefaultEntries() {
				if e.Key != (template.Key{Op: vm.OpPop, Mode: template.AddrTemp}) {
					entries = append(entries, e)
				}
			}

			_, err := template.Build(entries)
			Expect(err).To(MatchError(template.ErrIncomplete))
		})
	})
})

var _ = Describe("Registers", func() {
	It("should name the low RAM addresses", func() {
		Expect(template.RegisterName(0)).To(Equal("SP"))
		Expect(template.RegisterName(4)).To(Equal("THAT"))
		Expect(template.RegisterName(7)).To(Equal("R7"))
		Expect(template.RegisterName(15)).To(Equal(template.RegReturnScratch))
	})

	It("should map segments to addressing modes", func() {
		Expect(template.AddressingOf(vm.Argument)).To(Equal(template.AddrIndirect))
		Expect(template.AddressingOf(vm.Temp)).To(Equal(template.AddrTemp))
		Expect(template.BaseRegister(vm.That)).To(Equal(template.RegTHAT))
	})
})
