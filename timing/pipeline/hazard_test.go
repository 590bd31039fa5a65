package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32pipe/isa"
	"github.com/sarchlab/rv32pipe/timing/pipeline"
)

var _ = Describe("HazardUnit", func() {
	var hu *pipeline.HazardUnit

	BeforeEach(func() {
		hu = pipeline.NewHazardUnit()
	})

	Describe("RAWStall", func() {
		It("stalls when rs1 matches a producer in EXECUTE", func() {
			snapshot := []pipeline.DependencyRecord{
				{PC: 0x4, Rd: 6, Stage: pipeline.StageExecute},
			}
			Expect(hu.RAWStall(snapshot, 6, 0, isa.CategoryI)).To(BeTrue())
		})

		It("stalls when rs2 matches a producer in MEMORY for an R-type", func() {
			snapshot := []pipeline.DependencyRecord{
				{PC: 0x4, Rd: 7, Stage: pipeline.StageMemory},
			}
			Expect(hu.RAWStall(snapshot, 1, 7, isa.CategoryR)).To(BeTrue())
		})

		It("ignores rs2 for categories that don't read it", func() {
			snapshot := []pipeline.DependencyRecord{
				{PC: 0x4, Rd: 7, Stage: pipeline.StageExecute},
			}
			Expect(hu.RAWStall(snapshot, 1, 7, isa.CategoryI)).To(BeFalse())
		})

		It("never stalls on register 0", func() {
			snapshot := []pipeline.DependencyRecord{
				{PC: 0x4, Rd: 0, Stage: pipeline.StageExecute},
			}
			Expect(hu.RAWStall(snapshot, 0, 0, isa.CategoryR)).To(BeFalse())
		})
	})

	Describe("LoadUseStall", func() {
		It("stalls when a load in EXECUTE produces rs1", func() {
			snapshot := []pipeline.DependencyRecord{
				{PC: 0x4, Rd: 6, Stage: pipeline.StageExecute, Opcode: isa.OpcodeLoad},
			}
			Expect(hu.LoadUseStall(snapshot, 6, 0, isa.CategoryI)).To(BeTrue())
		})

		It("does not stall for a non-load producer in EXECUTE", func() {
			snapshot := []pipeline.DependencyRecord{
				{PC: 0x4, Rd: 6, Stage: pipeline.StageExecute, Opcode: isa.OpcodeOp},
			}
			Expect(hu.LoadUseStall(snapshot, 6, 0, isa.CategoryI)).To(BeFalse())
		})

		It("does not stall for a load already in MEMORY", func() {
			snapshot := []pipeline.DependencyRecord{
				{PC: 0x4, Rd: 6, Stage: pipeline.StageMemory, Opcode: isa.OpcodeLoad},
			}
			Expect(hu.LoadUseStall(snapshot, 6, 0, isa.CategoryI)).To(BeFalse())
		})
	})

	Describe("ForwardFor", func() {
		It("prefers an EXECUTE producer over a MEMORY producer", func() {
			snapshot := []pipeline.DependencyRecord{
				{PC: 0x4, Rd: 6, Stage: pipeline.StageExecute, Value: 11, HasValue: true},
				{PC: 0x8, Rd: 6, Stage: pipeline.StageMemory, Value: 99, HasValue: true},
			}
			src, v := hu.ForwardFor(snapshot, 6)
			Expect(src).To(Equal(pipeline.ForwardFromExecute))
			Expect(v).To(Equal(uint32(11)))
		})

		It("falls back to a MEMORY producer", func() {
			snapshot := []pipeline.DependencyRecord{
				{PC: 0x8, Rd: 6, Stage: pipeline.StageMemory, Value: 99, HasValue: true},
			}
			src, v := hu.ForwardFor(snapshot, 6)
			Expect(src).To(Equal(pipeline.ForwardFromMemory))
			Expect(v).To(Equal(uint32(99)))
		})

		It("does not forward a producer whose value isn't known yet (a load in EXECUTE)", func() {
			snapshot := []pipeline.DependencyRecord{
				{PC: 0x4, Rd: 6, Stage: pipeline.StageExecute, HasValue: false},
			}
			src, _ := hu.ForwardFor(snapshot, 6)
			Expect(src).To(Equal(pipeline.ForwardNone))
		})

		It("reports no source for register 0", func() {
			src, _ := hu.ForwardFor(nil, 0)
			Expect(src).To(Equal(pipeline.ForwardNone))
		})
	})
})
