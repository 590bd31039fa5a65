package simulator_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32pipe/emu"
	"github.com/sarchlab/rv32pipe/simulator"
)

var _ = Describe("Simulator", func() {
	var sim *simulator.Simulator

	BeforeEach(func() {
		sim = simulator.NewSimulator()
	})

	Describe("S1 arithmetic", func() {
		It("computes x5=7, x6=3, x7=4", func() {
			Expect(sim.LoadProgram(`
				addi x5, x0, 7
				addi x6, x0, 3
				sub x7, x5, x6
			`)).To(BeTrue())
			sim.Run()

			regs := sim.Registers()
			Expect(regs[5]).To(Equal(uint32(7)))
			Expect(regs[6]).To(Equal(uint32(3)))
			Expect(regs[7]).To(Equal(uint32(4)))
		})
	})

	Describe("S2 load-use stall", func() {
		It("records at least one load-use stall and computes x7 correctly", func() {
			Expect(sim.SetEnvironment(true, true)).To(Succeed())
			Expect(sim.LoadProgram(`
				lui x5, 0x10000
				sw x5, 0(x5)
				lw x6, 0(x5)
				add x7, x6, x6
			`)).To(BeTrue())
			sim.Run()

			Expect(sim.Stats().DataHazardStalls).To(BeNumerically(">=", 1))
			Expect(sim.Registers()[7]).To(Equal(uint32(0x10000000 * 2)))
		})
	})

	Describe("S3 branch misprediction", func() {
		It("flushes exactly once on the first backward-taken iteration", func() {
			sim.LoadProgram(`
			loop:
				beq x0, x0, loop
			`)
			for i := 0; i < 10; i++ {
				sim.Step()
			}

			Expect(sim.Stats().PipelineFlushes).To(Equal(uint64(1)))
			Expect(sim.Stats().ControlHazards).To(BeNumerically(">=", 1))
		})
	})

	Describe("S4 RAW without forwarding", func() {
		It("stalls at least twice and still reaches x7=4", func() {
			Expect(sim.SetEnvironment(true, false)).To(Succeed())
			sim.LoadProgram(`
				addi x5, x0, 1
				add x6, x5, x5
				add x7, x6, x6
			`)
			sim.Run()

			Expect(sim.Stats().DataHazardStalls).To(BeNumerically(">=", 2))
			Expect(sim.Registers()[7]).To(Equal(uint32(4)))
		})
	})

	Describe("S5 jal link register", func() {
		It("links the address of the skipped instruction", func() {
			sim.LoadProgram(`
				jal x1, skip
				addi x2, x0, 1
			skip:
				addi x3, x0, 2
			`)
			sim.Run()

			regs := sim.Registers()
			Expect(regs[1]).To(Equal(uint32(4)))
			Expect(regs[2]).To(Equal(uint32(emu.ResetSP)))
			Expect(regs[3]).To(Equal(uint32(2)))
		})
	})

	Describe("S6 memory round-trip", func() {
		for _, b := range []byte{0x00, 0x7F, 0x80, 0xFF} {
			b := b
			It("sign-extends stored byte round-tripped through a load", func() {
				sim = simulator.NewSimulator()
				sim.LoadProgram(`
					addi x5, x0, ` + byteLiteral(b) + `
					sb x5, 0(x2)
					lb x10, 0(x2)
				`)
				sim.Run()

				Expect(sim.Registers()[10]).To(Equal(uint32(int32(int8(b)))))
			})
		}
	})

	Describe("invariants", func() {
		It("keeps register 0 at zero after every cycle", func() {
			sim.LoadProgram(`
				addi x0, x0, 5
				addi x5, x0, 1
			`)
			for sim.Step() {
				Expect(sim.Registers()[0]).To(Equal(uint32(0)))
			}
		})

		It("reports running=false once the text segment and pipeline are both empty", func() {
			sim.LoadProgram(`addi x5, x0, 1`)
			sim.Run()
			Expect(sim.Running()).To(BeFalse())
		})
	})

	Describe("Reset", func() {
		It("clears loaded state so SetEnvironment is safe again", func() {
			sim.LoadProgram(`addi x5, x0, 1`)
			Expect(sim.SetEnvironment(false, false)).NotTo(Succeed())

			sim.Reset()
			Expect(sim.SetEnvironment(false, false)).To(Succeed())
		})
	})

	Describe("LoadProgram failure", func() {
		It("logs a fatal assembly fault and leaves the simulator unloaded", func() {
			ok := sim.LoadProgram("frobnicate x1, x2, x3")
			Expect(ok).To(BeFalse())
			Expect(sim.Running()).To(BeFalse())

			logs := sim.Logs()
			Expect(logs).NotTo(BeEmpty())
			Expect(logs[0].Severity).To(Equal(404))
		})
	})
})

func byteLiteral(b byte) string {
	switch b {
	case 0x7F:
		return "127"
	case 0x80:
		return "-128"
	case 0xFF:
		return "-1"
	default:
		return "0"
	}
}
