package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32pipe/insts"
	"github.com/sarchlab/rv32pipe/isa"
)

var _ = Describe("Decoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	Describe("R-type", func() {
		It("should decode add x6, x6, x7", func() {
			// opcode=0110011 funct3=000 funct7=0000000 rd=6 rs1=6 rs2=7
			word := uint32(0x00730333)
			inst, err := decoder.Decode(word)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Category).To(Equal(isa.CategoryR))
			Expect(inst.Mnemonic).To(Equal(isa.MnemonicAdd))
			Expect(inst.Rd).To(Equal(uint8(6)))
			Expect(inst.Rs1).To(Equal(uint8(6)))
			Expect(inst.Rs2).To(Equal(uint8(7)))
		})

		It("should distinguish sub from add via funct7", func() {
			word := uint32(0x40730333)
			inst, err := decoder.Decode(word)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Mnemonic).To(Equal(isa.MnemonicSub))
		})

		It("should decode mul via the M-extension funct7", func() {
			word := uint32(0x02730333)
			inst, err := decoder.Decode(word)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Mnemonic).To(Equal(isa.MnemonicMul))
		})
	})

	Describe("I-type", func() {
		It("should decode addi x5, x0, 7 with a positive immediate", func() {
			// imm=7 rs1=0 funct3=000 rd=5 opcode=0010011
			word := uint32(0x00700293)
			inst, err := decoder.Decode(word)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Category).To(Equal(isa.CategoryI))
			Expect(inst.Mnemonic).To(Equal(isa.MnemonicAddi))
			Expect(inst.Rd).To(Equal(uint8(5)))
			Expect(inst.Rs1).To(Equal(uint8(0)))
			Expect(inst.Imm).To(Equal(int32(7)))
		})

		It("should sign-extend a negative immediate", func() {
			// addi x5, x0, -1 -> imm field all ones
			word := uint32(0xFFF00293)
			inst, err := decoder.Decode(word)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Imm).To(Equal(int32(-1)))
		})

		It("should disambiguate srli from srai via the shift-type field", func() {
			srli := uint32(0x00535293) // srai/srli share funct3=101, opcode=0010011
			inst, err := decoder.Decode(srli)
			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Mnemonic).To(Equal(isa.MnemonicSrli))

			srai := uint32(0x40535293)
			inst, err = decoder.Decode(srai)
			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Mnemonic).To(Equal(isa.MnemonicSrai))
		})

		It("should decode lw with a base+offset operand", func() {
			// lw x5, 4(x6)
			word := uint32(0x00432283)
			inst, err := decoder.Decode(word)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Mnemonic).To(Equal(isa.MnemonicLw))
			Expect(inst.Rs1).To(Equal(uint8(6)))
			Expect(inst.Imm).To(Equal(int32(4)))
		})

		It("should mark jalr as a jump", func() {
			word := uint32(0x000300E7) // jalr x1, x6, 0
			inst, err := decoder.Decode(word)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Mnemonic).To(Equal(isa.MnemonicJalr))
			Expect(inst.IsJump).To(BeTrue())
		})
	})

	Describe("S-type", func() {
		It("should decode sw x7, 8(x6) with a split immediate", func() {
			// imm=8 -> imm[11:5]=0000000 imm[4:0]=01000
			word := uint32(0x00732423)
			inst, err := decoder.Decode(word)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Category).To(Equal(isa.CategoryS))
			Expect(inst.Mnemonic).To(Equal(isa.MnemonicSw))
			Expect(inst.Rs1).To(Equal(uint8(6)))
			Expect(inst.Rs2).To(Equal(uint8(7)))
			Expect(inst.Imm).To(Equal(int32(8)))
		})

		It("should sign-extend a negative store offset", func() {
			// sw x7, -4(x6) -> imm[11:5]=1111111 imm[4:0]=11100
			word := uint32(0xFE732E23)
			inst, err := decoder.Decode(word)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Imm).To(Equal(int32(-4)))
		})
	})

	Describe("SB-type", func() {
		It("should decode beq with a forward branch offset", func() {
			// beq x5, x6, +8
			word := uint32(0x00628463)
			inst, err := decoder.Decode(word)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Category).To(Equal(isa.CategorySB))
			Expect(inst.Mnemonic).To(Equal(isa.MnemonicBeq))
			Expect(inst.IsBranch).To(BeTrue())
			Expect(inst.Imm).To(Equal(int32(8)))
		})

		It("should sign-extend a backward branch offset", func() {
			// bne x5, x6, -8
			word := uint32(0xFE629CE3)
			inst, err := decoder.Decode(word)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Mnemonic).To(Equal(isa.MnemonicBne))
			Expect(inst.Imm).To(Equal(int32(-8)))
		})
	})

	Describe("U-type", func() {
		It("should decode lui with the upper 20 bits in place", func() {
			// lui x5, 0x10000 -> word upper bits = 0x10000, low 12 bits zero
			word := uint32(0x100002B7)
			inst, err := decoder.Decode(word)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Category).To(Equal(isa.CategoryU))
			Expect(inst.Mnemonic).To(Equal(isa.MnemonicLui))
			Expect(inst.Imm).To(Equal(int32(0x10000000)))
		})
	})

	Describe("UJ-type", func() {
		It("should decode jal and mark it as a jump", func() {
			// jal x1, +16
			word := uint32(0x010000EF)
			inst, err := decoder.Decode(word)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Category).To(Equal(isa.CategoryUJ))
			Expect(inst.Mnemonic).To(Equal(isa.MnemonicJal))
			Expect(inst.IsJump).To(BeTrue())
			Expect(inst.Imm).To(Equal(int32(16)))
		})
	})

	Describe("decode faults", func() {
		It("should return a DecodeFault for an unassigned opcode", func() {
			word := uint32(0x0000007F) // opcode 1111111 matches no rule
			inst, err := decoder.Decode(word)

			Expect(inst).To(BeNil())
			Expect(err).To(HaveOccurred())
			var fault *insts.DecodeFault
			Expect(err).To(BeAssignableToTypeOf(fault))
		})
	})
})
