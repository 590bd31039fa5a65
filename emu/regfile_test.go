package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32pipe/emu"
)

var _ = Describe("RegFile", func() {
	var rf *emu.RegFile

	BeforeEach(func() {
		rf = emu.NewRegFile()
	})

	It("reset initializes the reserved registers", func() {
		Expect(rf.Read(2)).To(Equal(uint32(emu.ResetSP)))
		Expect(rf.Read(3)).To(Equal(uint32(emu.ResetGP)))
		Expect(rf.Read(10)).To(Equal(uint32(emu.ResetA0)))
		Expect(rf.Read(11)).To(Equal(uint32(emu.ResetA1)))
		Expect(rf.Read(0)).To(Equal(uint32(0)))
		Expect(rf.Read(5)).To(Equal(uint32(0)))
	})

	It("always reads register 0 as zero", func() {
		rf.Write(0, 0xDEADBEEF)
		Expect(rf.Read(0)).To(Equal(uint32(0)))
	})

	It("writes and reads back a general-purpose register", func() {
		rf.Write(5, 42)
		Expect(rf.Read(5)).To(Equal(uint32(42)))
	})

	It("restores initial state on Reset", func() {
		rf.Write(5, 42)
		rf.Reset()
		Expect(rf.Read(5)).To(Equal(uint32(0)))
		Expect(rf.Read(2)).To(Equal(uint32(emu.ResetSP)))
	})
})
