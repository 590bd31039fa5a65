package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32pipe/emu"
)

var _ = Describe("MemoryUnit", func() {
	var mem *emu.Memory
	var mu *emu.MemoryUnit

	BeforeEach(func() {
		mem = emu.NewMemory()
		mu = emu.NewMemoryUnit(mem)
	})

	It("performs a byte store followed by a sign-extended byte load", func() {
		_, err := mu.Access(emu.MemOpStoreByte, emu.DataSegmentStart, 0xFF, 0xFF)
		Expect(err).NotTo(HaveOccurred())

		rz, err := mu.Access(emu.MemOpLoadByte, emu.DataSegmentStart, 0, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(int32(rz)).To(Equal(int32(-1)))
	})

	It("performs a word store and load round-trip", func() {
		_, err := mu.Access(emu.MemOpStoreWord, emu.DataSegmentStart, 0x12345678, 0x12345678)
		Expect(err).NotTo(HaveOccurred())

		rz, err := mu.Access(emu.MemOpLoadWord, emu.DataSegmentStart, 0, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(rz).To(Equal(uint32(0x12345678)))
	})

	It("leaves RY untouched on a store", func() {
		rz, err := mu.Access(emu.MemOpStoreWord, emu.DataSegmentStart, 7, 0x10000000)
		Expect(err).NotTo(HaveOccurred())
		Expect(rz).To(Equal(uint32(0x10000000)))
	})
})
