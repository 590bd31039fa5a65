// Package insts decodes 32-bit RV32I (+mul/div/rem) instruction words into
// a structured Instruction and renders their disassembly text.
package insts

import (
	"fmt"

	"github.com/sarchlab/rv32pipe/isa"
)

// Instruction is a fully decoded instruction word.
type Instruction struct {
	Word uint32 // raw 32-bit instruction word

	Category isa.Category
	Mnemonic isa.Mnemonic

	Opcode uint32
	Funct3 uint32
	Funct7 uint32

	Rd  uint8
	Rs1 uint8
	Rs2 uint8
	Imm int32 // sign-extended immediate

	IsBranch bool
	IsJump   bool
}

// String renders canonical RV32I assembly syntax for the instruction, used
// both for the disassembly text carried in the text segment and for
// presentation/log traces.
func (inst *Instruction) String() string {
	m := inst.Mnemonic.String()
	switch inst.Category {
	case isa.CategoryR:
		return fmt.Sprintf("%s x%d, x%d, x%d", m, inst.Rd, inst.Rs1, inst.Rs2)
	case isa.CategoryI:
		switch inst.Mnemonic {
		case isa.MnemonicLb, isa.MnemonicLh, isa.MnemonicLw, isa.MnemonicLd:
			return fmt.Sprintf("%s x%d, %d(x%d)", m, inst.Rd, inst.Imm, inst.Rs1)
		case isa.MnemonicJalr:
			return fmt.Sprintf("%s x%d, x%d, %d", m, inst.Rd, inst.Rs1, inst.Imm)
		case isa.MnemonicSlli, isa.MnemonicSrli, isa.MnemonicSrai:
			return fmt.Sprintf("%s x%d, x%d, %d", m, inst.Rd, inst.Rs1, inst.Imm&0x1F)
		default:
			return fmt.Sprintf("%s x%d, x%d, %d", m, inst.Rd, inst.Rs1, inst.Imm)
		}
	case isa.CategoryS:
		return fmt.Sprintf("%s x%d, %d(x%d)", m, inst.Rs2, inst.Imm, inst.Rs1)
	case isa.CategorySB:
		return fmt.Sprintf("%s x%d, x%d, %d", m, inst.Rs1, inst.Rs2, inst.Imm)
	case isa.CategoryU:
		return fmt.Sprintf("%s x%d, %d", m, inst.Rd, int32(uint32(inst.Imm)>>12))
	case isa.CategoryUJ:
		return fmt.Sprintf("%s x%d, %d", m, inst.Rd, inst.Imm)
	default:
		return fmt.Sprintf("unknown 0x%08x", inst.Word)
	}
}
