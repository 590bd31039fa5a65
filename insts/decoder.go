package insts

import (
	"fmt"

	"github.com/sarchlab/rv32pipe/isa"
)

// DecodeFault reports an instruction word matching no rule in isa.Table.
type DecodeFault struct {
	Word uint32
}

func (f *DecodeFault) Error() string {
	return fmt.Sprintf("decode fault: instruction word 0x%08x matches no ISA rule", f.Word)
}

// Decoder classifies a 32-bit word into a category and extracts its
// register fields and sign-extended immediate.
type Decoder struct{}

// NewDecoder creates a new RV32I instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode classifies word and extracts its fields. It returns a *DecodeFault
// wrapped error if the word matches no rule in the ISA table.
func (d *Decoder) Decode(word uint32) (*Instruction, error) {
	opcode := word & 0x7F
	funct3 := (word >> 12) & 0x7
	funct7 := (word >> 25) & 0x7F

	enc, ok := isa.Lookup(opcode, funct3, funct7)
	if !ok {
		return nil, &DecodeFault{Word: word}
	}

	inst := &Instruction{
		Word:     word,
		Category: enc.Category,
		Mnemonic: enc.Mnemonic,
		Opcode:   opcode,
		Funct3:   funct3,
		Funct7:   funct7,
		Rd:       uint8((word >> 7) & 0x1F),
		Rs1:      uint8((word >> 15) & 0x1F),
		Rs2:      uint8((word >> 20) & 0x1F),
	}
	inst.Imm = extractImmediate(word, enc.Category)

	switch enc.Category {
	case isa.CategorySB:
		inst.IsBranch = true
	case isa.CategoryUJ:
		inst.IsJump = true
	case isa.CategoryI:
		if enc.Mnemonic == isa.MnemonicJalr {
			inst.IsJump = true
		}
	}

	return inst, nil
}

// extractImmediate sign-extends the immediate field for category, using
// its per-category bit layout.
func extractImmediate(word uint32, category isa.Category) int32 {
	switch category {
	case isa.CategoryI:
		imm := int32(word) >> 20
		return imm
	case isa.CategoryS:
		imm := (int32(word) >> 25 << 5) | int32((word>>7)&0x1F)
		return imm
	case isa.CategorySB:
		imm := uint32(0)
		imm |= (word >> 31 & 0x1) << 12
		imm |= (word >> 7 & 0x1) << 11
		imm |= (word >> 25 & 0x3F) << 5
		imm |= (word >> 8 & 0xF) << 1
		signed := int32(imm)
		if imm&0x1000 != 0 {
			signed |= ^int32(0x1FFF)
		}
		return signed
	case isa.CategoryU:
		return int32(word & 0xFFFFF000)
	case isa.CategoryUJ:
		imm := uint32(0)
		imm |= (word >> 31 & 0x1) << 20
		imm |= (word >> 12 & 0xFF) << 12
		imm |= (word >> 20 & 0x1) << 11
		imm |= (word >> 21 & 0x3FF) << 1
		signed := int32(imm)
		if imm&0x100000 != 0 {
			signed |= ^int32(0x1FFFFF)
		}
		return signed
	default:
		return 0
	}
}
