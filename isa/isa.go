// Package isa holds the fixed encoding tables for the subset of RV32I (plus
// the mul/div/rem M-extension instructions) this simulator executes.
//
// Each mnemonic is described by the (opcode, funct3, funct7) triple the
// decoder matches against, together with the instruction category that
// determines immediate extraction and operand routing.
package isa

// Category is the instruction encoding format (RISC-V base-ISA naming).
type Category uint8

// Instruction categories.
const (
	CategoryUnknown Category = iota
	CategoryR
	CategoryI
	CategoryS
	CategorySB
	CategoryU
	CategoryUJ
)

// String renders the category name.
func (c Category) String() string {
	switch c {
	case CategoryR:
		return "R"
	case CategoryI:
		return "I"
	case CategoryS:
		return "S"
	case CategorySB:
		return "SB"
	case CategoryU:
		return "U"
	case CategoryUJ:
		return "UJ"
	default:
		return "unknown"
	}
}

// Mnemonic identifies a specific instruction.
type Mnemonic uint8

// Supported mnemonics.
const (
	MnemonicUnknown Mnemonic = iota
	MnemonicAdd
	MnemonicSub
	MnemonicMul
	MnemonicDiv
	MnemonicRem
	MnemonicAnd
	MnemonicOr
	MnemonicXor
	MnemonicSll
	MnemonicSrl
	MnemonicSra
	MnemonicSlt
	MnemonicSltu
	MnemonicAddi
	MnemonicAndi
	MnemonicOri
	MnemonicXori
	MnemonicSlti
	MnemonicSltiu
	MnemonicSlli
	MnemonicSrli
	MnemonicSrai
	MnemonicLb
	MnemonicLh
	MnemonicLw
	MnemonicLd // recognized only to raise the "ld unsupported" execute fault
	MnemonicSb
	MnemonicSh
	MnemonicSw
	MnemonicBeq
	MnemonicBne
	MnemonicBlt
	MnemonicBge
	MnemonicBltu
	MnemonicBgeu
	MnemonicLui
	MnemonicAuipc
	MnemonicJal
	MnemonicJalr
)

// String renders the mnemonic's assembly name.
func (m Mnemonic) String() string {
	if name, ok := mnemonicNames[m]; ok {
		return name
	}
	return "unknown"
}

var mnemonicNames = map[Mnemonic]string{
	MnemonicAdd: "add", MnemonicSub: "sub", MnemonicMul: "mul",
	MnemonicDiv: "div", MnemonicRem: "rem", MnemonicAnd: "and",
	MnemonicOr: "or", MnemonicXor: "xor", MnemonicSll: "sll",
	MnemonicSrl: "srl", MnemonicSra: "sra", MnemonicSlt: "slt",
	MnemonicSltu: "sltu", MnemonicAddi: "addi", MnemonicAndi: "andi",
	MnemonicOri: "ori", MnemonicXori: "xori", MnemonicSlti: "slti",
	MnemonicSltiu: "sltiu", MnemonicSlli: "slli", MnemonicSrli: "srli",
	MnemonicSrai: "srai", MnemonicLb: "lb", MnemonicLh: "lh",
	MnemonicLw: "lw", MnemonicLd: "ld", MnemonicSb: "sb",
	MnemonicSh: "sh", MnemonicSw: "sw", MnemonicBeq: "beq",
	MnemonicBne: "bne", MnemonicBlt: "blt", MnemonicBge: "bge",
	MnemonicBltu: "bltu", MnemonicBgeu: "bgeu", MnemonicLui: "lui",
	MnemonicAuipc: "auipc", MnemonicJal: "jal", MnemonicJalr: "jalr",
}

// Encoding describes the fixed fields that identify one mnemonic.
type Encoding struct {
	Mnemonic Mnemonic
	Category Category
	Opcode   uint32
	Funct3   uint32 // ignored for U/UJ
	Funct7   uint32 // meaningful for R, and for srai's shift-type discriminator
}

// Base opcodes (7-bit, bits [6:0] of the instruction word).
const (
	OpcodeOp      = 0x33 // R-type: add/sub/and/or/xor/sll/srl/sra/slt/sltu/mul/div/rem
	OpcodeOpImm   = 0x13 // I-type ALU: addi/andi/ori/xori/slti/sltiu/slli/srli/srai
	OpcodeLoad    = 0x03 // I-type load: lb/lh/lw (and the unsupported ld)
	OpcodeJalr    = 0x67 // I-type: jalr
	OpcodeStore   = 0x23 // S-type: sb/sh/sw
	OpcodeBranch  = 0x63 // SB-type: beq/bne/blt/bge/bltu/bgeu
	OpcodeLui     = 0x37 // U-type: lui
	OpcodeAuipc   = 0x17 // U-type: auipc
	OpcodeJal     = 0x6F // UJ-type: jal
	Funct7Base    = 0x00
	Funct7Alt     = 0x20 // sub, sra, srai
	Funct7MulDiv  = 0x01 // mul/div/rem (M-extension)
)

// Table is the ordered list of encodings the decoder matches against.
// R requires (opcode, funct3, funct7); I/S/SB require (opcode, funct3);
// U/UJ require only opcode.
var Table = []Encoding{
	{MnemonicAdd, CategoryR, OpcodeOp, 0x0, Funct7Base},
	{MnemonicSub, CategoryR, OpcodeOp, 0x0, Funct7Alt},
	{MnemonicMul, CategoryR, OpcodeOp, 0x0, Funct7MulDiv},
	{MnemonicSll, CategoryR, OpcodeOp, 0x1, Funct7Base},
	{MnemonicSlt, CategoryR, OpcodeOp, 0x2, Funct7Base},
	{MnemonicSltu, CategoryR, OpcodeOp, 0x3, Funct7Base},
	{MnemonicXor, CategoryR, OpcodeOp, 0x4, Funct7Base},
	{MnemonicDiv, CategoryR, OpcodeOp, 0x4, Funct7MulDiv},
	{MnemonicSrl, CategoryR, OpcodeOp, 0x5, Funct7Base},
	{MnemonicSra, CategoryR, OpcodeOp, 0x5, Funct7Alt},
	{MnemonicOr, CategoryR, OpcodeOp, 0x6, Funct7Base},
	{MnemonicRem, CategoryR, OpcodeOp, 0x6, Funct7MulDiv},
	{MnemonicAnd, CategoryR, OpcodeOp, 0x7, Funct7Base},

	{MnemonicAddi, CategoryI, OpcodeOpImm, 0x0, 0},
	{MnemonicSlli, CategoryI, OpcodeOpImm, 0x1, 0},
	{MnemonicSlti, CategoryI, OpcodeOpImm, 0x2, 0},
	{MnemonicSltiu, CategoryI, OpcodeOpImm, 0x3, 0},
	{MnemonicXori, CategoryI, OpcodeOpImm, 0x4, 0},
	{MnemonicSrli, CategoryI, OpcodeOpImm, 0x5, 0},
	{MnemonicSrai, CategoryI, OpcodeOpImm, 0x5, Funct7Alt},
	{MnemonicOri, CategoryI, OpcodeOpImm, 0x6, 0},
	{MnemonicAndi, CategoryI, OpcodeOpImm, 0x7, 0},

	{MnemonicLb, CategoryI, OpcodeLoad, 0x0, 0},
	{MnemonicLh, CategoryI, OpcodeLoad, 0x1, 0},
	{MnemonicLw, CategoryI, OpcodeLoad, 0x2, 0},
	{MnemonicLd, CategoryI, OpcodeLoad, 0x3, 0},

	{MnemonicJalr, CategoryI, OpcodeJalr, 0x0, 0},

	{MnemonicSb, CategoryS, OpcodeStore, 0x0, 0},
	{MnemonicSh, CategoryS, OpcodeStore, 0x1, 0},
	{MnemonicSw, CategoryS, OpcodeStore, 0x2, 0},

	{MnemonicBeq, CategorySB, OpcodeBranch, 0x0, 0},
	{MnemonicBne, CategorySB, OpcodeBranch, 0x1, 0},
	{MnemonicBlt, CategorySB, OpcodeBranch, 0x4, 0},
	{MnemonicBge, CategorySB, OpcodeBranch, 0x5, 0},
	{MnemonicBltu, CategorySB, OpcodeBranch, 0x6, 0},
	{MnemonicBgeu, CategorySB, OpcodeBranch, 0x7, 0},

	{MnemonicLui, CategoryU, OpcodeLui, 0, 0},
	{MnemonicAuipc, CategoryU, OpcodeAuipc, 0, 0},

	{MnemonicJal, CategoryUJ, OpcodeJal, 0, 0},
}

// srai/slli/srli carry a shift-type discriminator in bits [31:25] of the
// immediate field rather than a real funct7 (I-type has none); Slli is
// 0000000, Srli is 0000000, Srai is 0100000. The decoder disambiguates
// srli/srai using this, since both share (opcode, funct3).
const ShiftFunct7Alt = Funct7Alt

// Lookup finds the encoding matching (opcode, funct3, funct7) for R-type,
// (opcode, funct3) for I/S/SB, or opcode alone for U/UJ. Returns false if
// no rule matches, which the decoder surfaces as a decode fault.
func Lookup(opcode, funct3, funct7 uint32) (Encoding, bool) {
	for _, e := range Table {
		if e.Opcode != opcode {
			continue
		}
		switch e.Category {
		case CategoryR:
			if e.Funct3 == funct3 && e.Funct7 == funct7 {
				return e, true
			}
		case CategoryI, CategorySB:
			if e.Funct3 == funct3 {
				if (e.Mnemonic == MnemonicSrli || e.Mnemonic == MnemonicSrai) && opcode == OpcodeOpImm {
					if e.Mnemonic == MnemonicSrai && funct7 != ShiftFunct7Alt {
						continue
					}
					if e.Mnemonic == MnemonicSrli && funct7 == ShiftFunct7Alt {
						continue
					}
				}
				return e, true
			}
		case CategoryS:
			if e.Funct3 == funct3 {
				return e, true
			}
		case CategoryU, CategoryUJ:
			return e, true
		}
	}
	return Encoding{}, false
}

// IsALU reports whether the mnemonic is classified as an ALU instruction
// for statistics purposes (R-type, addi-family I-type, or U-type).
func IsALU(category Category, opcode uint32) bool {
	switch category {
	case CategoryR, CategoryU:
		return true
	case CategoryI:
		return opcode == OpcodeOpImm
	}
	return false
}

// IsDataTransfer reports whether the mnemonic is a load or store.
func IsDataTransfer(category Category, opcode uint32) bool {
	if category == CategoryS {
		return true
	}
	return category == CategoryI && opcode == OpcodeLoad
}

// IsControl reports whether the mnemonic is a branch or jump.
func IsControl(category Category, opcode uint32) bool {
	switch category {
	case CategorySB, CategoryUJ:
		return true
	case CategoryI:
		return opcode == OpcodeJalr
	}
	return false
}
