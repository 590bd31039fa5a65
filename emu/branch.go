package emu

import "github.com/sarchlab/rv32pipe/isa"

// EvaluateBranch resolves the taken/not-taken outcome of a branch mnemonic
// by comparing RA (reg[rs1]) against RM (reg[rs2]). SB-type decode also
// populates RM with reg[rs2], exactly as S-type does, since the hazard
// rules check rs2 as a real dependency source for SB.
func EvaluateBranch(mnemonic isa.Mnemonic, ra, rm uint32) bool {
	switch mnemonic {
	case isa.MnemonicBeq:
		return ra == rm
	case isa.MnemonicBne:
		return ra != rm
	case isa.MnemonicBlt:
		return int32(ra) < int32(rm)
	case isa.MnemonicBge:
		return int32(ra) >= int32(rm)
	case isa.MnemonicBltu:
		return ra < rm
	case isa.MnemonicBgeu:
		return ra >= rm
	default:
		return false
	}
}
