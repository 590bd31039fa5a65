package emu

import (
	"fmt"

	"github.com/sarchlab/rv32pipe/isa"
)

// ExecuteFault reports a mnemonic the executor cannot honor, currently
// only `ld` (RV64 load-doubleword), which the decoder recognizes but
// execution does not support.
type ExecuteFault struct {
	Mnemonic isa.Mnemonic
	PC       uint32
}

func (f *ExecuteFault) Error() string {
	return fmt.Sprintf("execute fault: %s unsupported at pc 0x%08x", f.Mnemonic, f.PC)
}

// Operands holds the three operand registers a decoded instruction feeds
// into EXECUTE.
type Operands struct {
	RA uint32
	RB uint32
	RM uint32
}

// Result is the EXECUTE-stage outcome: the computed value RY, whether a
// branch/jump is taken, and (if taken) the redirected PC.
type Result struct {
	RY          uint32
	BranchTaken bool
	NextPC      uint32
	MemOp       MemoryOp
	MemAddr     uint32
}

// Executor computes the per-mnemonic functional semantics of RV32I
// execution. It is a pure function of its inputs: no register file or
// memory access happens here, only in the MEMORY and WRITEBACK stages
// that consume its Result.
type Executor struct{}

// NewExecutor creates a stateless RV32I executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// Execute computes RY and the branch/jump outcome for one instruction.
// pc is the instruction's own fetch address; nextPC is pc+InstructionSize.
func (e *Executor) Execute(mnemonic isa.Mnemonic, ops Operands, pc, nextPC uint32) (Result, error) {
	ra, rb, rm := ops.RA, ops.RB, ops.RM

	switch mnemonic {
	case isa.MnemonicAdd, isa.MnemonicAddi:
		return Result{RY: ra + rb}, nil
	case isa.MnemonicSub:
		return Result{RY: ra - rb}, nil
	case isa.MnemonicMul:
		return Result{RY: ra * rb}, nil
	case isa.MnemonicDiv:
		if rb == 0 {
			return Result{RY: 0xFFFFFFFF}, nil
		}
		return Result{RY: uint32(int32(ra) / int32(rb))}, nil
	case isa.MnemonicRem:
		if rb == 0 {
			return Result{RY: ra}, nil
		}
		return Result{RY: uint32(int32(ra) % int32(rb))}, nil
	case isa.MnemonicAnd, isa.MnemonicAndi:
		return Result{RY: ra & rb}, nil
	case isa.MnemonicOr, isa.MnemonicOri:
		return Result{RY: ra | rb}, nil
	case isa.MnemonicXor, isa.MnemonicXori:
		return Result{RY: ra ^ rb}, nil
	case isa.MnemonicSll, isa.MnemonicSlli:
		return Result{RY: ra << (rb & 0x1F)}, nil
	case isa.MnemonicSrl, isa.MnemonicSrli:
		return Result{RY: ra >> (rb & 0x1F)}, nil
	case isa.MnemonicSra, isa.MnemonicSrai:
		return Result{RY: uint32(int32(ra) >> (rb & 0x1F))}, nil
	case isa.MnemonicSlt, isa.MnemonicSlti:
		return Result{RY: boolToWord(int32(ra) < int32(rb))}, nil
	case isa.MnemonicSltu, isa.MnemonicSltiu:
		return Result{RY: boolToWord(ra < rb)}, nil

	case isa.MnemonicLb:
		return Result{MemOp: MemOpLoadByte, MemAddr: ra + rb}, nil
	case isa.MnemonicLh:
		return Result{MemOp: MemOpLoadHalf, MemAddr: ra + rb}, nil
	case isa.MnemonicLw:
		return Result{MemOp: MemOpLoadWord, MemAddr: ra + rb}, nil
	case isa.MnemonicLd:
		return Result{}, &ExecuteFault{Mnemonic: mnemonic, PC: pc}

	case isa.MnemonicSb:
		return Result{RY: ra + rb, MemOp: MemOpStoreByte, MemAddr: ra + rb}, nil
	case isa.MnemonicSh:
		return Result{RY: ra + rb, MemOp: MemOpStoreHalf, MemAddr: ra + rb}, nil
	case isa.MnemonicSw:
		return Result{RY: ra + rb, MemOp: MemOpStoreWord, MemAddr: ra + rb}, nil

	case isa.MnemonicBeq, isa.MnemonicBne, isa.MnemonicBlt,
		isa.MnemonicBge, isa.MnemonicBltu, isa.MnemonicBgeu:
		taken := EvaluateBranch(mnemonic, ra, rm)
		res := Result{RY: boolToWord(taken), BranchTaken: taken}
		if taken {
			res.NextPC = pc + rb
		}
		return res, nil

	case isa.MnemonicLui:
		return Result{RY: rb}, nil
	case isa.MnemonicAuipc:
		return Result{RY: pc + rb}, nil
	case isa.MnemonicJal:
		return Result{RY: nextPC, BranchTaken: true, NextPC: pc + rb}, nil
	case isa.MnemonicJalr:
		return Result{RY: nextPC, BranchTaken: true, NextPC: (ra + rb) &^ 1}, nil

	default:
		return Result{}, &ExecuteFault{Mnemonic: mnemonic, PC: pc}
	}
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
