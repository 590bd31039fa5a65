package pipeline

import (
	"fmt"

	"github.com/sarchlab/rv32pipe/emu"
	"github.com/sarchlab/rv32pipe/insts"
	"github.com/sarchlab/rv32pipe/isa"
)

// writesRd reports whether category commits RZ to the register file at
// WRITEBACK.
func writesRd(category isa.Category) bool {
	switch category {
	case isa.CategoryR, isa.CategoryI, isa.CategoryU, isa.CategoryUJ:
		return true
	default:
		return false
	}
}

// FetchStage reads the word at a PC, decodes it, and consults the branch
// predictor to choose the following fetch address.
type FetchStage struct {
	memory    *emu.Memory
	decoder   *insts.Decoder
	predictor *BranchPredictor
}

func newFetchStage(memory *emu.Memory, decoder *insts.Decoder, predictor *BranchPredictor) *FetchStage {
	return &FetchStage{memory: memory, decoder: decoder, predictor: predictor}
}

// FetchResult is the outcome of one fetch attempt.
type FetchResult struct {
	Slot   *Slot
	NextPC uint32
	Fault  error
}

// Fetch reads and decodes the word at pc. Slot is nil if pc lies past the
// end of the text segment (the normal termination condition, not a fault).
func (s *FetchStage) Fetch(pc uint32, pipelined bool) FetchResult {
	cw, ok := s.memory.FetchWord(pc)
	if !ok {
		return FetchResult{NextPC: pc}
	}

	inst, err := s.decoder.Decode(cw.Word)
	if err != nil {
		return FetchResult{Fault: fmt.Errorf("fetch at 0x%08x: %w", pc, err)}
	}

	slot := &Slot{Inst: inst, PC: pc, Stage: StageFetch}
	nextPC := pc + emu.InstructionSize

	if pipelined && (inst.IsBranch || inst.IsJump) {
		pred := s.predictor.Predict(pc)
		if pred.Taken && pred.TargetKnown {
			slot.PredictedTaken = true
			slot.PredictedTarget = pred.Target
			nextPC = pred.Target
		}
	}

	return FetchResult{Slot: slot, NextPC: nextPC}
}

// DecodeStage reads operand registers, applying forwarding when enabled,
// and decides whether a hazard holds the instruction in place.
type DecodeStage struct {
	regs   *emu.RegFile
	hazard *HazardUnit
}

func newDecodeStage(regs *emu.RegFile, hazard *HazardUnit) *DecodeStage {
	return &DecodeStage{regs: regs, hazard: hazard}
}

// DecodeOutcome reports the operands computed for an instruction, or that
// it must stall instead of advancing to EXECUTE this cycle.
type DecodeOutcome struct {
	Regs      emu.Operands
	Stalled   bool
	LoadUse   bool
	Forwarded bool
}

// Decode computes RA/RB/RM for inst against snapshot, the dependency-table
// view frozen at the start of this cycle.
func (s *DecodeStage) Decode(
	inst *insts.Instruction, snapshot []DependencyRecord, pipelined, forwarding bool,
) DecodeOutcome {
	if pipelined {
		if !forwarding && s.hazard.RAWStall(snapshot, inst.Rs1, inst.Rs2, inst.Category) {
			return DecodeOutcome{Stalled: true}
		}
		if forwarding && s.hazard.LoadUseStall(snapshot, inst.Rs1, inst.Rs2, inst.Category) {
			return DecodeOutcome{Stalled: true, LoadUse: true}
		}
	}

	var ops emu.Operands
	var forwarded bool

	switch inst.Category {
	case isa.CategoryR:
		ops.RA, forwarded = s.operand(inst.Rs1, snapshot, forwarding, forwarded)
		ops.RB, forwarded = s.operand(inst.Rs2, snapshot, forwarding, forwarded)
	case isa.CategoryI:
		ops.RA, forwarded = s.operand(inst.Rs1, snapshot, forwarding, forwarded)
		ops.RB = uint32(inst.Imm)
	case isa.CategoryS, isa.CategorySB:
		ops.RA, forwarded = s.operand(inst.Rs1, snapshot, forwarding, forwarded)
		ops.RB = uint32(inst.Imm)
		ops.RM, forwarded = s.operand(inst.Rs2, snapshot, forwarding, forwarded)
	case isa.CategoryU, isa.CategoryUJ:
		ops.RB = uint32(inst.Imm)
	}

	return DecodeOutcome{Regs: ops, Forwarded: forwarded}
}

// operand resolves reg's value, preferring a forwarded in-flight result
// over the (possibly stale) register file when forwarding is enabled.
func (s *DecodeStage) operand(
	reg uint8, snapshot []DependencyRecord, forwarding bool, forwardedSoFar bool,
) (uint32, bool) {
	if forwarding {
		if src, v := s.hazard.ForwardFor(snapshot, reg); src != ForwardNone {
			return v, true
		}
	}
	return s.regs.Read(reg), forwardedSoFar
}

// ExecuteStage runs the ALU/branch/jump semantics and resolves predictor
// mispredictions.
type ExecuteStage struct {
	executor  *emu.Executor
	predictor *BranchPredictor
}

func newExecuteStage(executor *emu.Executor, predictor *BranchPredictor) *ExecuteStage {
	return &ExecuteStage{executor: executor, predictor: predictor}
}

// ExecuteOutcome is the EXECUTE-stage result, plus misprediction info when
// the instruction is a branch or jump and pipelining is active.
type ExecuteOutcome struct {
	Result       emu.Result
	Mispredicted bool
	CorrectedPC  uint32
	Fault        error
}

// Execute computes slot's result and, for branches/jumps under pipelining,
// compares the outcome to the prediction made at FETCH.
func (s *ExecuteStage) Execute(slot *Slot, pipelined bool) ExecuteOutcome {
	inst := slot.Inst
	nextPC := slot.PC + emu.InstructionSize

	res, err := s.executor.Execute(
		inst.Mnemonic,
		emu.Operands{RA: slot.Regs.RA, RB: slot.Regs.RB, RM: slot.Regs.RM},
		slot.PC, nextPC,
	)
	if err != nil {
		return ExecuteOutcome{Fault: err}
	}

	out := ExecuteOutcome{Result: res}
	if !pipelined || !(inst.IsBranch || inst.IsJump) {
		return out
	}

	actualTarget := res.NextPC
	s.predictor.Update(slot.PC, res.BranchTaken, actualTarget)

	if slot.PredictedTaken != res.BranchTaken ||
		(res.BranchTaken && slot.PredictedTarget != actualTarget) {
		out.Mispredicted = true
		if res.BranchTaken {
			out.CorrectedPC = actualTarget
		} else {
			out.CorrectedPC = nextPC
		}
	}
	return out
}

// isLoad reports whether op reads memory (as opposed to writing it, or
// being absent for a non-memory instruction).
func isLoad(op emu.MemoryOp) bool {
	switch op {
	case emu.MemOpLoadByte, emu.MemOpLoadHalf, emu.MemOpLoadWord:
		return true
	default:
		return false
	}
}
