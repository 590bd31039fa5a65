package pipeline

import (
	"github.com/sarchlab/rv32pipe/emu"
	"github.com/sarchlab/rv32pipe/insts"
)

// Stage identifies one of the five pipeline stages, or the absence of one.
type Stage uint8

// Pipeline stages, in traversal order (reverse order, WRITEBACK -> FETCH).
const (
	StageNone Stage = iota
	StageFetch
	StageDecode
	StageExecute
	StageMemory
	StageWriteback
)

// String renders the stage name, used by presentation snapshots.
func (s Stage) String() string {
	switch s {
	case StageFetch:
		return "FETCH"
	case StageDecode:
		return "DECODE"
	case StageExecute:
		return "EXECUTE"
	case StageMemory:
		return "MEMORY"
	case StageWriteback:
		return "WRITEBACK"
	default:
		return "NONE"
	}
}

// InstructionRegisters holds the operand/result scratch registers an
// in-flight instruction carries through EXECUTE/MEMORY (RA, RB, RM, RY, RZ).
type InstructionRegisters struct {
	RA uint32
	RB uint32
	RM uint32
	RY uint32
	RZ uint32
}

// Slot is one in-flight instruction, exclusively owned by the stage it
// currently occupies. A stall keeps the same Slot in the same Stage across
// a cycle boundary; a successful advance moves it (not copies it) to the
// next stage.
type Slot struct {
	Inst *insts.Instruction
	PC   uint32

	Regs InstructionRegisters

	// MemOp/MemAddr carry the effective-address decision made at EXECUTE
	// forward to the MEMORY stage that performs the access.
	MemOp   emu.MemoryOp
	MemAddr uint32

	Stalled bool
	Stage   Stage

	// countedHazard guards data_hazards from incrementing on every cycle
	// of a multi-cycle stall: the hazard is counted once, not per cycle.
	countedHazard bool

	// PredictedTaken/PredictedTarget carry the FETCH-time branch
	// prediction forward so EXECUTE can compare it to the actual outcome.
	PredictedTaken  bool
	PredictedTarget uint32
}

// DependencyRecord is the per-in-flight-instruction bookkeeping entry,
// keyed by the owning instruction's PC, never by destination register,
// since two in-flight writers to the same register must coexist (the
// later one shadows the earlier at read time).
type DependencyRecord struct {
	PC       uint32
	Rd       uint8
	Stage    Stage
	Opcode   uint32
	Value    uint32
	HasValue bool
}

// DependencyTable is a PC-keyed snapshot of in-flight producers, consulted
// by the hazard unit for stall detection and forwarding.
type DependencyTable struct {
	records map[uint32]*DependencyRecord
}

// NewDependencyTable creates an empty table.
func NewDependencyTable() *DependencyTable {
	return &DependencyTable{records: make(map[uint32]*DependencyRecord)}
}

// Create installs a new record at DECODE, only if rd != 0.
func (t *DependencyTable) Create(pc uint32, rd uint8, opcode uint32) {
	if rd == 0 {
		return
	}
	t.records[pc] = &DependencyRecord{PC: pc, Rd: rd, Stage: StageDecode, Opcode: opcode}
}

// AdvanceStage updates the stage and latest produced value of the record
// at pc (EXECUTE records the ALU result; MEMORY records the post-memory
// value).
func (t *DependencyTable) AdvanceStage(pc uint32, stage Stage, value uint32) {
	rec, ok := t.records[pc]
	if !ok {
		return
	}
	rec.Stage = stage
	rec.Value = value
	rec.HasValue = true
}

// Advance moves the record at pc to stage without changing its latest
// produced value. Used when a producer enters a stage before its result
// is actually known, most notably a load entering EXECUTE: its effective
// address is computed there, but the loaded value isn't known until
// MEMORY, so it must not appear forwardable a cycle early.
func (t *DependencyTable) Advance(pc uint32, stage Stage) {
	rec, ok := t.records[pc]
	if !ok {
		return
	}
	rec.Stage = stage
}

// Remove deletes the record at pc, called at WRITEBACK.
func (t *DependencyTable) Remove(pc uint32) {
	delete(t.records, pc)
}

// Snapshot returns a defensive copy of all in-flight records, taken once
// at cycle start, before any stage executes in that cycle.
func (t *DependencyTable) Snapshot() []DependencyRecord {
	out := make([]DependencyRecord, 0, len(t.records))
	for _, rec := range t.records {
		out = append(out, *rec)
	}
	return out
}

// FindProducer returns the record (if any) in the snapshot that writes
// reg and currently occupies stage.
func FindProducer(snapshot []DependencyRecord, reg uint8, stage Stage) (DependencyRecord, bool) {
	for _, rec := range snapshot {
		if rec.Rd == reg && rec.Stage == stage {
			return rec, true
		}
	}
	return DependencyRecord{}, false
}
