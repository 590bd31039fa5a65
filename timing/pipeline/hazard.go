package pipeline

import "github.com/sarchlab/rv32pipe/isa"

// ForwardSource identifies where a forwarded operand value came from.
type ForwardSource int

// Forwarding sources, in priority order: EX->EX beats MEM->EX.
const (
	ForwardNone ForwardSource = iota
	ForwardFromExecute
	ForwardFromMemory
)

// HazardUnit implements the RAW, load-use, and forwarding rules, operating
// entirely on a DependencyTable snapshot taken at cycle start.
type HazardUnit struct{}

// NewHazardUnit creates a hazard detection unit.
func NewHazardUnit() *HazardUnit {
	return &HazardUnit{}
}

// usesRs2 reports whether category reads rs2 as a real source operand:
// R (second ALU operand), S (store data via RM), and SB (branch compare
// via RM).
func usesRs2(category isa.Category) bool {
	switch category {
	case isa.CategoryR, isa.CategoryS, isa.CategorySB:
		return true
	default:
		return false
	}
}

// RAWStall reports whether rs1/rs2 of the current instruction collide
// with the destination of any in-flight producer still in EXECUTE or
// MEMORY. Used only when forwarding is disabled.
func (h *HazardUnit) RAWStall(snapshot []DependencyRecord, rs1, rs2 uint8, category isa.Category) bool {
	if h.produces(snapshot, rs1) {
		return true
	}
	if usesRs2(category) && h.produces(snapshot, rs2) {
		return true
	}
	return false
}

func (h *HazardUnit) produces(snapshot []DependencyRecord, reg uint8) bool {
	if reg == 0 {
		return false
	}
	if _, ok := FindProducer(snapshot, reg, StageExecute); ok {
		return true
	}
	if _, ok := FindProducer(snapshot, reg, StageMemory); ok {
		return true
	}
	return false
}

// LoadUseStall reports whether a load still in EXECUTE produces rs1/rs2
// of the current instruction, requiring a single-cycle stall even with
// forwarding enabled.
func (h *HazardUnit) LoadUseStall(snapshot []DependencyRecord, rs1, rs2 uint8, category isa.Category) bool {
	rec, ok := FindProducer(snapshot, rs1, StageExecute)
	if ok && rec.Opcode == isa.OpcodeLoad {
		return true
	}
	if usesRs2(category) {
		rec, ok := FindProducer(snapshot, rs2, StageExecute)
		if ok && rec.Opcode == isa.OpcodeLoad {
			return true
		}
	}
	return false
}

// ForwardFor resolves the forwarding source for reg, preferring an
// EXECUTE-stage (non-load) producer over a MEMORY-stage one.
func (h *HazardUnit) ForwardFor(snapshot []DependencyRecord, reg uint8) (ForwardSource, uint32) {
	if reg == 0 {
		return ForwardNone, 0
	}
	if rec, ok := FindProducer(snapshot, reg, StageExecute); ok && rec.HasValue {
		return ForwardFromExecute, rec.Value
	}
	if rec, ok := FindProducer(snapshot, reg, StageMemory); ok && rec.HasValue {
		return ForwardFromMemory, rec.Value
	}
	return ForwardNone, 0
}
