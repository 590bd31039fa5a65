package pipeline

import (
	"fmt"

	"github.com/sarchlab/rv32pipe/emu"
	"github.com/sarchlab/rv32pipe/insts"
	"github.com/sarchlab/rv32pipe/isa"
)

// Severity codes for the log channel.
const (
	LogSuccess = 200
	LogTrace   = 300
	LogWarning = 400
	LogFatal   = 404
)

// LogEntry is one message recorded against a severity code. Unlike a
// literal severity -> message map, 300-level traces accumulate across a
// cycle rather than overwrite one another, so multiple hazard/flush traces
// in the same cycle are all preserved.
type LogEntry struct {
	Severity int
	Message  string
}

// Statistics is the running counter block for one simulation.
type Statistics struct {
	TotalCycles              uint64
	InstructionsExecuted     uint64
	StallBubbles             uint64
	DataHazards              uint64
	ControlHazards           uint64
	DataHazardStalls         uint64
	ControlHazardStalls      uint64
	PipelineFlushes          uint64
	ALUInstructions          uint64
	DataTransferInstructions uint64
	ControlInstructions      uint64
}

// CyclesPerInstruction is the derived cycles-per-instruction statistic.
func (s Statistics) CyclesPerInstruction() float64 {
	if s.InstructionsExecuted == 0 {
		return 0
	}
	return float64(s.TotalCycles) / float64(s.InstructionsExecuted)
}

// UIResponse carries the per-cycle presentation flags a driver consumes.
type UIResponse struct {
	IsStalled           bool
	IsFlushed           bool
	IsDataForwarded     bool
	IsProgramTerminated bool
}

// StageOccupancy is one stage's current occupant, for presentation
// snapshots.
type StageOccupancy struct {
	Stage Stage
	PC    uint32
	Text  string
}

// Option configures a Controller at construction.
type Option func(*Controller)

// WithPipelining selects the classical 5-stage pipeline (true) or the
// non-pipelined, one-instruction-in-flight model (false). Default true.
func WithPipelining(enabled bool) Option {
	return func(c *Controller) { c.pipelined = enabled }
}

// WithForwarding enables EX->EX/MEM->EX operand forwarding. Has no effect
// when pipelining is disabled. Default true.
func WithForwarding(enabled bool) Option {
	return func(c *Controller) { c.forwarding = enabled }
}

// Controller drives the RV32I execution core one cycle at a time, visiting
// stages in the order WRITEBACK, MEMORY, EXECUTE, DECODE, FETCH so producer
// stages have already advanced before consumers read dependency state.
// FETCH itself is not a persisted slot, it is a pure function of the
// current PC, so slots only tracks DECODE..WRITEBACK.
type Controller struct {
	memory    *emu.Memory
	regs      *emu.RegFile
	deps      *DependencyTable
	predictor *BranchPredictor
	hazard    *HazardUnit

	memUnit     *emu.MemoryUnit
	fetchStage  *FetchStage
	decodeStage *DecodeStage
	execStage   *ExecuteStage

	pc    uint32
	slots [4]*Slot // index = stageIndex(stage), stage in {DECODE..WRITEBACK}

	pipelined  bool
	forwarding bool

	stats   Statistics
	logs    []LogEntry
	ui      UIResponse
	running bool
}

func stageIndex(s Stage) int { return int(s) - int(StageDecode) }

// NewController wires a Controller around a shared memory image, with its
// own register file, dependency table, and branch predictor. Options
// configure pipelining/forwarding; both default to enabled.
func NewController(memory *emu.Memory, opts ...Option) *Controller {
	regs := emu.NewRegFile()
	predictor := NewBranchPredictor()
	hazard := NewHazardUnit()

	c := &Controller{
		memory:      memory,
		regs:        regs,
		deps:        NewDependencyTable(),
		predictor:   predictor,
		hazard:      hazard,
		memUnit:     emu.NewMemoryUnit(memory),
		fetchStage:  newFetchStage(memory, insts.NewDecoder(), predictor),
		decodeStage: newDecodeStage(regs, hazard),
		execStage:   newExecuteStage(emu.NewExecutor(), predictor),
		pipelined:   true,
		forwarding:  true,
		running:     true,
		pc:          emu.TextSegmentStart,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reset clears all controller state and reseeds FETCH at the text segment
// base.
func (c *Controller) Reset() {
	c.regs.Reset()
	c.predictor.Reset()
	c.deps = NewDependencyTable()
	for i := range c.slots {
		c.slots[i] = nil
	}
	c.pc = emu.TextSegmentStart
	c.stats = Statistics{}
	c.logs = nil
	c.ui = UIResponse{}
	c.running = true
}

// Tick advances the pipeline by exactly one cycle and reports whether
// execution should continue.
func (c *Controller) Tick() bool {
	if !c.running {
		return false
	}

	snapshot := c.deps.Snapshot()
	c.ui = UIResponse{}
	c.stats.TotalCycles++

	var nextDecode, nextExecute, nextMemory, nextWriteback *Slot
	flush := false
	var correctedPC uint32

	if wb := c.slots[stageIndex(StageWriteback)]; wb != nil {
		if writesRd(wb.Inst.Category) {
			c.regs.Write(wb.Inst.Rd, wb.Regs.RZ)
		}
		c.deps.Remove(wb.PC)
	}

	if mslot := c.slots[stageIndex(StageMemory)]; mslot != nil {
		rz, err := c.accessMemory(mslot)
		if err != nil {
			c.fault(err, mslot.PC)
			return false
		}
		mslot.Regs.RZ = rz
		mslot.Stage = StageWriteback
		c.deps.AdvanceStage(mslot.PC, StageMemory, rz)
		nextWriteback = mslot
	}

	if eslot := c.slots[stageIndex(StageExecute)]; eslot != nil {
		if c.pipelined && c.forwarding {
			// Forwarding overrides EXECUTE's operand inputs: the producer just
			// ahead is the snapshot's MEMORY record (its EXECUTE result from
			// last cycle), and older producers were written back above.
			fwd := c.decodeStage.Decode(eslot.Inst, snapshot, false, true)
			eslot.Regs.RA, eslot.Regs.RB, eslot.Regs.RM = fwd.Regs.RA, fwd.Regs.RB, fwd.Regs.RM
			if fwd.Forwarded {
				c.ui.IsDataForwarded = true
			}
		}
		out := c.execStage.Execute(eslot, c.pipelined)
		if out.Fault != nil {
			c.fault(out.Fault, eslot.PC)
			return false
		}
		eslot.Regs.RY = out.Result.RY
		eslot.MemOp = out.Result.MemOp
		eslot.MemAddr = out.Result.MemAddr
		eslot.Stage = StageMemory
		if isLoad(eslot.MemOp) {
			c.deps.Advance(eslot.PC, StageMemory)
		} else {
			c.deps.AdvanceStage(eslot.PC, StageMemory, eslot.Regs.RY)
		}
		nextMemory = eslot

		if !c.pipelined && out.Result.BranchTaken {
			c.pc = out.Result.NextPC
		}

		if out.Mispredicted {
			flush = true
			correctedPC = out.CorrectedPC
			c.stats.ControlHazards++
			c.stats.ControlHazardStalls++
			c.stats.PipelineFlushes++
			c.ui.IsFlushed = true
			c.logs = append(c.logs, LogEntry{
				Severity: LogTrace,
				Message: fmt.Sprintf(
					"control misprediction at 0x%08x: flushing fetch/decode, redirecting to 0x%08x",
					eslot.PC, correctedPC),
			})
		}
	}

	decodeBlocked := false
	if !flush {
		if dslot := c.slots[stageIndex(StageDecode)]; dslot != nil {
			outcome := c.decodeStage.Decode(dslot.Inst, snapshot, c.pipelined, c.pipelined && c.forwarding)
			if outcome.Stalled {
				decodeBlocked = true
				dslot.Stalled = true
				c.ui.IsStalled = true
				c.stats.StallBubbles++
				c.stats.DataHazardStalls++
				if !dslot.countedHazard {
					c.stats.DataHazards++
					dslot.countedHazard = true
				}
				kind := "RAW"
				if outcome.LoadUse {
					kind = "load-use"
				}
				c.logs = append(c.logs, LogEntry{
					Severity: LogTrace,
					Message:  fmt.Sprintf("%s stall at 0x%08x: %s", kind, dslot.PC, dslot.Inst),
				})
				nextDecode = dslot
			} else {
				dslot.Regs.RA, dslot.Regs.RB, dslot.Regs.RM = outcome.Regs.RA, outcome.Regs.RB, outcome.Regs.RM
				dslot.Stage = StageExecute

				rd := uint8(0)
				if writesRd(dslot.Inst.Category) {
					rd = dslot.Inst.Rd
				}
				c.deps.Create(dslot.PC, rd, dslot.Inst.Opcode)
				c.deps.Advance(dslot.PC, StageExecute)
				c.classify(dslot.Inst)

				if outcome.Forwarded {
					c.ui.IsDataForwarded = true
				}
				nextExecute = dslot
			}
		}
	}

	switch {
	case flush:
		c.pc = correctedPC
	case decodeBlocked:
		// Back-pressure: DECODE held its slot, so FETCH does not advance.
	default:
		canFetch := true
		if !c.pipelined {
			canFetch = nextExecute == nil && nextMemory == nil && nextWriteback == nil
		}
		if canFetch {
			fr := c.fetchStage.Fetch(c.pc, c.pipelined)
			if fr.Fault != nil {
				c.fault(fr.Fault, c.pc)
				return false
			}
			if fr.Slot != nil {
				fr.Slot.Stage = StageDecode
				c.pc = fr.NextPC
				c.stats.InstructionsExecuted++
				nextDecode = fr.Slot
			}
		}
	}

	c.slots[stageIndex(StageDecode)] = nextDecode
	c.slots[stageIndex(StageExecute)] = nextExecute
	c.slots[stageIndex(StageMemory)] = nextMemory
	c.slots[stageIndex(StageWriteback)] = nextWriteback

	pipelineEmpty := nextDecode == nil && nextExecute == nil && nextMemory == nil && nextWriteback == nil
	_, fetchable := c.memory.FetchWord(c.pc)
	if pipelineEmpty && !fetchable {
		c.running = false
		c.ui.IsProgramTerminated = true
		c.logs = append(c.logs, LogEntry{
			Severity: LogSuccess,
			Message:  "program terminated: end of text segment reached with an empty pipeline",
		})
	}

	return c.running
}

func (c *Controller) accessMemory(slot *Slot) (uint32, error) {
	if slot.MemOp == emu.MemOpNone {
		return slot.Regs.RY, nil
	}
	return c.memUnit.Access(slot.MemOp, slot.MemAddr, slot.Regs.RM, slot.Regs.RY)
}

func (c *Controller) classify(inst *insts.Instruction) {
	switch {
	case isa.IsALU(inst.Category, inst.Opcode):
		c.stats.ALUInstructions++
	case isa.IsDataTransfer(inst.Category, inst.Opcode):
		c.stats.DataTransferInstructions++
	case isa.IsControl(inst.Category, inst.Opcode):
		c.stats.ControlInstructions++
	}
}

func (c *Controller) fault(err error, pc uint32) {
	c.running = false
	c.ui.IsProgramTerminated = true
	c.logs = append(c.logs, LogEntry{
		Severity: LogFatal,
		Message:  fmt.Sprintf("0x%08x: %v", pc, err),
	})
}

// PC returns the address the next FETCH will read from.
func (c *Controller) PC() uint32 { return c.pc }

// Registers returns a snapshot of the architectural register file.
func (c *Controller) Registers() [emu.NumRegisters]uint32 { return c.regs.Snapshot() }

// Stats returns the running statistics block.
func (c *Controller) Stats() Statistics { return c.stats }

// UIResponse returns this cycle's stall/flush/forward/terminate flags.
func (c *Controller) UIResponse() UIResponse { return c.ui }

// Running reports whether the pipeline is still running, i.e. has not
// terminated.
func (c *Controller) Running() bool { return c.running }

// DrainLogs returns and clears all log entries accumulated since the last
// drain.
func (c *Controller) DrainLogs() []LogEntry {
	out := c.logs
	c.logs = nil
	return out
}

// ActiveStages snapshots which stages are currently occupied.
func (c *Controller) ActiveStages() []StageOccupancy {
	var out []StageOccupancy
	for _, st := range []Stage{StageDecode, StageExecute, StageMemory, StageWriteback} {
		if slot := c.slots[stageIndex(st)]; slot != nil {
			out = append(out, StageOccupancy{Stage: st, PC: slot.PC, Text: slot.Inst.String()})
		}
	}
	if cw, ok := c.memory.FetchWord(c.pc); ok {
		out = append(out, StageOccupancy{Stage: StageFetch, PC: c.pc, Text: cw.Text})
	}
	return out
}

// InstructionRegisters returns the RA/RB/RM/RY/RZ scratch registers of the
// instruction currently in EXECUTE, if any.
func (c *Controller) InstructionRegisters() (InstructionRegisters, bool) {
	slot := c.slots[stageIndex(StageExecute)]
	if slot == nil {
		return InstructionRegisters{}, false
	}
	return slot.Regs, true
}
