// Package simulator provides the engine-to-presentation façade: it loads
// an assembled image, steps or runs the configured execution model, and
// snapshots observable state for a presentation collaborator.
package simulator

import (
	"fmt"

	"github.com/sarchlab/rv32pipe/asm"
	"github.com/sarchlab/rv32pipe/emu"
	"github.com/sarchlab/rv32pipe/timing/pipeline"
)

// DefaultMaxSteps is the safety bound Run() will not exceed.
const DefaultMaxSteps = 10_000_000

// Option configures a Simulator at construction time.
type Option func(*Simulator)

// WithMaxSteps overrides DefaultMaxSteps.
func WithMaxSteps(n uint64) Option {
	return func(s *Simulator) { s.maxSteps = n }
}

// WithAssembler overrides the default asm.LineAssembler collaborator used
// by LoadProgram.
func WithAssembler(a asm.Assembler) Option {
	return func(s *Simulator) { s.assembler = a }
}

// Simulator is the engine-to-presentation façade: it owns the memory image
// and the pipeline controller, and is the only type external callers
// interact with.
type Simulator struct {
	assembler asm.Assembler
	maxSteps  uint64

	memory     *emu.Memory
	controller *pipeline.Controller

	pipelined  bool
	forwarding bool
	loaded     bool

	logs LogChannel
}

// NewSimulator creates a Simulator in its pre-load state: pipelined and
// forwarding both on (the pipeline.Controller defaults), MAX_STEPS at
// DefaultMaxSteps, and asm.LineAssembler as the assembler collaborator.
func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{
		assembler:  asm.NewLineAssembler(),
		maxSteps:   DefaultMaxSteps,
		pipelined:  true,
		forwarding: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetEnvironment toggles the execution model. Safe only before LoadProgram/
// LoadImage or after Reset; calling it once a program is loaded returns an
// error instead of silently reconfiguring a running simulator.
func (s *Simulator) SetEnvironment(pipelined, forwarding bool) error {
	if s.loaded {
		return fmt.Errorf("set_environment: a program is already loaded; call Reset first")
	}
	s.pipelined = pipelined
	s.forwarding = forwarding
	return nil
}

// LoadProgram assembles source through the configured collaborator and
// loads the resulting image. On an assembly fault it logs a 404 and
// returns false without installing any state.
func (s *Simulator) LoadProgram(source string) bool {
	img, diags, err := s.assembler.Assemble(source)
	if err != nil {
		msg := err.Error()
		if len(diags) > 0 {
			msg = fmt.Sprintf("%s (line %d: %s)", msg, diags[0].Line, diags[0].Message)
		}
		f := &Fault{Kind: FaultAssembly, Message: msg}
		s.logs.append(f.Kind.severity(), f.Error())
		return false
	}
	return s.LoadImage(img)
}

// LoadImage installs a prepared Image directly, bypassing the assembler
// collaborator. It is the entry point LoadProgram itself uses once source
// has been assembled, and a direct entry point for callers that already
// hold an Image.
func (s *Simulator) LoadImage(img asm.Image) bool {
	mem := emu.NewMemory()
	for _, c := range img.Code {
		mem.LoadCodeWord(c.Address, c.Word, c.Text)
	}
	for _, d := range img.Data {
		mem.LoadDataByte(d.Address, d.Value)
	}

	s.memory = mem
	s.controller = pipeline.NewController(mem,
		pipeline.WithPipelining(s.pipelined),
		pipeline.WithForwarding(s.forwarding),
	)
	s.loaded = true
	s.logs = LogChannel{}
	s.logs.append(logSuccess, "program loaded")
	return true
}

// Step advances one simulated cycle and returns whether the program
// continues. It never returns a Go error: faults are recorded on the log
// channel instead.
func (s *Simulator) Step() bool {
	if !s.loaded {
		return false
	}

	running := s.controller.Tick()
	s.logs.absorb(s.controller.DrainLogs())
	return running
}

// Run steps until termination or MAX_STEPS. If MAX_STEPS is reached
// without the program terminating on its own, a 400 log is recorded and
// execution halts with prior observable state intact.
func (s *Simulator) Run() bool {
	if !s.loaded {
		return false
	}

	for steps := uint64(0); steps < s.maxSteps; steps++ {
		if !s.Step() {
			return false
		}
	}

	f := &Fault{Kind: FaultSafetyLimit, Message: fmt.Sprintf("MAX_STEPS=%d exceeded", s.maxSteps), PC: s.PC()}
	s.logs.append(f.Kind.severity(), f.Error())
	return false
}

// Reset clears all simulator state: memory, the pipeline controller, and
// the log channel. SetEnvironment is safe to call again afterward.
func (s *Simulator) Reset() {
	if s.controller != nil {
		s.controller.Reset()
	}
	if s.memory != nil {
		s.memory.Reset()
	}
	s.loaded = false
	s.logs = LogChannel{}
}

// Running reports whether the loaded program has not yet terminated.
func (s *Simulator) Running() bool {
	return s.loaded && s.controller.Running()
}

// PC returns the current program counter.
func (s *Simulator) PC() uint32 {
	if s.controller == nil {
		return 0
	}
	return s.controller.PC()
}

// Registers returns a snapshot of all 32 integer registers.
func (s *Simulator) Registers() [emu.NumRegisters]uint32 {
	if s.controller == nil {
		return [emu.NumRegisters]uint32{}
	}
	return s.controller.Registers()
}

// Stats returns the running statistics block.
func (s *Simulator) Stats() pipeline.Statistics {
	if s.controller == nil {
		return pipeline.Statistics{}
	}
	return s.controller.Stats()
}

// Stalls returns the cumulative stall-bubble count.
func (s *Simulator) Stalls() uint64 {
	return s.Stats().StallBubbles
}

// Cycles returns the cumulative cycle count.
func (s *Simulator) Cycles() uint64 {
	return s.Stats().TotalCycles
}

// ActiveStages returns the per-stage occupancy snapshot for presentation.
func (s *Simulator) ActiveStages() []pipeline.StageOccupancy {
	if s.controller == nil {
		return nil
	}
	return s.controller.ActiveStages()
}

// DataMap returns a snapshot of the sparse data segment.
func (s *Simulator) DataMap() map[uint32]byte {
	if s.memory == nil {
		return nil
	}
	return s.memory.DataSnapshot()
}

// TextMap returns a snapshot of the text segment (word + disassembly).
func (s *Simulator) TextMap() map[uint32]emu.CodeWord {
	if s.memory == nil {
		return nil
	}
	return s.memory.TextSnapshot()
}

// InstructionRegisters returns the RA/RB/RM/RY/RZ scratch registers of the
// instruction currently in EXECUTE, if any.
func (s *Simulator) InstructionRegisters() (pipeline.InstructionRegisters, bool) {
	if s.controller == nil {
		return pipeline.InstructionRegisters{}, false
	}
	return s.controller.InstructionRegisters()
}

// UIResponse returns the per-cycle presentation flags
// (isStalled/isFlushed/isDataForwarded/isProgramTerminated).
func (s *Simulator) UIResponse() pipeline.UIResponse {
	if s.controller == nil {
		return pipeline.UIResponse{}
	}
	return s.controller.UIResponse()
}

// Logs drains the accumulated log channel.
func (s *Simulator) Logs() []LogEntry {
	return s.logs.Drain()
}
