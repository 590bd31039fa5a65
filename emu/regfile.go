// Package emu provides the functional RV32I execution units: the register
// file, byte-addressable memory, and the per-mnemonic executor.
package emu

// Reset values for the RV32I register file.
const (
	ResetSP = 0x7FFFFFDC // x2: stack pointer
	ResetGP = 0x10000000 // x3: global pointer
	ResetA0 = 0x00000001 // x10
	ResetA1 = 0x7FFFFFDC // x11
)

// NumRegisters is the RV32I integer register count.
const NumRegisters = 32

// RegFile holds the 32 RV32I integer registers. Slot 0 is hard-wired to
// zero: every write to it is discarded, and it always reads as zero.
type RegFile struct {
	X [NumRegisters]uint32
}

// NewRegFile builds a register file at its post-reset initial state.
func NewRegFile() *RegFile {
	r := &RegFile{}
	r.Reset()
	return r
}

// Reset restores the register file to its initial state.
func (r *RegFile) Reset() {
	for i := range r.X {
		r.X[i] = 0
	}
	r.X[2] = ResetSP
	r.X[3] = ResetGP
	r.X[10] = ResetA0
	r.X[11] = ResetA1
}

// Read returns the value of reg. Register 0 always reads as 0.
func (r *RegFile) Read(reg uint8) uint32 {
	if reg == 0 {
		return 0
	}
	return r.X[reg]
}

// Write stores value into reg. Writes to register 0 are discarded, and
// register 0 is forced back to zero unconditionally after every write, so
// that it reads as zero regardless of how it was reached.
func (r *RegFile) Write(reg uint8, value uint32) {
	if reg != 0 {
		r.X[reg] = value
	}
	r.X[0] = 0
}

// Snapshot returns a copy of all 32 registers, for presentation collaborators.
func (r *RegFile) Snapshot() [NumRegisters]uint32 {
	return r.X
}
