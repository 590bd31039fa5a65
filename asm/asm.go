// Package asm defines the assembler collaborator boundary the execution
// core consumes from and ships a small reference implementation of it.
// Neither this package's interface nor its implementation is imported by
// isa, insts, emu, or pipeline: the simulator façade is the only caller.
package asm

// CodeEntry is one instruction slot bound for the text segment: the
// assembled word and its disassembly text, computed once here rather than
// on every fetch.
type CodeEntry struct {
	Address uint32
	Word    uint32
	Text    string
}

// DataEntry is one byte bound for the data segment.
type DataEntry struct {
	Address uint32
	Value   byte
}

// Image is the prepared assembler-to-engine handoff: a code image and a
// data image, keyed by address, ready to be installed into emu.Memory.
type Image struct {
	Code []CodeEntry
	Data []DataEntry
}

// Diagnostic reports one problem found while assembling source, attributed
// to the source line it came from (1-indexed).
type Diagnostic struct {
	Line    int
	Message string
}

// Assembler turns RV32I assembly source text into a prepared Image. This is
// the entire surface the execution core depends on; everything upstream of
// it (lexing, parsing, label resolution, directive handling) is the
// collaborator's concern, not the simulator's.
type Assembler interface {
	Assemble(source string) (Image, []Diagnostic, error)
}
