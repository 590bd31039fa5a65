package emu

import "fmt"

// Memory layout constants.
const (
	TextSegmentStart = 0x00000000
	DataSegmentStart = 0x10000000
	MemorySize       = 0x80000000
	InstructionSize  = 4
)

// MemoryFault reports an access whose byte range falls outside
// [0, MemorySize).
type MemoryFault struct {
	Address uint32
	Width   int
}

func (f *MemoryFault) Error() string {
	return fmt.Sprintf("memory fault: access of %d byte(s) at 0x%08x out of bounds", f.Width, f.Address)
}

// CodeWord is one entry of the read-only text segment: the raw instruction
// word plus its disassembly text, computed once at load time.
type CodeWord struct {
	Word uint32
	Text string
}

// Memory is the byte-addressable, sparse memory backing both the text
// segment (read-only during execution) and the data segment. Both extend
// from their respective base addresses up to MemorySize.
type Memory struct {
	text map[uint32]CodeWord
	data map[uint32]byte
}

// NewMemory builds an empty memory image.
func NewMemory() *Memory {
	return &Memory{
		text: make(map[uint32]CodeWord),
		data: make(map[uint32]byte),
	}
}

// Reset clears both segments.
func (m *Memory) Reset() {
	m.text = make(map[uint32]CodeWord)
	m.data = make(map[uint32]byte)
}

// valid reports whether the byte range [addr, addr+width) lies within
// [0, MemorySize).
func valid(addr uint32, width int) bool {
	if uint64(addr)+uint64(width) > MemorySize {
		return false
	}
	return true
}

// LoadCodeWord installs a word and its disassembly text at addr in the
// text segment, called by the assembler collaborator while building the
// image.
func (m *Memory) LoadCodeWord(addr, word uint32, text string) {
	m.text[addr] = CodeWord{Word: word, Text: text}
}

// LoadDataByte installs one byte at addr in the data segment.
func (m *Memory) LoadDataByte(addr uint32, b byte) {
	m.data[addr] = b
}

// FetchWord reads the instruction word at addr from the text segment.
// Addresses with no installed word are treated as the end-of-text sentinel
// (word and text both zero-valued); the caller is responsible for
// recognizing this as a termination condition.
func (m *Memory) FetchWord(addr uint32) (CodeWord, bool) {
	cw, ok := m.text[addr]
	return cw, ok
}

// TextSnapshot returns the full text segment, for presentation collaborators.
func (m *Memory) TextSnapshot() map[uint32]CodeWord {
	out := make(map[uint32]CodeWord, len(m.text))
	for k, v := range m.text {
		out[k] = v
	}
	return out
}

// DataSnapshot returns the full sparse data segment.
func (m *Memory) DataSnapshot() map[uint32]byte {
	out := make(map[uint32]byte, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out
}

// readByte returns the byte at addr, or 0 if absent.
func (m *Memory) readByte(addr uint32) byte {
	return m.data[addr]
}

// ReadByte reads one byte, zero-extended.
func (m *Memory) ReadByte(addr uint32) (uint32, error) {
	if !valid(addr, 1) {
		return 0, &MemoryFault{Address: addr, Width: 1}
	}
	return uint32(m.readByte(addr)), nil
}

// ReadByteSigned reads one byte, sign-extended to 32 bits (lb).
func (m *Memory) ReadByteSigned(addr uint32) (int32, error) {
	if !valid(addr, 1) {
		return 0, &MemoryFault{Address: addr, Width: 1}
	}
	return int32(int8(m.readByte(addr))), nil
}

// ReadHalf reads a little-endian 16-bit halfword, zero-extended.
func (m *Memory) ReadHalf(addr uint32) (uint32, error) {
	if !valid(addr, 2) {
		return 0, &MemoryFault{Address: addr, Width: 2}
	}
	lo := uint32(m.readByte(addr))
	hi := uint32(m.readByte(addr + 1))
	return lo | hi<<8, nil
}

// ReadHalfSigned reads a little-endian 16-bit halfword, sign-extended to
// 32 bits (lh).
func (m *Memory) ReadHalfSigned(addr uint32) (int32, error) {
	v, err := m.ReadHalf(addr)
	if err != nil {
		return 0, err
	}
	return int32(int16(v)), nil
}

// ReadWord reads a little-endian 32-bit word (lw).
func (m *Memory) ReadWord(addr uint32) (uint32, error) {
	if !valid(addr, 4) {
		return 0, &MemoryFault{Address: addr, Width: 4}
	}
	var v uint32
	for i := uint32(0); i < 4; i++ {
		v |= uint32(m.readByte(addr+i)) << (8 * i)
	}
	return v, nil
}

// WriteByte stores the low 8 bits of value at addr (sb).
func (m *Memory) WriteByte(addr uint32, value uint32) error {
	if !valid(addr, 1) {
		return &MemoryFault{Address: addr, Width: 1}
	}
	m.data[addr] = byte(value)
	return nil
}

// WriteHalf stores the low 16 bits of value, little-endian, at addr (sh).
func (m *Memory) WriteHalf(addr uint32, value uint32) error {
	if !valid(addr, 2) {
		return &MemoryFault{Address: addr, Width: 2}
	}
	m.data[addr] = byte(value)
	m.data[addr+1] = byte(value >> 8)
	return nil
}

// WriteWord stores value, little-endian, at addr (sw).
func (m *Memory) WriteWord(addr uint32, value uint32) error {
	if !valid(addr, 4) {
		return &MemoryFault{Address: addr, Width: 4}
	}
	for i := uint32(0); i < 4; i++ {
		m.data[addr+i] = byte(value >> (8 * i))
	}
	return nil
}
