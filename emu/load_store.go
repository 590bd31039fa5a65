package emu

// MemoryUnit performs the RV32I MEMORY-stage access: given an effective
// address computed at EXECUTE and the mnemonic, it reads or writes the
// data segment and produces RZ.
type MemoryUnit struct {
	memory *Memory
}

// NewMemoryUnit creates a MemoryUnit backed by memory.
func NewMemoryUnit(memory *Memory) *MemoryUnit {
	return &MemoryUnit{memory: memory}
}

// Access performs the load or store named by mnemonic at addr. For loads,
// rz is the value to write back at WRITEBACK. For stores, storeValue (RM)
// is written and rz echoes RY unchanged.
func (u *MemoryUnit) Access(mnemonic MemoryOp, addr uint32, storeValue uint32, ry uint32) (rz uint32, err error) {
	switch mnemonic {
	case MemOpLoadByte:
		v, err := u.memory.ReadByteSigned(addr)
		return uint32(v), err
	case MemOpLoadHalf:
		v, err := u.memory.ReadHalfSigned(addr)
		return uint32(v), err
	case MemOpLoadWord:
		return u.memory.ReadWord(addr)
	case MemOpStoreByte:
		return ry, u.memory.WriteByte(addr, storeValue)
	case MemOpStoreHalf:
		return ry, u.memory.WriteHalf(addr, storeValue)
	case MemOpStoreWord:
		return ry, u.memory.WriteWord(addr, storeValue)
	default:
		return ry, nil
	}
}

// MemoryOp identifies which width/direction the MEMORY stage performs.
type MemoryOp uint8

// Memory operations recognized by MemoryUnit.Access.
const (
	MemOpNone MemoryOp = iota
	MemOpLoadByte
	MemOpLoadHalf
	MemOpLoadWord
	MemOpStoreByte
	MemOpStoreHalf
	MemOpStoreWord
)
