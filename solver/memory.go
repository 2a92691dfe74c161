package solver

import (
	"github.com/acirlabs/acvm/field"
)

// MemoryBlock is one indexed block of field elements, created by a memory
// init opcode and then read or written by address. Addresses outside the
// initialized range are errors, never silent defaults.
type MemoryBlock struct {
	values []field.Element
}

func newMemoryBlock(init []field.Element) *MemoryBlock {
	return &MemoryBlock{values: append([]field.Element(nil), init...)}
}

func (b *MemoryBlock) Len() int {
	return len(b.values)
}

func (b *MemoryBlock) Read(addr uint64) (field.Element, bool) {
	if addr >= uint64(len(b.values)) {
		return field.Element{}, false
	}
	return b.values[addr], true
}

func (b *MemoryBlock) Write(addr uint64, v field.Element) bool {
	if addr >= uint64(len(b.values)) {
		return false
	}
	b.values[addr] = v
	return true
}
