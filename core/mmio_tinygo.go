//go:build tinygo

package core

import (
	"runtime/volatile"
	"unsafe"
)

// MMIO accesses GPIO registers directly at their physical address.
// Only valid on bare metal where the peripheral block is identity mapped.
type MMIO struct {
	base uintptr
}

// NewMMIO returns a register file rooted at base
func NewMMIO(base uintptr) *MMIO {
	return &MMIO{base: base}
}

func (m *MMIO) reg(offset uint32) *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Pointer(m.base + uintptr(offset)))
}

// Read32 performs a volatile load of the register at offset
func (m *MMIO) Read32(offset uint32) uint32 {
	return m.reg(offset).Get()
}

// Write32 performs a volatile store to the register at offset
func (m *MMIO) Write32(offset uint32, value uint32) {
	m.reg(offset).Set(value)
}
