package core

// RegisterFile is the register access interface the blink routine uses.
// Offsets are relative to GPIOBase. Every call must reach the device:
// implementations may not cache, merge or drop accesses.
type RegisterFile interface {
	// Read32 reads the 32-bit register at offset
	Read32(offset uint32) uint32

	// Write32 writes value to the 32-bit register at offset
	Write32(offset uint32, value uint32)
}

// Global singleton used by Kmain.
var registerFile RegisterFile

// SetRegisterFile is called by target-specific code to register its backend.
func SetRegisterFile(r RegisterFile) {
	registerFile = r
}

// MustRegisters returns the configured register file or panics if missing.
func MustRegisters() RegisterFile {
	if registerFile == nil {
		panic("GPIO register file not configured")
	}
	return registerFile
}
