package core

// RegisterWrite is one write seen by SimRegisters
type RegisterWrite struct {
	Offset uint32
	Value  uint32
}

// SimRegisters is a simulated GPIO register file for hosts without the
// peripheral. It records every write in order and models pin functions and
// output latches so GPLEVn reads reflect earlier set/clear writes.
type SimRegisters struct {
	values    map[uint32]uint32
	writes    []RegisterWrite
	functions [NumPins]PinFunction
	levels    [NumPins]bool
}

// NewSimRegisters returns a register file in the reset state: every pin an
// input and every latch low
func NewSimRegisters() *SimRegisters {
	return &SimRegisters{values: make(map[uint32]uint32)}
}

// Read32 returns the modeled register contents. Set and clear registers
// are write-only and read as zero.
func (s *SimRegisters) Read32(offset uint32) uint32 {
	switch offset {
	case GPSET0, GPSET1, GPCLR0, GPCLR1:
		return 0
	case GPLEV0, GPLEV1:
		return s.levelWord(offset)
	}
	return s.values[offset]
}

// Write32 records the write and applies its pin-level effects
func (s *SimRegisters) Write32(offset uint32, value uint32) {
	s.writes = append(s.writes, RegisterWrite{Offset: offset, Value: value})
	s.values[offset] = value

	for _, evt := range DecodeWrite(offset, value) {
		switch evt.Kind {
		case PinFunctionSelect:
			s.functions[evt.Pin] = evt.Function
		case PinSet:
			s.levels[evt.Pin] = true
		case PinClear:
			s.levels[evt.Pin] = false
		}
	}
}

// Writes returns a copy of every write in the order it happened
func (s *SimRegisters) Writes() []RegisterWrite {
	out := make([]RegisterWrite, len(s.writes))
	copy(out, s.writes)
	return out
}

// WritesTo returns the values written to offset, oldest first
func (s *SimRegisters) WritesTo(offset uint32) []uint32 {
	var out []uint32
	for _, w := range s.writes {
		if w.Offset == offset {
			out = append(out, w.Value)
		}
	}
	return out
}

// Function returns the function currently selected for pin
func (s *SimRegisters) Function(pin GPIOPin) PinFunction {
	if pin >= NumPins {
		return FuncInput
	}
	return s.functions[pin]
}

// Level returns the output latch of pin
func (s *SimRegisters) Level(pin GPIOPin) bool {
	if pin >= NumPins {
		return false
	}
	return s.levels[pin]
}

// Reset returns the simulator to its power-on state
func (s *SimRegisters) Reset() {
	s.values = make(map[uint32]uint32)
	s.writes = nil
	s.functions = [NumPins]PinFunction{}
	s.levels = [NumPins]bool{}
}

func (s *SimRegisters) levelWord(offset uint32) uint32 {
	first := GPIOPin((offset - GPLEV0) / 4 * pinsPerBank)
	var word uint32
	for bit := uint32(0); bit < pinsPerBank; bit++ {
		pin := first + GPIOPin(bit)
		if pin < NumPins && s.levels[pin] {
			word |= 1 << bit
		}
	}
	return word
}
