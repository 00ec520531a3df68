package core

// PinEventKind identifies what a register write did to a pin
type PinEventKind uint8

// Pin event kinds
const (
	PinFunctionSelect PinEventKind = iota + 1 // Function select field written
	PinSet                                    // Output driven high
	PinClear                                  // Output driven low
)

// PinEvent is the pin-level effect of a register write
type PinEvent struct {
	Kind     PinEventKind
	Pin      GPIOPin
	Function PinFunction // Valid for PinFunctionSelect
}

// DecodeWrite returns the pin-level effects of writing value to the
// register at offset, in ascending pin order. A GPFSELn write replaces
// every field in the register, so it yields one event per pin. Writes to
// registers outside the function select and set/clear banks yield nothing.
func DecodeWrite(offset uint32, value uint32) []PinEvent {
	switch {
	case offset%4 != 0:
		return nil
	case offset < GPFSEL0+4*FSelRegisters:
		return decodeFSel(offset, value)
	case offset == GPSET0 || offset == GPSET1:
		return decodeBank(PinSet, offset-GPSET0, value)
	case offset == GPCLR0 || offset == GPCLR1:
		return decodeBank(PinClear, offset-GPCLR0, value)
	}
	return nil
}

func decodeFSel(offset, value uint32) []PinEvent {
	first := GPIOPin((offset - GPFSEL0) / 4 * FSelPinsPerReg)
	events := make([]PinEvent, 0, FSelPinsPerReg)
	for i := uint32(0); i < FSelPinsPerReg; i++ {
		pin := first + GPIOPin(i)
		if pin >= NumPins {
			break
		}
		fn := PinFunction((value >> (i * FSelFieldWidth)) & FSelMask)
		events = append(events, PinEvent{Kind: PinFunctionSelect, Pin: pin, Function: fn})
	}
	return events
}

func decodeBank(kind PinEventKind, bankOffset, value uint32) []PinEvent {
	first := GPIOPin(bankOffset / 4 * pinsPerBank)
	var events []PinEvent
	for bit := uint32(0); bit < pinsPerBank && value != 0; bit++ {
		if value&1 != 0 {
			pin := first + GPIOPin(bit)
			if pin < NumPins {
				events = append(events, PinEvent{Kind: kind, Pin: pin})
			}
		}
		value >>= 1
	}
	return events
}
