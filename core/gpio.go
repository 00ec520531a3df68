// GPIO register map for the BCM2837 (Raspberry Pi 3)
// Layout follows the BCM2835 ARM Peripherals manual, section 6.1
package core

// Peripheral addresses
const (
	PeripheralBase = 0x3F000000
	GPIOBase       = PeripheralBase + 0x200000
)

// Register offsets from GPIOBase
const (
	GPFSEL0 = 0x00 // Function select, pins 0-9
	GPFSEL1 = 0x04 // Function select, pins 10-19
	GPSET0  = 0x1C // Output set, pins 0-31
	GPSET1  = 0x20 // Output set, pins 32-53
	GPCLR0  = 0x28 // Output clear, pins 0-31
	GPCLR1  = 0x2C // Output clear, pins 32-53
	GPLEV0  = 0x34 // Pin level, pins 0-31
	GPLEV1  = 0x38 // Pin level, pins 32-53
)

// Function select field layout
const (
	FSelFieldWidth = 3  // Bits per pin in a GPFSELn register
	FSelPinsPerReg = 10 // Pins covered by one GPFSELn register
	FSelRegisters  = 6  // GPFSEL0..GPFSEL5
	FSelMask       = 0b111
	NumPins        = 54
	pinsPerBank    = 32
)

// PinFunction is the value of a pin's function select field
type PinFunction uint8

// Function select values
const (
	FuncInput  PinFunction = 0b000
	FuncOutput PinFunction = 0b001
	FuncAlt0   PinFunction = 0b100
	FuncAlt1   PinFunction = 0b101
	FuncAlt2   PinFunction = 0b110
	FuncAlt3   PinFunction = 0b111
	FuncAlt4   PinFunction = 0b011
	FuncAlt5   PinFunction = 0b010
)

// String returns the datasheet name of the function
func (f PinFunction) String() string {
	switch f {
	case FuncInput:
		return "input"
	case FuncOutput:
		return "output"
	case FuncAlt0:
		return "alt0"
	case FuncAlt1:
		return "alt1"
	case FuncAlt2:
		return "alt2"
	case FuncAlt3:
		return "alt3"
	case FuncAlt4:
		return "alt4"
	case FuncAlt5:
		return "alt5"
	}
	return "invalid"
}

// GPIOPin identifies a BCM GPIO line number
type GPIOPin uint32

// LEDPin is the pin the blink routine drives
const LEDPin GPIOPin = 16

// FSelOffset returns the offset of the GPFSELn register holding pin's field
func FSelOffset(pin GPIOPin) uint32 {
	return GPFSEL0 + 4*(uint32(pin)/FSelPinsPerReg)
}

// FSelShift returns the bit position of pin's field within its GPFSELn register
func FSelShift(pin GPIOPin) uint32 {
	return (uint32(pin) % FSelPinsPerReg) * FSelFieldWidth
}

// FSelValue returns the word that selects fn for pin with every other
// field in the register left as input
func FSelValue(pin GPIOPin, fn PinFunction) uint32 {
	return uint32(fn&FSelMask) << FSelShift(pin)
}

// SetOffset returns the offset of the GPSETn register for pin
func SetOffset(pin GPIOPin) uint32 {
	if pin >= pinsPerBank {
		return GPSET1
	}
	return GPSET0
}

// ClearOffset returns the offset of the GPCLRn register for pin
func ClearOffset(pin GPIOPin) uint32 {
	if pin >= pinsPerBank {
		return GPCLR1
	}
	return GPCLR0
}

// PinMask returns the bit for pin in its GPSETn/GPCLRn register
func PinMask(pin GPIOPin) uint32 {
	return 1 << (uint32(pin) % pinsPerBank)
}
