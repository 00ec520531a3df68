package core

// Blink timing
const (
	BlinkCycles           = 600 // On/off cycles before Blink returns
	BlinkHalfPeriodMillis = 500 // Time spent in each of the high and low states
)

// bootDelay is the delay Kmain blinks with
var bootDelay Sleeper = SpinDelay{}

// Kmain is the boot entry point. It blinks LEDPin on the registered
// register file with the calibrated spin delay and returns the status.
func Kmain() int {
	return Blink(MustRegisters(), bootDelay)
}

// Blink selects output mode for LEDPin, then drives it high and low
// BlinkCycles times with d providing the half-period delay. The return
// value is always 0.
func Blink(regs RegisterFile, d Sleeper) int {
	fsel := FSelValue(LEDPin, FuncOutput)
	mask := PinMask(LEDPin)

	DebugPrintln("[BLINK] fsel1=" + hex32(fsel) + " mask=" + hex32(mask))
	regs.Write32(FSelOffset(LEDPin), fsel)

	x := 0
	for x < BlinkCycles {
		regs.Write32(SetOffset(LEDPin), mask)
		d.SleepMillis(BlinkHalfPeriodMillis)
		regs.Write32(ClearOffset(LEDPin), mask)
		d.SleepMillis(BlinkHalfPeriodMillis)
		x++
	}

	DebugPrintln("[BLINK] done cycles=" + itoa(x))
	return 0
}
