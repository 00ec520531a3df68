package core

import "math"

// SpinCyclesPerMicrosecond is the number of placeholder instructions
// assumed to take one microsecond on the Pi 3 at its boot clock. It is a
// rough value, not a timing guarantee; SpinDelay can override it.
const SpinCyclesPerMicrosecond = 6

// Sleeper blocks the caller for a number of milliseconds
type Sleeper interface {
	SleepMillis(ms uint32)
}

// SpinDelay is a busy-wait delay with no timer peripheral behind it.
// The zero value spins SpinCyclesPerMicrosecond cycles per microsecond on
// the platform spin loop.
type SpinDelay struct {
	// CyclesPerMicrosecond overrides the calibration when non-zero
	CyclesPerMicrosecond uint32

	// Spin replaces the platform spin loop when non-nil
	Spin func(cycles uint64)
}

// SpinCycles returns how many placeholder instructions SleepMicros(us) issues
func (d SpinDelay) SpinCycles(us uint32) uint64 {
	return uint64(us) * uint64(d.calibration())
}

// SleepMicros spins for approximately us microseconds
func (d SpinDelay) SleepMicros(us uint32) {
	cycles := d.SpinCycles(us)
	if cycles == 0 {
		return
	}
	if d.Spin != nil {
		d.Spin(cycles)
		return
	}
	spin(cycles)
}

// SleepMillis spins for approximately ms milliseconds
func (d SpinDelay) SleepMillis(ms uint32) {
	d.SleepMicros(MillisToMicros(ms))
}

func (d SpinDelay) calibration() uint32 {
	if d.CyclesPerMicrosecond != 0 {
		return d.CyclesPerMicrosecond
	}
	return SpinCyclesPerMicrosecond
}

// MillisToMicros converts milliseconds to microseconds, saturating at the
// largest 32-bit value
func MillisToMicros(ms uint32) uint32 {
	us := uint64(ms) * 1000
	if us > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(us)
}
