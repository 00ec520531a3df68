// Package pinbank replays GPIO register writes onto a pin-level driver, for
// hosts where the register block is reachable only through a GPIO library.
package pinbank

import (
	"errors"
	"fmt"

	"blinky/core"
)

// ErrUnsupportedFunction is returned by drivers that cannot select a function
var ErrUnsupportedFunction = errors.New("pin function not supported by driver")

// PinDriver is the pin-level interface a GPIO library provides
type PinDriver interface {
	// SetFunction selects input, output or an alternate function for pin
	SetFunction(pin core.GPIOPin, fn core.PinFunction) error

	// Write drives an output pin high (true) or low (false)
	Write(pin core.GPIOPin, high bool) error
}

// Registers is a RegisterFile that decodes each write into pin operations
// on a PinDriver. Register writes cannot fail, so the first driver error is
// kept for Err and reported on the debug writer.
type Registers struct {
	drv       PinDriver
	values    map[uint32]uint32
	functions [core.NumPins]core.PinFunction
	selected  [core.NumPins]bool // Function applied at least once
	levels    [core.NumPins]bool
	err       error
}

// New returns a register file driving drv
func New(drv PinDriver) *Registers {
	return &Registers{
		drv:    drv,
		values: make(map[uint32]uint32),
	}
}

// Read32 returns the last value written to a function select register or
// the output latches for a level register. Set and clear read as zero.
func (r *Registers) Read32(offset uint32) uint32 {
	switch offset {
	case core.GPSET0, core.GPSET1, core.GPCLR0, core.GPCLR1:
		return 0
	case core.GPLEV0, core.GPLEV1:
		first := core.GPIOPin((offset - core.GPLEV0) / 4 * 32)
		var word uint32
		for bit := uint32(0); bit < 32; bit++ {
			pin := first + core.GPIOPin(bit)
			if pin < core.NumPins && r.levels[pin] {
				word |= 1 << bit
			}
		}
		return word
	}
	return r.values[offset]
}

// Write32 applies the pin-level effects of a register write. Function
// select fields are only pushed to the driver when they change.
func (r *Registers) Write32(offset uint32, value uint32) {
	r.values[offset] = value

	for _, evt := range core.DecodeWrite(offset, value) {
		switch evt.Kind {
		case core.PinFunctionSelect:
			if r.selected[evt.Pin] && r.functions[evt.Pin] == evt.Function {
				continue
			}
			r.functions[evt.Pin] = evt.Function
			r.selected[evt.Pin] = true
			r.record(evt.Pin, r.drv.SetFunction(evt.Pin, evt.Function))
		case core.PinSet:
			r.levels[evt.Pin] = true
			r.record(evt.Pin, r.drv.Write(evt.Pin, true))
		case core.PinClear:
			r.levels[evt.Pin] = false
			r.record(evt.Pin, r.drv.Write(evt.Pin, false))
		}
	}
}

func (r *Registers) record(pin core.GPIOPin, err error) {
	if err == nil {
		return
	}
	err = fmt.Errorf("gpio%d: %w", pin, err)
	core.DebugPrintln("[PINBANK] " + err.Error())
	if r.err == nil {
		r.err = err
	}
}

// Err returns the first driver error seen, if any
func (r *Registers) Err() error {
	return r.err
}
