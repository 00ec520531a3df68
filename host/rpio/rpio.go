//go:build linux

// Package rpio drives GPIO pins through the go-rpio library, which maps
// /dev/gpiomem (or /dev/mem) itself.
package rpio

import (
	"fmt"

	"github.com/stianeikeland/go-rpio/v4"

	"blinky/core"
)

// Driver implements pinbank.PinDriver with go-rpio
type Driver struct {
	open bool
}

// Open maps the GPIO block through go-rpio
func Open() (*Driver, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("failed to open go-rpio: %w", err)
	}
	return &Driver{open: true}, nil
}

// Close unmaps the GPIO block
func (d *Driver) Close() error {
	if !d.open {
		return nil
	}
	d.open = false
	return rpio.Close()
}

// SetFunction selects fn for pin
func (d *Driver) SetFunction(pin core.GPIOPin, fn core.PinFunction) error {
	mode, ok := modes[fn]
	if !ok {
		return fmt.Errorf("no go-rpio mode for %s", fn)
	}
	rpio.Pin(pin).Mode(mode)
	return nil
}

// Write drives pin high or low
func (d *Driver) Write(pin core.GPIOPin, high bool) error {
	if high {
		rpio.Pin(pin).High()
	} else {
		rpio.Pin(pin).Low()
	}
	return nil
}

// modes maps function select values to go-rpio modes
var modes = map[core.PinFunction]rpio.Mode{
	core.FuncInput:  rpio.Input,
	core.FuncOutput: rpio.Output,
	core.FuncAlt0:   rpio.Alt0,
	core.FuncAlt1:   rpio.Alt1,
	core.FuncAlt2:   rpio.Alt2,
	core.FuncAlt3:   rpio.Alt3,
	core.FuncAlt4:   rpio.Alt4,
	core.FuncAlt5:   rpio.Alt5,
}
