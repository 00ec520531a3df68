//go:build linux

// Package gpiocdev drives GPIO pins through the Linux GPIO character
// device, which works without access to /dev/mem.
package gpiocdev

import (
	"fmt"
	"io"

	"github.com/warthog618/gpiod"

	"blinky/core"
	"blinky/host/pinbank"
)

// Consumer is the label the kernel shows for requested lines
const Consumer = "blinky"

// line is the part of *gpiod.Line the driver uses
type line interface {
	SetValue(value int) error
	Reconfigure(options ...gpiod.LineConfigOption) error
	Close() error
}

// Driver implements pinbank.PinDriver with gpiod. Lines are requested as
// outputs when their function becomes output and released when it goes
// back to input.
type Driver struct {
	chip    io.Closer
	request func(pin core.GPIOPin) (line, error)
	lines   map[core.GPIOPin]line
}

// Open opens a GPIO chip such as "gpiochip0"
func Open(chip string) (*Driver, error) {
	c, err := gpiod.NewChip(chip, gpiod.WithConsumer(Consumer))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", chip, err)
	}
	d := newDriver(c)
	d.request = func(pin core.GPIOPin) (line, error) {
		return c.RequestLine(int(pin), gpiod.AsOutput(0))
	}
	return d, nil
}

func newDriver(chip io.Closer) *Driver {
	return &Driver{
		chip:  chip,
		lines: make(map[core.GPIOPin]line),
	}
}

// SetFunction requests or releases pin's line. Alternate functions belong
// to kernel drivers and cannot be selected from user space.
func (d *Driver) SetFunction(pin core.GPIOPin, fn core.PinFunction) error {
	switch fn {
	case core.FuncOutput:
		if _, ok := d.lines[pin]; ok {
			return nil
		}
		l, err := d.request(pin)
		if err != nil {
			return fmt.Errorf("request line: %w", err)
		}
		d.lines[pin] = l
		return nil
	case core.FuncInput:
		l, ok := d.lines[pin]
		if !ok {
			return nil
		}
		delete(d.lines, pin)
		if err := l.Reconfigure(gpiod.AsInput); err != nil {
			l.Close()
			return fmt.Errorf("reconfigure line: %w", err)
		}
		return l.Close()
	}
	return fmt.Errorf("%w: %s", pinbank.ErrUnsupportedFunction, fn)
}

// Write sets the value of an output line. Writes to pins that are not
// outputs are latched by the hardware but invisible, so they are dropped.
func (d *Driver) Write(pin core.GPIOPin, high bool) error {
	l, ok := d.lines[pin]
	if !ok {
		return nil
	}
	v := 0
	if high {
		v = 1
	}
	return l.SetValue(v)
}

// Close returns every held line to input and closes the chip
func (d *Driver) Close() error {
	var first error
	for pin, l := range d.lines {
		if err := l.Reconfigure(gpiod.AsInput); err != nil && first == nil {
			first = err
		}
		if err := l.Close(); err != nil && first == nil {
			first = err
		}
		delete(d.lines, pin)
	}
	if err := d.chip.Close(); err != nil && first == nil {
		first = err
	}
	return first
}
