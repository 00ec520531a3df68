//go:build linux

package main

import (
	"blinky/host/config"
	"blinky/host/gpiocdev"
	"blinky/host/gpiomem"
	"blinky/host/pinbank"
	"blinky/host/rpio"
)

func openPlatformBackend(c *config.Config) (*backend, error) {
	switch c.Backend {
	case config.BackendGPIOMem:
		regs, err := gpiomem.Open(c.GPIOMemPath)
		if err != nil {
			return nil, err
		}
		return &backend{Registers: regs, close: regs.Close}, nil

	case config.BackendRPIO:
		drv, err := rpio.Open()
		if err != nil {
			return nil, err
		}
		regs := pinbank.New(drv)
		return &backend{Registers: regs, Err: regs.Err, close: drv.Close}, nil

	case config.BackendGPIOD:
		drv, err := gpiocdev.Open(c.Chip)
		if err != nil {
			return nil, err
		}
		regs := pinbank.New(drv)
		return &backend{Registers: regs, Err: regs.Err, close: drv.Close}, nil
	}
	return nil, unsupportedBackend(c.Backend)
}
