package main

import (
	"fmt"

	"blinky/core"
	"blinky/host/config"
)

// backend is an open register file plus its cleanup
type backend struct {
	Registers core.RegisterFile

	// Err reports deferred driver errors for pin-level backends
	Err func() error

	close func() error
}

// Close releases the backend's device
func (b *backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

func simBackend() *backend {
	return &backend{Registers: core.NewSimRegisters()}
}

func unsupportedBackend(name string) error {
	return fmt.Errorf("backend %q is not available on this platform", name)
}

// openBackend opens the register backend named in c
func openBackend(c *config.Config) (*backend, error) {
	if c.Backend == config.BackendSim {
		return simBackend(), nil
	}
	return openPlatformBackend(c)
}
