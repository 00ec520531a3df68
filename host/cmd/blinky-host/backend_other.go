//go:build !linux

package main

import "blinky/host/config"

// Only the simulator works without Linux GPIO devices
func openPlatformBackend(c *config.Config) (*backend, error) {
	return nil, unsupportedBackend(c.Backend)
}
