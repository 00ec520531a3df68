package loader

import (
	"fmt"
	"io"

	"blinky/host/serial"
	"blinky/protocol"
)

// Loader is a connection to the Pi bootloader over its serial console
type Loader struct {
	// Serial port
	port serial.Port

	// Connection state
	connected bool
}

// NewLoader creates a new Loader instance (not yet connected)
func NewLoader() *Loader {
	return &Loader{
		connected: false,
	}
}

// Connect connects to the bootloader via serial port
func (l *Loader) Connect(device string) error {
	return l.ConnectWithConfig(serial.DefaultConfig(device))
}

// ConnectWithConfig connects to the bootloader with a custom serial config
func (l *Loader) ConnectWithConfig(cfg *serial.Config) error {
	port, err := serial.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open serial port: %w", err)
	}
	l.Attach(port)
	return nil
}

// Attach uses an already open port
func (l *Loader) Attach(port serial.Port) {
	l.port = port
	l.connected = true
}

// Close closes the connection to the bootloader
func (l *Loader) Close() error {
	if l.port != nil {
		if err := l.port.Close(); err != nil {
			return err
		}
	}
	l.connected = false
	return nil
}

// SendImage transmits a kernel image with XMODEM. Stale input is flushed
// first so an old NAK does not start the transfer early. Returns the number
// of image bytes sent.
func (l *Loader) SendImage(image io.Reader, progress protocol.ProgressFunc) (int, error) {
	if !l.connected {
		return 0, fmt.Errorf("not connected to bootloader")
	}
	if err := l.port.Flush(); err != nil {
		return 0, fmt.Errorf("failed to flush serial port: %w", err)
	}

	n, err := protocol.Transmit(image, l.port, progress)
	if err != nil {
		return n, fmt.Errorf("image transfer failed after %d bytes: %w", n, err)
	}
	return n, nil
}

// ReceiveImage receives an XMODEM transfer into w. Returns the number of
// bytes received including padding.
func (l *Loader) ReceiveImage(w io.Writer, progress protocol.ProgressFunc) (int, error) {
	if !l.connected {
		return 0, fmt.Errorf("not connected to bootloader")
	}

	n, err := protocol.Receive(l.port, w, progress)
	if err != nil {
		return n, fmt.Errorf("image receive failed after %d bytes: %w", n, err)
	}
	return n, nil
}
