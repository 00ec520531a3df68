// XMODEM (checksum variant) used to push kernel images to the Pi bootloader
// over the mini UART
package protocol

import (
	"errors"
	"fmt"
	"io"
)

// Control bytes
const (
	SOH = 0x01 // Start of a 128-byte packet
	EOT = 0x04 // End of transmission
	ACK = 0x06
	NAK = 0x15
	CAN = 0x18 // Cancel
)

const (
	PacketSize = 128
	MaxRetries = 10 // Attempts per packet before giving up

	packetHeaderSize = 3 // SOH, number, complement
	packetFrameSize  = packetHeaderSize + PacketSize + 1
)

var (
	ErrCanceled       = errors.New("xmodem: transfer canceled by peer")
	ErrUnexpectedByte = errors.New("xmodem: unexpected byte")
	ErrPacketNumber   = errors.New("xmodem: packet number mismatch")
	ErrChecksum       = errors.New("xmodem: checksum mismatch")
	ErrPacketRejected = errors.New("xmodem: packet rejected by receiver")
	ErrTooManyRetries = errors.New("xmodem: too many retries")
	ErrShortPacket    = errors.New("xmodem: packet buffer must hold 128 bytes")
)

// Xmodem runs one side of an XMODEM transfer over rw. The same value can
// send or receive but not both.
type Xmodem struct {
	rw       io.ReadWriter
	packet   uint8 // Next packet number, starts at 1 and wraps
	started  bool
	progress ProgressFunc
}

// NewXmodem creates a transfer endpoint over rw
func NewXmodem(rw io.ReadWriter) *Xmodem {
	return &Xmodem{rw: rw, packet: 1, progress: noProgress}
}

// SetProgress installs a progress callback
func (x *Xmodem) SetProgress(f ProgressFunc) {
	if f == nil {
		f = noProgress
	}
	x.progress = f
}

// readByte reads one byte. With abortOnCAN set a CAN byte ends the transfer.
func (x *Xmodem) readByte(abortOnCAN bool) (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(x.rw, buf[:]); err != nil {
		return 0, err
	}
	if abortOnCAN && buf[0] == CAN {
		return 0, ErrCanceled
	}
	return buf[0], nil
}

func (x *Xmodem) writeByte(b byte) error {
	_, err := x.rw.Write([]byte{b})
	return err
}

// expectByte reads one byte and checks it is want
func (x *Xmodem) expectByte(want byte, what string) error {
	got, err := x.readByte(want != CAN)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: got 0x%02X, expected %s", ErrUnexpectedByte, got, what)
	}
	return nil
}

// expectByteOrCancel reads one byte and checks it is want. Every failure,
// including a read error or a peer CAN, is answered with CAN.
func (x *Xmodem) expectByteOrCancel(want byte, mismatch error) error {
	got, err := x.readByte(want != CAN)
	if err == nil && got != want {
		err = fmt.Errorf("%w: got 0x%02X, expected 0x%02X", mismatch, got, want)
	}
	if err != nil {
		x.writeByte(CAN)
		return err
	}
	return nil
}

// ReadPacket receives one packet into buf. It returns PacketSize for a data
// packet and 0 once the transmitter has ended the transfer. A checksum
// failure NAKs the packet and returns ErrChecksum; the caller may call
// ReadPacket again to receive the retransmission.
func (x *Xmodem) ReadPacket(buf []byte) (int, error) {
	if len(buf) < PacketSize {
		return 0, ErrShortPacket
	}
	if !x.started {
		if err := x.writeByte(NAK); err != nil {
			return 0, err
		}
		x.started = true
		x.progress(Progress{Stage: StageStarted})
	}

	first, err := x.readByte(true)
	if err != nil {
		return 0, err
	}

	switch first {
	case SOH:
		num := x.packet
		if err := x.expectByteOrCancel(num, ErrPacketNumber); err != nil {
			return 0, err
		}
		if err := x.expectByteOrCancel(255-num, ErrPacketNumber); err != nil {
			return 0, err
		}
		if _, err := io.ReadFull(x.rw, buf[:PacketSize]); err != nil {
			return 0, err
		}
		sum, err := x.readByte(false)
		if err != nil {
			return 0, err
		}
		if sum != Checksum(buf[:PacketSize]) {
			if err := x.writeByte(NAK); err != nil {
				return 0, err
			}
			return 0, ErrChecksum
		}
		x.packet++
		if err := x.writeByte(ACK); err != nil {
			return 0, err
		}
		x.progress(Progress{Stage: StagePacket, Packet: num})
		return PacketSize, nil

	case EOT:
		if err := x.writeByte(NAK); err != nil {
			return 0, err
		}
		if err := x.expectByte(EOT, "second EOT"); err != nil {
			return 0, err
		}
		if err := x.writeByte(ACK); err != nil {
			return 0, err
		}
		return 0, nil
	}

	return 0, fmt.Errorf("%w: got 0x%02X, expected SOH or EOT", ErrUnexpectedByte, first)
}

// WritePacket sends one packet. buf must be exactly PacketSize bytes, or
// empty to end the transfer. A packet the receiver NAKs returns
// ErrPacketRejected and may be sent again.
func (x *Xmodem) WritePacket(buf []byte) error {
	if len(buf) != PacketSize && len(buf) != 0 {
		return ErrShortPacket
	}
	if !x.started {
		x.progress(Progress{Stage: StageWaiting})
		if err := x.expectByte(NAK, "initial NAK"); err != nil {
			return err
		}
		x.started = true
		x.progress(Progress{Stage: StageStarted})
	}

	if len(buf) == 0 {
		if err := x.writeByte(EOT); err != nil {
			return err
		}
		if err := x.expectByte(NAK, "NAK to first EOT"); err != nil {
			return err
		}
		if err := x.writeByte(EOT); err != nil {
			return err
		}
		return x.expectByte(ACK, "ACK to second EOT")
	}

	num := x.packet
	var frame [packetFrameSize]byte
	frame[0] = SOH
	frame[1] = num
	frame[2] = 255 - num
	copy(frame[packetHeaderSize:], buf)
	frame[packetFrameSize-1] = Checksum(buf)
	if _, err := x.rw.Write(frame[:]); err != nil {
		return err
	}

	reply, err := x.readByte(true)
	if err != nil {
		return err
	}
	switch reply {
	case ACK:
		x.packet++
		x.progress(Progress{Stage: StagePacket, Packet: num})
		return nil
	case NAK:
		return ErrPacketRejected
	}
	return fmt.Errorf("%w: got 0x%02X, expected ACK or NAK", ErrUnexpectedByte, reply)
}

// Transmit sends everything read from data to the receiver on to. The last
// packet is zero padded. It returns the number of data bytes sent, not
// counting padding.
func Transmit(data io.Reader, to io.ReadWriter, progress ProgressFunc) (int, error) {
	x := NewXmodem(to)
	x.SetProgress(progress)

	var packet [PacketSize]byte
	written := 0
	for {
		n, err := io.ReadFull(data, packet[:])
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return written, fmt.Errorf("reading image: %w", err)
		}
		if n == 0 {
			if err := x.WritePacket(nil); err != nil {
				return written, err
			}
			return written, nil
		}
		clear(packet[n:])

		if err := x.sendWithRetry(packet[:]); err != nil {
			return written, err
		}
		written += n
	}
}

func (x *Xmodem) sendWithRetry(packet []byte) error {
	for attempt := 0; attempt < MaxRetries; attempt++ {
		err := x.WritePacket(packet)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrPacketRejected) {
			return err
		}
	}
	return fmt.Errorf("%w: packet %d", ErrTooManyRetries, x.packet)
}

// Receive reads a transfer from from and writes every packet to into. It
// returns the number of bytes received, always a multiple of PacketSize.
func Receive(from io.ReadWriter, into io.Writer, progress ProgressFunc) (int, error) {
	x := NewXmodem(from)
	x.SetProgress(progress)

	var packet [PacketSize]byte
	received := 0
	for {
		n, err := x.receiveWithRetry(packet[:])
		if err != nil {
			return received, err
		}
		if n == 0 {
			return received, nil
		}
		if _, err := into.Write(packet[:]); err != nil {
			return received, fmt.Errorf("writing image: %w", err)
		}
		received += n
	}
}

func (x *Xmodem) receiveWithRetry(packet []byte) (int, error) {
	for attempt := 0; attempt < MaxRetries; attempt++ {
		n, err := x.ReadPacket(packet)
		if err == nil {
			return n, nil
		}
		if !errors.Is(err, ErrChecksum) {
			return 0, err
		}
	}
	return 0, fmt.Errorf("%w: packet %d", ErrTooManyRetries, x.packet)
}
