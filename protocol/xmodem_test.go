package protocol

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

// scripted is a peer whose replies are fixed up front. Everything written
// to it is captured for inspection.
type scripted struct {
	replies *bytes.Reader
	written bytes.Buffer
}

func newScripted(replies ...byte) *scripted {
	return &scripted{replies: bytes.NewReader(replies)}
}

func (s *scripted) Read(p []byte) (int, error)  { return s.replies.Read(p) }
func (s *scripted) Write(p []byte) (int, error) { return s.written.Write(p) }

// duplex joins two pipes into one end of a bidirectional link
type duplex struct {
	io.Reader
	io.Writer
}

func link() (duplex, duplex) {
	ar, bw := io.Pipe()
	br, aw := io.Pipe()
	return duplex{Reader: ar, Writer: aw}, duplex{Reader: br, Writer: bw}
}

func frame(num uint8, data []byte) []byte {
	out := []byte{SOH, num, 255 - num}
	out = append(out, data...)
	return append(out, Checksum(data))
}

func pattern(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i*7 + 3)
	}
	return data
}

func TestTransmitReceiveRoundTrip(t *testing.T) {
	testCases := []int{0, 1, 127, 128, 129, 1000, 256 * PacketSize}

	for _, size := range testCases {
		data := pattern(size)
		tx, rx := link()

		type result struct {
			n   int
			err error
		}
		sent := make(chan result, 1)
		go func() {
			n, err := Transmit(bytes.NewReader(data), tx, nil)
			sent <- result{n, err}
		}()

		var out bytes.Buffer
		n, err := Receive(rx, &out, nil)
		if err != nil {
			t.Fatalf("size %d: Receive failed: %v", size, err)
		}
		res := <-sent
		if res.err != nil {
			t.Fatalf("size %d: Transmit failed: %v", size, res.err)
		}

		if res.n != size {
			t.Errorf("size %d: Transmit returned %d", size, res.n)
		}
		padded := (size + PacketSize - 1) / PacketSize * PacketSize
		if n != padded || out.Len() != padded {
			t.Errorf("size %d: received %d bytes (%d buffered), expected %d", size, n, out.Len(), padded)
		}
		if !bytes.Equal(out.Bytes()[:size], data) {
			t.Errorf("size %d: received data differs", size)
		}
		if bytes.Count(out.Bytes()[size:], []byte{0}) != padded-size {
			t.Errorf("size %d: padding is not zero", size)
		}
	}
}

func TestTransmitProgress(t *testing.T) {
	tx, rx := link()
	var events []Progress
	done := make(chan error, 1)
	go func() {
		_, err := Transmit(bytes.NewReader(pattern(200)), tx, func(p Progress) {
			events = append(events, p)
		})
		done <- err
	}()

	if _, err := Receive(rx, io.Discard, nil); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("Transmit failed: %v", err)
	}

	expected := []Progress{
		{Stage: StageWaiting},
		{Stage: StageStarted},
		{Stage: StagePacket, Packet: 1},
		{Stage: StagePacket, Packet: 2},
	}
	if len(events) != len(expected) {
		t.Fatalf("progress = %v, expected %v", events, expected)
	}
	for i := range expected {
		if events[i] != expected[i] {
			t.Errorf("progress %d = %+v, expected %+v", i, events[i], expected[i])
		}
	}
}

func TestTransmitRetriesRejectedPacket(t *testing.T) {
	data := pattern(PacketSize)
	peer := newScripted(NAK, NAK, ACK, NAK, ACK)

	n, err := Transmit(bytes.NewReader(data), peer, nil)
	if err != nil {
		t.Fatalf("Transmit failed: %v", err)
	}
	if n != PacketSize {
		t.Errorf("Transmit returned %d, expected %d", n, PacketSize)
	}

	var expected []byte
	expected = append(expected, frame(1, data)...)
	expected = append(expected, frame(1, data)...)
	expected = append(expected, EOT, EOT)
	if !bytes.Equal(peer.written.Bytes(), expected) {
		t.Errorf("wire = % X\nexpected % X", peer.written.Bytes(), expected)
	}
}

func TestTransmitGivesUp(t *testing.T) {
	replies := []byte{NAK}
	for i := 0; i < MaxRetries; i++ {
		replies = append(replies, NAK)
	}
	peer := newScripted(replies...)

	_, err := Transmit(bytes.NewReader(pattern(10)), peer, nil)
	if !errors.Is(err, ErrTooManyRetries) {
		t.Errorf("Transmit error = %v, expected ErrTooManyRetries", err)
	}
}

func TestTransmitCanceled(t *testing.T) {
	peer := newScripted(NAK, CAN)
	_, err := Transmit(bytes.NewReader(pattern(10)), peer, nil)
	if !errors.Is(err, ErrCanceled) {
		t.Errorf("Transmit error = %v, expected ErrCanceled", err)
	}
}

func TestTransmitRequiresInitialNAK(t *testing.T) {
	peer := newScripted(ACK)
	_, err := Transmit(bytes.NewReader(pattern(10)), peer, nil)
	if !errors.Is(err, ErrUnexpectedByte) {
		t.Errorf("Transmit error = %v, expected ErrUnexpectedByte", err)
	}
}

func TestReceiveRetriesBadChecksum(t *testing.T) {
	data := pattern(PacketSize)
	bad := frame(1, data)
	bad[len(bad)-1]++

	var input []byte
	input = append(input, bad...)
	input = append(input, frame(1, data)...)
	input = append(input, EOT, EOT)
	peer := newScripted(input...)

	var out bytes.Buffer
	n, err := Receive(peer, &out, nil)
	if err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if n != PacketSize || !bytes.Equal(out.Bytes(), data) {
		t.Errorf("received %d bytes, data match %v", n, bytes.Equal(out.Bytes(), data))
	}

	expected := []byte{NAK, NAK, ACK, NAK, ACK}
	if !bytes.Equal(peer.written.Bytes(), expected) {
		t.Errorf("replies = % X, expected % X", peer.written.Bytes(), expected)
	}
}

func TestReceivePacketNumberMismatch(t *testing.T) {
	peer := newScripted(frame(2, pattern(PacketSize))...)

	_, err := Receive(peer, io.Discard, nil)
	if !errors.Is(err, ErrPacketNumber) {
		t.Fatalf("Receive error = %v, expected ErrPacketNumber", err)
	}
	if !bytes.Equal(peer.written.Bytes(), []byte{NAK, CAN}) {
		t.Errorf("replies = % X, expected NAK CAN", peer.written.Bytes())
	}
}

func TestReceiveBadLeadByte(t *testing.T) {
	peer := newScripted(0x42)
	_, err := Receive(peer, io.Discard, nil)
	if !errors.Is(err, ErrUnexpectedByte) {
		t.Errorf("Receive error = %v, expected ErrUnexpectedByte", err)
	}
}

func TestReceiveCanceled(t *testing.T) {
	peer := newScripted(CAN)
	_, err := Receive(peer, io.Discard, nil)
	if !errors.Is(err, ErrCanceled) {
		t.Errorf("Receive error = %v, expected ErrCanceled", err)
	}
}

func TestPacketBufferSize(t *testing.T) {
	x := NewXmodem(newScripted())
	if _, err := x.ReadPacket(make([]byte, 10)); !errors.Is(err, ErrShortPacket) {
		t.Errorf("ReadPacket error = %v, expected ErrShortPacket", err)
	}
	if err := x.WritePacket(make([]byte, 10)); !errors.Is(err, ErrShortPacket) {
		t.Errorf("WritePacket error = %v, expected ErrShortPacket", err)
	}
}

func TestPacketNumberWraps(t *testing.T) {
	x := NewXmodem(newScripted())
	x.packet = 255
	x.started = true
	x.rw = newScripted(ACK, ACK)

	buf := pattern(PacketSize)
	if err := x.WritePacket(buf); err != nil {
		t.Fatalf("WritePacket failed: %v", err)
	}
	if x.packet != 0 {
		t.Errorf("packet number after 255 = %d, expected 0", x.packet)
	}
	if err := x.WritePacket(buf); err != nil {
		t.Fatalf("WritePacket failed: %v", err)
	}
	if x.packet != 1 {
		t.Errorf("packet number = %d, expected 1", x.packet)
	}
}

func TestReceivePacketNumbersThatLookLikeCAN(t *testing.T) {
	// Packet 24 carries CAN as its number, packet 231 as its complement
	for _, num := range []uint8{CAN, 255 - CAN} {
		data := pattern(PacketSize)
		peer := newScripted(frame(num, data)...)
		x := NewXmodem(peer)
		x.packet = num
		x.started = true

		buf := make([]byte, PacketSize)
		n, err := x.ReadPacket(buf)
		if err != nil {
			t.Fatalf("packet %d: ReadPacket failed: %v", num, err)
		}
		if n != PacketSize || !bytes.Equal(buf, data) {
			t.Errorf("packet %d: read %d bytes, data match %v", num, n, bytes.Equal(buf, data))
		}
		if !bytes.Equal(peer.written.Bytes(), []byte{ACK}) {
			t.Errorf("packet %d: replies = % X, expected ACK", num, peer.written.Bytes())
		}
	}
}

func TestRoundTripPastPacket24(t *testing.T) {
	data := pattern(24 * PacketSize)
	tx, rx := link()
	sent := make(chan error, 1)
	go func() {
		_, err := Transmit(bytes.NewReader(data), tx, nil)
		sent <- err
	}()

	var out bytes.Buffer
	if _, err := Receive(rx, &out, nil); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if err := <-sent; err != nil {
		t.Fatalf("Transmit failed: %v", err)
	}
	if !bytes.Equal(out.Bytes(), data) {
		t.Error("received data differs")
	}
}

func TestReceiveCanceledInPacketNumber(t *testing.T) {
	peer := newScripted(SOH, CAN)
	_, err := Receive(peer, io.Discard, nil)
	if !errors.Is(err, ErrCanceled) {
		t.Fatalf("Receive error = %v, expected ErrCanceled", err)
	}
	if !bytes.Equal(peer.written.Bytes(), []byte{NAK, CAN}) {
		t.Errorf("replies = % X, expected NAK CAN", peer.written.Bytes())
	}
}

func TestReceiveTruncatedPacketNumber(t *testing.T) {
	peer := newScripted(SOH)
	_, err := Receive(peer, io.Discard, nil)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("Receive error = %v, expected EOF", err)
	}
	if !bytes.Equal(peer.written.Bytes(), []byte{NAK, CAN}) {
		t.Errorf("replies = % X, expected NAK CAN", peer.written.Bytes())
	}
}
