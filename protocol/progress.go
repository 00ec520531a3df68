package protocol

// Stage is the point an XMODEM transfer has reached
type Stage uint8

const (
	// StageWaiting: the transmitter is waiting for the receiver's first NAK
	StageWaiting Stage = iota
	// StageStarted: the first packet is about to move
	StageStarted
	// StagePacket: a packet was acknowledged
	StagePacket
)

func (s Stage) String() string {
	switch s {
	case StageWaiting:
		return "waiting"
	case StageStarted:
		return "started"
	case StagePacket:
		return "packet"
	}
	return "unknown"
}

// Progress reports transfer progress. Packet is the packet number for
// StagePacket and zero otherwise.
type Progress struct {
	Stage  Stage
	Packet uint8
}

// ProgressFunc receives progress reports during a transfer
type ProgressFunc func(Progress)

func noProgress(Progress) {}
