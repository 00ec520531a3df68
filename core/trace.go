package core

// TraceKind distinguishes register reads from writes
type TraceKind uint8

// Trace event kinds
const (
	TraceRead  TraceKind = 1
	TraceWrite TraceKind = 2
)

// TraceEvent captures one register access for post-mortem analysis
type TraceEvent struct {
	Kind   TraceKind
	Seq    uint32 // Access sequence number, starting at 1
	Offset uint32 // Register offset from GPIOBase
	Value  uint32 // Value read or written
}

const (
	TraceRingSize = 32 // Keep last 32 accesses for post-mortem
)

var (
	traceRing     [TraceRingSize]TraceEvent
	traceRingHead uint8 // Next write position
	traceSeq      uint32
)

// Traced wraps a RegisterFile and records every access in the trace ring
type Traced struct {
	Inner RegisterFile
}

// Trace returns regs wrapped so that its accesses land in the trace ring
func Trace(regs RegisterFile) *Traced {
	return &Traced{Inner: regs}
}

// Read32 reads through to the wrapped register file
func (t *Traced) Read32(offset uint32) uint32 {
	v := t.Inner.Read32(offset)
	recordTrace(TraceRead, offset, v)
	return v
}

// Write32 writes through to the wrapped register file
func (t *Traced) Write32(offset uint32, value uint32) {
	t.Inner.Write32(offset, value)
	recordTrace(TraceWrite, offset, value)
	DebugAsync("[REG] W " + RegisterName(offset) + "=" + hex32(value))
}

// recordTrace captures an access in the ring buffer
func recordTrace(kind TraceKind, offset, value uint32) {
	traceSeq++
	idx := traceRingHead
	traceRing[idx] = TraceEvent{
		Kind:   kind,
		Seq:    traceSeq,
		Offset: offset,
		Value:  value,
	}
	traceRingHead = (idx + 1) % TraceRingSize
}

// TraceEvents returns the recorded accesses from oldest to newest
func TraceEvents() []TraceEvent {
	events := make([]TraceEvent, 0, TraceRingSize)
	start := traceRingHead
	for i := uint8(0); i < TraceRingSize; i++ {
		evt := traceRing[(start+i)%TraceRingSize]
		if evt.Kind == 0 {
			continue // Empty slot
		}
		events = append(events, evt)
	}
	return events
}

// DumpTrace outputs the trace ring through the debug writer
func DumpTrace() {
	writeDebug("[TRACE] === Register Trace Dump ===")
	writeDebug("[TRACE] Total accesses: " + utoa(traceSeq))
	for _, evt := range TraceEvents() {
		name := "R"
		if evt.Kind == TraceWrite {
			name = "W"
		}
		writeDebug("[TRACE] #" + utoa(evt.Seq) + " " + name + " " +
			RegisterName(evt.Offset) + " " + hex32(evt.Value))
	}
	writeDebug("[TRACE] === End Dump ===")
}

// ClearTrace clears the trace ring
func ClearTrace() {
	for i := range traceRing {
		traceRing[i] = TraceEvent{}
	}
	traceRingHead = 0
	traceSeq = 0
}

// RegisterName returns the datasheet name of the register at offset
func RegisterName(offset uint32) string {
	switch {
	case offset < GPFSEL0+4*FSelRegisters && offset%4 == 0:
		return "GPFSEL" + utoa(offset/4)
	case offset == GPSET0:
		return "GPSET0"
	case offset == GPSET1:
		return "GPSET1"
	case offset == GPCLR0:
		return "GPCLR0"
	case offset == GPCLR1:
		return "GPCLR1"
	case offset == GPLEV0:
		return "GPLEV0"
	case offset == GPLEV1:
		return "GPLEV1"
	}
	return "REG+" + hex32(offset)
}
