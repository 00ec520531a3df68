package core

import (
	"sync"
	"sync/atomic"
)

// DebugWriter receives one line of debug output
type DebugWriter func(string)

// asyncDepth is how many lines DebugAsync queues before it starts dropping
const asyncDepth = 16

var (
	debugWriter  atomic.Pointer[DebugWriter]
	debugEnabled atomic.Bool

	// Lines queued by DebugAsync, drained by one worker
	asyncLines   = make(chan string, asyncDepth)
	asyncStarted atomic.Bool
	asyncOnce    sync.Once
)

// SetDebugWriter routes debug output to w. The target binds it to
// semihosting, the host tool to the standard logger. nil discards output.
func SetDebugWriter(w DebugWriter) {
	if w == nil {
		debugWriter.Store(nil)
		return
	}
	debugWriter.Store(&w)
}

// SetDebugEnabled turns DebugPrintln and DebugAsync on or off. Output is off
// by default: a slow console stretches the blink period.
func SetDebugEnabled(enabled bool) {
	debugEnabled.Store(enabled)
}

func IsDebugEnabled() bool {
	return debugEnabled.Load()
}

// writeDebug sends s to the current writer regardless of the enable flag
func writeDebug(s string) {
	if w := debugWriter.Load(); w != nil {
		(*w)(s)
	}
}

// InitAsyncDebug starts the worker that drains DebugAsync. Only the first
// call starts one; later calls are no-ops.
func InitAsyncDebug() {
	asyncOnce.Do(func() {
		go drainDebug(asyncLines)
		asyncStarted.Store(true)
	})
}

func drainDebug(lines <-chan string) {
	for line := range lines {
		writeDebug(line)
	}
}

// DebugPrintln writes msg synchronously when debug output is enabled
func DebugPrintln(msg string) {
	if debugEnabled.Load() {
		writeDebug(msg)
	}
}

// DebugAsync queues msg for the worker started by InitAsyncDebug. It never
// blocks: with no worker or a full queue the line is dropped.
func DebugAsync(msg string) {
	if !debugEnabled.Load() || !asyncStarted.Load() {
		return
	}
	select {
	case asyncLines <- msg:
	default:
	}
}
