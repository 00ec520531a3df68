//go:build !(tinygo && arm)

package core

import "sync/atomic"

// spinSink counts every placeholder instruction issued on hosts without a
// nop intrinsic. The atomic add keeps the loop from being optimized away.
var spinSink atomic.Uint64

// spin burns cycles iterations (regular Go implementation)
func spin(cycles uint64) {
	for i := uint64(0); i < cycles; i++ {
		spinSink.Add(1)
	}
}
