//go:build tinygo && arm

package core

import "device/arm"

// spin issues one nop per cycle. Inline asm is volatile, so the loop
// survives optimization.
func spin(cycles uint64) {
	for i := uint64(0); i < cycles; i++ {
		arm.Asm("nop")
	}
}
