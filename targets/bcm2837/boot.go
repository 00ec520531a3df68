//go:build tinygo && arm

package main

// The firmware starts every core at _start. Core 0 gets a stack and enters
// the runtime; the others wait for events forever.

/*
__asm__(
	".section .text.boot, \"ax\"\n"
	".global _start\n"
	"_start:\n"
	"	mrc p15, 0, r0, c0, c0, 5\n"
	"	and r0, r0, #3\n"
	"	cmp r0, #0\n"
	"	bne 1f\n"
	"	ldr sp, =_stack_top\n"
	"	bl main\n"
	"1:	wfe\n"
	"	b 1b\n"
	".ltorg\n"
);
*/
import "C"
