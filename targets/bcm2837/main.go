//go:build tinygo && arm

// Bare-metal blinker for the Raspberry Pi 3 in AArch32 mode.
//
// Build from the module root and copy kernel7.img to the SD card boot
// partition:
//
//	tinygo build -target=targets/bcm2837/bcm2837.json -o kernel7.elf ./targets/bcm2837
//	llvm-objcopy -O binary kernel7.elf kernel7.img
//
// Add -ldflags="-X main.debug=true" for debug output over semihosting.
package main

import (
	"blinky/core"

	"tinygo.org/x/drivers/semihosting"
)

// debug is set with -ldflags "-X main.debug=true"
var debug string

// semihostingDebug sends debug lines to the host through the debugger
// connection (QEMU -semihosting or OpenOCD)
func semihostingDebug(msg string) {
	semihosting.Stdout.Write([]byte(msg + "\n"))
}

func main() {
	// The peripheral block is identity mapped at boot, no MMU
	var regs core.RegisterFile = core.NewMMIO(core.GPIOBase)

	if debug == "true" {
		core.SetDebugWriter(semihostingDebug)
		core.SetDebugEnabled(true)
		regs = core.Trace(regs)
	}
	core.SetRegisterFile(regs)

	status := core.Kmain()

	if core.IsDebugEnabled() {
		core.DumpTrace()
		core.DebugPrintln("[BOOT] kmain returned " + core.Itoa(status))
	}
}
