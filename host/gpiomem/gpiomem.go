//go:build linux

// Package gpiomem maps the GPIO register block into the process so the
// blink routine can drive a Raspberry Pi from Linux user space.
package gpiomem

import (
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"

	"blinky/core"
)

// BlockSize is the length of the mapping, one page covering every GPIO register
const BlockSize = 4096

// Registers is a RegisterFile over an mmap of the GPIO block. Accesses are
// atomic 32-bit loads and stores so each one reaches the device in order.
type Registers struct {
	file  *os.File
	mem   []byte
	words []uint32
}

// Open maps the GPIO block through path. /dev/gpiomem exposes the block at
// offset 0; /dev/mem needs the physical address, see OpenAt.
func Open(path string) (*Registers, error) {
	if path == "/dev/mem" {
		return OpenAt(path, core.GPIOBase)
	}
	return OpenAt(path, 0)
}

// OpenAt maps BlockSize bytes of path starting at offset
func OpenAt(path string, offset int64) (*Registers, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	mem, err := unix.Mmap(int(file.Fd()), offset, BlockSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to map %s at 0x%X: %w", path, offset, err)
	}

	return &Registers{
		file:  file,
		mem:   mem,
		words: unsafe.Slice((*uint32)(unsafe.Pointer(&mem[0])), BlockSize/4),
	}, nil
}

// Read32 loads the register at offset
func (r *Registers) Read32(offset uint32) uint32 {
	return atomic.LoadUint32(&r.words[offset/4])
}

// Write32 stores value to the register at offset
func (r *Registers) Write32(offset uint32, value uint32) {
	atomic.StoreUint32(&r.words[offset/4], value)
}

// Close unmaps the block and closes the device
func (r *Registers) Close() error {
	if r.mem == nil {
		return nil
	}
	r.words = nil
	err := unix.Munmap(r.mem)
	r.mem = nil
	if cerr := r.file.Close(); err == nil {
		err = cerr
	}
	return err
}
