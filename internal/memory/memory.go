// Package memory implements the byte-addressable storage devices backing
// the simulator: a writable DRAM region and a read-only boot ROM.
//
// Both devices expose the same Device interface, following the polymorphic
// memory pattern used throughout the Intuition Engine's memory subsystem
// (see memory_bus.go): a uniform Load/Store across widths 8/16/32 with
// little-endian packing, and a sum-type split between a device that accepts
// writes and one that silently discards them.
package memory

import (
	"encoding/binary"
	"fmt"
)

const (
	// Size is the width of the DRAM region in bytes (128 MiB).
	Size = 128 * 1024 * 1024

	// BootROMSize is the width of the boot ROM region in bytes (4 MiB).
	BootROMSize = 4 * 1024 * 1024
)

// Device is the uniform access surface for a byte-addressable memory
// region. Load reads width/8 bytes starting at addr and assembles them,
// little-endian, into the low-order bits of the returned value; high-order
// bits are always zero. Store writes the low width bits of value,
// little-endian.
type Device interface {
	Load(addr uint32, width int) (uint32, error)
	Store(addr uint32, width int, value uint32) error
}

func checkWidth(width int) error {
	switch width {
	case 8, 16, 32:
		return nil
	default:
		return fmt.Errorf("memory: unsupported access width %d", width)
	}
}

func loadBytes(mem []byte, addr uint32, width int) (uint32, error) {
	if err := checkWidth(width); err != nil {
		return 0, err
	}
	n := uint32(width / 8)
	if addr > uint32(len(mem)) || uint32(len(mem))-addr < n {
		return 0, fmt.Errorf("memory: load out of range: addr=%#x width=%d size=%d", addr, width, len(mem))
	}
	switch width {
	case 8:
		return uint32(mem[addr]), nil
	case 16:
		return uint32(binary.LittleEndian.Uint16(mem[addr : addr+2])), nil
	default: // 32
		return binary.LittleEndian.Uint32(mem[addr : addr+4]), nil
	}
}

func storeBytes(mem []byte, addr uint32, width int, value uint32) error {
	if err := checkWidth(width); err != nil {
		return err
	}
	n := uint32(width / 8)
	if addr > uint32(len(mem)) || uint32(len(mem))-addr < n {
		return fmt.Errorf("memory: store out of range: addr=%#x width=%d size=%d", addr, width, len(mem))
	}
	switch width {
	case 8:
		mem[addr] = byte(value)
	case 16:
		binary.LittleEndian.PutUint16(mem[addr:addr+2], uint16(value))
	default: // 32
		binary.LittleEndian.PutUint32(mem[addr:addr+4], value)
	}
	return nil
}

// Dram is a zero-initialised, read/write memory region.
type Dram struct {
	mem []byte
}

// NewDram allocates a zeroed DRAM region of Size bytes.
func NewDram() *Dram {
	return &Dram{mem: make([]byte, Size)}
}

func (d *Dram) Load(addr uint32, width int) (uint32, error) {
	return loadBytes(d.mem, addr, width)
}

func (d *Dram) Store(addr uint32, width int, value uint32) error {
	return storeBytes(d.mem, addr, width, value)
}

// Rom is a read-only memory region pre-loaded from a boot image. Stores are
// accepted and return no error but never mutate the backing bytes — this is
// not a failure, it keeps cold boot code paths (which often blind-write
// status registers that happen to alias ROM) simple.
type Rom struct {
	mem []byte
}

// NewRom allocates a BootROMSize region and copies image into the front of
// it. An image longer than BootROMSize is truncated; a shorter image is
// right-padded with zeros. Both cases are deterministic.
func NewRom(image []byte) *Rom {
	mem := make([]byte, BootROMSize)
	copy(mem, image)
	return &Rom{mem: mem}
}

func (r *Rom) Load(addr uint32, width int) (uint32, error) {
	return loadBytes(r.mem, addr, width)
}

func (r *Rom) Store(addr uint32, width int, value uint32) error {
	if err := checkWidth(width); err != nil {
		return err
	}
	// Bounds are still honoured so a wild ROM-range write surfaces the same
	// out-of-range diagnostic a DRAM write would, even though the write
	// itself is discarded.
	n := uint32(width / 8)
	if addr > uint32(len(r.mem)) || uint32(len(r.mem))-addr < n {
		return fmt.Errorf("memory: store out of range: addr=%#x width=%d size=%d", addr, width, len(r.mem))
	}
	return nil
}
