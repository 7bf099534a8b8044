// Package bus implements the device-addressed memory bus that multiplexes
// between DRAM and the boot ROM, following the routing style of the
// Intuition Engine's SystemBus (memory_bus.go, machine_bus.go): a single
// owner holding both backing devices and dispatching purely on the
// physical address.
package bus

import "github.com/yysung1123/SIMP/internal/memory"

// PhysBootROMBase is the physical base address at which the boot ROM is
// mapped.
const PhysBootROMBase = 0x1FC0_0000

// Bus owns the DRAM and boot ROM devices and routes physical addresses to
// whichever one contains them. It performs no caching, no alignment
// checking beyond what the underlying device does, and no endian
// conversion beyond the device's own.
type Bus struct {
	dram *memory.Dram
	rom  *memory.Rom
}

// New constructs a Bus with a zeroed DRAM region and a boot ROM pre-loaded
// from image.
func New(image []byte) *Bus {
	return &Bus{
		dram: memory.NewDram(),
		rom:  memory.NewRom(image),
	}
}

func (b *Bus) device(addr uint32) (memory.Device, uint32) {
	if addr >= PhysBootROMBase && addr < PhysBootROMBase+memory.BootROMSize {
		return b.rom, addr - PhysBootROMBase
	}
	return b.dram, addr
}

// Load reads width bits from the device owning addr.
func (b *Bus) Load(addr uint32, width int) (uint32, error) {
	dev, offset := b.device(addr)
	return dev.Load(offset, width)
}

// Store writes width bits to the device owning addr. A store routed to the
// boot ROM is silently discarded by the device itself.
func (b *Bus) Store(addr uint32, width int, value uint32) error {
	dev, offset := b.device(addr)
	return dev.Store(offset, width, value)
}
