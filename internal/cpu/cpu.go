// Package cpu implements the fetch/decode/execute engine for the
// MIPS-family (R3000-style) core: the architectural register state, the
// segment-decoding MMU, and the opcode dispatch tables.
//
// The interpreter's shape — a struct holding hot register state plus a
// pointer to its memory interface, with Step doing one fetch/decode/execute
// cycle per call — follows the Intuition Engine's CPU type (cpu_ie32.go):
// NewCPU(bus), then repeated calls into the execution core until a halt or
// error condition is observed by the caller.
package cpu

import (
	"fmt"
	"log"
	"os"

	"github.com/yysung1123/SIMP/internal/bus"
)

// Boot exception vector and kernel segment boundaries (virtual addresses).
const (
	BootExceptionVector = 0xBFC0_0000

	KUSEGBase = 0x0000_0000
	KUSEGSize = 0x8000_0000
	KSEG0Base = 0x8000_0000
	KSEG0Size = 0x2000_0000
	KSEG1Base = 0xA000_0000
	KSEG1Size = 0x2000_0000
	KSEG2Base = 0xC000_0000
)

// logger is the package-level diagnostic sink for decode and
// address-translation diagnostics, using the standard log package rather than a structured
// logging library.
var logger = log.New(os.Stderr, "cpu: ", 0)

// CPU holds the architectural state of a single R3000-style core: the
// general-purpose register file, the program counter, the HI/LO
// multiply/divide latches, and the pending delay-slot branch target. The
// CPU exclusively owns the Bus; no other component mutates memory.
type CPU struct {
	Regs [32]uint32
	PC   uint32
	HI   uint32
	LO   uint32

	// pendingBranch is the next-PC value scheduled by a branch or jump,
	// installed one instruction later (the delay slot). nil means no
	// branch is pending.
	pendingBranch *uint32

	bus *bus.Bus

	// Halted is set once Step observes pc == 0, the simulator's halt
	// convention: execution stops once the program counter itself reaches 0.
	Halted bool
}

// New constructs a CPU wired to bus, with PC at the boot exception vector
// and all other state zero-initialised.
func New(b *bus.Bus) *CPU {
	return &CPU{
		PC:  BootExceptionVector,
		bus: b,
	}
}

// mmu translates a virtual address to a physical one. KSEG0 and KSEG1 map
// by subtracting their segment base; KUSEG and KSEG2 have no TLB in this
// core, so a reference into either logs an "unimplemented" diagnostic and
// returns physical address 0, letting execution continue deterministically
// rather than modelling a page-table walk.
func (c *CPU) mmu(addr uint32) uint32 {
	switch {
	case addr >= KSEG0Base && addr < KSEG0Base+KSEG0Size:
		return addr - KSEG0Base
	case addr >= KSEG1Base && addr < KSEG1Base+KSEG1Size:
		return addr - KSEG1Base
	case addr >= KSEG2Base:
		logger.Printf("not implemented: kseg2 translation for %#010x", addr)
		return 0
	default: // KUSEG
		logger.Printf("not implemented: kuseg translation for %#010x", addr)
		return 0
	}
}

// load performs a width-bit load through the MMU and bus.
func (c *CPU) load(addr uint32, width int) (uint32, error) {
	phys := c.mmu(addr)
	return c.bus.Load(phys, width)
}

// store performs a width-bit store through the MMU and bus.
func (c *CPU) store(addr uint32, width int, value uint32) error {
	phys := c.mmu(addr)
	return c.bus.Store(phys, width, value)
}

// fetch reads the 32-bit instruction word at the program counter.
func (c *CPU) fetch() (uint32, error) {
	return c.load(c.PC, 32)
}

// schedule sets the pending branch target. A branch encountered while a
// branch is already pending (double-branch in a delay slot) silently
// replaces the earlier target rather than installing it — the source's
// documented undefined behaviour for this case.
func (c *CPU) schedule(target uint32) {
	t := target
	c.pendingBranch = &t
}

// instruction holds the decoded fields of a 32-bit MIPS instruction.
type instruction struct {
	raw      uint32
	opcode   uint32
	rs       uint32
	rt       uint32
	rd       uint32
	shamt    uint32
	funct    uint32
	imm16    uint16
	target26 uint32
}

func decode(raw uint32) instruction {
	return instruction{
		raw:      raw,
		opcode:   (raw >> 26) & 0x3F,
		rs:       (raw >> 21) & 0x1F,
		rt:       (raw >> 16) & 0x1F,
		rd:       (raw >> 11) & 0x1F,
		shamt:    (raw >> 6) & 0x1F,
		funct:    raw & 0x3F,
		imm16:    uint16(raw & 0xFFFF),
		target26: raw & 0x03FF_FFFF,
	}
}

// signExtend16 sign-extends a 16-bit immediate to 32 bits.
func signExtend16(imm uint16) uint32 {
	return uint32(int32(int16(imm)))
}

// zeroExtend16 zero-extends a 16-bit immediate to 32 bits.
func zeroExtend16(imm uint16) uint32 {
	return uint32(imm)
}

// Step executes exactly one fetch/decode/execute cycle: the instruction at
// the current PC, respecting any branch scheduled by the previous
// instruction's delay slot. It returns an error if the fetch faults, the
// instruction is unimplemented, or a memory access made during execution
// fails — in every case the caller should stop the run and dump registers;
// Step itself never panics.
func (c *CPU) Step() error {
	pendingAtEntry := c.pendingBranch

	raw, err := c.fetch()
	if err != nil {
		return fmt.Errorf("fetch at pc=%#010x: %w", c.PC, err)
	}
	c.PC += 4

	c.Regs[0] = 0

	inst := decode(raw)
	if err := c.execute(inst); err != nil {
		return err
	}
	c.Regs[0] = 0

	if pendingAtEntry != nil && c.pendingBranch == pendingAtEntry {
		c.PC = *pendingAtEntry
		c.pendingBranch = nil
	}

	if c.PC == 0 {
		c.Halted = true
	}

	return nil
}

// Run executes Step repeatedly until Step returns an error or the halt
// convention (pc == 0) is reached, mirroring the outer driver loop
// described above. It returns the first error encountered, or
// nil on a clean halt.
func (c *CPU) Run() error {
	for !c.Halted {
		if err := c.Step(); err != nil {
			return err
		}
	}
	return nil
}

// IsHalted reports whether the CPU has reached the halt convention.
func (c *CPU) IsHalted() bool {
	return c.Halted
}

// PeekWord reads one 32-bit word through the MMU and bus without advancing
// the program counter, for external inspection (the interactive monitor's
// memory-read command).
func (c *CPU) PeekWord(addr uint32) (uint32, error) {
	return c.load(addr, 32)
}

func (c *CPU) execute(inst instruction) error {
	switch inst.opcode {
	case 0x00:
		return c.execSpecial(inst)
	case 0x01:
		return c.execRegimm(inst)
	case 0x1C:
		return c.execSpecial2(inst)
	default:
		return c.execImmediate(inst)
	}
}
