package cpu

import (
	"encoding/binary"
	"testing"

	"github.com/yysung1123/SIMP/internal/bus"
)

func rtype(op, rs, rt, rd, shamt, funct uint32) uint32 {
	return op<<26 | rs<<21 | rt<<16 | rd<<11 | shamt<<6 | funct
}

func itype(op, rs, rt uint32, imm uint16) uint32 {
	return op<<26 | rs<<21 | rt<<16 | uint32(imm)
}

func jtype(op, target uint32) uint32 {
	return op<<26 | (target & 0x03FF_FFFF)
}

// program assembles a little-endian boot ROM image from raw instruction
// words, in the order the CPU will fetch them from the boot vector.
func program(words ...uint32) []byte {
	buf := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	return buf
}

func newTestCPU(words ...uint32) *CPU {
	b := bus.New(program(words...))
	return New(b)
}

// runN steps the CPU n times, failing the test on the first error.
func runN(t *testing.T, c *CPU, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := c.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
}

// TestRegisterZeroAlwaysReadsZero verifies r0 reads 0 even after being
// targeted as a destination register.
func TestRegisterZeroAlwaysReadsZero(t *testing.T) {
	// ori $0, $0, 0xFFFF — writes to r0 if the hardware wiring were absent.
	c := newTestCPU(itype(0x0D, 0, 0, 0xFFFF))
	runN(t, c, 1)
	if c.Regs[0] != 0 {
		t.Fatalf("r0 = %#x, want 0", c.Regs[0])
	}
}

// TestAdduWraps verifies addu wraps modulo 2^32 rather than faulting.
func TestAdduWraps(t *testing.T) {
	c := newTestCPU(rtype(0x00, 1, 2, 3, 0, 0x21)) // addu $3, $1, $2
	c.Regs[1] = 0xFFFFFFFF
	c.Regs[2] = 2
	runN(t, c, 1)
	if c.Regs[3] != 1 {
		t.Fatalf("r3 = %#x, want 1", c.Regs[3])
	}
}

// TestAddiuWrap verifies addiu wraps 0xFFFFFFFF + 1 to 0.
func TestAddiuWrap(t *testing.T) {
	c := newTestCPU(itype(0x09, 1, 2, 1)) // addiu $2, $1, 1
	c.Regs[1] = 0xFFFFFFFF
	runN(t, c, 1)
	if c.Regs[2] != 0 {
		t.Fatalf("r2 = %#x, want 0", c.Regs[2])
	}
}

// TestSignedVsUnsignedCompare verifies slt treats operands as signed while
// sltu treats them as unsigned.
func TestSignedVsUnsignedCompare(t *testing.T) {
	c := newTestCPU(
		rtype(0x00, 1, 2, 3, 0, 0x2A), // slt  $3, $1, $2
		rtype(0x00, 1, 2, 4, 0, 0x2B), // sltu $4, $1, $2
	)
	c.Regs[1] = 0xFFFFFFFF // -1 signed
	c.Regs[2] = 0x00000001
	runN(t, c, 2)
	if c.Regs[3] != 1 {
		t.Fatalf("slt = %#x, want 1", c.Regs[3])
	}
	if c.Regs[4] != 0 {
		t.Fatalf("sltu = %#x, want 0", c.Regs[4])
	}
}

// TestLuiOriBuildsWord verifies the standard lui+ori idiom for loading a
// 32-bit immediate into a register.
func TestLuiOriBuildsWord(t *testing.T) {
	c := newTestCPU(
		itype(0x0F, 0, 8, 0x1234), // lui $t0, 0x1234
		itype(0x0D, 8, 8, 0x5678), // ori $t0, $t0, 0x5678
	)
	runN(t, c, 2)
	if c.Regs[8] != 0x12345678 {
		t.Fatalf("t0 = %#x, want 0x12345678", c.Regs[8])
	}
}

// TestBeqTakenDelaySlotRuns verifies that the instruction after a taken
// branch still executes, and the branch lands on the instruction +2 words away.
func TestBeqTakenDelaySlotRuns(t *testing.T) {
	c := newTestCPU(
		itype(0x04, 0, 0, 2),      // beq $zero, $zero, +2
		itype(0x0D, 0, 2, 0x1),    // ori $v0, $zero, 1  (delay slot, executes)
		itype(0x0D, 0, 3, 0x2),    // ori $v1, $zero, 2  (skipped)
		itype(0x0D, 0, 4, 0x3),    // ori $a0, $zero, 3  (branch target)
	)
	runN(t, c, 3) // beq, delay slot, branch target
	if c.Regs[2] != 1 {
		t.Fatalf("v0 = %#x, want 1", c.Regs[2])
	}
	if c.Regs[3] != 0 {
		t.Fatalf("v1 = %#x, want 0 (should have been skipped)", c.Regs[3])
	}
	if c.Regs[4] != 3 {
		t.Fatalf("a0 = %#x, want 3", c.Regs[4])
	}
}

// TestJalWritesRa verifies jal writes ra = pc+8 (relative to the jal
// instruction's own address) and lands on the jumped-to target.
func TestJalWritesRa(t *testing.T) {
	// jal's target field carries bits [27:2] of the absolute address; the
	// top 4 bits come from the current 256MB-aligned segment (here, the
	// boot ROM's 0xBFC00000 region). 0x03F00004 addresses word index 4
	// (0xBFC00010) within that same segment.
	c := newTestCPU(
		jtype(0x03, 0x03F00004), // jal -> 0xBFC00010 (word index 4)
		itype(0x0D, 0, 0, 0),     // delay slot: nop-ish (ori $zero,$zero,0)
		itype(0x0D, 0, 0, 0),
		itype(0x0D, 0, 0, 0),
		itype(0x0D, 0, 9, 0x42), // ori $t1, $zero, 0x42 — jump target
	)
	startPC := c.PC
	runN(t, c, 2) // jal, delay slot
	if c.Regs[31] != startPC+8 {
		t.Fatalf("ra = %#x, want %#x", c.Regs[31], startPC+8)
	}
	if c.PC != startPC+4*4 {
		t.Fatalf("pc = %#x, want %#x", c.PC, startPC+4*4)
	}
}

// TestMultSignedThenMfhiMflo verifies mult treats its operands as signed
// and that mfhi/mflo retrieve the 64-bit result's two halves.
func TestMultSignedThenMfhiMflo(t *testing.T) {
	c := newTestCPU(
		rtype(0x00, 1, 2, 0, 0, 0x18), // mult $1, $2
		rtype(0x00, 0, 0, 3, 0, 0x12), // mflo $3
		rtype(0x00, 0, 0, 4, 0, 0x10), // mfhi $4
	)
	c.Regs[1] = 0xFFFFFFFF // -1
	c.Regs[2] = 2
	runN(t, c, 3)
	if c.LO != 0xFFFFFFFE {
		t.Fatalf("LO = %#x, want 0xFFFFFFFE", c.LO)
	}
	if c.HI != 0xFFFFFFFF {
		t.Fatalf("HI = %#x, want 0xFFFFFFFF", c.HI)
	}
	if c.Regs[3] != 0xFFFFFFFE || c.Regs[4] != 0xFFFFFFFF {
		t.Fatalf("mflo/mfhi results mismatched LO/HI registers")
	}
}

// TestClzClo verifies clz and clo against the all-zero and all-one inputs.
func TestClzClo(t *testing.T) {
	c := newTestCPU(
		rtype(0x1C, 1, 9, 0, 0, 0x20), // clz $t1, $1
		rtype(0x1C, 2, 10, 0, 0, 0x21), // clo $t2, $2
	)
	c.Regs[1] = 0
	c.Regs[2] = 0xFFFFFFFF
	runN(t, c, 2)
	if c.Regs[9] != 32 {
		t.Fatalf("clz(0) = %d, want 32", c.Regs[9])
	}
	if c.Regs[10] != 32 {
		t.Fatalf("clo(0xFFFFFFFF) = %d, want 32", c.Regs[10])
	}
}

// TestMemoryRoundTripThroughLoadStore verifies sw/lw round-trip a word
// through DRAM addressed through KSEG1.
func TestMemoryRoundTripThroughLoadStore(t *testing.T) {
	const dramVirt = 0xA000_1000
	c := newTestCPU(
		itype(0x0F, 0, 1, 0xA000>>0), // lui $1, 0xA000      -> $1 = 0xA0000000
		itype(0x0D, 1, 1, 0x1000),    // ori $1, $1, 0x1000   -> $1 = dramVirt
		itype(0x0F, 0, 2, 0xBEEF),    // lui $2, 0xBEEF
		itype(0x0D, 2, 2, 0xCAFE),    // ori $2, $2, 0xCAFE   -> $2 = 0xBEEFCAFE
		itype(0x2B, 1, 2, 0),         // sw $2, 0($1)
		itype(0x23, 1, 3, 0),         // lw $3, 0($1)
	)
	runN(t, c, 6)
	if c.Regs[3] != 0xBEEFCAFE {
		t.Fatalf("lw result = %#x, want 0xBEEFCAFE", c.Regs[3])
	}
}

// TestRomStoreIsNoOp verifies, through the interpreter, that a store routed to
// the boot ROM must not perturb subsequently fetched instructions.
func TestRomStoreIsNoOp(t *testing.T) {
	c := newTestCPU(
		itype(0x0F, 0, 1, 0xBFC0), // lui $1, 0xBFC0 -> boot vector segment
		itype(0x2B, 1, 0, 0),      // sw $zero, 0($1) -- targets the ROM itself
	)
	runN(t, c, 2)
	// The instruction stream must be unchanged: re-fetching word 0 (the lui
	// we just ran) should still decode identically.
	raw, err := c.load(0xBFC0_0000, 32)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if raw != itype(0x0F, 0, 1, 0xBFC0) {
		t.Fatalf("ROM mutated by store: got %#x", raw)
	}
}

// TestUnknownOpcodeIsFatal ensures an unimplemented opcode surfaces an
// error rather than silently no-opping.
func TestUnknownOpcodeIsFatal(t *testing.T) {
	c := newTestCPU(jtype(0x3F, 0)) // opcode 0x3F is not in the dispatch table
	if err := c.Step(); err == nil {
		t.Fatal("expected error for unimplemented opcode, got nil")
	}
}

// TestHaltOnPCZero covers the halt convention: a jr to $zero from ra=0
// leaves PC at 0 after the delay slot and stops Run without error.
func TestHaltOnPCZero(t *testing.T) {
	c := newTestCPU(
		rtype(0x00, 31, 0, 0, 0, 0x08), // jr $ra
		rtype(0x00, 0, 0, 0, 0, 0x00),  // sll $zero,$zero,0 (delay slot nop)
	)
	c.Regs[31] = 0
	if err := c.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !c.Halted {
		t.Fatal("expected Halted = true")
	}
	if c.PC != 0 {
		t.Fatalf("pc = %#x, want 0", c.PC)
	}
}

// TestDumpRegistersFormat checks the register dump layout: 8 lines of 4
// registers, 0x-prefixed 16-digit hex, ABI names in parentheses.
func TestDumpRegistersFormat(t *testing.T) {
	c := newTestCPU(rtype(0, 0, 0, 0, 0, 0))
	out := c.DumpRegisters()
	want := "r0(zero)=0x0000000000000000 r1(at)=0x0000000000000000" +
		" r2(v0)=0x0000000000000000 r3(v1)=0x0000000000000000\n"
	if len(out) < len(want) {
		t.Fatalf("dump too short: %q", out)
	}
	if out[:len(want)] != want {
		t.Fatalf("unexpected dump header:\n%s", out[:len(want)])
	}
}
