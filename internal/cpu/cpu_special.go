package cpu

import "fmt"

// execSpecial dispatches opcode 0x00 (SPECIAL) instructions by funct field:
// shifts, register-to-register ALU ops, jr/jalr, HI/LO moves and the
// multiply/divide family.
func (c *CPU) execSpecial(inst instruction) error {
	switch inst.funct {
	case 0x00: // sll
		c.Regs[inst.rd] = c.Regs[inst.rt] << inst.shamt
	case 0x02: // srl
		c.Regs[inst.rd] = c.Regs[inst.rt] >> inst.shamt
	case 0x03: // sra
		c.Regs[inst.rd] = uint32(int32(c.Regs[inst.rt]) >> inst.shamt)
	case 0x04: // sllv
		c.Regs[inst.rd] = c.Regs[inst.rt] << (c.Regs[inst.rs] & 0x1F)
	case 0x06: // srlv
		c.Regs[inst.rd] = c.Regs[inst.rt] >> (c.Regs[inst.rs] & 0x1F)
	case 0x07: // srav
		c.Regs[inst.rd] = uint32(int32(c.Regs[inst.rt]) >> (c.Regs[inst.rs] & 0x1F))
	case 0x08: // jr
		c.schedule(c.Regs[inst.rs])
	case 0x09: // jalr
		c.Regs[inst.rd] = c.PC + 4
		c.schedule(c.Regs[inst.rs])
	case 0x0D: // break — exception machinery is out of scope for this core
	case 0x10: // mfhi
		c.Regs[inst.rd] = c.HI
	case 0x11: // mthi
		c.HI = c.Regs[inst.rs]
	case 0x12: // mflo
		c.Regs[inst.rd] = c.LO
	case 0x13: // mtlo
		c.LO = c.Regs[inst.rs]
	case 0x18: // mult
		product := int64(int32(c.Regs[inst.rs])) * int64(int32(c.Regs[inst.rt]))
		c.HI, c.LO = uint32(uint64(product)>>32), uint32(product)
	case 0x19: // multu
		product := uint64(c.Regs[inst.rs]) * uint64(c.Regs[inst.rt])
		c.HI, c.LO = uint32(product>>32), uint32(product)
	case 0x1A: // div
		if c.Regs[inst.rt] != 0 {
			c.LO = uint32(int32(c.Regs[inst.rs]) / int32(c.Regs[inst.rt]))
			c.HI = uint32(int32(c.Regs[inst.rs]) % int32(c.Regs[inst.rt]))
		}
		// rt == 0: result is architecturally undefined; HI/LO left unchanged.
	case 0x1B: // divu
		if c.Regs[inst.rt] != 0 {
			c.LO = c.Regs[inst.rs] / c.Regs[inst.rt]
			c.HI = c.Regs[inst.rs] % c.Regs[inst.rt]
		}
	case 0x21: // addu
		c.Regs[inst.rd] = c.Regs[inst.rs] + c.Regs[inst.rt]
	case 0x23: // subu
		c.Regs[inst.rd] = c.Regs[inst.rs] - c.Regs[inst.rt]
	case 0x24: // and
		c.Regs[inst.rd] = c.Regs[inst.rs] & c.Regs[inst.rt]
	case 0x25: // or
		c.Regs[inst.rd] = c.Regs[inst.rs] | c.Regs[inst.rt]
	case 0x26: // xor
		c.Regs[inst.rd] = c.Regs[inst.rs] ^ c.Regs[inst.rt]
	case 0x27: // nor
		c.Regs[inst.rd] = ^(c.Regs[inst.rs] | c.Regs[inst.rt])
	case 0x2A: // slt
		c.Regs[inst.rd] = boolToWord(int32(c.Regs[inst.rs]) < int32(c.Regs[inst.rt]))
	case 0x2B: // sltu
		c.Regs[inst.rd] = boolToWord(c.Regs[inst.rs] < c.Regs[inst.rt])
	default:
		logger.Printf("unimplemented SPECIAL funct %#02x at pc=%#010x", inst.funct, c.PC-4)
		return fmt.Errorf("cpu: unimplemented SPECIAL funct %#02x", inst.funct)
	}
	return nil
}

// boolToWord converts a comparison result to the MIPS 1/0 register
// encoding used by slt/sltu/slti/sltiu.
func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
