package cpu

import "fmt"

// execImmediate dispatches every opcode outside SPECIAL/REGIMM/SPECIAL2:
// the jump/branch-immediate family, the ALU-immediate family, and the
// byte/word load and store instructions.
func (c *CPU) execImmediate(inst instruction) error {
	switch inst.opcode {
	case 0x02: // j
		c.schedule((c.PC & 0xF000_0000) | (inst.target26 << 2))
	case 0x03: // jal
		c.Regs[31] = c.PC + 4
		c.schedule((c.PC & 0xF000_0000) | (inst.target26 << 2))
	case 0x04: // beq
		if c.Regs[inst.rs] == c.Regs[inst.rt] {
			c.schedule(c.PC + (signExtend16(inst.imm16) << 2))
		}
	case 0x05: // bne
		if c.Regs[inst.rs] != c.Regs[inst.rt] {
			c.schedule(c.PC + (signExtend16(inst.imm16) << 2))
		}
	case 0x06: // blez
		if int32(c.Regs[inst.rs]) <= 0 {
			c.schedule(c.PC + (signExtend16(inst.imm16) << 2))
		}
	case 0x07: // bgtz
		if int32(c.Regs[inst.rs]) > 0 {
			c.schedule(c.PC + (signExtend16(inst.imm16) << 2))
		}
	case 0x09: // addiu
		c.Regs[inst.rt] = c.Regs[inst.rs] + signExtend16(inst.imm16)
	case 0x0A: // slti
		c.Regs[inst.rt] = boolToWord(int32(c.Regs[inst.rs]) < int32(signExtend16(inst.imm16)))
	case 0x0B: // sltiu
		c.Regs[inst.rt] = boolToWord(c.Regs[inst.rs] < zeroExtend16(inst.imm16))
	case 0x0C: // andi
		c.Regs[inst.rt] = c.Regs[inst.rs] & zeroExtend16(inst.imm16)
	case 0x0D: // ori
		c.Regs[inst.rt] = c.Regs[inst.rs] | zeroExtend16(inst.imm16)
	case 0x0E: // xori
		c.Regs[inst.rt] = c.Regs[inst.rs] ^ zeroExtend16(inst.imm16)
	case 0x0F: // lui
		c.Regs[inst.rt] = zeroExtend16(inst.imm16) << 16
	case 0x20: // lb — sign-extended, a deliberate divergence from the
		// reference material, which loads without extension.
		addr := c.Regs[inst.rs] + signExtend16(inst.imm16)
		v, err := c.load(addr, 8)
		if err != nil {
			return fmt.Errorf("lb at %#010x: %w", addr, err)
		}
		c.Regs[inst.rt] = uint32(int32(int8(v)))
	case 0x23: // lw
		addr := c.Regs[inst.rs] + signExtend16(inst.imm16)
		v, err := c.load(addr, 32)
		if err != nil {
			return fmt.Errorf("lw at %#010x: %w", addr, err)
		}
		c.Regs[inst.rt] = v
	case 0x28: // sb
		addr := c.Regs[inst.rs] + signExtend16(inst.imm16)
		if err := c.store(addr, 8, c.Regs[inst.rt]&0xFF); err != nil {
			return fmt.Errorf("sb at %#010x: %w", addr, err)
		}
	case 0x2B: // sw
		addr := c.Regs[inst.rs] + signExtend16(inst.imm16)
		if err := c.store(addr, 32, c.Regs[inst.rt]); err != nil {
			return fmt.Errorf("sw at %#010x: %w", addr, err)
		}
	default:
		logger.Printf("unimplemented opcode %#02x at pc=%#010x", inst.opcode, c.PC-4)
		return fmt.Errorf("cpu: unimplemented opcode %#02x", inst.opcode)
	}
	return nil
}
