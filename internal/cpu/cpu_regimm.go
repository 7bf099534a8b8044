package cpu

import "fmt"

// execRegimm dispatches opcode 0x01 (REGIMM) instructions by the rt field:
// bltz, bgez, bltzal, bgezal. The "…al" forms write ra = pc + 4 only when
// the branch is taken.
func (c *CPU) execRegimm(inst instruction) error {
	offset := signExtend16(inst.imm16) << 2
	target := c.PC + offset
	rs := int32(c.Regs[inst.rs])

	switch inst.rt {
	case 0x00: // bltz
		if rs < 0 {
			c.schedule(target)
		}
	case 0x01: // bgez
		if rs >= 0 {
			c.schedule(target)
		}
	case 0x10: // bltzal
		if rs < 0 {
			c.Regs[31] = c.PC + 4
			c.schedule(target)
		}
	case 0x11: // bgezal
		if rs >= 0 {
			c.Regs[31] = c.PC + 4
			c.schedule(target)
		}
	default:
		logger.Printf("unimplemented REGIMM rt %#02x at pc=%#010x", inst.rt, c.PC-4)
		return fmt.Errorf("cpu: unimplemented REGIMM rt %#02x", inst.rt)
	}
	return nil
}
