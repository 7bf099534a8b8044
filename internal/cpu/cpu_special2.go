package cpu

import (
	"fmt"
	"math/bits"
)

// execSpecial2 dispatches opcode 0x1C (SPECIAL2) instructions: the
// multiply-accumulate pair (madd/maddu), the truncating mul, and the
// leading-zero/leading-one bit-count instructions.
func (c *CPU) execSpecial2(inst instruction) error {
	switch inst.funct {
	case 0x00: // madd
		product := int64(int32(c.Regs[inst.rs])) * int64(int32(c.Regs[inst.rt]))
		acc := int64(uint64(c.HI)<<32|uint64(c.LO)) + product
		c.HI, c.LO = uint32(uint64(acc)>>32), uint32(acc)
	case 0x01: // maddu
		product := uint64(c.Regs[inst.rs]) * uint64(c.Regs[inst.rt])
		acc := (uint64(c.HI)<<32 | uint64(c.LO)) + product
		c.HI, c.LO = uint32(acc>>32), uint32(acc)
	case 0x02: // mul
		c.Regs[inst.rd] = uint32(int32(c.Regs[inst.rs]) * int32(c.Regs[inst.rt]))
	case 0x20: // clz
		c.Regs[inst.rt] = uint32(bits.LeadingZeros32(c.Regs[inst.rs]))
	case 0x21: // clo
		c.Regs[inst.rt] = uint32(bits.LeadingZeros32(^c.Regs[inst.rs]))
	default:
		logger.Printf("unimplemented SPECIAL2 funct %#02x at pc=%#010x", inst.funct, c.PC-4)
		return fmt.Errorf("cpu: unimplemented SPECIAL2 funct %#02x", inst.funct)
	}
	return nil
}
