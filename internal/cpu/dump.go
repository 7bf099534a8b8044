package cpu

import "fmt"

// abiNames gives the canonical ABI name for each of the 32 general-purpose
// registers, in register-number order.
var abiNames = [32]string{
	"zero", "at", "v0", "v1", "a0", "a1", "a2", "a3",
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7",
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
	"t8", "t9", "k0", "k1", "gp", "sp", "fp", "ra",
}

// DumpRegisters renders the register file as eight lines of four registers
// each, r0..r31 in order, each value printed as 0x followed by 16 hex
// digits, ABI names in parentheses, columns separated by single spaces.
func (c *CPU) DumpRegisters() string {
	out := ""
	for row := 0; row < 8; row++ {
		for col := 0; col < 4; col++ {
			i := row*4 + col
			if col > 0 {
				out += " "
			}
			out += fmt.Sprintf("r%d(%s)=0x%016x", i, abiNames[i], c.Regs[i])
		}
		out += "\n"
	}
	return out
}
