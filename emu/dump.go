package emu

import (
	"fmt"
	"io"

	"github.com/s16arch/s16/arch"
	"github.com/s16arch/s16/arith"
)

var ctlRegNames = [12]string{
	"status", "mask", "req", "istat",
	"ipc", "iir", "iadr", "vect",
	"psegBeg", "psegEnd", "dsegBeg", "dsegEnd",
}

// DumpRegisters writes the register file and the control registers.
func (c *Core) DumpRegisters(w io.Writer) {
	for r := uint16(0); r < 16; r++ {
		x := c.reg(r)
		fmt.Fprintf(w, "R%-2d    %s %6d\n", r, arith.Hex4(x), arith.ToInt(x))
	}
	fmt.Fprintf(w, "pc     %s\n", arith.Hex4(c.reg(regPC)))
	fmt.Fprintf(w, "ir     %s\n", arith.Hex4(c.reg(regIR)))
	fmt.Fprintf(w, "adr    %s\n", arith.Hex4(c.reg(regADR)))
	fmt.Fprintf(w, "dat    %s\n", arith.Hex4(c.reg(regDAT)))
	for i, name := range ctlRegNames {
		fmt.Fprintf(w, "%-6s %s\n", name, arith.Hex4(c.reg(ctlRegOffset+uint16(i))))
	}
	fmt.Fprintf(w, "cc     %s\n", arch.ShowCC(c.reg(15)))
}

// DumpMemory writes the words from start up to but excluding end.
func (c *Core) DumpMemory(w io.Writer, start, end int) {
	if end > arch.MEM_SIZE {
		end = arch.MEM_SIZE
	}
	for a := start; a < end; a += arch.WORDS_PER_LINE {
		fmt.Fprintf(w, "%s ", arith.Hex4(uint16(a)))
		for i := 0; i < arch.WORDS_PER_LINE && a+i < end; i++ {
			fmt.Fprintf(w, " %s", arith.Hex4(c.memFetch(uint16(a+i))))
		}
		fmt.Fprintln(w)
	}
}

// DumpNonzeroMemory writes only the lines that contain a nonzero
// word, useful after a run over the full address space.
func (c *Core) DumpNonzeroMemory(w io.Writer) {
	for a := 0; a < arch.MEM_SIZE; a += arch.WORDS_PER_LINE {
		nonzero := false
		for i := 0; i < arch.WORDS_PER_LINE; i++ {
			if c.memFetch(uint16(a+i)) != 0 {
				nonzero = true
				break
			}
		}
		if nonzero {
			c.DumpMemory(w, a, a+arch.WORDS_PER_LINE)
		}
	}
}
