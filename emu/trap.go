package emu

import (
	"bufio"
	"strings"

	"github.com/s16arch/s16/arch"
	"github.com/s16arch/s16/state"
)

// Trap codes recognized by the d field of a trap instruction. Codes
// of 255 and above are user traps, delivered through the interrupt
// vector so a system program can implement its own services.
const (
	TRAP_HALT          = 0
	TRAP_READ          = 1
	TRAP_WRITE         = 2
	TRAP_BLOCKING_READ = 3
	TRAP_BREAK         = 4
	TRAP_USER          = 255
)

func opTrap(c *Core) {
	if c.WorkerMode {
		// A worker core cannot perform I/O itself. Hand the trap to
		// the host and back up so the instruction reruns when the
		// host resumes the core.
		c.Vec.WriteSCB(state.SCB_WORKER_TRAP, uint32(c.reg(c.d)))
		c.Vec.SetStatus(state.STATUS_RELINQUISH)
		c.setReg(regPC, uint16(c.Vec.ReadSCB(state.SCB_CUR_INSTR_ADDR)))
		return
	}
	code := c.reg(c.d)
	c.logf("trap code=%d", code)
	switch {
	case code >= TRAP_USER:
		c.interrupt(arch.INT_USER_TRAP)
	case code == TRAP_HALT:
		c.Vec.SetStatus(state.STATUS_HALTED)
	case code == TRAP_READ:
		c.trapRead()
	case code == TRAP_WRITE:
		c.trapWrite()
	case code == TRAP_BLOCKING_READ:
		c.Vec.SetStatus(state.STATUS_BLOCKED)
	case code == TRAP_BREAK:
		c.Vec.SetStatus(state.STATUS_BREAK)
	default:
		c.logf("trap with unbound code %d", code)
	}
}

// trapRead reads one input line and stores its character codes at
// the buffer address in Ra, limited to the buffer size in Rb. Ra is
// left pointing past the last word stored and Rb holds the number of
// characters read.
func (c *Core) trapRead() {
	if c.Input == nil {
		c.setReg(c.b, 0)
		return
	}
	if c.in == nil {
		c.in = bufio.NewReader(c.Input)
	}
	line, err := c.in.ReadString('\n')
	line = strings.TrimRight(line, "\n")
	if err != nil && line == "" {
		c.setReg(c.b, 0)
		return
	}
	a := c.reg(c.a)
	size := c.reg(c.b)
	var n uint16
	for _, ch := range line {
		if n >= size {
			break
		}
		c.memStore(a+n, uint16(ch))
		n++
	}
	c.setReg(c.a, a+n)
	c.setReg(c.b, n)
}

// trapWrite writes the low bytes of Rb words starting at the buffer
// address in Ra to the output channel.
func (c *Core) trapWrite() {
	if c.Output == nil {
		return
	}
	a := c.reg(c.a)
	size := c.reg(c.b)
	buf := make([]byte, 0, size)
	for i := uint16(0); i < size; i++ {
		buf = append(buf, byte(c.memFetch(a+i)))
	}
	c.Output.Write(buf)
}
