package emu

import (
	"bufio"
	"io"
	"log"

	"github.com/s16arch/s16/arch"
	"github.com/s16arch/s16/obj"
	"github.com/s16arch/s16/state"
)

// Register slot assignments within the state vector. The register
// file occupies slots 0 through 15; the transient interface
// registers and the control registers follow. Control register n, as
// numbered by getctl and putctl operands, lives at slot
// ctlRegOffset+n.
const (
	regPC  = uint16(16)
	regIR  = uint16(17)
	regADR = uint16(18)
	regDAT = uint16(19)

	ctlRegOffset = uint16(20)

	regStatus  = ctlRegOffset + 0
	regMask    = ctlRegOffset + 1
	regReq     = ctlRegOffset + 2
	regIstat   = ctlRegOffset + 3
	regIpc     = ctlRegOffset + 4
	regIir     = ctlRegOffset + 5
	regIadr    = ctlRegOffset + 6
	regVect    = ctlRegOffset + 7
	regPsegBeg = ctlRegOffset + 8
	regPsegEnd = ctlRegOffset + 9
	regDsegBeg = ctlRegOffset + 10
	regDsegEnd = ctlRegOffset + 11

	nRegisters = 32
)

const defaultTimerResolution = 0

// Core is one processor: a state vector plus the decoded fields of
// the instruction being executed and the console channels.
type Core struct {
	Verbose bool
	Vec     *state.Vector

	// Console channels for the read and write traps.
	Input  io.Reader
	Output io.Writer

	// WorkerMode makes every trap relinquish control to the host
	// instead of being handled inline.
	WorkerMode bool

	BreakEnabled bool
	BreakAddr    uint16

	// Meta maps addresses back to source listing lines for tracing.
	Meta *obj.Metadata

	in *bufio.Reader

	// Decoded fields of the current instruction.
	op, d, a, b uint16
	disp, ea    uint16
	e, f, g, h  uint16
	gh          uint16
}

func NewCore() *Core {
	return &Core{Vec: state.NewVector()}
}

func (c *Core) logf(format string, args ...any) {
	if c.Verbose {
		log.Printf("emu: "+format, args...)
	}
}

func (c *Core) reg(r uint16) uint16 {
	return c.Vec.ReadReg(r)
}

func (c *Core) setReg(r, x uint16) {
	c.Vec.WriteReg(r, x)
}

func (c *Core) memFetch(a uint16) uint16 {
	return c.Vec.ReadMem(a)
}

func (c *Core) memStore(a, x uint16) {
	c.Vec.WriteMem(a, x)
}

func (c *Core) statusBit(i uint16) uint16 {
	return arch.GetBit(c.reg(regStatus), i)
}

func (c *Core) setStatusBit(i, x uint16) {
	c.setReg(regStatus, arch.PutBit(c.reg(regStatus), i, x))
}

// raise sets interrupt request bit i.
func (c *Core) raise(i uint16) {
	c.setReg(regReq, arch.PutBit(c.reg(regReq), i, 1))
}

// Reset clears the whole machine: control block, registers, memory,
// and timer.
func (c *Core) Reset() {
	c.Vec.ResetSCB()
	for r := uint16(0); r < nRegisters; r++ {
		c.setReg(r, 0)
	}
	for a := 0; a < arch.MEM_SIZE; a++ {
		c.memStore(uint16(a), 0)
	}
	c.timerInitialize(defaultTimerResolution)
}
