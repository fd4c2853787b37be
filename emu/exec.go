package emu

import (
	"github.com/s16arch/s16/arch"
	"github.com/s16arch/s16/arith"
	"github.com/s16arch/s16/state"
)

// Step runs one fetch-decode-execute cycle. A pending enabled
// interrupt preempts the fetch.
func (c *Core) Step() {
	addr := c.reg(regPC)
	c.Vec.WriteSCB(state.SCB_CUR_INSTR_ADDR, uint32(addr))

	mr := c.reg(regMask) & c.reg(regReq)
	if c.statusBit(arch.STATUS_INT_ENABLE) == 1 && mr != 0 {
		var i uint16
		for i < 16 && arch.GetBit(mr, i) == 0 {
			i++
		}
		c.logf("interrupt %d", i)
		c.interrupt(i)
		return
	}

	code := c.memFetch(addr)
	c.setReg(regIR, code)
	next := arith.BinAdd(addr, 1)
	c.setReg(regPC, next)
	c.Vec.WriteSCB(state.SCB_NEXT_INSTR_ADDR, uint32(next))

	c.b = code & 0x000F
	c.a = (code >> 4) & 0x000F
	c.d = (code >> 8) & 0x000F
	c.op = (code >> 12) & 0x000F
	c.logf("step addr=%s code=%s op=%d", arith.Hex4(addr), arith.Hex4(code), c.op)
	if c.Verbose && c.Meta != nil {
		if src := c.Meta.SrcPlain(addr); src != "" {
			c.logf("source %s", src)
		}
	}

	primaryOps[c.op](c)
	c.Vec.IncrInstrCount()
	c.timerTick()
}

// interrupt transfers control to the handler for interrupt i,
// saving the interrupted context in the shadow registers.
func (c *Core) interrupt(i uint16) {
	c.setReg(regIpc, c.reg(regPC))
	c.setReg(regIstat, c.reg(regStatus))
	c.setReg(regIir, c.reg(regIR))
	c.setReg(regIadr, c.reg(regADR))
	c.setReg(regReq, arch.PutBit(c.reg(regReq), i, 0))
	c.setReg(regPC, arith.BinAdd(c.reg(regVect), 2*i))
	st := c.reg(regStatus)
	st = arch.PutBit(st, arch.STATUS_INT_ENABLE, 0)
	st = arch.PutBit(st, arch.STATUS_USER_STATE, 0)
	c.setReg(regStatus, st)
	c.timerStop()
}

var primaryOps = [16]func(*Core){
	opAdd, opSub, opMul, opDiv,
	opCmp, opAddc, opMuln, opDivn,
	opNop, opNop, opNop, opNop,
	opTrap, opNop, opExp, opRx,
}

func opNop(c *Core) {}

// rrr runs an instruction of the dominant RRR pattern: the operands
// come from Ra and Rb, the primary result goes to Rd, and the
// condition code goes to R15 unless Rd is R15 itself.
func rrr(c *Core, fn func(cc, a, b uint16) (uint16, uint16)) {
	primary, secondary := fn(c.reg(15), c.reg(c.a), c.reg(c.b))
	c.setReg(c.d, primary)
	if c.d < 15 {
		c.setReg(15, secondary)
	}
}

func opAdd(c *Core)  { rrr(c, arith.Add) }
func opSub(c *Core)  { rrr(c, arith.Sub) }
func opMul(c *Core)  { rrr(c, arith.Mul) }
func opAddc(c *Core) { rrr(c, arith.Addc) }
func opMuln(c *Core) { rrr(c, arith.Muln) }

func opCmp(c *Core) {
	c.setReg(15, arith.Cmp(c.reg(15), c.reg(c.a), c.reg(c.b)))
}

func opDiv(c *Core) {
	primary, secondary, ok := arith.Div(c.reg(15), c.reg(c.a), c.reg(c.b))
	if !ok {
		c.raise(arch.INT_Z_DIV)
		return
	}
	c.setReg(c.d, primary)
	if c.d < 15 {
		c.setReg(15, secondary)
	}
}

func opDivn(c *Core) {
	primary, secondary, tertiary, ok := arith.Divn(c.reg(15), c.reg(c.a), c.reg(c.b))
	if !ok {
		c.raise(arch.INT_Z_DIV)
		return
	}
	c.setReg(c.d, primary)
	if c.d < 15 {
		c.setReg(15, secondary)
	}
	c.setReg(c.a, tertiary)
}

// opRx fetches the displacement word, forms the effective address,
// and dispatches on the secondary opcode in the b field.
func opRx(c *Core) {
	c.fetchSecondWord()
	c.ea = arith.BinAdd(c.reg(c.a), c.disp)
	c.setReg(regADR, c.ea)
	c.logf("rx ea=%s", arith.Hex4(c.ea))
	rxOps[c.b](c)
}

// fetchSecondWord reads the second word of a two word instruction
// and advances past it.
func (c *Core) fetchSecondWord() {
	pc := c.reg(regPC)
	c.disp = c.memFetch(pc)
	next := arith.BinAdd(pc, 1)
	c.setReg(regPC, next)
	c.Vec.WriteSCB(state.SCB_NEXT_INSTR_ADDR, uint32(next))
}

var rxOps = [16]func(*Core){
	rxLea, rxLoad, rxStore, rxJump,
	rxJumpc0, rxJumpc1, rxJal, rxJumpz,
	rxJumpnz, rxTestset, opNop, opNop,
	opNop, opNop, opNop, opNop,
}

func rxLea(c *Core)   { c.setReg(c.d, c.ea) }
func rxLoad(c *Core)  { c.setReg(c.d, c.memFetch(c.ea)) }
func rxStore(c *Core) { c.memStore(c.ea, c.reg(c.d)) }
func rxJump(c *Core)  { c.setReg(regPC, c.ea) }

func rxJumpc0(c *Core) {
	if arch.GetBit(c.reg(15), c.d) == 0 {
		c.setReg(regPC, c.ea)
	}
}

func rxJumpc1(c *Core) {
	if arch.GetBit(c.reg(15), c.d) == 1 {
		c.setReg(regPC, c.ea)
	}
}

func rxJal(c *Core) {
	c.setReg(c.d, c.reg(regPC))
	c.setReg(regPC, c.ea)
}

func rxJumpz(c *Core) {
	if c.reg(c.d) == 0 {
		c.setReg(regPC, c.ea)
	}
}

func rxJumpnz(c *Core) {
	if c.reg(c.d) != 0 {
		c.setReg(regPC, c.ea)
	}
}

func rxTestset(c *Core) {
	c.setReg(c.d, c.memFetch(c.ea))
	c.memStore(c.ea, 1)
}

// opExp fetches the second word, splits it into the e f g h fields,
// and dispatches on the secondary opcode formed from the a and b
// fields.
func opExp(c *Core) {
	c.fetchSecondWord()
	c.setReg(regADR, c.disp)
	c.gh = c.disp & 0x00FF
	c.h = c.disp & 0x000F
	c.g = (c.disp >> 4) & 0x000F
	c.f = (c.disp >> 8) & 0x000F
	c.e = (c.disp >> 12) & 0x000F
	code := 16*c.a + c.b
	if int(code) >= len(expOps) {
		c.logf("exp bad secondary opcode %s", arith.Hex4(code))
		return
	}
	expOps[code](c)
}

var expOps = []func(*Core){
	expLogicf, expLogicb, expLogicu, expShiftl,
	expShiftr, expExtract, expExtracti, expPush,
	expPop, expTop, expSave, expRestore,
	expBrc0, expBrc1, expBrz, expBrnz,
	expDispatch, expGetctl, expPutctl, expResume,
	expTimeron, expTimeroff, expAdd32,
}

func expLogicf(c *Core) {
	c.setReg(c.d, arith.LogicField(c.h, c.reg(c.d), c.reg(c.e), c.f, c.g))
}

func expLogicb(c *Core) {
	w1 := c.reg(c.d)
	x := arch.GetBit(w1, c.f)
	y := arch.GetBit(c.reg(c.e), c.g)
	c.setReg(c.d, arch.PutBit(w1, c.f, arith.LogicBit(c.h, x, y)))
}

func expLogicu(c *Core) {
	w1 := c.reg(c.d)
	x := arch.GetBit(w1, c.e)
	y := arch.GetBit(c.reg(c.f), c.g)
	c.setReg(c.d, arch.PutBit(w1, c.e, arith.LogicBit(c.h, x, y)))
}

func expShiftl(c *Core) {
	c.setReg(c.d, arith.ShiftL(c.reg(c.e), c.gh))
}

func expShiftr(c *Core) {
	c.setReg(c.d, arith.ShiftR(c.reg(c.e), c.gh))
}

func expExtract(c *Core) {
	c.setReg(c.d, arith.Extract(16, 0xFFFF, c.reg(c.d), c.reg(c.e), c.f, c.g, c.h))
}

func expExtracti(c *Core) {
	c.setReg(c.d, arith.Extracti(16, 0xFFFF, c.reg(c.d), c.reg(c.e), c.f, c.g, c.h))
}

func expPush(c *Core) {
	x := c.reg(c.d)
	top := c.reg(c.e)
	limit := c.reg(c.f)
	if top < limit {
		top++
		c.setReg(c.e, top)
		c.memStore(top, x)
	} else {
		c.setReg(15, arch.CCS)
		c.raise(arch.INT_STACK_OVERFLOW)
	}
}

func expPop(c *Core) {
	top := c.reg(c.e)
	base := c.reg(c.f)
	if top >= base {
		c.setReg(c.d, c.memFetch(top))
		c.setReg(c.e, top-1)
	} else {
		c.setReg(15, arch.CCs)
		c.raise(arch.INT_STACK_UNDERFLOW)
	}
}

func expTop(c *Core) {
	top := c.reg(c.e)
	base := c.reg(c.f)
	if top >= base {
		c.setReg(c.d, c.memFetch(top))
	} else {
		c.setReg(15, arch.CCs)
		c.raise(arch.INT_STACK_UNDERFLOW)
	}
}

// srLoop applies fn to successive addresses and register numbers,
// from first through last with wraparound after register 15.
func srLoop(fn func(a, r uint16), addr, first, last uint16) {
	r := first
	for {
		fn(addr, r)
		if r == last {
			return
		}
		addr++
		if r >= 15 {
			r = 0
		} else {
			r++
		}
	}
}

func expSave(c *Core) {
	ea := arith.BinAdd(c.reg(c.f), c.gh)
	srLoop(func(a, r uint16) { c.memStore(a, c.reg(r)) }, ea, c.d, c.e)
}

func expRestore(c *Core) {
	ea := arith.BinAdd(c.reg(c.f), c.gh)
	srLoop(func(a, r uint16) { c.setReg(r, c.memFetch(a)) }, ea, c.d, c.e)
}

// signExt12 interprets a 12 bit field as a two's complement offset.
func signExt12(x uint16) uint16 {
	x &= 0x0FFF
	if x&0x0800 != 0 {
		x |= 0xF000
	}
	return x
}

func expBrc0(c *Core) {
	if arch.GetBit(c.reg(c.d), c.e) == 0 {
		c.setReg(regPC, arith.BinAdd(c.reg(regPC), signExt12(c.disp)))
	}
}

func expBrc1(c *Core) {
	if arch.GetBit(c.reg(c.d), c.e) == 1 {
		c.setReg(regPC, arith.BinAdd(c.reg(regPC), signExt12(c.disp)))
	}
}

func expBrz(c *Core) {
	if c.reg(c.d) == 0 {
		c.setReg(regPC, arith.BinAdd(c.reg(regPC), c.disp))
	}
}

func expBrnz(c *Core) {
	if c.reg(c.d) != 0 {
		c.setReg(regPC, arith.BinAdd(c.reg(regPC), c.disp))
	}
}

// expDispatch implements a bounded jump table: the code in Rd,
// limited to the table size in the second word, indexes a table of
// destination addresses at the current pc.
func expDispatch(c *Core) {
	code := c.reg(c.d)
	limit := c.disp
	offset := min(code, limit)
	dest := c.memFetch(arith.BinAdd(c.reg(regPC), offset))
	c.setReg(regPC, dest)
}

func expGetctl(c *Core) {
	c.setReg(c.e, c.reg(ctlRegOffset+c.f))
}

func expPutctl(c *Core) {
	c.setReg(ctlRegOffset+c.f, c.reg(c.e))
}

func expResume(c *Core) {
	c.setReg(regStatus, c.reg(regIstat))
	c.setReg(regPC, c.reg(regIpc))
	c.setReg(regIR, c.reg(regIir))
	c.setReg(regADR, c.reg(regIadr))
}

func expTimeron(c *Core) {
	c.timerStart(c.reg(c.d))
}

func expTimeroff(c *Core) {
	c.timerStop()
}

func expAdd32(c *Core) {
	c.Vec.WriteReg32(c.d, c.Vec.ReadReg32(c.e)+c.Vec.ReadReg32(c.f))
}
