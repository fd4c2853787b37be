package emu

import (
	"strings"

	"github.com/s16arch/s16/arith"
	"github.com/s16arch/s16/obj"
	"github.com/s16arch/s16/state"
)

// Boot resets the core and loads an executable into memory. The
// object text must have all imports resolved.
func (c *Core) Boot(om *obj.ObjMd) error {
	if !om.IsExecutable() {
		return &ErrBoot{ModName: om.ModName, Err: ErrNotExecutable}
	}
	c.Reset()
	if err := c.loadObject(om); err != nil {
		return &ErrBoot{ModName: om.ModName, Err: err}
	}
	c.Meta = nil
	if om.MdText != "" {
		md := new(obj.Metadata)
		md.FromText(om.MdText)
		c.Meta = md
	}
	c.Vec.SetStatus(state.STATUS_READY)
	c.setReg(regPC, 0)
	c.Vec.WriteSCB(state.SCB_CUR_INSTR_ADDR, 0)
	c.Vec.WriteSCB(state.SCB_NEXT_INSTR_ADDR, 0)
	return nil
}

func (c *Core) loadObject(om *obj.ObjMd) error {
	var addr uint16
	for _, x := range om.ObjLines() {
		op, operands, ok := obj.ParseLine(x)
		if !ok {
			return ErrBadObjectLine
		}
		switch op {
		case "data":
			for _, valStr := range operands {
				val, err := arith.ParseHex4(strings.TrimSpace(valStr))
				if err != nil {
					return err
				}
				c.memStore(addr, val)
				addr++
			}
		case "org":
			if len(operands) != 1 {
				return ErrBadObjectLine
			}
			a, err := arith.ParseHex4(strings.TrimSpace(operands[0]))
			if err != nil {
				return err
			}
			addr = a
		default:
			// module, export, and relocate lines carry no code
		}
	}
	return nil
}

// Run executes instructions until the core stops or limit
// instructions have run; limit 0 means no limit. The host can stop a
// running core from another goroutine with RequestPause, and a
// breakpoint set through BreakEnabled stops the core just before the
// break address executes.
func (c *Core) Run(limit int) state.Status {
	var mode uint32
	if c.WorkerMode {
		mode = 1
	}
	c.Vec.WriteSCB(state.SCB_WORKER_RUN_MODE, mode)
	c.Vec.SetStatus(state.STATUS_RUNNING)
	icount := 0
	for {
		c.Step()
		icount++

		switch st := c.Vec.Status(); st {
		case state.STATUS_HALTED, state.STATUS_PAUSED, state.STATUS_BREAK,
			state.STATUS_BLOCKED, state.STATUS_RELINQUISH:
			c.logf("run finished after %d instructions, status %v", icount, st)
			return st
		}

		if c.BreakEnabled && c.reg(regPC) == c.BreakAddr {
			c.Vec.SetStatus(state.STATUS_BREAK)
			return state.STATUS_BREAK
		}
		if c.Vec.ReadSCB(state.SCB_PAUSE_REQUEST) != 0 {
			c.Vec.WriteSCB(state.SCB_PAUSE_REQUEST, 0)
			c.Vec.SetStatus(state.STATUS_PAUSED)
			return state.STATUS_PAUSED
		}
		if limit > 0 && icount >= limit {
			c.Vec.SetStatus(state.STATUS_PAUSED)
			return state.STATUS_PAUSED
		}
	}
}

// RequestPause asks a running core to stop after the current
// instruction. Safe to call from another goroutine: the request is a
// single aligned store into the control block.
func (c *Core) RequestPause() {
	c.Vec.WriteSCB(state.SCB_PAUSE_REQUEST, 1)
}

// Resume continues a paused or relinquished core.
func (c *Core) Resume(limit int) state.Status {
	return c.Run(limit)
}
