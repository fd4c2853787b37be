package emu

import (
	"github.com/s16arch/s16/arch"
	"github.com/s16arch/s16/state"
)

// The interval timer counts down one minor count per instruction.
// When the minor count runs out the major count is decremented and
// the minor count reloaded from the resolution; when both run out
// the timer stops and requests a timer interrupt.

func (c *Core) timerInitialize(resolution uint32) {
	c.Vec.WriteSCB(state.SCB_TIMER_RUNNING, 0)
	c.Vec.WriteSCB(state.SCB_TIMER_MINOR_COUNT, 0)
	c.Vec.WriteSCB(state.SCB_TIMER_MAJOR_COUNT, 0)
	c.Vec.WriteSCB(state.SCB_TIMER_RESOLUTION, resolution)
}

func (c *Core) timerRunning() bool {
	return c.Vec.ReadSCB(state.SCB_TIMER_RUNNING) != 0
}

func (c *Core) timerStart(major uint16) {
	c.logf("timer start major=%d", major)
	c.Vec.WriteSCB(state.SCB_TIMER_RUNNING, 1)
	c.Vec.WriteSCB(state.SCB_TIMER_MAJOR_COUNT, uint32(major))
	c.Vec.WriteSCB(state.SCB_TIMER_MINOR_COUNT, 0)
	c.setStatusBit(arch.STATUS_TIMER_RUNNING, 1)
}

func (c *Core) timerStop() {
	c.Vec.WriteSCB(state.SCB_TIMER_RUNNING, 0)
	c.Vec.WriteSCB(state.SCB_TIMER_MAJOR_COUNT, 0)
	c.Vec.WriteSCB(state.SCB_TIMER_MINOR_COUNT, 0)
	c.setStatusBit(arch.STATUS_TIMER_RUNNING, 0)
}

func (c *Core) timerTick() {
	if !c.timerRunning() {
		return
	}
	x := c.Vec.ReadSCB(state.SCB_TIMER_MINOR_COUNT)
	if x > 0 {
		c.Vec.WriteSCB(state.SCB_TIMER_MINOR_COUNT, x-1)
		return
	}
	y := c.Vec.ReadSCB(state.SCB_TIMER_MAJOR_COUNT)
	if y > 0 {
		c.Vec.WriteSCB(state.SCB_TIMER_MAJOR_COUNT, y-1)
		c.Vec.WriteSCB(state.SCB_TIMER_MINOR_COUNT, c.Vec.ReadSCB(state.SCB_TIMER_RESOLUTION))
		return
	}
	c.logf("timer interrupt request")
	c.Vec.WriteSCB(state.SCB_TIMER_RUNNING, 0)
	c.raise(arch.INT_TIMER)
}
