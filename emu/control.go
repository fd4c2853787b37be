package emu

import (
	"sync"

	"github.com/s16arch/s16/state"
)

type command int

const (
	cmdNone command = iota
	cmdRun
	cmdStep
	cmdStop
)

const defaultSlice = 1024

// Controller drives a core on a dedicated goroutine. The host signals
// it with StartContinuous, StartSingleStep, and Stop; a single mutex
// and condition variable guard the command state, and the worker
// blocks on the condition variable while idle. Instruction execution
// is never interrupted mid-step: a stop request takes effect between
// instructions, before the next one runs.
//
// Observers may read the state vector while the worker runs; such
// reads may tear and are for display only. The status reported by
// Status and WaitIdle is the authoritative outcome of the last
// command.
type Controller struct {
	core *Core

	// Slice bounds how many instructions run between checks of the
	// command state during continuous execution.
	Slice int

	mu     sync.Mutex
	cond   *sync.Cond
	cmd    command
	busy   bool
	closed bool
	status state.Status
}

// NewController starts the worker goroutine. The core must already be
// booted; the controller is its only mutator from then on.
func NewController(core *Core) *Controller {
	ct := &Controller{core: core, Slice: defaultSlice}
	ct.cond = sync.NewCond(&ct.mu)
	ct.status = core.Vec.Status()
	go ct.serve()
	return ct
}

// StartContinuous runs instructions until the core stops on its own
// or the host calls Stop.
func (ct *Controller) StartContinuous() {
	ct.signal(cmdRun)
}

// StartSingleStep runs exactly one instruction.
func (ct *Controller) StartSingleStep() {
	ct.signal(cmdStep)
}

// Stop halts execution between instructions and returns the worker to
// idle. Stopping an idle controller is a no-op.
func (ct *Controller) Stop() {
	ct.mu.Lock()
	ct.cmd = cmdStop
	if ct.busy {
		ct.core.RequestPause()
	}
	ct.cond.Broadcast()
	ct.mu.Unlock()
}

// Close shuts down the worker goroutine. The controller must not be
// used afterwards.
func (ct *Controller) Close() {
	ct.mu.Lock()
	ct.closed = true
	if ct.busy {
		ct.core.RequestPause()
	}
	ct.cond.Broadcast()
	ct.mu.Unlock()
}

// Status reports the outcome of the most recent command.
func (ct *Controller) Status() state.Status {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	return ct.status
}

// WaitIdle blocks until the worker has no pending or running command,
// then reports the resulting status.
func (ct *Controller) WaitIdle() state.Status {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	for ct.busy || ct.cmd != cmdNone {
		ct.cond.Wait()
	}
	return ct.status
}

func (ct *Controller) signal(cmd command) {
	ct.mu.Lock()
	ct.cmd = cmd
	ct.cond.Broadcast()
	ct.mu.Unlock()
}

func (ct *Controller) serve() {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	for {
		for ct.cmd == cmdNone && !ct.closed {
			ct.cond.Wait()
		}
		if ct.closed {
			return
		}
		cmd := ct.cmd
		ct.cmd = cmdNone

		switch cmd {
		case cmdStop:
			// already idle
		case cmdStep:
			ct.busy = true
			ct.mu.Unlock()
			ct.core.Step()
			st := ct.core.Vec.Status()
			ct.mu.Lock()
			ct.busy = false
			if !stopped(st) {
				st = state.STATUS_PAUSED
				ct.core.Vec.SetStatus(st)
			}
			ct.status = st
		case cmdRun:
			ct.runContinuous()
		}
		ct.cond.Broadcast()
	}
}

// runContinuous executes bounded slices until the core stops or a
// stop command arrives. Called and returns with the mutex held.
func (ct *Controller) runContinuous() {
	ct.busy = true
	for {
		ct.mu.Unlock()
		st := ct.core.Run(ct.Slice)
		ct.mu.Lock()
		ct.status = st
		if ct.cmd == cmdStop || ct.closed {
			ct.cmd = cmdNone
			// discard a pause request that raced with the stop
			ct.core.Vec.WriteSCB(state.SCB_PAUSE_REQUEST, 0)
			break
		}
		if st != state.STATUS_PAUSED {
			break
		}
		if ct.cmd != cmdNone {
			break
		}
	}
	ct.busy = false
}

func stopped(st state.Status) bool {
	switch st {
	case state.STATUS_HALTED, state.STATUS_BREAK, state.STATUS_BLOCKED,
		state.STATUS_RELINQUISH:
		return true
	}
	return false
}
