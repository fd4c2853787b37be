package emu

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/s16arch/s16/arch"
	"github.com/s16arch/s16/asm"
	"github.com/s16arch/s16/linker"
	"github.com/s16arch/s16/obj"
	"github.com/s16arch/s16/state"
)

// build assembles and links one module into a booted core.
func build(t *testing.T, program []string) *Core {
	t.Helper()
	ma := asm.Assemble("test", strings.Join(program, "\n"))
	if ma.NErrors > 0 {
		t.Fatalf("assembly errors: %v", ma.ErrorListing())
	}
	ls := linker.Link("test", []*obj.ObjMd{ma.ObjMd})
	if len(ls.Errors) > 0 {
		t.Fatalf("link errors: %v", ls.Errors)
	}
	core := NewCore()
	if err := core.Boot(ls.ExeObjMd); err != nil {
		t.Fatal(err)
	}
	return core
}

func TestRunSimple(t *testing.T) {
	assert := assert.New(t)

	core := build(t, []string{
		"     lea   R1,5[R0]",
		"     lea   R2,10[R0]",
		"     add   R3,R1,R2",
		"     trap  R0,R0,R0",
	})
	status := core.Run(0)

	assert.Equal(state.STATUS_HALTED, status)
	assert.Equal(uint16(5), core.reg(1))
	assert.Equal(uint16(10), core.reg(2))
	assert.Equal(uint16(15), core.reg(3))
	assert.Equal(uint64(4), core.Vec.InstrCount())
}

func TestRunCountdownLoop(t *testing.T) {
	assert := assert.New(t)

	core := build(t, []string{
		"     lea   R1,3[R0]",
		"     lea   R2,1[R0]",
		"loop sub   R1,R1,R2",
		"     brnz  R1,loop",
		"     trap  R0,R0,R0",
	})
	status := core.Run(100)

	assert.Equal(state.STATUS_HALTED, status)
	assert.Equal(uint16(0), core.reg(1))
}

func TestLoadStore(t *testing.T) {
	assert := assert.New(t)

	core := build(t, []string{
		"     load  R1,x[R0]",
		"     load  R2,y[R0]",
		"     mul   R3,R1,R2",
		"     store R3,z[R0]",
		"     trap  R0,R0,R0",
		"x    data  6",
		"y    data  7",
		"z    data  0",
	})
	status := core.Run(0)

	assert.Equal(state.STATUS_HALTED, status)
	assert.Equal(uint16(42), core.reg(3))
	assert.Equal(uint16(42), core.memFetch(10))
}

func TestJumps(t *testing.T) {
	assert := assert.New(t)

	core := build(t, []string{
		"     lea   R1,1[R0]",
		"     lea   R2,2[R0]",
		"     cmp   R1,R2",
		"     jumplt less[R0]",
		"     lea   R3,$00bb[R0]",
		"     trap  R0,R0,R0",
		"less lea   R3,$00aa[R0]",
		"     trap  R0,R0,R0",
	})
	status := core.Run(0)

	assert.Equal(state.STATUS_HALTED, status)
	assert.Equal(uint16(0x00AA), core.reg(3))
}

func TestShifts(t *testing.T) {
	assert := assert.New(t)

	core := build(t, []string{
		"     lea   R1,1[R0]",
		"     shiftl R2,R1,4",
		"     shiftr R3,R2,2",
		"     trap  R0,R0,R0",
	})
	status := core.Run(0)

	assert.Equal(state.STATUS_HALTED, status)
	assert.Equal(uint16(16), core.reg(2))
	assert.Equal(uint16(4), core.reg(3))
}

func TestStackOps(t *testing.T) {
	assert := assert.New(t)

	core := build(t, []string{
		"     lea   R8,$00ff[R0]",
		"     lea   R9,$0102[R0]",
		"     lea   R10,$0100[R0]",
		"     lea   R1,7[R0]",
		"     push  R1,R8,R9",
		"     lea   R2,9[R0]",
		"     push  R2,R8,R9",
		"     pop   R3,R8,R10",
		"     trap  R0,R0,R0",
	})
	status := core.Run(0)

	assert.Equal(state.STATUS_HALTED, status)
	assert.Equal(uint16(9), core.reg(3))
	assert.Equal(uint16(0x0100), core.reg(8))
	assert.Equal(uint16(7), core.memFetch(0x0100))
}

func TestStackOverflow(t *testing.T) {
	assert := assert.New(t)

	core := build(t, []string{
		"     lea   R8,$0102[R0]",
		"     lea   R9,$0102[R0]",
		"     lea   R1,7[R0]",
		"     push  R1,R8,R9",
		"     trap  R0,R0,R0",
	})
	status := core.Run(0)

	assert.Equal(state.STATUS_HALTED, status)
	assert.Equal(uint16(1), arch.GetBit(core.reg(15), arch.BIT_CCS))
	assert.Equal(uint16(1), arch.GetBit(core.reg(regReq), arch.INT_STACK_OVERFLOW))
}

func TestDivideByZeroFault(t *testing.T) {
	assert := assert.New(t)

	core := build(t, []string{
		"     lea   R2,9[R0]",
		"     div   R1,R2,R0",
		"     trap  R0,R0,R0",
	})
	status := core.Run(0)

	// the fault is requested but not taken while interrupts are off
	assert.Equal(state.STATUS_HALTED, status)
	assert.Equal(uint16(0), core.reg(1))
	assert.Equal(uint16(1), arch.GetBit(core.reg(regReq), arch.INT_Z_DIV))
}

func TestUserTrapVector(t *testing.T) {
	assert := assert.New(t)

	core := build(t, []string{
		"     lea   R1,hv[R0]",
		"     putctl R1,vect",
		"     lea   R2,$00ff[R0]",
		"     trap  R2,R0,R0",
		"     add   R3,R2,R2",
		"hv   equ   $0020",
		"     org   $0026",
		"     trap  R0,R0,R0",
	})
	status := core.Run(100)

	assert.Equal(state.STATUS_HALTED, status)
	// the handler at vector slot 3 halted before the add ran
	assert.Equal(uint16(0), core.reg(3))
	// the shadow pc points past the trap instruction
	assert.Equal(uint16(7), core.reg(regIpc))
}

func TestResume(t *testing.T) {
	assert := assert.New(t)

	core := build(t, []string{
		"     lea   R1,hv[R0]",
		"     putctl R1,vect",
		"     lea   R4,2[R0]",
		"     putctl R4,status",
		"     lea   R2,$00ff[R0]",
		"     trap  R2,R0,R0",
		"     lea   R3,42[R0]",
		"     trap  R0,R0,R0",
		"hv   equ   $0020",
		"     org   $0026",
		"     resume",
	})
	status := core.Run(100)

	assert.Equal(state.STATUS_HALTED, status)
	// the handler resumed to the instruction after the trap
	assert.Equal(uint16(42), core.reg(3))
	assert.Equal(uint16(11), core.reg(regIpc))
	// resume restored the saved status word, interrupt enable included
	assert.Equal(uint16(1), arch.GetBit(core.reg(regStatus), arch.STATUS_INT_ENABLE))
}

func TestTimerInterrupt(t *testing.T) {
	assert := assert.New(t)

	core := build(t, []string{
		"     lea   R1,hv[R0]",
		"     putctl R1,vect",
		"     lea   R2,1[R0]",
		"     putctl R2,mask",
		"     lea   R3,2[R0]",
		"     putctl R3,status",
		"     timeron R2",
		"loop jump  loop[R0]",
		"hv   equ   $0040",
		"     org   $0040",
		"     trap  R0,R0,R0",
	})
	status := core.Run(1000)

	assert.Equal(state.STATUS_HALTED, status)
	// the interrupt disabled further interrupts and stopped the timer
	assert.Equal(uint16(0), arch.GetBit(core.reg(regStatus), arch.STATUS_INT_ENABLE))
	assert.False(core.timerRunning())
}

func TestGetctlPutctl(t *testing.T) {
	assert := assert.New(t)

	core := build(t, []string{
		"     lea   R1,$0123[R0]",
		"     putctl R1,vect",
		"     getctl R2,vect",
		"     trap  R0,R0,R0",
	})
	status := core.Run(0)

	assert.Equal(state.STATUS_HALTED, status)
	assert.Equal(uint16(0x0123), core.reg(2))
	assert.Equal(uint16(0x0123), core.reg(regVect))
}

func TestSaveRestore(t *testing.T) {
	assert := assert.New(t)

	core := build(t, []string{
		"     lea   R1,11[R0]",
		"     lea   R2,22[R0]",
		"     lea   R3,33[R0]",
		"     save  R1,R3,$0080[R0]",
		"     lea   R1,0[R0]",
		"     lea   R2,0[R0]",
		"     lea   R3,0[R0]",
		"     restore R1,R3,$0080[R0]",
		"     trap  R0,R0,R0",
	})
	status := core.Run(0)

	assert.Equal(state.STATUS_HALTED, status)
	assert.Equal(uint16(11), core.reg(1))
	assert.Equal(uint16(22), core.reg(2))
	assert.Equal(uint16(33), core.reg(3))
	assert.Equal(uint16(22), core.memFetch(0x0081))
}

func TestTrapWrite(t *testing.T) {
	assert := assert.New(t)

	core := build(t, []string{
		"     lea   R1,2[R0]",
		"     lea   R2,msg[R0]",
		"     lea   R3,3[R0]",
		"     trap  R1,R2,R3",
		"     trap  R0,R0,R0",
		"msg  data  72",
		"     data  105",
		"     data  33",
	})
	var out bytes.Buffer
	core.Output = &out
	status := core.Run(0)

	assert.Equal(state.STATUS_HALTED, status)
	assert.Equal("Hi!", out.String())
}

func TestTrapRead(t *testing.T) {
	assert := assert.New(t)

	core := build(t, []string{
		"     lea   R1,1[R0]",
		"     lea   R2,$0080[R0]",
		"     lea   R3,8[R0]",
		"     trap  R1,R2,R3",
		"     trap  R0,R0,R0",
	})
	core.Input = strings.NewReader("AB\n")
	status := core.Run(0)

	assert.Equal(state.STATUS_HALTED, status)
	assert.Equal(uint16('A'), core.memFetch(0x0080))
	assert.Equal(uint16('B'), core.memFetch(0x0081))
	assert.Equal(uint16(2), core.reg(3))
	assert.Equal(uint16(0x0082), core.reg(2))
}

func TestBreakpoint(t *testing.T) {
	assert := assert.New(t)

	core := build(t, []string{
		"     lea   R1,5[R0]",
		"     lea   R2,10[R0]",
		"     add   R3,R1,R2",
		"     trap  R0,R0,R0",
	})
	core.BreakEnabled = true
	core.BreakAddr = 4

	status := core.Run(0)
	assert.Equal(state.STATUS_BREAK, status)
	assert.Equal(uint16(0), core.reg(3))

	// resuming finishes the program
	status = core.Resume(0)
	assert.Equal(state.STATUS_HALTED, status)
	assert.Equal(uint16(15), core.reg(3))
}

func TestInstructionLimit(t *testing.T) {
	assert := assert.New(t)

	core := build(t, []string{
		"loop jump  loop[R0]",
	})
	status := core.Run(10)
	assert.Equal(state.STATUS_PAUSED, status)
	assert.Equal(uint64(10), core.Vec.InstrCount())
}

func TestBootRejectsImports(t *testing.T) {
	assert := assert.New(t)

	core := NewCore()
	om := &obj.ObjMd{
		ModName: "m",
		ObjText: "module   m\ndata     f101,0000\nimport   lib,x,0001,disp\n",
	}
	err := core.Boot(om)
	assert.ErrorIs(err, ErrNotExecutable)
}

func TestControllerSingleStep(t *testing.T) {
	assert := assert.New(t)

	core := build(t, []string{
		"     lea   R1,5[R0]",
		"     add   R2,R1,R1",
		"     trap  R0,R0,R0",
	})
	ct := NewController(core)
	defer ct.Close()

	ct.StartSingleStep()
	assert.Equal(state.STATUS_PAUSED, ct.WaitIdle())
	assert.Equal(uint16(5), core.reg(1))
	assert.Equal(uint16(0), core.reg(2))

	ct.StartSingleStep()
	assert.Equal(state.STATUS_PAUSED, ct.WaitIdle())
	assert.Equal(uint16(10), core.reg(2))

	ct.StartSingleStep()
	assert.Equal(state.STATUS_HALTED, ct.WaitIdle())
}

func TestControllerContinuous(t *testing.T) {
	assert := assert.New(t)

	core := build(t, []string{
		"     lea   R1,3[R0]",
		"     lea   R2,1[R0]",
		"loop sub   R1,R1,R2",
		"     brnz  R1,loop",
		"     trap  R0,R0,R0",
	})
	ct := NewController(core)
	defer ct.Close()

	ct.StartContinuous()
	assert.Equal(state.STATUS_HALTED, ct.WaitIdle())
	assert.Equal(uint16(0), core.reg(1))
}

func TestControllerStop(t *testing.T) {
	assert := assert.New(t)

	core := build(t, []string{
		"loop jump  loop[R0]",
	})
	ct := NewController(core)
	defer ct.Close()
	ct.Slice = 64

	ct.StartContinuous()
	for core.Vec.InstrCount() == 0 {
		time.Sleep(time.Millisecond)
	}
	ct.Stop()
	assert.Equal(state.STATUS_PAUSED, ct.WaitIdle())

	// a stopped core resumes where it left off
	ct.StartSingleStep()
	assert.Equal(state.STATUS_PAUSED, ct.WaitIdle())
}

func TestConsole(t *testing.T) {
	assert := assert.New(t)

	core := build(t, []string{
		"     lea   R1,1[R0]",
		"     lea   R2,$0080[R0]",
		"     lea   R3,8[R0]",
		"     trap  R1,R2,R3",
		"     lea   R1,2[R0]",
		"     lea   R2,$0080[R0]",
		"     trap  R1,R2,R3",
		"     trap  R0,R0,R0",
	})
	cn := NewConsole()
	cn.Submit("hi\n")
	core.Input = cn
	core.Output = cn

	status := core.Run(0)
	assert.Equal(state.STATUS_HALTED, status)
	// the echoed line comes back through the output side
	assert.Equal("hi", cn.Drain())
	assert.Equal("", cn.Drain())
}

func TestWorkerModeRelinquish(t *testing.T) {
	assert := assert.New(t)

	core := build(t, []string{
		"     lea   R1,2[R0]",
		"     trap  R1,R0,R0",
	})
	core.WorkerMode = true
	status := core.Run(0)

	assert.Equal(state.STATUS_RELINQUISH, status)
	assert.Equal(uint32(2), core.Vec.ReadSCB(state.SCB_WORKER_TRAP))
	// pc backed up so the host can rerun the trap
	assert.Equal(uint16(2), core.reg(regPC))
}
