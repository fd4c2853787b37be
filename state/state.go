// Package state defines the emulator state vector: a single flat
// byte buffer holding the system control block, the register file,
// and memory, with little-endian views at word sizes 16, 32, and 64
// bits. Keeping the whole machine state in one buffer lets a host
// observe a running core without copying; such observer reads are
// not synchronized and may tear.
package state

import (
	"encoding/binary"
)

// Section sizes in 64-bit words, so every section starts aligned
// regardless of its element size.
const (
	SCB_SIZE = 512 / 2   // emulator control variables
	BP_SIZE  = 512 / 2   // breakpoint scratch, reserved
	REG_SIZE = 32 / 2    // 16 general and 16 system registers
	MEM_SIZE = 65536 / 4 // memory, 16 bits per location
)

const VEC_SIZE_BYTES = 8 * (SCB_SIZE + BP_SIZE + REG_SIZE + MEM_SIZE*4)

// Section offsets, in elements of each view width.
const (
	SCB_OFFSET64 = 0
	BP_OFFSET64  = SCB_OFFSET64 + SCB_SIZE
	REG_OFFSET64 = BP_OFFSET64 + BP_SIZE
	MEM_OFFSET64 = REG_OFFSET64 + REG_SIZE

	SCB_OFFSET32 = 2 * SCB_OFFSET64
	BP_OFFSET32  = 2 * BP_OFFSET64
	REG_OFFSET32 = 2 * REG_OFFSET64
	MEM_OFFSET32 = 2 * MEM_OFFSET64

	SCB_OFFSET16 = 2 * SCB_OFFSET32
	BP_OFFSET16  = 2 * BP_OFFSET32
	REG_OFFSET16 = 2 * REG_OFFSET32
	MEM_OFFSET16 = 2 * MEM_OFFSET32
)

// Indices of 32-bit system control block elements. The executed
// instruction count occupies the 64-bit cell at the start of the
// block, so 32-bit indices below 8 stay reserved.
const (
	SCB_STATUS            = 8  // Status of the core
	SCB_CUR_INSTR_ADDR    = 9  // address of current instruction
	SCB_NEXT_INSTR_ADDR   = 10 // address of next instruction
	SCB_WORKER_RUN_MODE   = 11 // nonzero when stepped by a worker
	SCB_WORKER_TRAP       = 12 // trap code awaiting the host
	SCB_PAUSE_REQUEST     = 13 // pause requested by the host
	SCB_TIMER_RUNNING     = 14 // timer is on
	SCB_TIMER_MINOR_COUNT = 15 // counts down each instruction
	SCB_TIMER_MAJOR_COUNT = 16 // counts down each minor cycle
	SCB_TIMER_RESOLUTION  = 17 // instructions per minor cycle
)

// Status describes the condition of the processor.
type Status uint32

const (
	STATUS_RESET      = Status(0) // after initialization or reset
	STATUS_READY      = Status(1) // after boot
	STATUS_RUNNING    = Status(2) // executing instructions
	STATUS_PAUSED     = Status(3) // after a pause command
	STATUS_BREAK      = Status(4) // breakpoint hit
	STATUS_HALTED     = Status(5) // after trap 0
	STATUS_BLOCKED    = Status(6) // during a blocking read
	STATUS_RELINQUISH = Status(7) // worker relinquished control
)

func (s Status) String() string {
	switch s {
	case STATUS_RESET:
		return "Reset"
	case STATUS_READY:
		return "Ready"
	case STATUS_RUNNING:
		return "Running"
	case STATUS_PAUSED:
		return "Paused"
	case STATUS_BREAK:
		return "Break"
	case STATUS_HALTED:
		return "Halted"
	case STATUS_BLOCKED:
		return "Blocked"
	case STATUS_RELINQUISH:
		return "Relinquish"
	default:
		return ""
	}
}

// Vector is the state vector.
type Vector struct {
	data []byte
}

func NewVector() *Vector {
	return &Vector{data: make([]byte, VEC_SIZE_BYTES)}
}

func (v *Vector) Read16(i int) uint16 {
	return binary.LittleEndian.Uint16(v.data[2*i:])
}

func (v *Vector) Write16(i int, x uint16) {
	binary.LittleEndian.PutUint16(v.data[2*i:], x)
}

func (v *Vector) Read32(i int) uint32 {
	return binary.LittleEndian.Uint32(v.data[4*i:])
}

func (v *Vector) Write32(i int, x uint32) {
	binary.LittleEndian.PutUint32(v.data[4*i:], x)
}

func (v *Vector) Read64(i int) uint64 {
	return binary.LittleEndian.Uint64(v.data[8*i:])
}

func (v *Vector) Write64(i int, x uint64) {
	binary.LittleEndian.PutUint64(v.data[8*i:], x)
}

// ReadSCB reads a 32-bit system control block element.
func (v *Vector) ReadSCB(elt int) uint32 {
	return v.Read32(SCB_OFFSET32 + elt)
}

func (v *Vector) WriteSCB(elt int, x uint32) {
	v.Write32(SCB_OFFSET32+elt, x)
}

func (v *Vector) Status() Status {
	return Status(v.ReadSCB(SCB_STATUS))
}

func (v *Vector) SetStatus(s Status) {
	v.WriteSCB(SCB_STATUS, uint32(s))
}

// ResetSCB clears the control block, putting the core into its
// initial state.
func (v *Vector) ResetSCB() {
	v.ClearInstrCount()
	v.SetStatus(STATUS_RESET)
	v.WriteSCB(SCB_CUR_INSTR_ADDR, 0)
	v.WriteSCB(SCB_NEXT_INSTR_ADDR, 0)
	v.WriteSCB(SCB_WORKER_RUN_MODE, 0)
	v.WriteSCB(SCB_WORKER_TRAP, 0)
	v.WriteSCB(SCB_PAUSE_REQUEST, 0)
}

// The instruction count lives in the 64-bit cell at index 0 so it
// never wraps over a long run.
func (v *Vector) InstrCount() uint64 {
	return v.Read64(SCB_OFFSET64 + 0)
}

func (v *Vector) ClearInstrCount() {
	v.Write64(SCB_OFFSET64+0, 0)
}

func (v *Vector) IncrInstrCount() {
	v.Write64(SCB_OFFSET64+0, v.InstrCount()+1)
}

// Register slots are 32 bits wide so the same layout serves a 32-bit
// variant of the architecture; the 16-bit value of register r lives
// in the low half of slot r. Register 0 reads as zero and discards
// writes.

func (v *Vector) ReadReg(r uint16) uint16 {
	if r == 0 {
		return 0
	}
	return v.Read16(REG_OFFSET16 + 2*int(r))
}

func (v *Vector) WriteReg(r uint16, x uint16) {
	if r != 0 {
		v.Write16(REG_OFFSET16+2*int(r), x)
	}
}

func (v *Vector) ReadReg32(r uint16) uint32 {
	if r == 0 {
		return 0
	}
	return v.Read32(REG_OFFSET32 + int(r))
}

func (v *Vector) WriteReg32(r uint16, x uint32) {
	if r != 0 {
		v.Write32(REG_OFFSET32+int(r), x)
	}
}

func (v *Vector) ReadMem(a uint16) uint16 {
	return v.Read16(MEM_OFFSET16 + int(a))
}

func (v *Vector) WriteMem(a uint16, x uint16) {
	v.Write16(MEM_OFFSET16+int(a), x)
}
