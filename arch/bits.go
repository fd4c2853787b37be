package arch

import "strings"

// Bits are indexed little-endian: bit 0 is the least significant.

// GetBit returns bit i of w.
func GetBit(w uint16, i uint16) uint16 {
	return (w >> i) & 1
}

// PutBit returns w with bit i set to b (0 or 1).
func PutBit(w uint16, i uint16, b uint16) uint16 {
	if b == 0 {
		return w &^ (1 << i)
	}
	return w | (1 << i)
}

// TestBit reports whether bit i of w is set.
func TestBit(w uint16, i uint16) bool {
	return (w>>i)&1 == 1
}

// Condition code bit assignments. The condition code lives in R15,
// except that R15 holds an additional result for muln and divn.
const (
	BIT_CCg = uint16(0)  // integer greater than
	BIT_CCG = uint16(1)  // natural greater than
	BIT_CCE = uint16(2)  // equal
	BIT_CCL = uint16(3)  // natural less than
	BIT_CCl = uint16(4)  // integer less than
	BIT_CCv = uint16(5)  // integer overflow
	BIT_CCV = uint16(6)  // natural overflow
	BIT_CCC = uint16(7)  // binary carry
	BIT_CCS = uint16(8)  // stack overflow
	BIT_CCs = uint16(9)  // stack underflow
	BIT_CCf = uint16(10) // logic function result
)

const (
	CCg = uint16(1) << BIT_CCg
	CCG = uint16(1) << BIT_CCG
	CCE = uint16(1) << BIT_CCE
	CCL = uint16(1) << BIT_CCL
	CCl = uint16(1) << BIT_CCl
	CCv = uint16(1) << BIT_CCv
	CCV = uint16(1) << BIT_CCV
	CCC = uint16(1) << BIT_CCC
	CCS = uint16(1) << BIT_CCS
	CCs = uint16(1) << BIT_CCs
	CCf = uint16(1) << BIT_CCf
)

// ShowCC renders the set condition code flags with the display
// characters sSCVv<L=G>f.
func ShowCC(c uint16) string {
	var sb strings.Builder
	show := func(bit uint16, ch byte) {
		if TestBit(c, bit) {
			sb.WriteByte(ch)
		}
	}
	show(BIT_CCs, 's')
	show(BIT_CCS, 'S')
	show(BIT_CCC, 'C')
	show(BIT_CCV, 'V')
	show(BIT_CCv, 'v')
	show(BIT_CCl, '<')
	show(BIT_CCL, 'L')
	show(BIT_CCE, '=')
	show(BIT_CCG, 'G')
	show(BIT_CCg, '>')
	show(BIT_CCf, 'f')
	return sb.String()
}

// Status register bit assignments. The machine boots with all status
// bits clear: system state, interrupts disabled, timer off.
const (
	STATUS_USER_STATE    = uint16(0) // 0 = system state, 1 = user state
	STATUS_INT_ENABLE    = uint16(1) // 0 = disabled, 1 = enabled
	STATUS_TIMER_RUNNING = uint16(2) // 0 = off, 1 = running
)

// Interrupt request and mask bit assignments. The same indices are
// used in the req and mask control registers, and number the
// interrupt vector entries.
const (
	INT_TIMER           = uint16(0)
	INT_SEG_FAULT       = uint16(1)
	INT_STACK_OVERFLOW  = uint16(2)
	INT_USER_TRAP       = uint16(3)
	INT_STACK_UNDERFLOW = uint16(4)
	INT_OVERFLOW        = uint16(5)
	INT_BIN_OVERFLOW    = uint16(6)
	INT_Z_DIV           = uint16(7)
)
