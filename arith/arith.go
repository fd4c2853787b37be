package arith

import (
	"github.com/s16arch/s16/arch"
)

const (
	MIN_TC = -32768
	MAX_TC = 32767
)

// ToInt interprets a word as a two's complement integer.
func ToInt(w uint16) int {
	if w < 0x8000 {
		return int(w)
	}
	return int(w) - 0x10000
}

// FromInt converts an integer to its two's complement word, wrapping
// modulo 2^16.
func FromInt(x int) uint16 {
	return uint16(x & 0xFFFF)
}

// BoolToWord returns 1 for true and 0 for false.
func BoolToWord(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}

// Invert returns the bitwise complement of x.
func Invert(x uint16) uint16 {
	return x ^ 0xFFFF
}

// BinAdd is wraparound binary addition without condition codes, used
// for address arithmetic.
func BinAdd(x, y uint16) uint16 {
	return x + y
}

// additionCC computes the condition code for an addition through the
// adder. sum is the untruncated 17-bit sum, primary its truncation.
func additionCC(a, b uint16, primary uint16, sum uint32) uint16 {
	msba := arch.GetBit(a, 15)
	msbb := arch.GetBit(b, 15)
	msbsum := arch.GetBit(uint16(sum&0xFFFF), 15)
	binOverflow := sum >= 0x10000
	tcOverflow := (msba == 0 && msbb == 0 && msbsum == 1) ||
		(msba == 1 && msbb == 1 && msbsum == 0)

	var cc uint16
	if binOverflow {
		cc |= arch.CCV | arch.CCC
	}
	if tcOverflow {
		cc |= arch.CCv
	}
	if primary == 0 {
		cc |= arch.CCE
	}
	if sum != 0 {
		cc |= arch.CCG
	}
	if !tcOverflow && msbsum == 1 {
		cc |= arch.CCl
	}
	if !tcOverflow && msbsum == 0 {
		cc |= arch.CCg
	}
	return cc
}

// Add returns a+b and the resulting condition code.
func Add(c, a, b uint16) (primary, cc uint16) {
	sum := uint32(a) + uint32(b)
	primary = uint16(sum & 0xFFFF)
	cc = additionCC(a, b, primary, sum)
	return
}

// Addc adds with carry in from the C bit of the condition code c.
func Addc(c, a, b uint16) (primary, cc uint16) {
	sum := uint32(a) + uint32(b) + uint32(arch.GetBit(c, arch.BIT_CCC))
	primary = uint16(sum & 0xFFFF)
	cc = additionCC(a, b, primary, sum)
	return
}

// Sub computes a-b as a + ^b + 1 through the adder. The condition
// code flags are derived from the original operands.
func Sub(c, a, b uint16) (primary, cc uint16) {
	sum := uint32(a) + uint32(Invert(b)) + 1
	primary = uint16(sum & 0xFFFF)
	cc = additionCC(a, b, primary, sum)
	return
}

// Mul is two's complement multiplication; the v flag is set when the
// signed product does not fit in a word.
func Mul(c, a, b uint16) (primary, cc uint16) {
	p := ToInt(a) * ToInt(b)
	primary = FromInt(p)
	if p < MIN_TC || p > MAX_TC {
		cc = arch.CCv
	}
	return
}

// Muln is natural (binary) multiplication producing a 32-bit product;
// primary is the low word and secondary the high word.
func Muln(c, a, b uint16) (primary, secondary uint16) {
	product := uint32(a) * uint32(b)
	primary = uint16(product & 0xFFFF)
	secondary = uint16(product >> 16)
	return
}

// Div is two's complement division with floored quotient and meaning
// preserving remainder. ok is false when b is zero; the caller is
// responsible for raising the divide-by-zero fault.
func Div(c, a, b uint16) (primary, secondary uint16, ok bool) {
	aint := ToInt(a)
	bint := ToInt(b)
	if bint == 0 {
		return 0, 0, false
	}
	q := aint / bint
	r := aint % bint
	if r != 0 && (r < 0) != (bint < 0) {
		q--
		r += bint
	}
	return FromInt(q), FromInt(r), true
}

/// Divn is natural division of the 32-bit dividend c:a by b, giving
// the low and high quotient words and the remainder. ok is false
// when b is zero.
func Divn(c, a, b uint16) (primary, secondary, tertiary uint16, ok bool) {
	if b == 0 {
		return 0, 0, 0, false
	}
	dividend := uint32(c)<<16 | uint32(a)
	quotient := dividend / uint32(b)
	remainder := dividend % uint32(b)
	primary = uint16(quotient & 0xFFFF)
	secondary = uint16(quotient >> 16)
	tertiary = uint16(remainder)
	return primary, secondary, tertiary, true
}

// Cmp updates the relational bits of the condition code c with the
// binary and two's complement comparisons of a and b.
func Cmp(c, a, b uint16) uint16 {
	aint := ToInt(a)
	bint := ToInt(b)
	cc := c
	cc = arch.PutBit(cc, arch.BIT_CCE, BoolToWord(a == b))
	cc = arch.PutBit(cc, arch.BIT_CCG, BoolToWord(a > b))
	cc = arch.PutBit(cc, arch.BIT_CCg, BoolToWord(aint > bint))
	cc = arch.PutBit(cc, arch.BIT_CCl, BoolToWord(aint < bint))
	cc = arch.PutBit(cc, arch.BIT_CCL, BoolToWord(a < b))
	return cc
}

// ShiftL is a logical left shift.
func ShiftL(x uint16, k uint16) uint16 {
	if k >= 16 {
		return 0
	}
	return x << k
}

// ShiftR is a logical right shift.
func ShiftR(x uint16, k uint16) uint16 {
	if k >= 16 {
		return 0
	}
	return x >> k
}

// Shift shifts left when the signed count k is positive and right
// when it is negative.
func Shift(a uint16, k uint16) uint16 {
	i := ToInt(k)
	if i > 0 {
		return ShiftL(a, uint16(i))
	}
	return ShiftR(a, uint16(-i))
}
