package arith

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/s16arch/s16/arch"
)

func TestIntConversion(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(0, ToInt(0))
	assert.Equal(1, ToInt(1))
	assert.Equal(32767, ToInt(0x7FFF))
	assert.Equal(-32768, ToInt(0x8000))
	assert.Equal(-1, ToInt(0xFFFF))

	assert.Equal(uint16(0xFFFF), FromInt(-1))
	assert.Equal(uint16(0x8000), FromInt(-32768))
	assert.Equal(uint16(5), FromInt(5))
	assert.Equal(uint16(0), FromInt(65536))
}

func TestAdd(t *testing.T) {
	assert := assert.New(t)

	primary, cc := Add(0, 3, 5)
	assert.Equal(uint16(8), primary)
	assert.Equal(arch.CCG|arch.CCg, cc)

	// binary carry out
	primary, cc = Add(0, 0xFFFF, 1)
	assert.Equal(uint16(0), primary)
	assert.Equal(uint16(1), arch.GetBit(cc, arch.BIT_CCC))
	assert.Equal(uint16(1), arch.GetBit(cc, arch.BIT_CCV))
	assert.Equal(uint16(1), arch.GetBit(cc, arch.BIT_CCE))
	assert.Equal(uint16(0), arch.GetBit(cc, arch.BIT_CCv))

	// two's complement overflow
	primary, cc = Add(0, 0x7FFF, 1)
	assert.Equal(uint16(0x8000), primary)
	assert.Equal(uint16(1), arch.GetBit(cc, arch.BIT_CCv))
	assert.Equal(uint16(0), arch.GetBit(cc, arch.BIT_CCC))
}

func TestAddc(t *testing.T) {
	assert := assert.New(t)

	primary, _ := Addc(arch.CCC, 1, 2)
	assert.Equal(uint16(4), primary)

	primary, _ = Addc(0, 1, 2)
	assert.Equal(uint16(3), primary)
}

func TestSub(t *testing.T) {
	assert := assert.New(t)

	primary, _ := Sub(0, 5, 3)
	assert.Equal(uint16(2), primary)

	primary, cc := Sub(0, 4, 4)
	assert.Equal(uint16(0), primary)
	assert.Equal(uint16(1), arch.GetBit(cc, arch.BIT_CCE))

	primary, _ = Sub(0, 3, 5)
	assert.Equal(FromInt(-2), primary)
}

func TestMul(t *testing.T) {
	assert := assert.New(t)

	primary, cc := Mul(0, FromInt(-3), 5)
	assert.Equal(FromInt(-15), primary)
	assert.Equal(uint16(0), cc)

	primary, cc = Mul(0, 0x4000, 4)
	assert.Equal(uint16(0), primary)
	assert.Equal(arch.CCv, cc)
}

func TestMuln(t *testing.T) {
	assert := assert.New(t)

	lo, hi := Muln(0, 0xFFFF, 0xFFFF)
	assert.Equal(uint16(0x0001), lo)
	assert.Equal(uint16(0xFFFE), hi)
}

func TestDiv(t *testing.T) {
	assert := assert.New(t)

	q, r, ok := Div(0, 7, 2)
	assert.True(ok)
	assert.Equal(uint16(3), q)
	assert.Equal(uint16(1), r)

	// floored division: quotient rounds toward minus infinity and
	// the remainder has the sign of the divisor
	q, r, ok = Div(0, FromInt(-7), 2)
	assert.True(ok)
	assert.Equal(FromInt(-4), q)
	assert.Equal(uint16(1), r)

	q, r, ok = Div(0, 7, FromInt(-2))
	assert.True(ok)
	assert.Equal(FromInt(-4), q)
	assert.Equal(FromInt(-1), r)

	_, _, ok = Div(0, 7, 0)
	assert.False(ok)
}

func TestDivn(t *testing.T) {
	assert := assert.New(t)

	lo, hi, rem, ok := Divn(1, 0, 4)
	assert.True(ok)
	assert.Equal(uint16(0x4000), lo)
	assert.Equal(uint16(0), hi)
	assert.Equal(uint16(0), rem)

	lo, hi, rem, ok = Divn(0, 7, 2)
	assert.True(ok)
	assert.Equal(uint16(3), lo)
	assert.Equal(uint16(0), hi)
	assert.Equal(uint16(1), rem)

	_, _, _, ok = Divn(1, 0, 0)
	assert.False(ok)
}

func TestCmp(t *testing.T) {
	assert := assert.New(t)

	cc := Cmp(0, 2, 2)
	assert.Equal(uint16(1), arch.GetBit(cc, arch.BIT_CCE))
	assert.Equal(uint16(0), arch.GetBit(cc, arch.BIT_CCG))
	assert.Equal(uint16(0), arch.GetBit(cc, arch.BIT_CCL))

	// 0xFFFF is the largest natural number but -1 as an integer
	cc = Cmp(0, 0xFFFF, 1)
	assert.Equal(uint16(1), arch.GetBit(cc, arch.BIT_CCG))
	assert.Equal(uint16(1), arch.GetBit(cc, arch.BIT_CCl))
	assert.Equal(uint16(0), arch.GetBit(cc, arch.BIT_CCg))
	assert.Equal(uint16(0), arch.GetBit(cc, arch.BIT_CCL))

	// the relational bits are rewritten, other bits preserved
	cc = Cmp(arch.CCC|arch.CCG, 1, 2)
	assert.Equal(uint16(1), arch.GetBit(cc, arch.BIT_CCC))
	assert.Equal(uint16(0), arch.GetBit(cc, arch.BIT_CCG))
	assert.Equal(uint16(1), arch.GetBit(cc, arch.BIT_CCL))
	assert.Equal(uint16(1), arch.GetBit(cc, arch.BIT_CCl))
}

func TestLogicWord(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(uint16(0xF000), LogicWord(FCN_AND, 0xF0F0, 0xFF00))
	assert.Equal(uint16(0xFFF0), LogicWord(FCN_OR, 0xF0F0, 0xFF00))
	assert.Equal(uint16(0x0FF0), LogicWord(FCN_XOR, 0xF0F0, 0xFF00))
	assert.Equal(uint16(0x0F0F), LogicWord(FCN_INV, 0xF0F0, 0xFF00))
}

func TestLogicBitTruthTable(t *testing.T) {
	assert := assert.New(t)

	for fcn := uint16(0); fcn < 16; fcn++ {
		assert.Equal(arch.GetBit(fcn, 3), LogicBit(fcn, 0, 0))
		assert.Equal(arch.GetBit(fcn, 2), LogicBit(fcn, 0, 1))
		assert.Equal(arch.GetBit(fcn, 1), LogicBit(fcn, 1, 0))
		assert.Equal(arch.GetBit(fcn, 0), LogicBit(fcn, 1, 1))
	}
}

func TestLogicField(t *testing.T) {
	assert := assert.New(t)

	// only bits 4..7 participate, the rest come from x
	got := LogicField(FCN_AND, 0xFFFF, 0x0000, 4, 7)
	assert.Equal(uint16(0xFF0F), got)

	got = LogicField(FCN_OR, 0x0000, 0xFFFF, 0, 3)
	assert.Equal(uint16(0x000F), got)
}

func TestExtract(t *testing.T) {
	assert := assert.New(t)

	// move the low byte of src into the high byte of dest
	got := Extract(16, 0xFFFF, 0, 0x00FF, 8, 0, 7)
	assert.Equal(uint16(0xFF00), got)

	// bits of dest outside the field are preserved
	got = Extract(16, 0xFFFF, 0xF00F, 0x0030, 8, 4, 7)
	assert.Equal(uint16(0xF30F), got)

	got = Extracti(16, 0xFFFF, 0, 0xFF00, 8, 0, 7)
	assert.Equal(uint16(0xFF00), got)
}

func TestShift(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(uint16(8), ShiftL(1, 3))
	assert.Equal(uint16(0), ShiftL(1, 16))
	assert.Equal(uint16(1), ShiftR(0x8000, 15))
	assert.Equal(uint16(0), ShiftR(1, 16))

	assert.Equal(uint16(8), Shift(1, 3))
	assert.Equal(uint16(1), Shift(8, FromInt(-3)))
}

func TestHex4(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("002f", Hex4(0x2F))
	assert.Equal("ffff", Hex4(0xFFFF))
	assert.Equal("0001 0000", Hex8(0x10000))

	w, err := ParseHex4("3b2a")
	assert.NoError(err)
	assert.Equal(uint16(0x3B2A), w)

	w, err = ParseHex4("3B2A")
	assert.NoError(err)
	assert.Equal(uint16(0x3B2A), w)

	_, err = ParseHex4("12")
	assert.Error(err)
	_, err = ParseHex4("12g4")
	assert.Error(err)
}
