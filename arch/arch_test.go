package arch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBits(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(uint16(1), GetBit(0b100, 2))
	assert.Equal(uint16(0), GetBit(0b100, 1))
	assert.Equal(uint16(0b101), PutBit(0b100, 0, 1))
	assert.Equal(uint16(0b000), PutBit(0b100, 2, 0))
	assert.True(TestBit(0x8000, 15))
	assert.False(TestBit(0x8000, 14))
}

func TestShowCC(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("", ShowCC(0))
	assert.Equal("=", ShowCC(CCE))
	assert.Equal("G>", ShowCC(CCG|CCg))
	assert.Equal("<L", ShowCC(CCl|CCL))
	assert.Equal("sSCVv<L=G>f",
		ShowCC(CCs|CCS|CCC|CCV|CCv|CCl|CCL|CCE|CCG|CCg|CCf))
}

func TestFormatSize(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(uint16(1), FMT_RRR.Size())
	assert.Equal(uint16(2), FMT_RX.Size())
	assert.Equal(uint16(2), FMT_EXP.Size())
	assert.Equal(uint16(0), FMT_DIR.Size())
}

func TestStatements(t *testing.T) {
	assert := assert.New(t)

	// every RRR mnemonic carries its primary opcode
	for op, mn := range MnemonicRRR[:13] {
		spec := Statements[mn]
		if assert.NotNil(spec, mn) {
			assert.Equal(uint16(op), spec.Opcode[0], mn)
		}
	}

	// RX instructions escape through primary opcode 15
	for sec, mn := range MnemonicRX {
		if mn == "noprx" {
			continue
		}
		spec := Statements[mn]
		if assert.NotNil(spec, mn) {
			assert.Equal(uint16(15), spec.Opcode[0], mn)
			assert.Equal(uint16(sec), spec.Opcode[1], mn)
		}
	}

	// EXP instructions escape through primary opcode 14
	for sec, mn := range MnemonicEXP {
		spec := Statements[mn]
		if assert.NotNil(spec, mn) {
			assert.Equal(uint16(14), spec.Opcode[0], mn)
			assert.Equal(uint16(sec), spec.Opcode[1], mn)
		}
	}

	// pseudo instructions bake a constant into the opcode path
	assert.True(Statements["jumplt"].Pseudo)
	assert.Equal(BIT_CCl, Statements["jumplt"].Opcode[2])
	assert.True(Statements["setb"].Pseudo)
	assert.Equal(uint16(15), Statements["setb"].Opcode[2])
}

func TestCtlRegLookup(t *testing.T) {
	assert := assert.New(t)

	i, ok := CtlRegLookup("status")
	assert.True(ok)
	assert.Equal(uint16(0), i)

	i, ok = CtlRegLookup("vect")
	assert.True(ok)
	assert.Equal(uint16(7), i)

	_, ok = CtlRegLookup("nosuch")
	assert.False(ok)
}
