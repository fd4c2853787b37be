package obj

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLine(t *testing.T) {
	assert := assert.New(t)

	op, operands, ok := ParseLine("data     0102,f103,0008")
	assert.True(ok)
	assert.Equal("data", op)
	assert.Equal([]string{"0102", "f103", "0008"}, operands)

	op, operands, ok = ParseLine("module   MyProg")
	assert.True(ok)
	assert.Equal("module", op)
	assert.Equal([]string{"MyProg"}, operands)

	op, operands, ok = ParseLine("")
	assert.True(ok)
	assert.Equal("", op)
	assert.Nil(operands)

	op, operands, ok = ParseLine("   ")
	assert.True(ok)
	assert.Equal("", op)
	assert.Nil(operands)

	_, _, ok = ParseLine("123 nonsense")
	assert.False(ok)
}

func TestObjMdExecutable(t *testing.T) {
	assert := assert.New(t)

	om := &ObjMd{ModName: "m", ObjText: "module   m\ndata     0102\n"}
	assert.True(om.HasObjectCode())
	assert.True(om.IsExecutable())

	om.ObjText = "module   m\ndata     0102\nimport   lib,x,0001,disp\n"
	assert.False(om.IsExecutable())

	om.ObjText = ""
	assert.False(om.HasObjectCode())
	assert.False(om.IsExecutable())
}
