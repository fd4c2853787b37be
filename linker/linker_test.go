package linker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/s16arch/s16/obj"
)

func objMd(name string, lines ...string) *obj.ObjMd {
	return &obj.ObjMd{ModName: name, ObjText: strings.Join(lines, "\n")}
}

func TestLinkSingleModule(t *testing.T) {
	assert := assert.New(t)

	main := objMd("Main",
		"module   Main",
		"data     f101,0003,c000,002a",
		"relocate 0001",
		"export   x,0003,relocatable",
	)
	ls := Link("Main", []*obj.ObjMd{main})

	assert.Empty(ls.Errors)
	if assert.NotNil(ls.ExeObjMd) {
		expected := strings.Join([]string{
			"module Main",
			"org 0000",
			"data f101,0003,c000,002a",
			"",
		}, "\n")
		assert.Equal(expected, ls.ExeObjMd.ObjText)
		assert.True(ls.ExeObjMd.IsExecutable())
	}
}

func TestLinkImportExport(t *testing.T) {
	assert := assert.New(t)

	prog := objMd("Prog",
		"module   Prog",
		"data     f101,0000,c000",
		"import   Lib,fn,0001,disp",
	)
	lib := objMd("Lib",
		"module   Lib",
		"data     002a",
		"export   fn,0000,relocatable",
	)
	ls := Link("Prog", []*obj.ObjMd{prog, lib})

	assert.Empty(ls.Errors)
	if assert.NotNil(ls.ExeObjMd) {
		// the import at address 1 resolves to fn at its linked
		// address 3, the start of Lib
		expected := strings.Join([]string{
			"module Prog",
			"org 0000",
			"data f101,0003,c000",
			"module Lib",
			"org 0003",
			"data 002a",
			"",
		}, "\n")
		assert.Equal(expected, ls.ExeObjMd.ObjText)
		assert.True(ls.ExeObjMd.IsExecutable())
	}
}

func TestLinkRelocation(t *testing.T) {
	assert := assert.New(t)

	// the second module holds a relocatable address of its own word
	first := objMd("A",
		"module   A",
		"data     0001,0002",
	)
	second := objMd("B",
		"module   B",
		"data     f101,0001,c000,002a",
		"relocate 0001",
	)
	ls := Link("A", []*obj.ObjMd{first, second})

	assert.Empty(ls.Errors)
	if assert.NotNil(ls.ExeObjMd) {
		// B starts at 2, so its reference to local address 1 becomes 3
		expected := strings.Join([]string{
			"module A",
			"org 0000",
			"data 0001,0002",
			"module B",
			"org 0002",
			"data f101,0003,c000,002a",
			"",
		}, "\n")
		assert.Equal(expected, ls.ExeObjMd.ObjText)
	}
}

func TestLinkFixedExport(t *testing.T) {
	assert := assert.New(t)

	prog := objMd("Prog",
		"module   Prog",
		"data     f101,0000,c000",
		"import   Defs,limit,0001,disp",
	)
	defs := objMd("Defs",
		"module   Defs",
		"export   limit,00ff,fixed",
	)
	ls := Link("Prog", []*obj.ObjMd{prog, defs})

	assert.Empty(ls.Errors)
	if assert.NotNil(ls.ExeObjMd) {
		// a fixed export is not relocated by the module placement
		assert.Contains(ls.ExeObjMd.ObjText, "data f101,00ff,c000")
	}
}

func TestLinkOrgBlocks(t *testing.T) {
	assert := assert.New(t)

	m := objMd("M",
		"module   M",
		"data     c000",
		"org      0010",
		"data     0001,0002",
	)
	ls := Link("M", []*obj.ObjMd{m})

	assert.Empty(ls.Errors)
	if assert.NotNil(ls.ExeObjMd) {
		expected := strings.Join([]string{
			"module M",
			"org 0000",
			"data c000",
			"org 0010",
			"data 0001,0002",
			"",
		}, "\n")
		assert.Equal(expected, ls.ExeObjMd.ObjText)
	}
}

func TestLinkErrors(t *testing.T) {
	assert := assert.New(t)

	prog := objMd("Prog",
		"module   Prog",
		"data     f101,0000,c000",
		"import   NoSuchMod,fn,0001,disp",
	)
	ls := Link("Prog", []*obj.ObjMd{prog})

	assert.Nil(ls.ExeObjMd)
	if assert.Len(ls.Errors, 1) {
		assert.Equal("NoSuchMod not found", ls.Errors[0])
	}

	lib := objMd("Lib",
		"module   Lib",
		"export   fn,0000,relocatable",
	)
	prog2 := objMd("Prog",
		"module   Prog",
		"data     f101,0000,c000",
		"import   Lib,other,0001,disp",
	)
	ls = Link("Prog", []*obj.ObjMd{prog2, lib})
	assert.Nil(ls.ExeObjMd)
	if assert.Len(ls.Errors, 1) {
		assert.Equal("other not exported by Lib", ls.Errors[0])
	}
}
