package linker

import (
	"fmt"
	"log"
	"strings"

	"github.com/s16arch/s16/arch"
	"github.com/s16arch/s16/arith"
	"github.com/s16arch/s16/obj"
)

// Import is one import record awaiting resolution.
type Import struct {
	Mod   string
	Name  string
	Addr  string
	Field string
}

// Export is one export record, already relocated by its module's
// start address when marked relocatable.
type Export struct {
	Name   string
	Val    uint16
	Status string
}

// Block is a run of contiguous object words starting at a module
// local address.
type Block struct {
	Start uint16
	Words []uint16
}

// ObjectInfo is the linker's view of one module.
type ObjectInfo struct {
	Index        int
	ModName      string
	ObjMd        *obj.ObjMd
	Metadata     *obj.Metadata
	StartAddress uint16
	SrcOrigin    int
	DclModName   string

	Blocks      []*Block
	Relocations []string
	Imports     []Import
	ExportMap   map[string]Export
}

// size is the extent of the module: the end of its furthest block.
func (oi *ObjectInfo) size() uint16 {
	var end uint16
	for _, b := range oi.Blocks {
		if e := b.Start + uint16(len(b.Words)); e > end {
			end = e
		}
	}
	return end
}

// Linker links object modules into an executable.
type Linker struct {
	Verbose bool
}

// State is the result of a link run. ExeObjMd is nil when any link
// errors were found.
type State struct {
	MainName        string
	ObjMds          []*obj.ObjMd
	ModMap          map[string]*ObjectInfo
	OiList          []*ObjectInfo
	LocationCounter uint16
	Metadata        *obj.Metadata
	Errors          []string
	ExeCodeText     string
	ExeMdText       string
	ExeObjMd        *obj.ObjMd

	verbose bool
}

func (ls *State) logf(format string, args ...any) {
	if ls.verbose {
		log.Printf("linker: "+format, args...)
	}
}

func (ls *State) errf(format string, args ...any) {
	ls.Errors = append(ls.Errors, fmt.Sprintf(format, args...))
}

// Link runs both passes and emits the executable object text.
func (lk *Linker) Link(mainName string, objMds []*obj.ObjMd) *State {
	ls := &State{
		MainName: mainName,
		ObjMds:   objMds,
		ModMap:   map[string]*ObjectInfo{},
		Metadata: obj.NewMetadata(),
		verbose:  lk.Verbose,
	}
	ls.pass1()
	ls.pass2()
	ls.ExeCodeText = ls.emitCode()
	ls.ExeMdText = ls.Metadata.ToText()
	if len(ls.Errors) == 0 {
		ls.ExeObjMd = &obj.ObjMd{ModName: "executable", ObjText: ls.ExeCodeText, MdText: ls.ExeMdText}
	}
	return ls
}

// Link is a convenience wrapper using default options.
func Link(mainName string, objMds []*obj.ObjMd) *State {
	return (&Linker{}).Link(mainName, objMds)
}

// pass1 places each module and parses its object text.
func (ls *State) pass1() {
	for i, objMd := range ls.ObjMds {
		ls.logf("pass 1: examining %v", objMd.ModName)
		oi := &ObjectInfo{
			Index:     i,
			ModName:   objMd.ModName,
			ObjMd:     objMd,
			Metadata:  obj.NewMetadata(),
			ExportMap: map[string]Export{},
		}
		ls.ModMap[oi.ModName] = oi
		ls.OiList = append(ls.OiList, oi)
		oi.Metadata.FromText(objMd.MdText)
		oi.StartAddress = ls.LocationCounter
		oi.SrcOrigin = len(ls.Metadata.PlainLines())
		ls.Metadata.AddSrcLines(oi.Metadata.SrcLines())
		ls.parseObject(oi)
		oi.Metadata.TranslateMap(oi.StartAddress, oi.SrcOrigin)
		ls.Metadata.AddPairs(oi.Metadata.Pairs)
	}
}

// parseObject reads a module's object lines into blocks, exports,
// imports, and relocations, advancing the link location counter.
func (ls *State) parseObject(oi *ObjectInfo) {
	relK := oi.StartAddress
	block := &Block{}
	oi.Blocks = append(oi.Blocks, block)

	for _, x := range oi.ObjMd.ObjLines() {
		op, operands, ok := obj.ParseLine(x)
		if !ok {
			ls.errf("module %v: object line has invalid format: %v", oi.ModName, x)
			continue
		}
		switch op {
		case "":
			// blank line
		case "module":
			if len(operands) > 0 {
				oi.DclModName = operands[0]
			}
		case "org":
			if len(operands) != 1 {
				ls.errf("module %v: org requires one address: %v", oi.ModName, x)
				continue
			}
			a, err := arith.ParseHex4(strings.TrimSpace(operands[0]))
			if err != nil {
				ls.errf("module %v: %v", oi.ModName, err)
				continue
			}
			block = &Block{Start: a}
			oi.Blocks = append(oi.Blocks, block)
		case "data":
			for _, valStr := range operands {
				val, err := arith.ParseHex4(strings.TrimSpace(valStr))
				if err != nil {
					ls.errf("module %v: %v", oi.ModName, err)
					val = 0
				}
				block.Words = append(block.Words, val)
			}
		case "import":
			if len(operands) != 4 {
				ls.errf("module %v: import requires 4 operands: %v", oi.ModName, x)
				continue
			}
			oi.Imports = append(oi.Imports, Import{
				Mod: operands[0], Name: operands[1],
				Addr: operands[2], Field: operands[3],
			})
		case "export":
			if len(operands) != 3 {
				ls.errf("module %v: export requires 3 operands: %v", oi.ModName, x)
				continue
			}
			name, val, status := operands[0], operands[1], operands[2]
			valNum, err := arith.ParseHex4(val)
			if err != nil {
				ls.errf("module %v: %v", oi.ModName, err)
				continue
			}
			if status == "relocatable" {
				valNum += relK
			}
			oi.ExportMap[name] = Export{Name: name, Val: valNum, Status: status}
		case "relocate":
			oi.Relocations = append(oi.Relocations, operands...)
		default:
			ls.errf("module %v: unknown object operation %v", oi.ModName, op)
		}
	}
	ls.LocationCounter += oi.size()
}

// pass2 patches import references and applies relocations.
func (ls *State) pass2() {
	for _, oi := range ls.OiList {
		ls.resolveImports(oi)
		ls.resolveRelocations(oi)
	}
}

func (ls *State) resolveImports(om *ObjectInfo) {
	for _, x := range om.Imports {
		exporter, ok := ls.ModMap[x.Mod]
		if !ok {
			ls.errf("%v not found", x.Mod)
			continue
		}
		v, ok := exporter.ExportMap[x.Name]
		if !ok {
			ls.errf("%v not exported by %v", x.Name, x.Mod)
			continue
		}
		addr, err := arith.ParseHex4(x.Addr)
		if err != nil {
			ls.errf("module %v: %v", om.ModName, err)
			continue
		}
		ls.adjust(om, addr, func(uint16) uint16 { return v.Val })
	}
}

func (ls *State) resolveRelocations(om *ObjectInfo) {
	relK := om.StartAddress
	for _, a := range om.Relocations {
		addr, err := arith.ParseHex4(strings.TrimSpace(a))
		if err != nil {
			ls.errf("module %v: %v", om.ModName, err)
			continue
		}
		ls.adjust(om, addr, func(y uint16) uint16 { return y + relK })
	}
}

// adjust rewrites the word at a module local address through f.
func (ls *State) adjust(om *ObjectInfo, addr uint16, fn func(uint16) uint16) {
	for _, b := range om.Blocks {
		if b.Start <= addr && addr < b.Start+uint16(len(b.Words)) {
			old := b.Words[addr-b.Start]
			b.Words[addr-b.Start] = fn(old)
			ls.logf("adjust %v: %v -> %v", arith.Hex4(addr),
				arith.Hex4(old), arith.Hex4(b.Words[addr-b.Start]))
			return
		}
	}
	ls.errf("address %v not defined", arith.Hex4(addr))
}

// emitCode renders the linked executable object text.
func (ls *State) emitCode() string {
	if len(ls.Errors) > 0 {
		return ""
	}
	var sb strings.Builder
	for _, oi := range ls.OiList {
		sb.WriteString("module " + oi.ModName + "\n")
		for _, b := range oi.Blocks {
			if len(b.Words) == 0 {
				continue
			}
			sb.WriteString("org " + arith.Hex4(oi.StartAddress+b.Start) + "\n")
			emitObjectWords(&sb, b.Words)
		}
	}
	return sb.String()
}

func emitObjectWords(sb *strings.Builder, ws []uint16) {
	for len(ws) > 0 {
		n := min(arch.WORDS_PER_LINE, len(ws))
		ys := make([]string, 0, n)
		for _, w := range ws[:n] {
			ys = append(ys, arith.Hex4(w))
		}
		ws = ws[n:]
		sb.WriteString("data " + strings.Join(ys, ",") + "\n")
	}
}
