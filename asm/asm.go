package asm

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/s16arch/s16/arch"
	"github.com/s16arch/s16/arith"
	"github.com/s16arch/s16/obj"
)

// Assembler assembles source text into object code.
type Assembler struct {
	Verbose bool
}

// Info is the result of assembling one module.
type Info struct {
	ModName  string
	BaseName string
	SrcLines []string

	ObjectCode []string
	ObjectText string
	MdText     string
	Metadata   *obj.Metadata

	Stmts           []*Statement
	SymbolTable     map[string]*Identifier
	LocationCounter Value
	Imports         []string
	Exports         []string
	NErrors         int
	ObjMd           *obj.ObjMd

	verbose bool

	wordBuffer  []uint16
	relocBuffer []uint16
}

func (ma *Info) logf(format string, args ...any) {
	if ma.verbose {
		log.Printf("asm: "+format, args...)
	}
}

// errf records a diagnostic on a statement. With a nil statement the
// error attaches to the last one.
func (ma *Info) errf(s *Statement, format string, args ...any) {
	if s == nil && len(ma.Stmts) > 0 {
		s = ma.Stmts[len(ma.Stmts)-1]
	}
	msg := fmt.Sprintf(format, args...)
	if s != nil {
		s.Errors = append(s.Errors, msg)
	}
	ma.NErrors++
}

const listingHeader = "Line Addr Code Code Source"

// Assemble runs both passes over the source text and packages the
// result.
func (asm *Assembler) Assemble(baseName, srcText string) *Info {
	ma := &Info{
		ModName:         baseName,
		BaseName:        baseName,
		SrcLines:        strings.Split(srcText, "\n"),
		SymbolTable:     map[string]*Identifier{},
		LocationCounter: Value{Movability: RELOCATABLE},
		Metadata:        obj.NewMetadata(),
		verbose:         asm.Verbose,
	}
	ma.Metadata.PushSrc(
		listingHeader,
		listingHeader,
		"<span class='ListingHeader'>"+listingHeader+"</span>",
	)
	ma.pass1()
	ma.pass2()
	if ma.NErrors > 0 {
		x := fmt.Sprintf("\n %d errors detected\n", ma.NErrors)
		y := "<span class='ERR'>" + x + "</span>"
		ma.Metadata.UnshiftSrc(x, y, y)
	}
	ma.MdText = ma.Metadata.ToText()
	ma.ObjectText = strings.Join(ma.ObjectCode, "\n")
	ma.ObjMd = &obj.ObjMd{ModName: ma.ModName, ObjText: ma.ObjectText, MdText: ma.MdText}
	return ma
}

// Assemble is a convenience wrapper using default options.
func Assemble(baseName, srcText string) *Info {
	return (&Assembler{}).Assemble(baseName, srcText)
}

// pass1 parses every line, binds labels, and advances the location
// counter.
func (ma *Info) pass1() {
	ma.logf("pass 1: %d source lines", len(ma.SrcLines))
	for i, line := range ma.SrcLines {
		s := newStatement(i, ma.LocationCounter, line)
		ma.Stmts = append(ma.Stmts, s)
		if bad := validateChars(line); bad != nil {
			ma.errf(s, "Invalid character at position %v", bad)
			ma.errf(s, "See User Guide for list of valid characters")
			ma.errf(s, "(Word processors often insert invalid characters)")
		}
		ma.parseLine(s)
		ma.handleLabel(s)
		ma.updateLocationCounter(s)
	}
}

func (ma *Info) handleLabel(s *Statement) {
	if !s.HasLabel {
		return
	}
	switch {
	case ma.SymbolTable[s.FieldLabel] != nil:
		ma.errf(s, "%v has already been defined", s.FieldLabel)
	case s.FieldOperation == "module":
		// the label is the module name
	case s.FieldOperation == "equ":
		v := ma.evaluate(s, ma.LocationCounter.Word, s.FieldOperands)
		ma.SymbolTable[s.FieldLabel] = &Identifier{
			Name: s.FieldLabel, Value: v, DefLine: s.LineNumber + 1,
		}
	case s.FieldOperation == "import" && len(s.Operands) >= 2:
		ma.SymbolTable[s.FieldLabel] = &Identifier{
			Name:    s.FieldLabel,
			Mod:     s.Operands[0],
			ExtName: s.Operands[1],
			Value:   extVal,
			DefLine: s.LineNumber + 1,
		}
	default:
		ma.SymbolTable[s.FieldLabel] = &Identifier{
			Name: s.FieldLabel, Value: ma.LocationCounter, DefLine: s.LineNumber + 1,
		}
	}
}

func (ma *Info) updateLocationCounter(s *Statement) {
	op := s.Operation
	switch {
	case op.Format == arch.FMT_DIR && op.Operands == arch.A_ORG:
		v := ma.evaluate(s, ma.LocationCounter.Word, s.FieldOperands)
		ma.LocationCounter = v
	case op.Format == arch.FMT_DIR && op.Operands == arch.A_RESERVE:
		v := ma.evaluate(s, ma.LocationCounter.Word, s.FieldOperands)
		lc, err := AddVal(ma.LocationCounter, v)
		if err != nil {
			ma.errf(s, "%v", err)
			break
		}
		ma.LocationCounter = lc
		s.LocCounterUpdate = ma.LocationCounter
	default:
		ma.LocationCounter.Add(s.CodeSize)
	}
}

// Field names used in import records.
const (
	fieldD    = "d"
	fieldDisp = "disp"
)

// pass2 generates code for every statement and emits the object
// text.
func (ma *Info) pass2() {
	ma.logf("pass 2")
	ma.ObjectCode = append(ma.ObjectCode, "module   "+ma.ModName)

	for _, s := range ma.Stmts {
		ma.generate(s)

		s.ListingPlain = listingLine(s)
		ma.Metadata.PushSrc(s.ListingPlain, s.ListingPlain, s.ListingPlain)
		for _, e := range s.Errors {
			x := "Error: " + e
			y := "<span class='ERR'>" + x + "</span>"
			ma.Metadata.PushSrc(x, y, y)
		}
	}
	ma.emitObjectWords()
	ma.emitRelocations()
	ma.emitExports()
	ma.emitImports()
	ma.ObjectCode = append(ma.ObjectCode, "")
}

// generate produces the machine code for one statement, dispatching
// on its instruction format and operand format.
func (ma *Info) generate(s *Statement) {
	op := s.Operation
	addr := s.Address.Word

	switch {
	case op.Format == arch.FMT_DIR && op.Operands == arch.A_ORG:
		ma.emitObjectWords()
		ma.ObjectCode = append(ma.ObjectCode, "org      "+arith.Hex4(s.OrgAddr.Word))

	case op.Format == arch.FMT_DIR && op.Operands == arch.A_RESERVE:
		ma.emitObjectWords()
		ma.ObjectCode = append(ma.ObjectCode, "org      "+arith.Hex4(s.LocCounterUpdate.Word))

	case op.Format == arch.FMT_RRR && op.Operands == arch.A_RRR:
		ma.requireNOperands(s, 3)
		d := ma.requireReg(s, s.Operands[0])
		a := ma.requireReg(s, s.Operands[1])
		b := ma.requireReg(s, s.Operands[2])
		s.CodeWord1 = int32(mkWord(op.Opcode[0], d, a, b))
		ma.objectWord(s, addr, uint16(s.CodeWord1))

	case op.Format == arch.FMT_RRR && op.Operands == arch.A_RR:
		ma.requireNOperands(s, 2)
		a := ma.requireReg(s, s.Operands[0])
		b := ma.requireReg(s, s.Operands[1])
		s.CodeWord1 = int32(mkWord(op.Opcode[0], 0, a, b))
		ma.objectWord(s, addr, uint16(s.CodeWord1))

	case op.Format == arch.FMT_RX && op.Operands == arch.A_RX:
		ma.requireNOperands(s, 2)
		d := ma.requireReg(s, s.Operands[0])
		disp, index := ma.requireX(s, s.Operands[1])
		v := ma.evaluate(s, addr+1, disp)
		s.CodeWord1 = int32(mkWord(op.Opcode[0], d, index, op.Opcode[1]))
		s.CodeWord2 = int32(v.Word)
		ma.objectWord(s, addr, uint16(s.CodeWord1))
		ma.objectWord(s, addr+1, uint16(s.CodeWord2))
		ma.handleVal(s, addr+1, disp, v, fieldDisp)

	case op.Format == arch.FMT_RX && op.Operands == arch.A_X:
		ma.requireNOperands(s, 1)
		var d uint16
		if op.Pseudo {
			d = op.Opcode[2]
		}
		disp, index := ma.requireX(s, s.Operands[0])
		v := ma.evaluate(s, addr+1, disp)
		s.CodeWord1 = int32(mkWord(op.Opcode[0], d, index, op.Opcode[1]))
		s.CodeWord2 = int32(v.Word)
		ma.objectWord(s, addr, uint16(s.CodeWord1))
		ma.objectWord(s, addr+1, uint16(s.CodeWord2))
		ma.handleVal(s, addr+1, disp, v, fieldDisp)

	case op.Format == arch.FMT_RX && op.Operands == arch.A_KX:
		ma.requireNOperands(s, 2)
		k := ma.evaluate(s, addr, s.Operands[0])
		disp, index := ma.requireX(s, s.Operands[1])
		v := ma.evaluate(s, addr+1, disp)
		s.CodeWord1 = int32(mkWord(op.Opcode[0], k.Word, index, op.Opcode[1]))
		s.CodeWord2 = int32(v.Word)
		ma.objectWord(s, addr, uint16(s.CodeWord1))
		ma.objectWord(s, addr+1, uint16(s.CodeWord2))
		ma.handleVal(s, addr, s.Operands[0], k, fieldD)
		ma.handleVal(s, addr+1, disp, v, fieldDisp)

	case op.Format == arch.FMT_EXP && op.Operands == arch.A_NONE:
		s.CodeWord1 = int32(mkWord448(op.Opcode[0], 0, op.Opcode[1]))
		s.CodeWord2 = 0
		ma.objectWord(s, addr, uint16(s.CodeWord1))
		ma.objectWord(s, addr+1, uint16(s.CodeWord2))

	case op.Format == arch.FMT_EXP && op.Operands == arch.A_R:
		ma.requireNOperands(s, 1)
		d := ma.requireReg(s, s.Operands[0])
		var h uint16
		if len(op.Opcode) > 2 {
			h = op.Opcode[2]
		}
		s.CodeWord1 = int32(mkWord448(op.Opcode[0], d, op.Opcode[1]))
		s.CodeWord2 = int32(mkWord(0, 0, 15, h))
		ma.objectWord(s, addr, uint16(s.CodeWord1))
		ma.objectWord(s, addr+1, uint16(s.CodeWord2))

	case op.Format == arch.FMT_EXP && op.Operands == arch.A_R_OFFSET:
		ma.requireNOperands(s, 2)
		d := ma.requireReg(s, s.Operands[0])
		dest := ma.evaluate(s, addr, s.Operands[1])
		offset := findOffset(s.Address, dest)
		s.CodeWord1 = int32(mkWord448(op.Opcode[0], d, op.Opcode[1]))
		s.CodeWord2 = int32(offset)
		ma.objectWord(s, addr, uint16(s.CodeWord1))
		ma.objectWord(s, addr+1, uint16(s.CodeWord2))

	case op.Format == arch.FMT_EXP && op.Operands == arch.A_RR:
		ma.requireNOperands(s, 2)
		d := ma.requireReg(s, s.Operands[0])
		e := ma.requireReg(s, s.Operands[1])
		var h uint16
		if op.Pseudo {
			h = op.Opcode[2]
		}
		s.CodeWord1 = int32(mkWord448(op.Opcode[0], d, op.Opcode[1]))
		s.CodeWord2 = int32(mkWord(e, 0, 15, h))
		ma.objectWord(s, addr, uint16(s.CodeWord1))
		ma.objectWord(s, addr+1, uint16(s.CodeWord2))

	case op.Format == arch.FMT_EXP && op.Operands == arch.A_RRR:
		ma.requireNOperands(s, 3)
		d := ma.requireReg(s, s.Operands[0])
		e := ma.requireReg(s, s.Operands[1])
		fr := ma.requireReg(s, s.Operands[2])
		var h uint16
		if op.Pseudo {
			h = op.Opcode[2]
		}
		s.CodeWord1 = int32(mkWord448(op.Opcode[0], d, op.Opcode[1]))
		s.CodeWord2 = int32(mkWord(e, fr, 0, h))
		ma.objectWord(s, addr, uint16(s.CodeWord1))
		ma.objectWord(s, addr+1, uint16(s.CodeWord2))

	case op.Format == arch.FMT_EXP && op.Operands == arch.A_RK && !op.Pseudo:
		ma.requireNOperands(s, 2)
		d := ma.requireReg(s, s.Operands[0])
		k := ma.evaluate(s, addr, s.Operands[1])
		s.CodeWord1 = int32(mkWord448(op.Opcode[0], d, op.Opcode[1]))
		s.CodeWord2 = int32(k.Word)
		ma.objectWord(s, addr, uint16(s.CodeWord1))
		ma.objectWord(s, addr+1, uint16(s.CodeWord2))

	case op.Format == arch.FMT_EXP && op.Operands == arch.A_RK && op.Pseudo:
		ma.requireNOperands(s, 2)
		d := ma.requireReg(s, s.Operands[0])
		fv := ma.requireK4(s, s.Operands[1])
		s.CodeWord1 = int32(mkWord448(op.Opcode[0], d, op.Opcode[1]))
		s.CodeWord2 = int32(mkWord(0, fv, 0, op.Opcode[2]))
		ma.objectWord(s, addr, uint16(s.CodeWord1))
		ma.objectWord(s, addr+1, uint16(s.CodeWord2))

	case op.Format == arch.FMT_EXP && op.Operands == arch.A_RKK:
		ma.requireNOperands(s, 3)
		d := ma.requireReg(s, s.Operands[0])
		fv := ma.requireK4(s, s.Operands[1])
		g := ma.requireK4(s, s.Operands[2])
		var h uint16
		if len(op.Opcode) > 2 {
			h = op.Opcode[2]
		}
		s.CodeWord1 = int32(mkWord448(op.Opcode[0], d, op.Opcode[1]))
		s.CodeWord2 = int32(mkWord(0, fv, g, h))
		ma.objectWord(s, addr, uint16(s.CodeWord1))
		ma.objectWord(s, addr+1, uint16(s.CodeWord2))

	case op.Format == arch.FMT_EXP && op.Operands == arch.A_RK_OFFSET:
		ma.requireNOperands(s, 3)
		d := ma.requireReg(s, s.Operands[0])
		e := ma.requireK4(s, s.Operands[1])
		dest := ma.evaluate(s, addr, s.Operands[2])
		offset := findOffset(s.Address, dest)
		s.CodeWord1 = int32(mkWord448(op.Opcode[0], d, op.Opcode[1]))
		s.CodeWord2 = int32(mkWord412(e, offset))
		ma.objectWord(s, addr, uint16(s.CodeWord1))
		ma.objectWord(s, addr+1, uint16(s.CodeWord2))

	case op.Format == arch.FMT_EXP && op.Operands == arch.A_RRK:
		ma.requireNOperands(s, 3)
		d := ma.requireReg(s, s.Operands[0])
		e := ma.requireReg(s, s.Operands[1])
		kv := ma.evaluate(s, addr, s.Operands[2])
		s.CodeWord1 = int32(mkWord448(op.Opcode[0], d, op.Opcode[1]))
		s.CodeWord2 = int32(mkWord448(e, 0, kv.Word))
		ma.objectWord(s, addr, uint16(s.CodeWord1))
		ma.objectWord(s, addr+1, uint16(s.CodeWord2))

	case op.Format == arch.FMT_EXP && op.Operands == arch.A_RRKKK:
		ma.requireNOperands(s, 5)
		d := ma.requireReg(s, s.Operands[0])
		e := ma.requireReg(s, s.Operands[1])
		fv := ma.requireK4(s, s.Operands[2])
		g := ma.requireK4(s, s.Operands[3])
		h := ma.requireK4(s, s.Operands[4])
		s.CodeWord1 = int32(mkWord448(op.Opcode[0], d, op.Opcode[1]))
		s.CodeWord2 = int32(mkWord(e, fv, g, h))
		ma.objectWord(s, addr, uint16(s.CodeWord1))
		ma.objectWord(s, addr+1, uint16(s.CodeWord2))

	case op.Format == arch.FMT_EXP && op.Operands == arch.A_RRKK:
		ma.requireNOperands(s, 4)
		d := ma.requireReg(s, s.Operands[0])
		e := ma.requireReg(s, s.Operands[1])
		fv := ma.requireK4(s, s.Operands[2])
		g := ma.requireK4(s, s.Operands[3])
		var h uint16
		if len(op.Opcode) > 2 {
			h = op.Opcode[2]
		}
		s.CodeWord1 = int32(mkWord448(op.Opcode[0], d, op.Opcode[1]))
		s.CodeWord2 = int32(mkWord(e, fv, g, h))
		ma.objectWord(s, addr, uint16(s.CodeWord1))
		ma.objectWord(s, addr+1, uint16(s.CodeWord2))

	case op.Format == arch.FMT_EXP && op.Operands == arch.A_RC:
		ma.requireNOperands(s, 2)
		m := rcRe.FindStringSubmatch(s.FieldOperands)
		if m == nil {
			ma.errf(s, "operation requires register and control register operands")
			break
		}
		e := ma.requireReg(s, "R"+m[1])
		ctlIdx := ma.findCtlIdx(s, m[2])
		s.CodeWord1 = int32(mkWord448(14, 0, op.Opcode[1]))
		s.CodeWord2 = int32(mkWord(e, ctlIdx, 0, 0))
		ma.objectWord(s, addr, uint16(s.CodeWord1))
		ma.objectWord(s, addr+1, uint16(s.CodeWord2))

	case op.Format == arch.FMT_EXP && op.Operands == arch.A_RRX:
		ma.requireNOperands(s, 3)
		d := ma.requireReg(s, s.Operands[0])
		e := ma.requireReg(s, s.Operands[1])
		disp, index := ma.requireX(s, s.Operands[2])
		gh := ma.requireK8(s, addr+1, disp)
		s.CodeWord1 = int32(mkWord448(op.Opcode[0], d, op.Opcode[1]))
		s.CodeWord2 = int32(mkWord448(e, index, gh))
		ma.objectWord(s, addr, uint16(s.CodeWord1))
		ma.objectWord(s, addr+1, uint16(s.CodeWord2))

	case op.Format == arch.FMT_DATA:
		v := ma.evaluate(s, addr, s.FieldOperands)
		s.CodeWord1 = int32(v.Word)
		ma.objectWord(s, addr, uint16(s.CodeWord1))
		if v.Movability == RELOCATABLE {
			ma.relocation(addr)
		}

	case op.Format == arch.FMT_DIR && op.Operands == arch.A_EXPORT:
		ident := strings.TrimSpace(s.FieldOperands)
		if nameRe.MatchString(ident) {
			ma.Exports = append(ma.Exports, ident)
		} else {
			ma.errf(s, "export requires identifier operand")
		}

	default:
		// directive or empty statement, no code
	}
}

// handleVal emits the relocation or import record for one evaluated
// operand word.
func (ma *Info) handleVal(s *Statement, a uint16, vsrc string, v Value, field string) {
	switch {
	case v.Origin == LOCAL && v.Movability == RELOCATABLE:
		ma.relocation(a)
	case v.Origin == EXTERNAL:
		sym, ok := ma.SymbolTable[vsrc]
		if !ok {
			ma.errf(s, "external symbol %v undefined", vsrc)
			return
		}
		x := fmt.Sprintf("import   %s,%s,%s,%s", sym.Mod, sym.ExtName, arith.Hex4(a), field)
		ma.Imports = append(ma.Imports, x)
	}
}

// Nibble packers for the three machine word layouts.

func mkWord(op, d, a, b uint16) uint16 {
	return (op&0xF)<<12 | (d&0xF)<<8 | (a&0xF)<<4 | b&0xF
}

func mkWord448(x, y, k8 uint16) uint16 {
	return (x&0xF)<<12 | (y&0xF)<<8 | k8&0xFF
}

func mkWord412(k4, k12 uint16) uint16 {
	return (k4&0xF)<<12 | k12&0xFFF
}

func (ma *Info) objectWord(s *Statement, a uint16, x uint16) {
	ma.wordBuffer = append(ma.wordBuffer, x)
	ma.Metadata.AddMapping(a, s.LineNumber)
}

func (ma *Info) relocation(a uint16) {
	ma.relocBuffer = append(ma.relocBuffer, a)
}

func (ma *Info) emitObjectWords() {
	for len(ma.wordBuffer) > 0 {
		n := min(arch.WORDS_PER_LINE, len(ma.wordBuffer))
		ys := make([]string, 0, n)
		for _, w := range ma.wordBuffer[:n] {
			ys = append(ys, arith.Hex4(w))
		}
		ma.wordBuffer = ma.wordBuffer[n:]
		ma.ObjectCode = append(ma.ObjectCode, "data     "+strings.Join(ys, ","))
	}
}

func (ma *Info) emitRelocations() {
	for len(ma.relocBuffer) > 0 {
		n := min(arch.WORDS_PER_LINE, len(ma.relocBuffer))
		ys := make([]string, 0, n)
		for _, w := range ma.relocBuffer[:n] {
			ys = append(ys, arith.Hex4(w))
		}
		ma.relocBuffer = ma.relocBuffer[n:]
		ma.ObjectCode = append(ma.ObjectCode, "relocate "+strings.Join(ys, ","))
	}
}

func (ma *Info) emitExports() {
	for _, y := range ma.Exports {
		sym, ok := ma.SymbolTable[y]
		if !ok {
			continue
		}
		r := "fixed"
		if sym.Value.Movability == RELOCATABLE {
			r = "relocatable"
		}
		ma.ObjectCode = append(ma.ObjectCode,
			fmt.Sprintf("export   %s,%s,%s", y, arith.Hex4(sym.Value.Word), r))
	}
}

func (ma *Info) emitImports() {
	ma.ObjectCode = append(ma.ObjectCode, ma.Imports...)
}

// listingLine formats one statement for the listing: line number,
// address, up to two code words, and the reconstructed source.
func listingLine(s *Statement) string {
	var parts []string
	if s.FieldLabel != "" {
		parts = append(parts, s.FieldLabel+":")
	}
	if s.FieldOperation != "" {
		parts = append(parts, s.FieldOperation)
	}
	if s.FieldOperands != "" {
		parts = append(parts, s.FieldOperands)
	}
	display := strings.Join(parts, " ")
	if s.FieldComment != "" {
		display = fmt.Sprintf("%-40s %s", display, s.FieldComment)
	}

	code1 := "    "
	if s.CodeWord1 >= 0 {
		code1 = arith.Hex4(uint16(s.CodeWord1))
	}
	code2 := "    "
	if s.CodeWord2 >= 0 {
		code2 = arith.Hex4(uint16(s.CodeWord2))
	}
	return fmt.Sprintf("%4d %s %s %s %s",
		s.LineNumber+1, arith.Hex4(s.Address.Word), code1, code2, display)
}

// SymbolTableListing renders the symbol table sorted by name.
func (ma *Info) SymbolTableListing() []string {
	xs := []string{"Symbol table", "Name        Val Org Mov  Def Used"}
	names := make([]string, 0, len(ma.SymbolTable))
	for name := range ma.SymbolTable {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		xs = append(xs, ma.SymbolTable[name].String())
	}
	return xs
}

// ErrorListing returns every diagnostic with its line number.
func (ma *Info) ErrorListing() []string {
	var xs []string
	for _, s := range ma.Stmts {
		for _, e := range s.Errors {
			xs = append(xs, fmt.Sprintf("line %d: %s", s.LineNumber+1, e))
		}
	}
	return xs
}

// Err returns every diagnostic as one error value, each wrapped as an
// ErrSyntax carrying its source position, or nil when the assembly
// was clean.
func (ma *Info) Err() error {
	var errs []error
	for _, s := range ma.Stmts {
		for _, e := range s.Errors {
			errs = append(errs, ErrSyntax{
				LineNo: s.LineNumber + 1,
				Line:   strings.TrimRight(s.SrcLine, "\r\n"),
				Err:    errors.New(e),
			})
		}
	}
	return errors.Join(errs...)
}
