package asm

import (
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/s16arch/s16/arch"
	"github.com/s16arch/s16/arith"
)

// evaluate resolves an operand expression at address a: a symbol, a
// decimal constant, a $hex4 constant, or a $(...) expression. Errors
// are recorded on the statement and yield a zero value.
func (ma *Info) evaluate(s *Statement, a uint16, x string) Value {
	switch {
	case strings.HasPrefix(x, "$(") && strings.HasSuffix(x, ")"):
		w, err := ma.parenEval(x[2 : len(x)-1])
		if err != nil {
			ma.errf(s, "%v", err)
			return Value{}
		}
		return ConstVal(w)
	case nameRe.MatchString(x):
		r, ok := ma.SymbolTable[x]
		if !ok {
			ma.errf(s, "symbol %v is not defined", x)
			return Value{}
		}
		r.UsageLines = append(r.UsageLines, s.LineNumber+1)
		return r.Value
	case intRe.MatchString(x):
		n, err := strconv.Atoi(x)
		if err != nil {
			ma.errf(s, "expression %v has invalid syntax", x)
			return Value{}
		}
		return ConstVal(arith.FromInt(n))
	case hexRe.MatchString(x):
		w, err := arith.ParseHex4(x[1:])
		if err != nil {
			ma.errf(s, "%v", err)
			return Value{}
		}
		return ConstVal(w)
	default:
		ma.errf(s, "expression %v has invalid syntax", x)
		return Value{}
	}
}

// parenEval evaluates a $(...) expression with every fixed local
// symbol predeclared as an integer.
func (ma *Info) parenEval(expr string) (value uint16, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, sym := range ma.SymbolTable {
		if sym.Value.Origin != LOCAL || sym.Value.Movability != FIXED {
			continue
		}
		pred[key] = starlark.MakeInt(int(sym.Value.Word))
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	stRc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	stInt, ok := stRc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	n, ok := stInt.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = arith.FromInt(int(n))
	return
}

// findOffset computes a pc-relative branch offset: the signed word
// distance from the end of the two-word instruction to a relocatable
// target. A fixed target is used directly.
func findOffset(here Value, there Value) uint16 {
	if there.Movability == RELOCATABLE {
		return there.Word - (here.Word + 2)
	}
	return there.Word
}

// requireX parses a displacement[index] operand field.
func (ma *Info) requireX(s *Statement, field string) (disp string, index uint16) {
	if m := xrRe.FindStringSubmatch(field); m != nil {
		return m[1], ma.requireReg(s, m[2])
	}
	return field, 0
}

// requireReg parses a register operand such as R4 or r14.
func (ma *Info) requireReg(s *Statement, field string) uint16 {
	if (len(field) == 2 || len(field) == 3) && (field[0] == 'R' || field[0] == 'r') {
		nText := field[1:]
		var n int64
		var err error
		if len(nText) == 1 {
			n, err = strconv.ParseInt(nText, 16, 32)
		} else {
			n, err = strconv.ParseInt(nText, 10, 32)
		}
		switch {
		case err != nil:
			ma.errf(s, "%v is not a valid register number", field)
		case n < 0 || n > 15:
			ma.errf(s, "register in %v must be between 0 and 15", field)
		default:
			return uint16(n)
		}
		return 0
	}
	ma.errf(s, "%v must be register, e.g. R4 or r14", field)
	return 0
}

// requireNOperands pads the operand list to n entries, reporting a
// count mismatch.
func (ma *Info) requireNOperands(s *Statement, n int) {
	if len(s.Operands) != n {
		ma.errf(s, "There are %d operands but %d are required", len(s.Operands), n)
	}
	for len(s.Operands) < n {
		s.Operands = append(s.Operands, "?")
	}
}

// requireK4 evaluates a small constant operand field.
func (ma *Info) requireK4(s *Statement, xs string) uint16 {
	return ma.evaluate(s, s.Address.Word, xs).Word
}

// requireK8 evaluates an 8-bit constant operand field at address a.
func (ma *Info) requireK8(s *Statement, a uint16, xs string) uint16 {
	return ma.evaluate(s, a, xs).Word
}

// findCtlIdx resolves a control register name.
func (ma *Info) findCtlIdx(s *Statement, xs string) uint16 {
	if i, ok := arch.CtlRegLookup(xs); ok {
		return i
	}
	ma.errf(s, "%v is not a valid control register", xs)
	return 0
}
