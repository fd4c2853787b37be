package asm

import (
	"regexp"
	"strings"

	"github.com/s16arch/s16/arch"
)

// charSet lists every character allowed in a source line. Word
// processors often insert characters outside it.
const charSet = "_abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789" +
	" \t,;\r\n" +
	`"'` +
	".$[]()+-*" +
	"?`<=>!%^&{}#~@:|\\/"

// validateChars returns the positions of invalid characters.
func validateChars(xs string) []int {
	var bad []int
	for i, c := range xs {
		if !strings.ContainsRune(charSet, c) {
			bad = append(bad, i)
		}
	}
	return bad
}

var (
	nameRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)
	intRe  = regexp.MustCompile(`^-?[0-9]+$`)
	hexRe  = regexp.MustCompile(`^\$([0-9a-fA-F]{4})$`)
	rcRe   = regexp.MustCompile(`^R([0-9a-fA-F]|(?:1[0-5])),([a-zA-Z][a-zA-Z0-9]*)$`)
	xrRe   = regexp.MustCompile(`^([^\[]+)\[(.*)\]$`)
)

// Statement is one parsed source line with its generated code.
type Statement struct {
	LineNumber int
	Address    Value
	SrcLine    string

	FieldLabel     string
	FieldOperation string
	FieldOperands  string
	FieldComment   string

	HasLabel  bool
	Operation *arch.Spec
	Operands  []string

	CodeSize         Value
	OrgAddr          Value
	ReserveSize      Value
	LocCounterUpdate Value

	// Generated code words; -1 when the slot is unused.
	CodeWord1 int32
	CodeWord2 int32

	ListingPlain string
	Errors       []string
}

func newStatement(lineNumber int, address Value, srcLine string) *Statement {
	return &Statement{
		LineNumber: lineNumber,
		Address:    address,
		SrcLine:    srcLine,
		Operation:  arch.Empty,
		CodeWord1:  -1,
		CodeWord2:  -1,
	}
}

// parseLine splits a source line into label, operation, operands,
// and comment fields. A label is marked by a trailing colon; without
// one, a first token that is not a known operation is taken as a
// label.
func (ma *Info) parseLine(s *Statement) {
	line := s.SrcLine

	if i := strings.IndexByte(line, ';'); i != -1 {
		s.FieldComment = line[i:]
		line = strings.TrimSpace(line[:i])
	} else {
		line = strings.TrimSpace(line)
	}

	if line == "" {
		ma.parseLabel(s)
		ma.parseOperation(s)
		return
	}

	parts := strings.Fields(line)
	var rest []string
	first := parts[0]
	switch {
	case strings.HasSuffix(first, ":"):
		s.FieldLabel = strings.TrimSuffix(first, ":")
		rest = parts[1:]
	default:
		if _, known := arch.Statements[strings.ToLower(first)]; known {
			rest = parts
		} else {
			s.FieldLabel = first
			rest = parts[1:]
		}
	}

	if len(rest) > 0 {
		s.FieldOperation = rest[0]
		if len(rest) > 1 {
			s.FieldOperands = strings.Join(rest[1:], " ")
		}
	}

	for _, op := range strings.Split(s.FieldOperands, ",") {
		op = strings.TrimSpace(op)
		if op != "" {
			s.Operands = append(s.Operands, op)
		}
	}

	ma.parseLabel(s)
	ma.parseOperation(s)
}

func (ma *Info) parseLabel(s *Statement) {
	switch {
	case s.FieldLabel == "":
		s.HasLabel = false
	case nameRe.MatchString(s.FieldLabel):
		s.HasLabel = true
	default:
		s.HasLabel = false
		ma.errf(s, "%v is not a valid label", s.FieldLabel)
	}
}

func (ma *Info) parseOperation(s *Statement) {
	opStr := strings.ToLower(strings.TrimPrefix(s.FieldOperation, "."))
	if opStr == "" {
		s.Operation = arch.Empty
		return
	}
	x, ok := arch.Statements[opStr]
	if !ok {
		s.Operation = arch.Empty
		s.CodeSize = Value{}
		ma.errf(s, "%v is not a valid operation", opStr)
		return
	}
	s.Operation = x
	switch {
	case x.Format == arch.FMT_DIR && x.Operands == arch.A_MODULE:
		ma.ModName = s.FieldLabel
	case x.Format == arch.FMT_DATA:
		s.CodeSize = ConstVal(1)
	case x.Format == arch.FMT_DIR && x.Operands == arch.A_RESERVE:
		s.ReserveSize = ma.evaluate(s, ma.LocationCounter.Word, s.FieldOperands)
	case x.Format == arch.FMT_DIR && x.Operands == arch.A_ORG:
		s.OrgAddr = ma.evaluate(s, ma.LocationCounter.Word, s.FieldOperands)
	default:
		s.CodeSize = ConstVal(x.Format.Size())
	}
}
