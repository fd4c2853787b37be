// Package obj defines the textual interchange formats shared by the
// assembler, linker, and emulator: object code text, metadata text,
// and the ObjMd container that bundles them for one module.
package obj

import (
	"regexp"
	"strings"
)

var (
	objLineRe   = regexp.MustCompile(`^([a-z]+)(?:\s+(.*))?$`)
	blankLineRe = regexp.MustCompile(`^\s*$`)
)

// ParseLine splits one line of object text into its operation and
// comma-separated operands. A blank line yields an empty operation;
// ok is false when the line is malformed.
func ParseLine(xs string) (operation string, operands []string, ok bool) {
	if m := objLineRe.FindStringSubmatch(xs); m != nil {
		operation = m[1]
		if m[2] != "" {
			operands = strings.Split(m[2], ",")
		}
		return operation, operands, true
	}
	if blankLineRe.MatchString(xs) {
		return "", nil, true
	}
	return "", nil, false
}

// ObjMd holds the object code and metadata text of one module.
type ObjMd struct {
	ModName string
	ObjText string
	MdText  string
}

func (o *ObjMd) ObjLines() []string {
	return strings.Split(o.ObjText, "\n")
}

func (o *ObjMd) MdLines() []string {
	if o.MdText == "" {
		return nil
	}
	return strings.Split(o.MdText, "\n")
}

// IsExecutable reports whether the object code can be booted
// directly: it must be nonempty and contain no import records.
func (o *ObjMd) IsExecutable() bool {
	if !o.HasObjectCode() {
		return false
	}
	for _, xs := range o.ObjLines() {
		op, _, _ := ParseLine(xs)
		if op == "import" {
			return false
		}
	}
	return true
}

func (o *ObjMd) HasObjectCode() bool {
	return o.ObjText != ""
}

// ShowShort gives an abbreviated description for diagnostics.
func (o *ObjMd) ShowShort() string {
	var sb strings.Builder
	sb.WriteString("Object/Metadata:\n")
	sb.WriteString("object module " + o.ModName + "\n")
	for i, xs := range o.ObjLines() {
		if i >= 3 {
			break
		}
		sb.WriteString(xs + "\n")
	}
	return sb.String()
}
