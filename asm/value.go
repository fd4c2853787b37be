package asm

import (
	"strconv"
	"strings"

	"github.com/s16arch/s16/arith"
)

// Origin tells where a value is defined.
type Origin int

const (
	LOCAL    = Origin(0) // defined in this module
	EXTERNAL = Origin(1) // defined in another module
)

func (o Origin) String() string {
	if o == EXTERNAL {
		return "Ext"
	}
	return "Loc"
}

// Movability tells whether a value changes during relocation.
type Movability int

const (
	FIXED       = Movability(0) // constant
	RELOCATABLE = Movability(1) // adjusted by the module start address
)

func (m Movability) String() string {
	if m == RELOCATABLE {
		return "Rel"
	}
	return "Fix"
}

// Value is a word with its origin and movability attributes. Values
// are passed and stored by copy; a symbol's value never aliases the
// location counter.
type Value struct {
	Word       uint16
	Origin     Origin
	Movability Movability
}

// ConstVal is a fixed local constant.
func ConstVal(k uint16) Value {
	return Value{Word: k}
}

// extVal is the placeholder value of an imported symbol.
var extVal = Value{Origin: EXTERNAL}

// Add accumulates k into v. This is location counter arithmetic:
// adding a fixed size keeps the counter's movability, while setting
// the counter from an evaluated operand adopts that operand's
// movability.
func (v *Value) Add(k Value) {
	v.Word += k.Word
	switch {
	case k.Movability == FIXED:
		// unchanged
	case v.Movability == FIXED:
		v.Movability = k.Movability
	default:
		v.Movability = FIXED
	}
}

// AddVal is checked value addition as used in operand expressions.
// Externals cannot take part in arithmetic, and the sum of two
// relocatable values is meaningless.
func AddVal(x, y Value) (Value, error) {
	switch {
	case x.Origin == EXTERNAL || y.Origin == EXTERNAL:
		return Value{}, ErrExternalArith
	case x.Movability == RELOCATABLE && y.Movability == RELOCATABLE:
		return Value{}, ErrRelocatableSum
	default:
		m := FIXED
		if x.Movability == RELOCATABLE || y.Movability == RELOCATABLE {
			m = RELOCATABLE
		}
		return Value{Word: x.Word + y.Word, Movability: m}, nil
	}
}

func (v Value) String() string {
	return arith.Hex4(v.Word) + " " + v.Origin.String() + " " + v.Movability.String()
}

// Identifier is a symbol table entry. An imported symbol records the
// module and external name it stands for.
type Identifier struct {
	Name       string
	Mod        string
	ExtName    string
	Value      Value
	DefLine    int
	UsageLines []int
}

// FullName is the symbol name qualified by its module when imported.
func (id *Identifier) FullName() string {
	if id.Mod != "" {
		return id.Mod + "." + id.Name
	}
	return id.Name
}

func (id *Identifier) String() string {
	uses := make([]string, 0, len(id.UsageLines))
	for _, u := range id.UsageLines {
		uses = append(uses, strconv.Itoa(u))
	}
	name := id.FullName()
	if len(name) < 11 {
		name += strings.Repeat(" ", 11-len(name))
	}
	def := strconv.Itoa(id.DefLine)
	if len(def) < 5 {
		def = strings.Repeat(" ", 5-len(def)) + def
	}
	return name + id.Value.String() + def + "  " + strings.Join(uses, ",")
}
