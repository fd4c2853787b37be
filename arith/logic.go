package arith

import (
	"github.com/s16arch/s16/arch"
)

// Truth table function codes for common operations. The bits of a
// function code give its outputs: bit 3 for inputs (0,0), bit 2 for
// (0,1), bit 1 for (1,0), and bit 0 for (1,1).
const (
	FCN_AND = uint16(1)
	FCN_XOR = uint16(6)
	FCN_OR  = uint16(7)
	FCN_INV = uint16(12)
)

// lut evaluates a 4-bit truth table function on one pair of bits.
func lut(fcn, x, y uint16) uint16 {
	switch {
	case x == 0 && y == 0:
		return arch.GetBit(fcn, 3)
	case x == 0:
		return arch.GetBit(fcn, 2)
	case y == 0:
		return arch.GetBit(fcn, 1)
	default:
		return arch.GetBit(fcn, 0)
	}
}

// LogicBit applies a truth table function to a single pair of bits.
func LogicBit(fcn, x, y uint16) uint16 {
	return lut(fcn, x, y)
}

// LogicWord applies a truth table function to every bit pair of two
// words.
func LogicWord(fcn, x, y uint16) uint16 {
	var result uint16
	for i := uint16(0); i < 16; i++ {
		if lut(fcn, arch.GetBit(x, i), arch.GetBit(y, i)) == 1 {
			result |= 1 << i
		}
	}
	return result
}

// LogicField applies a truth table function to the bits idx1..idx2
// of x and y; bits outside the field are taken from x.
func LogicField(fcn, x, y uint16, idx1, idx2 uint16) uint16 {
	var result uint16
	for i := uint16(0); i < 16; i++ {
		var b uint16
		if i >= idx1 && i <= idx2 {
			b = lut(fcn, arch.GetBit(x, i), arch.GetBit(y, i))
		} else {
			b = arch.GetBit(x, i)
		}
		result = arch.PutBit(result, i, b)
	}
	return result
}

// FieldMask returns a mask of fsize one bits whose most significant
// bit is at position i, for a word of wsize bits.
func FieldMask(wsize uint16, wmask uint16, i, fsize uint16) uint16 {
	p := wmask >> (wsize - fsize)
	return p << (i - fsize + 1)
}

// Extract copies the bit field of src between positions srcRight and
// srcLeft into dest starting at destRight, preserving the bits of
// dest outside the field.
func Extract(wsize uint16, wmask uint16, dest, src uint16, destRight, srcRight, srcLeft uint16) uint16 {
	fieldSize := srcLeft - srcRight + 1
	destLeft := destRight + fieldSize - 1
	dmask := FieldMask(wsize, wmask, destLeft, fieldSize)
	dclear := dest &^ dmask

	smask := FieldMask(wsize, wmask, srcLeft, fieldSize)
	sclear := src & smask

	p := sclear >> (srcLeft - fieldSize + 1)
	q := p << (destLeft - fieldSize + 1)
	return dclear | q
}

// Extracti is Extract with the source word inverted first.
func Extracti(wsize uint16, wmask uint16, dest, src uint16, destRight, srcRight, srcLeft uint16) uint16 {
	return Extract(wsize, wmask, dest, Invert(src), destRight, srcRight, srcLeft)
}
