package arith

import (
	"fmt"
)

// Hex4 renders a word as four lowercase hex digits.
func Hex4(x uint16) string {
	return fmt.Sprintf("%04x", x)
}

// Hex8 renders a 32-bit value as two hex words separated by a space.
func Hex8(x uint32) string {
	return fmt.Sprintf("%04x %04x", uint16(x>>16), uint16(x&0xFFFF))
}

// ParseHex4 converts exactly four hex digits to a word.
func ParseHex4(h string) (w uint16, err error) {
	if len(h) != 4 {
		return 0, ErrHex4(h)
	}
	for i := 0; i < 4; i++ {
		d, ok := hexDigit(h[i])
		if !ok {
			return 0, ErrHex4(h)
		}
		w = w<<4 | uint16(d)
	}
	return w, nil
}

func hexDigit(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return 10 + int(c-'a'), true
	case c >= 'A' && c <= 'F':
		return 10 + int(c-'A'), true
	default:
		return 0, false
	}
}
