// Package arith implements the word-level arithmetic of the Sigma16
// architecture: conversions between binary words and two's complement
// integers, hexadecimal notation, the flag-setting arithmetic
// operations, truth-table logic, and bit field manipulation.
//
// Words are represented as uint16. An operation returns its primary
// result along with a secondary condition code word where the
// architecture defines one.
package arith
