// Package arch defines the Sigma16 instruction set architecture tables:
// instruction formats, statement specifications for every mnemonic and
// pseudo-mnemonic, control register names, and the bit assignments for
// the condition code, status register, and interrupt request/mask words.
package arch
