// Package asm implements the two-pass assembler. Pass 1 parses each
// source line and binds labels to the location counter; pass 2
// generates machine code, relocation records, and import and export
// records, and builds the listing. Errors are accumulated per
// statement so a run always produces a complete listing.
package asm
