// Package linker combines relocatable object modules into one
// executable module. Pass 1 parses each module's object text and
// places the modules consecutively in the address space; pass 2
// resolves imports against the collected exports and applies
// relocations. Metadata from all modules is merged so the executable
// still maps addresses to source listing lines.
package linker
