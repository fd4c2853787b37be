// Package emu executes machine language programs. A Core owns a
// state vector and steps through the fetch-decode-execute cycle,
// handling interrupts, traps, and the interval timer. A host can run
// a core to completion, step it one instruction at a time, or drive
// it in bounded slices while watching the control block for status
// changes.
package emu
