package emu

import (
	"io"
	"sync"
)

// Console buffers characters between a host and a core. The core side
// uses the io.Reader and io.Writer interfaces, so a Console can be
// assigned to Core.Input and Core.Output; the host side queues input
// lines and drains output. Both sides may run on different
// goroutines.
//
// The read side is nonblocking: when no input is queued, Read reports
// io.EOF and the core sees an empty line. The host can queue more
// input and resume the core afterwards.
type Console struct {
	mu       sync.Mutex
	toCore   []byte
	rd       int
	fromCore []byte
}

func NewConsole() *Console {
	return &Console{}
}

// Submit queues input for the core to read.
func (cn *Console) Submit(s string) {
	cn.mu.Lock()
	cn.toCore = append(cn.toCore, s...)
	cn.mu.Unlock()
}

// Drain takes all output the core has written since the last call.
func (cn *Console) Drain() string {
	cn.mu.Lock()
	s := string(cn.fromCore)
	cn.fromCore = cn.fromCore[:0]
	cn.mu.Unlock()
	return s
}

// Read delivers queued input to the core.
func (cn *Console) Read(p []byte) (int, error) {
	cn.mu.Lock()
	defer cn.mu.Unlock()
	if cn.rd >= len(cn.toCore) {
		cn.toCore = cn.toCore[:0]
		cn.rd = 0
		return 0, io.EOF
	}
	n := copy(p, cn.toCore[cn.rd:])
	cn.rd += n
	return n, nil
}

// Write records output from the core.
func (cn *Console) Write(p []byte) (int, error) {
	cn.mu.Lock()
	cn.fromCore = append(cn.fromCore, p...)
	cn.mu.Unlock()
	return len(p), nil
}
