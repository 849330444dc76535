package dataflow

import (
	"sync/atomic"

	"github.com/openpass-sim/kernel/internal/signal"
)

// Buffer is the rendezvous point at one output port. The
// current slot is published atomically; a reader acquiring at time t
// sees the value from the most recent Publish that happened at or before
// t.
type Buffer struct {
	current atomic.Pointer[signal.Signal]
}

// NewBuffer returns an empty buffer with no published value yet.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Publish atomically swaps in a new signal. Concurrent readers observe
// either the prior value or this one, never a partial write.
func (b *Buffer) Publish(s signal.Signal) {
	b.current.Store(&s)
}

// Load returns the currently published signal and whether one has ever
// been published.
func (b *Buffer) Load() (signal.Signal, bool) {
	p := b.current.Load()
	if p == nil {
		return nil, false
	}
	return *p, true
}
