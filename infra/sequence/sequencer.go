package sequence

import "sync/atomic"

// Sequencer generates strictly monotonic sequence IDs. Orders sample it
// at construction time so that FIFO tie-breaks hold even when orders
// are built concurrently.
type Sequencer struct {
	next atomic.Uint64
}

// New creates a sequencer starting from a given value.
func New(start uint64) *Sequencer {
	s := &Sequencer{}
	s.next.Store(start)
	return s
}

// Next returns the next sequence ID.
func (s *Sequencer) Next() uint64 {
	return s.next.Add(1)
}

// Current returns the last issued sequence.
func (s *Sequencer) Current() uint64 {
	return s.next.Load()
}
