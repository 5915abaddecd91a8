package service

import (
	"sync"

	"fenrir/domain/orderbook"
)

type submission struct {
	order   *orderbook.Order
	receipt *Receipt
}

// inbox is the unbounded FIFO feeding the owner goroutine. Unbounded
// is deliberate: admission never applies backpressure. pop keeps
// draining queued submissions after close so Close never drops an
// admitted order.
type inbox struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []submission
	closed bool
}

func newInbox() *inbox {
	in := &inbox{}
	in.cond = sync.NewCond(&in.mu)
	return in
}

func (in *inbox) push(sub submission) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.closed {
		return ErrClosed
	}
	in.items = append(in.items, sub)
	in.cond.Signal()
	return nil
}

func (in *inbox) pop() (submission, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()

	for len(in.items) == 0 && !in.closed {
		in.cond.Wait()
	}
	if len(in.items) == 0 {
		return submission{}, false
	}

	sub := in.items[0]
	in.items[0] = submission{}
	in.items = in.items[1:]
	return sub, true
}

func (in *inbox) close() {
	in.mu.Lock()
	defer in.mu.Unlock()

	if !in.closed {
		in.closed = true
		in.cond.Broadcast()
	}
}
