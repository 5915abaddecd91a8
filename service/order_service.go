package service

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"fenrir/domain/orderbook"
	"fenrir/infra/sequence"
	"fenrir/sink"
)

// ErrClosed is returned when an order is placed after Close.
var ErrClosed = errors.New("service: order service closed")

/*
OrderService is the ONLY write entry point into the book.

It applies the single-writer discipline: both book sides are owned by
one goroutine, and every admission is a message on an ordered inbox
into that goroutine. Insert, full match drain, and sink emission happen
back to back before the next admission is taken, so no observer ever
sees a crossed book.
*/
type OrderService struct {
	book     *orderbook.Book
	orderSeq *sequence.Sequencer
	tradeSeq *sequence.Sequencer
	sinks    []sink.Sink
	in       *inbox
	log      *zap.Logger

	done chan struct{}
}

// NewOrderService wires the service and starts the owner goroutine.
// Sinks are invoked in the order given, each match, every sink.
func NewOrderService(log *zap.Logger, sinks ...sink.Sink) *OrderService {
	s := &OrderService{
		book:     orderbook.NewBook(),
		orderSeq: sequence.New(0),
		tradeSeq: sequence.New(0),
		sinks:    sinks,
		in:       newInbox(),
		log:      log,
		done:     make(chan struct{}),
	}
	go s.run()
	return s
}

// Receipt is the optional completion handle for one admission.
type Receipt struct {
	seq  uint64
	done chan struct{}
}

// Seq returns the admission sequence stamped on the order.
func (r *Receipt) Seq() uint64 { return r.seq }

// Done closes once the admission cycle (insert, full drain, sink
// emission) has completed. Callers that want fire-and-forget simply
// drop the receipt.
func (r *Receipt) Done() <-chan struct{} { return r.done }

// PlaceOrder admits an order and returns immediately. The order's
// sequence is stamped here, at construction, not when the owner picks
// it up. Fields are taken as given: the engine does not validate
// quantity or price.
func (s *OrderService) PlaceOrder(symbol string, qty int64, price float64, side orderbook.Side) (*Receipt, error) {
	o := orderbook.New(symbol, qty, price, side, s.orderSeq.Next())
	r := &Receipt{seq: o.Seq, done: make(chan struct{})}

	if err := s.in.push(submission{order: o, receipt: r}); err != nil {
		return nil, err
	}
	return r, nil
}

// Close stops admission, waits for the backlog to drain, then closes
// the sinks. Placing after Close returns ErrClosed.
func (s *OrderService) Close() {
	s.in.close()
	<-s.done

	for _, sk := range s.sinks {
		if err := sk.Close(); err != nil {
			s.log.Warn("sink close failed", zap.Error(err))
		}
	}
}

// Book exposes the underlying book. Safe to read only when the owner
// is known idle: after Close, or after the receipts of all placed
// orders have completed.
func (s *OrderService) Book() *orderbook.Book {
	return s.book
}

func (s *OrderService) run() {
	defer close(s.done)

	for {
		sub, ok := s.in.pop()
		if !ok {
			return
		}

		s.book.Insert(sub.order)
		s.book.MatchAll(func(t orderbook.Trade) {
			t.Seq = s.tradeSeq.Next()
			t.At = time.Now().UnixNano()
			s.publish(t)
		})

		close(sub.receipt.done)
	}
}

// publish fans one trade out to every sink. A failing sink is logged
// and skipped; it must never stall or abort the matching loop.
func (s *OrderService) publish(t orderbook.Trade) {
	for _, sk := range s.sinks {
		if err := sk.Publish(t); err != nil {
			s.log.Warn("trade sink failed",
				zap.Error(err),
				zap.String("symbol", t.Symbol),
				zap.Int64("qty", t.Qty),
				zap.Float64("price", t.Price),
				zap.Uint64("seq", t.Seq),
			)
		}
	}
}
