package service

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fenrir/domain/orderbook"
)

// captureSink records every published trade; optionally it fails first.
type captureSink struct {
	mu     sync.Mutex
	trades []orderbook.Trade
	err    error
}

func (c *captureSink) Publish(t orderbook.Trade) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.trades = append(c.trades, t)
	return nil
}

func (c *captureSink) Close() error { return nil }

func (c *captureSink) all() []orderbook.Trade {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]orderbook.Trade(nil), c.trades...)
}

func place(t *testing.T, svc *OrderService, qty int64, price float64, side orderbook.Side) *Receipt {
	t.Helper()
	r, err := svc.PlaceOrder("AAPL", qty, price, side)
	require.NoError(t, err)
	return r
}

func TestExactMatch(t *testing.T) {
	rec := &captureSink{}
	svc := NewOrderService(zap.NewNop(), rec)
	defer svc.Close()

	place(t, svc, 100, 185.50, orderbook.Bid)
	r := place(t, svc, 100, 185.50, orderbook.Ask)
	<-r.Done()

	trades := rec.all()
	require.Len(t, trades, 1)
	assert.Equal(t, int64(100), trades[0].Qty)
	assert.Equal(t, 185.50, trades[0].Price)
	assert.Equal(t, "AAPL", trades[0].Symbol)

	bids, asks := svc.Book().Depth()
	assert.Zero(t, bids)
	assert.Zero(t, asks)
}

func TestPartialFill(t *testing.T) {
	rec := &captureSink{}
	svc := NewOrderService(zap.NewNop(), rec)
	defer svc.Close()

	place(t, svc, 150, 185.50, orderbook.Bid)
	r := place(t, svc, 100, 185.50, orderbook.Ask)
	<-r.Done()

	trades := rec.all()
	require.Len(t, trades, 1)
	assert.Equal(t, int64(100), trades[0].Qty)

	rest := svc.Book().BestBid()
	require.NotNil(t, rest)
	assert.Equal(t, int64(50), rest.Remaining())
}

func TestFIFOOrdering(t *testing.T) {
	rec := &captureSink{}
	svc := NewOrderService(zap.NewNop(), rec)
	defer svc.Close()

	r1 := place(t, svc, 50, 185.50, orderbook.Bid)
	r2 := place(t, svc, 50, 185.50, orderbook.Bid)
	r3 := place(t, svc, 100, 185.50, orderbook.Ask)
	<-r1.Done()
	<-r2.Done()
	<-r3.Done()

	trades := rec.all()
	require.Len(t, trades, 2)
	assert.Equal(t, int64(50), trades[0].Qty)
	assert.Equal(t, int64(50), trades[1].Qty)

	// Trade sequences rise in emission order.
	assert.Less(t, trades[0].Seq, trades[1].Seq)
}

func TestNoFalseMatch(t *testing.T) {
	rec := &captureSink{}
	svc := NewOrderService(zap.NewNop(), rec)
	defer svc.Close()

	place(t, svc, 100, 185.40, orderbook.Bid)
	r := place(t, svc, 50, 185.60, orderbook.Ask)
	<-r.Done()

	assert.Empty(t, rec.all())
	assert.False(t, svc.Book().Crossed())
}

func TestConcurrentPlacement(t *testing.T) {
	const n = 10

	rec := &captureSink{}
	svc := NewOrderService(zap.NewNop(), rec)

	var wg sync.WaitGroup
	receipts := make(chan *Receipt, 2*n)
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			r, err := svc.PlaceOrder("AAPL", 10, 185.50, orderbook.Bid)
			if assert.NoError(t, err) {
				receipts <- r
			}
		}()
		go func() {
			defer wg.Done()
			r, err := svc.PlaceOrder("AAPL", 10, 185.50, orderbook.Ask)
			if assert.NoError(t, err) {
				receipts <- r
			}
		}()
	}
	wg.Wait()
	close(receipts)
	for r := range receipts {
		<-r.Done()
	}

	trades := rec.all()
	require.Len(t, trades, n)
	var total int64
	for _, tr := range trades {
		total += tr.Qty
		assert.Equal(t, 185.50, tr.Price)
	}
	assert.Equal(t, int64(n*10), total)

	svc.Close()
	bids, asks := svc.Book().Depth()
	assert.Zero(t, bids)
	assert.Zero(t, asks)
}

func TestSinkFailureDoesNotAbortMatching(t *testing.T) {
	broken := &captureSink{err: errors.New("disk full")}
	rec := &captureSink{}
	svc := NewOrderService(zap.NewNop(), broken, rec)
	defer svc.Close()

	place(t, svc, 30, 185.50, orderbook.Bid)
	place(t, svc, 70, 185.50, orderbook.Bid)
	r := place(t, svc, 100, 185.50, orderbook.Ask)
	<-r.Done()

	// The broken sink saw nothing, the healthy one saw everything.
	assert.Empty(t, broken.all())
	trades := rec.all()
	require.Len(t, trades, 2)
	assert.Equal(t, int64(30), trades[0].Qty)
	assert.Equal(t, int64(70), trades[1].Qty)
}

func TestPlaceAfterClose(t *testing.T) {
	svc := NewOrderService(zap.NewNop())
	svc.Close()

	_, err := svc.PlaceOrder("AAPL", 10, 185.50, orderbook.Bid)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestCloseDrainsBacklog(t *testing.T) {
	rec := &captureSink{}
	svc := NewOrderService(zap.NewNop(), rec)

	for i := 0; i < 100; i++ {
		place(t, svc, 1, 185.50, orderbook.Bid)
		place(t, svc, 1, 185.50, orderbook.Ask)
	}
	svc.Close()

	assert.Len(t, rec.all(), 100)
}
