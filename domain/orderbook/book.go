package orderbook

// Book owns both sides of a single instrument. It is single-writer and
// deterministic: callers serialize access, the book never locks.
type Book struct {
	Bids *RBTree
	Asks *RBTree
}

func NewBook() *Book {
	return &Book{
		Bids: NewRBTree(),
		Asks: NewRBTree(),
	}
}

// Insert queues o at its side's price level. It does not match; one
// admission cycle is Insert followed by MatchAll.
func (b *Book) Insert(o *Order) {
	if o.Side == Bid {
		b.Bids.UpsertLevel(o.Price).Enqueue(o)
	} else {
		b.Asks.UpsertLevel(o.Price).Enqueue(o)
	}
}

// MatchAll drains every possible cross and calls emit once per match.
// Each iteration either strictly reduces total resting quantity or
// terminates, so the loop always ends with the book non-crossed.
func (b *Book) MatchAll(emit func(Trade)) {
	for {
		bids := b.Bids.MaxLevel()
		asks := b.Asks.MinLevel()
		if bids == nil || asks == nil {
			return
		}
		if bids.Price < asks.Price {
			return
		}

		buy := bids.Head()
		sell := asks.Head()
		qty := min(buy.Remaining(), sell.Remaining())

		emit(Trade{Symbol: buy.Symbol, Qty: qty, Price: asks.Price})

		buy.Filled += qty
		sell.Filled += qty
		bids.reduce(qty)
		asks.reduce(qty)

		if buy.Remaining() == 0 {
			bids.PopHead()
			if bids.Empty() {
				b.Bids.DeleteLevel(bids.Price)
			}
		}
		if sell.Remaining() == 0 {
			asks.PopHead()
			if asks.Empty() {
				b.Asks.DeleteLevel(asks.Price)
			}
		}
	}
}

// BestBid returns the head order of the highest bid level, or nil.
func (b *Book) BestBid() *Order {
	lvl := b.Bids.MaxLevel()
	if lvl == nil {
		return nil
	}
	return lvl.Head()
}

// BestAsk returns the head order of the lowest ask level, or nil.
func (b *Book) BestAsk() *Order {
	lvl := b.Asks.MinLevel()
	if lvl == nil {
		return nil
	}
	return lvl.Head()
}

// Crossed reports whether the best bid price reaches the best ask
// price. It must be false outside a matching cycle.
func (b *Book) Crossed() bool {
	bid := b.Bids.MaxLevel()
	ask := b.Asks.MinLevel()
	return bid != nil && ask != nil && bid.Price >= ask.Price
}

// Depth returns the number of resting orders per side.
func (b *Book) Depth() (bids, asks int) {
	b.Bids.ForEachAscending(func(lvl *PriceLevel) bool {
		bids += lvl.OrderCount
		return true
	})
	b.Asks.ForEachAscending(func(lvl *PriceLevel) bool {
		asks += lvl.OrderCount
		return true
	})
	return bids, asks
}

// ---- traversal helpers ----

// BidsWalk visits bid levels best to worst.
func (b *Book) BidsWalk(fn func(*PriceLevel) bool) {
	b.Bids.ForEachDescending(fn)
}

// AsksWalk visits ask levels best to worst.
func (b *Book) AsksWalk(fn func(*PriceLevel) bool) {
	b.Asks.ForEachAscending(fn)
}
