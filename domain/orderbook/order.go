package orderbook

type Side int

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	if s == Ask {
		return "SELL"
	}
	return "BUY"
}

// Order is a pure domain entity. Everything except Filled is fixed at
// construction; Seq breaks price ties in construction order.
type Order struct {
	Symbol string
	Price  float64
	Qty    int64
	Filled int64
	Seq    uint64
	Side   Side

	next *Order
	prev *Order
}

// New builds an order with its sequence stamped immediately, before the
// order ever reaches the engine. FIFO fairness at equal price depends on
// seq being monotonic across concurrent constructors.
func New(symbol string, qty int64, price float64, side Side, seq uint64) *Order {
	return &Order{
		Symbol: symbol,
		Qty:    qty,
		Price:  price,
		Side:   side,
		Seq:    seq,
	}
}

func (o *Order) Remaining() int64 {
	return o.Qty - o.Filled
}

// Read-only traversal helper
func (o *Order) Next() *Order {
	return o.next
}
