package sink

import (
	"encoding/json"

	"fenrir/domain/orderbook"
)

// Sink receives each executed trade synchronously, inside the
// admission cycle that produced it. Implementations must treat
// failures as their own problem: the engine logs a returned error and
// keeps matching.
type Sink interface {
	Publish(orderbook.Trade) error
	Close() error
}

// Event is the wire shape of a trade published downstream.
type Event struct {
	V      int     `json:"v"`
	Type   string  `json:"type"`
	Symbol string  `json:"symbol"`
	Qty    int64   `json:"qty"`
	Price  float64 `json:"price"`
	Seq    uint64  `json:"seq"`
	Ts     int64   `json:"ts"`
}

// EncodeEvent renders a trade as a versioned JSON event.
func EncodeEvent(t orderbook.Trade) ([]byte, error) {
	return json.Marshal(Event{
		V:      1,
		Type:   "trade",
		Symbol: t.Symbol,
		Qty:    t.Qty,
		Price:  t.Price,
		Seq:    t.Seq,
		Ts:     t.At,
	})
}
