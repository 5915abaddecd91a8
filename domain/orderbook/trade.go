package orderbook

// Trade is the immutable record of one match. Price is always the
// resting ask's price, regardless of which side arrived second. Seq and
// At are stamped by the emitter when the trade leaves the book.
type Trade struct {
	Symbol string
	Qty    int64
	Price  float64
	Seq    uint64
	At     int64
}
