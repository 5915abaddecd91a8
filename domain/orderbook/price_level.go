package orderbook

// PriceLevel is a FIFO queue of resting orders at a single price.
type PriceLevel struct {
	Price float64

	head *Order
	tail *Order

	TotalQty   int64
	OrderCount int
}

// Enqueue inserts o keeping the level sorted by Seq. Time priority is
// construction order, not insertion order: concurrent admission may
// deliver orders to the level out of seq order. The walk starts at the
// tail, so in-order arrival costs O(1).
func (p *PriceLevel) Enqueue(o *Order) {
	p.TotalQty += o.Remaining()
	p.OrderCount++

	if p.head == nil {
		p.head = o
		p.tail = o
		return
	}

	at := p.tail
	for at != nil && at.Seq > o.Seq {
		at = at.prev
	}
	if at == nil {
		o.next = p.head
		p.head.prev = o
		p.head = o
		return
	}
	o.prev = at
	o.next = at.next
	if at.next != nil {
		at.next.prev = o
	} else {
		p.tail = o
	}
	at.next = o
}

func (p *PriceLevel) PopHead() *Order {
	o := p.head
	if o == nil {
		return nil
	}

	p.head = o.next
	if p.head != nil {
		p.head.prev = nil
	} else {
		p.tail = nil
	}

	o.next = nil
	o.prev = nil

	p.TotalQty -= o.Remaining()
	p.OrderCount--

	return o
}

func (p *PriceLevel) Empty() bool {
	return p.head == nil
}

// Read-only helper
func (p *PriceLevel) Head() *Order {
	return p.head
}

// reduce accounts for a fill against an order resting at this level.
func (p *PriceLevel) reduce(qty int64) {
	p.TotalQty -= qty
}
