package sink

import (
	"fenrir/domain/orderbook"
	"fenrir/infra/outbox"
)

// Outbox records each trade durably for at-least-once downstream
// delivery. The broadcaster job drains it asynchronously.
type Outbox struct {
	box *outbox.Outbox
}

func NewOutbox(box *outbox.Outbox) *Outbox {
	return &Outbox{box: box}
}

func (s *Outbox) Publish(t orderbook.Trade) error {
	payload, err := EncodeEvent(t)
	if err != nil {
		return err
	}
	return s.box.Append(t.Seq, payload)
}

// Close is a no-op; the outbox store is owned by whoever opened it.
func (s *Outbox) Close() error {
	return nil
}
