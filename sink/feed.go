package sink

import (
	"context"
	"time"

	"fenrir/domain/orderbook"
	"fenrir/infra/kafka"
)

// Feed pushes trades onto the live Kafka feed as they execute. It sits
// on the matching hot path, so publishes are bounded by a short
// timeout; a slow broker costs latency, never correctness.
type Feed struct {
	producer *kafka.Producer
	timeout  time.Duration
}

func NewFeed(producer *kafka.Producer, timeout time.Duration) *Feed {
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	return &Feed{producer: producer, timeout: timeout}
}

func (f *Feed) Publish(t orderbook.Trade) error {
	payload, err := EncodeEvent(t)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	return f.producer.Send(ctx, []byte(t.Symbol), payload)
}

func (f *Feed) Close() error {
	return f.producer.Close()
}
