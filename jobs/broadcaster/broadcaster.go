package broadcaster

import (
	"context"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"fenrir/infra/outbox"
)

// Publisher is the narrow producer surface the broadcaster needs.
// Production uses sarama; tests substitute a recorder.
type Publisher interface {
	Publish(topic string, key, value []byte) error
	Close() error
}

// Broadcaster drains the trade outbox to Kafka. Delivery is
// at-least-once: a record is marked SENT before the publish attempt
// and ACKED only after the broker confirms, so a crash between the two
// replays the event on the next sweep.
type Broadcaster struct {
	box      *outbox.Outbox
	pub      Publisher
	topic    string
	interval time.Duration
	log      *zap.Logger

	done chan struct{}
}

func New(box *outbox.Outbox, brokers []string, topic string, interval time.Duration, log *zap.Logger) (*Broadcaster, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return NewWithPublisher(box, saramaPublisher{producer}, topic, interval, log), nil
}

func NewWithPublisher(box *outbox.Outbox, pub Publisher, topic string, interval time.Duration, log *zap.Logger) *Broadcaster {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return &Broadcaster{
		box:      box,
		pub:      pub,
		topic:    topic,
		interval: interval,
		log:      log,
		done:     make(chan struct{}),
	}
}

// Run sweeps the outbox until the context is done. It signals Close on
// return, so the outbox store must stay open until Close returns.
func (b *Broadcaster) Run(ctx context.Context) {
	defer close(b.done)

	b.log.Info("broadcaster started",
		zap.String("topic", b.topic),
		zap.Duration("interval", b.interval),
	)

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.sweepOnce()
		}
	}
}

func (b *Broadcaster) sweepOnce() {
	err := b.box.ScanPending(func(rec outbox.Record) error {
		if err := b.box.MarkSent(rec.Seq); err != nil {
			return err
		}

		if err := b.pub.Publish(b.topic, nil, rec.Payload); err != nil {
			b.log.Warn("publish failed, will retry",
				zap.Uint64("seq", rec.Seq),
				zap.Uint32("retries", rec.Retries),
				zap.Error(err),
			)
			return nil // leave SENT, retried next sweep
		}

		return b.box.MarkAcked(rec.Seq)
	})
	if err != nil {
		b.log.Error("outbox sweep failed", zap.Error(err))
		return
	}

	if n, err := b.box.PurgeAcked(); err != nil {
		b.log.Error("outbox purge failed", zap.Error(err))
	} else if n > 0 {
		b.log.Debug("purged acked trade events", zap.Int("count", n))
	}
}

// Close waits for Run to exit, then releases the producer. Cancel
// Run's context first or Close blocks until it is cancelled.
func (b *Broadcaster) Close() error {
	<-b.done
	return b.pub.Close()
}

// -------------------- sarama adapter --------------------

type saramaPublisher struct {
	producer sarama.SyncProducer
}

func (p saramaPublisher) Publish(topic string, key, value []byte) error {
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(value),
	}
	if key != nil {
		msg.Key = sarama.ByteEncoder(key)
	}
	_, _, err := p.producer.SendMessage(msg)
	return err
}

func (p saramaPublisher) Close() error {
	return p.producer.Close()
}
