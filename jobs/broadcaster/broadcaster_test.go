package broadcaster

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fenrir/infra/outbox"
)

type fakePublisher struct {
	published [][]byte
	err       error
}

func (f *fakePublisher) Publish(topic string, key, value []byte) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, value)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func openTestOutbox(t *testing.T) *outbox.Outbox {
	t.Helper()
	box, err := outbox.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = box.Close() })
	return box
}

func TestSweepPublishesAndAcks(t *testing.T) {
	box := openTestOutbox(t)
	require.NoError(t, box.Append(1, []byte("trade-1")))
	require.NoError(t, box.Append(2, []byte("trade-2")))

	pub := &fakePublisher{}
	b := NewWithPublisher(box, pub, "trades.events", 0, zap.NewNop())

	b.sweepOnce()

	require.Len(t, pub.published, 2)
	assert.Equal(t, []byte("trade-1"), pub.published[0])
	assert.Equal(t, []byte("trade-2"), pub.published[1])

	// Acked records were purged at the end of the sweep.
	count := 0
	require.NoError(t, box.ScanPending(func(outbox.Record) error {
		count++
		return nil
	}))
	assert.Zero(t, count)
	_, err := box.Get(1)
	assert.ErrorIs(t, err, outbox.ErrNotFound)
}

func TestCloseWaitsForRun(t *testing.T) {
	box := openTestOutbox(t)
	require.NoError(t, box.Append(1, []byte("trade-1")))

	b := NewWithPublisher(box, &fakePublisher{}, "trades.events", time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go b.Run(ctx)

	closed := make(chan struct{})
	go func() {
		_ = b.Close()
		close(closed)
	}()

	// While Run is still sweeping, Close must not return: the caller
	// closes the outbox store right after it.
	select {
	case <-closed:
		t.Fatal("Close returned while the sweep loop was running")
	case <-time.After(20 * time.Millisecond):
	}

	cancel()
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close did not return after cancellation")
	}
}

func TestSweepRetriesAfterFailure(t *testing.T) {
	box := openTestOutbox(t)
	require.NoError(t, box.Append(1, []byte("trade-1")))

	pub := &fakePublisher{err: errors.New("broker down")}
	b := NewWithPublisher(box, pub, "trades.events", 0, zap.NewNop())

	b.sweepOnce()

	// Failed publish leaves the record pending, marked SENT.
	rec, err := box.Get(1)
	require.NoError(t, err)
	assert.Equal(t, outbox.StateSent, rec.State)
	assert.Equal(t, uint32(1), rec.Retries)

	// Broker recovers; next sweep delivers.
	pub.err = nil
	b.sweepOnce()

	require.Len(t, pub.published, 1)
	_, err = box.Get(1)
	assert.ErrorIs(t, err, outbox.ErrNotFound)
}
