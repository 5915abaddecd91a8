package outbox

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
)

// -------------------- State --------------------

type State uint8

const (
	StateNew State = iota
	StateSent
	StateAcked
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	default:
		return "UNKNOWN"
	}
}

// -------------------- Record --------------------

// Record is one trade event awaiting delivery. Payload is the encoded
// event exactly as it will be published downstream.
type Record struct {
	Seq         uint64
	State       State
	Retries     uint32
	LastAttempt int64
	Payload     []byte
}

var (
	ErrNotFound      = errors.New("outbox: record not found")
	ErrCorruptRecord = errors.New("outbox: corrupted record")
)

// binary encoding: [state:1][retries:4][lastAttempt:8][payload:...]
func encodeRecord(r Record) []byte {
	buf := make([]byte, 1+4+8+len(r.Payload))
	buf[0] = byte(r.State)
	binary.BigEndian.PutUint32(buf[1:5], r.Retries)
	binary.BigEndian.PutUint64(buf[5:13], uint64(r.LastAttempt))
	copy(buf[13:], r.Payload)
	return buf
}

func decodeRecord(seq uint64, b []byte) (Record, error) {
	if len(b) < 13 {
		return Record{}, ErrCorruptRecord
	}
	return Record{
		Seq:         seq,
		State:       State(b[0]),
		Retries:     binary.BigEndian.Uint32(b[1:5]),
		LastAttempt: int64(binary.BigEndian.Uint64(b[5:13])),
		Payload:     append([]byte(nil), b[13:]...),
	}, nil
}

// -------------------- Outbox --------------------

// Outbox is the durable store for emitted trades. The engine appends
// within the admission cycle; the broadcaster drains pending records to
// Kafka and marks them acked. Book state itself is never persisted.
type Outbox struct {
	db *pebble.DB
}

func Open(dir string) (*Outbox, error) {
	db, err := pebble.Open(dir, &pebble.Options{
		DisableWAL: false, // we WANT durability
	})
	if err != nil {
		return nil, err
	}
	return &Outbox{db: db}, nil
}

func (o *Outbox) Close() error {
	return o.db.Close()
}

// -------------------- API --------------------

// Append inserts a new pending trade event keyed by trade sequence.
func (o *Outbox) Append(seq uint64, payload []byte) error {
	rec := Record{
		Seq:     seq,
		State:   StateNew,
		Payload: payload,
	}
	return o.db.Set(keyFor(seq), encodeRecord(rec), pebble.Sync)
}

// Get returns the current record for a trade sequence.
func (o *Outbox) Get(seq uint64) (Record, error) {
	val, closer, err := o.db.Get(keyFor(seq))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	defer closer.Close()

	return decodeRecord(seq, val)
}

// MarkSent records a delivery attempt.
func (o *Outbox) MarkSent(seq uint64) error {
	return o.update(seq, func(r *Record) {
		r.State = StateSent
		r.Retries++
		r.LastAttempt = time.Now().UnixNano()
	})
}

// MarkAcked records a confirmed delivery.
func (o *Outbox) MarkAcked(seq uint64) error {
	return o.update(seq, func(r *Record) {
		r.State = StateAcked
		r.LastAttempt = time.Now().UnixNano()
	})
}

// Delete removes a record.
func (o *Outbox) Delete(seq uint64) error {
	return o.db.Delete(keyFor(seq), pebble.Sync)
}

func (o *Outbox) update(seq uint64, fn func(*Record)) error {
	rec, err := o.Get(seq)
	if err != nil {
		return err
	}
	fn(&rec)
	return o.db.Set(keyFor(seq), encodeRecord(rec), pebble.Sync)
}

// -------------------- Scan --------------------

// ScanPending iterates records not yet acked, in sequence order.
func (o *Outbox) ScanPending(fn func(Record) error) error {
	return o.scan(func(rec Record) error {
		if rec.State == StateAcked {
			return nil
		}
		return fn(rec)
	})
}

// PurgeAcked deletes acked records and returns how many were removed.
func (o *Outbox) PurgeAcked() (int, error) {
	var seqs []uint64
	err := o.scan(func(rec Record) error {
		if rec.State == StateAcked {
			seqs = append(seqs, rec.Seq)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	for _, seq := range seqs {
		if err := o.Delete(seq); err != nil {
			return 0, err
		}
	}
	return len(seqs), nil
}

func (o *Outbox) scan(fn func(Record) error) error {
	iter, err := o.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: []byte(keyPrefix + "~"),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		seq, err := parseKey(iter.Key())
		if err != nil {
			return err
		}
		rec, err := decodeRecord(seq, iter.Value())
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return iter.Error()
}

// -------------------- Helpers --------------------

const keyPrefix = "trade/"

func keyFor(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", keyPrefix, seq))
}

func parseKey(b []byte) (uint64, error) {
	var seq uint64
	_, err := fmt.Sscanf(string(bytes.TrimPrefix(b, []byte(keyPrefix))), "%d", &seq)
	return seq, err
}
