package sink

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"fenrir/domain/orderbook"
)

// FileLog appends one human-readable line per trade to an append-only
// text file, e.g. "Matched: 100 shares AAPL @ 185.5".
type FileLog struct {
	mu sync.Mutex
	f  *os.File
}

func NewFileLog(path string) (*FileLog, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &FileLog{f: f}, nil
}

func (l *FileLog) Publish(t orderbook.Trade) error {
	line := fmt.Sprintf("Matched: %d shares %s @ %s\n",
		t.Qty, t.Symbol, strconv.FormatFloat(t.Price, 'f', -1, 64))

	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.f.WriteString(line)
	return err
}

func (l *FileLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}
