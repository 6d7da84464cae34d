package sensorsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrChannelWriterClosed is returned when a channel writer is written to after being closed.
var ErrChannelWriterClosed = errors.New("sensorsync: channel writer closed")

// Batch is one atomic insert the engine would commit to the warehouse.
type Batch struct {
	Table   string
	Columns []string
	Rows    [][]any
}

// BatchFunc receives every batch a callback writer is asked to commit.
type BatchFunc func(ctx context.Context, b Batch) error

// NewCallbackWriter adapts fn into a BatchWriter so callers can divert
// ingested rows without defining a struct. A nil error from fn counts every
// row as committed.
func NewCallbackWriter(name string, fn BatchFunc) BatchWriter {
	if name == "" {
		name = "callback"
	}
	return &callbackWriter{name: name, fn: fn}
}

// NewChannelWriter exposes batches on a channel; it returns the writer, the
// read-only channel, and a close function the caller should invoke during shutdown.
func NewChannelWriter(name string, buffer int) (BatchWriter, <-chan Batch, func()) {
	if name == "" {
		name = "channel"
	}
	if buffer < 0 {
		buffer = 0
	}
	ch := make(chan Batch, buffer)
	w := &channelWriter{
		name:   name,
		ch:     ch,
		closed: make(chan struct{}),
	}
	return w, ch, func() { w.close() }
}

type callbackWriter struct {
	name string
	fn   BatchFunc
}

func (w *callbackWriter) InsertBatch(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if w.fn == nil {
		return 0, fmt.Errorf("callback writer %q: nil handler", w.name)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	if err := w.fn(ctx, copyBatch(table, columns, rows)); err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

type channelWriter struct {
	name   string
	ch     chan Batch
	closed chan struct{}
	once   sync.Once
	mu     sync.RWMutex
}

func (w *channelWriter) InsertBatch(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	select {
	case <-w.closed:
		return 0, ErrChannelWriterClosed
	default:
	}

	if len(rows) == 0 {
		return 0, nil
	}

	select {
	case <-w.closed:
		return 0, ErrChannelWriterClosed
	case <-ctx.Done():
		return 0, ctx.Err()
	case w.ch <- copyBatch(table, columns, rows):
		return int64(len(rows)), nil
	}
}

func (w *channelWriter) close() {
	w.once.Do(func() {
		close(w.closed)
		// senders holding the read lock have seen closed and returned
		w.mu.Lock()
		close(w.ch)
		w.mu.Unlock()
	})
}

// copyBatch detaches the batch from the engine's slices.
func copyBatch(table string, columns []string, rows [][]any) Batch {
	b := Batch{
		Table:   table,
		Columns: append([]string(nil), columns...),
		Rows:    make([][]any, len(rows)),
	}
	for i, row := range rows {
		b.Rows[i] = append([]any(nil), row...)
	}
	return b
}
