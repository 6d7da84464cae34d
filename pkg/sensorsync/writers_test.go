package sensorsync

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewCallbackWriter(t *testing.T) {
	var received []Batch
	w := NewCallbackWriter("cb", func(_ context.Context, b Batch) error {
		received = append(received, b)
		return nil
	})

	rows := [][]any{{"mysql-1", time.Unix(1, 0), 0.1, 0.2, 9.8, int64(42)}}
	n, err := w.InsertBatch(context.Background(), "accelerometer_data", []string{"endpoint_name"}, rows)
	if err != nil {
		t.Fatalf("InsertBatch returned error: %v", err)
	}
	if n != 1 || len(received) != 1 {
		t.Fatalf("expected 1 row in 1 batch, got n=%d batches=%d", n, len(received))
	}

	rows[0][5] = int64(7)
	if received[0].Rows[0][5] != int64(42) {
		t.Fatalf("batch should not alias the caller's rows, got %v", received[0].Rows[0][5])
	}
	if received[0].Table != "accelerometer_data" {
		t.Fatalf("unexpected table %q", received[0].Table)
	}
}

func TestNewCallbackWriterNilHandler(t *testing.T) {
	w := NewCallbackWriter("", nil)
	if _, err := w.InsertBatch(context.Background(), "t", []string{"a"}, [][]any{{1}}); err == nil {
		t.Fatalf("expected error when callback is nil")
	}
}

func TestNewCallbackWriterPropagatesError(t *testing.T) {
	boom := errors.New("reject")
	w := NewCallbackWriter("cb", func(context.Context, Batch) error { return boom })
	n, err := w.InsertBatch(context.Background(), "t", []string{"a"}, [][]any{{1}})
	if !errors.Is(err, boom) || n != 0 {
		t.Fatalf("expected boom and 0 rows, got %d, %v", n, err)
	}
}

func TestNewChannelWriter(t *testing.T) {
	w, ch, closeFn := NewChannelWriter("chan", 1)
	defer closeFn()

	errCh := make(chan error, 1)
	go func() {
		_, err := w.InsertBatch(context.Background(), "file_metadata", []string{"folder_path"}, [][]any{{"/data/a"}})
		errCh <- err
	}()

	var batch Batch
	select {
	case batch = <-ch:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel batch")
	}

	if err := <-errCh; err != nil {
		t.Fatalf("InsertBatch returned error: %v", err)
	}
	if batch.Table != "file_metadata" || len(batch.Rows) != 1 {
		t.Fatalf("unexpected batch data: %+v", batch)
	}

	closeFn()
	if _, err := w.InsertBatch(context.Background(), "file_metadata", nil, [][]any{{"/data/b"}}); !errors.Is(err, ErrChannelWriterClosed) {
		t.Fatalf("expected ErrChannelWriterClosed, got %v", err)
	}
	if _, ok := <-ch; ok {
		t.Fatalf("channel should be closed")
	}
}

func TestChannelWriterHonoursContext(t *testing.T) {
	w, _, closeFn := NewChannelWriter("chan", 0)
	defer closeFn()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := w.InsertBatch(ctx, "t", []string{"a"}, [][]any{{1}}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
