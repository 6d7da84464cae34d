package ports

import "context"

// BatchWriter appends rows to a warehouse table atomically: all rows land or none do.
type BatchWriter interface {
	InsertBatch(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
}
