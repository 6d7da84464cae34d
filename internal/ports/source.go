package ports

import (
	"context"

	"github.com/harris-mohamed/sensorsync/internal/domain"
)

// MeasurementReader pages through a relational endpoint's measurements table.
// FetchPage returns rows with id > afterID, ascending, at most pageSize of them.
type MeasurementReader interface {
	FetchPage(ctx context.Context, ep domain.Endpoint, pageSize int, afterID int64) ([]domain.Measurement, error)
}

// FolderScanner lists drop folders under root that are not in seen.
type FolderScanner interface {
	ListNewFolders(ctx context.Context, root string, seen map[string]struct{}) ([]domain.FolderRecord, error)
}
