package ports

import (
	"context"

	"github.com/harris-mohamed/sensorsync/internal/domain"
)

// WatermarkStore derives ingestion progress from rows already in the warehouse.
type WatermarkStore interface {
	LastSourceID(ctx context.Context, endpoint string, ds domain.Dataset) (int64, error)
	SeenFolders(ctx context.Context, endpoint string) (map[string]struct{}, error)
}
