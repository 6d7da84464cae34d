package warehouse

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/harris-mohamed/sensorsync/internal/domain"
	"github.com/harris-mohamed/sensorsync/internal/ports"
)

// Watermarks reads ingestion progress straight from the warehouse tables.
// There is no separate watermark table: what was committed is the watermark.
type Watermarks struct {
	db *sql.DB
}

func NewWatermarks(db *sql.DB) *Watermarks {
	return &Watermarks{db: db}
}

// LastSourceID returns MAX(source_id) for endpoint in ds, or 0 when nothing was ingested yet.
func (w *Watermarks) LastSourceID(ctx context.Context, endpoint string, ds domain.Dataset) (int64, error) {
	q := "SELECT COALESCE(MAX(source_id), 0) FROM " + quoteQualified(ds.Table) + " WHERE endpoint_name = $1"

	var last int64
	if err := w.db.QueryRowContext(ctx, q, endpoint).Scan(&last); err != nil {
		return 0, fmt.Errorf("watermark %s/%s: %w", ds.Table, endpoint, err)
	}
	return last, nil
}

// SeenFolders returns every folder_path already recorded for endpoint.
func (w *Watermarks) SeenFolders(ctx context.Context, endpoint string) (map[string]struct{}, error) {
	q := "SELECT DISTINCT folder_path FROM " + quoteQualified(domain.FileMetadata.Table) + " WHERE endpoint_name = $1"

	rows, err := w.db.QueryContext(ctx, q, endpoint)
	if err != nil {
		return nil, fmt.Errorf("seen folders %s: %w", endpoint, err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("seen folders %s: %w", endpoint, err)
		}
		seen[path] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("seen folders %s: %w", endpoint, err)
	}
	return seen, nil
}

var _ ports.WatermarkStore = (*Watermarks)(nil)
