package warehouse

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/harris-mohamed/sensorsync/internal/domain"
	"github.com/harris-mohamed/sensorsync/internal/ports"
)

const DefaultControlTable = "ingest_control"

// ControlTable reads endpoint descriptors from the ingest control table.
type ControlTable struct {
	db    *sql.DB
	table string
}

func NewControlTable(db *sql.DB, table string) *ControlTable {
	if table == "" {
		table = DefaultControlTable
	}
	return &ControlTable{db: db, table: table}
}

func (c *ControlTable) ActiveEndpoints(ctx context.Context) ([]domain.ControlRow, error) {
	q := "SELECT id, ip_address, port, name, chunk_size, max_chunks_per_run, endpoint_type, database_name FROM " +
		quoteQualified(c.table) + " WHERE active = true ORDER BY id"

	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", c.table, err)
	}
	defer rows.Close()

	var out []domain.ControlRow
	for rows.Next() {
		var (
			r                      domain.ControlRow
			host, dbName           sql.NullString
			port, chunk, maxChunks sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &host, &port, &r.Name, &chunk, &maxChunks, &r.EndpointType, &dbName); err != nil {
			return nil, fmt.Errorf("scan %s: %w", c.table, err)
		}
		r.Host = host.String
		r.Port = int(port.Int64)
		r.ChunkSize = int(chunk.Int64)
		r.MaxChunksPerRun = int(maxChunks.Int64)
		r.Database = dbName.String
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", c.table, err)
	}
	return out, nil
}

var _ ports.EndpointRegistry = (*ControlTable)(nil)
