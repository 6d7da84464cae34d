package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/harris-mohamed/sensorsync/internal/ports"
)

// maxBindParams is PostgreSQL's limit on bind parameters per statement.
const maxBindParams = 65535

type PostgresWriter struct {
	db *sql.DB
}

func NewPostgresWriter(db *sql.DB) *PostgresWriter {
	return &PostgresWriter{db: db}
}

// InsertBatch writes rows inside one transaction. Rows are split across
// statements only when a single statement would exceed maxBindParams.
func (w *PostgresWriter) InsertBatch(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if len(columns) == 0 {
		return 0, fmt.Errorf("insert into %s: no columns", table)
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("insert into %s: row %d has %d values, want %d", table, i, len(row), len(columns))
		}
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert into %s: %w", table, err)
	}

	perStmt := maxBindParams / len(columns)
	var written int64
	for start := 0; start < len(rows); start += perStmt {
		end := min(start+perStmt, len(rows))
		query, args := buildInsert(table, columns, rows[start:end])

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert into %s: %w", table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert into %s: rows affected: %w", table, err)
		}
		written += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert into %s: %w", table, err)
	}
	return written, nil
}

func buildInsert(table string, columns []string, rows [][]any) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(quoteQualified(table))
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quoteQualified(c))
	}
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(")
		for j := range row {
			if j > 0 {
				b.WriteString(",")
			}
			b.WriteString("$")
			b.WriteString(strconv.Itoa(len(args) + j + 1))
		}
		b.WriteString(")")
		args = append(args, row...)
	}
	return b.String(), args
}

var _ ports.BatchWriter = (*PostgresWriter)(nil)
