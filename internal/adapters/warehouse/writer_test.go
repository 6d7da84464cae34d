package warehouse

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/harris-mohamed/sensorsync/internal/domain"
)

func TestPostgresWriterInsertBatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	w := NewPostgresWriter(db)
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	rows := [][]any{
		{"mysql-1", ts, 0.1, 0.2, 0.3, int64(7)},
		{"mysql-1", ts, 1.1, 1.2, 1.3, int64(8)},
	}

	expectedQuery := regexp.QuoteMeta(`INSERT INTO "accelerometer_data" ("endpoint_name", "timestamp", "accel_x", "accel_y", "accel_z", "source_id") VALUES ($1,$2,$3,$4,$5,$6),($7,$8,$9,$10,$11,$12)`)
	mock.ExpectBegin()
	mock.ExpectExec(expectedQuery).
		WithArgs("mysql-1", ts, 0.1, 0.2, 0.3, int64(7), "mysql-1", ts, 1.1, 1.2, 1.3, int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	n, err := w.InsertBatch(context.Background(), domain.AccelerometerData.Table, domain.AccelerometerData.Columns, rows)
	if err != nil {
		t.Fatalf("insert batch: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows written, got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresWriterInsertBatchNoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	w := NewPostgresWriter(db)
	n, err := w.InsertBatch(context.Background(), "accelerometer_data", domain.AccelerometerData.Columns, nil)
	if err != nil {
		t.Fatalf("expected nil error for empty batch, got %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 rows, got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresWriterRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	boom := errors.New("connection reset")
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "file_metadata"`).WillReturnError(boom)
	mock.ExpectRollback()

	w := NewPostgresWriter(db)
	rows := [][]any{domain.FolderRow("drop", domain.FolderRecord{Path: "/data/a", CreatedAt: time.Now()})}
	n, err := w.InsertBatch(context.Background(), domain.FileMetadata.Table, domain.FileMetadata.Columns, rows)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped insert error, got %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 rows on failure, got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresWriterRejectsArityMismatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	w := NewPostgresWriter(db)
	_, err = w.InsertBatch(context.Background(), "accelerometer_data", []string{"a", "b"}, [][]any{{1}})
	if err == nil || !strings.Contains(err.Error(), "row 0 has 1 values, want 2") {
		t.Fatalf("expected arity error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("writer should not touch the database: %v", err)
	}
}

func TestPostgresWriterSplitsOversizedBatchInOneTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	cols := domain.AccelerometerData.Columns
	perStmt := maxBindParams / len(cols)
	rows := make([][]any, perStmt+1)
	for i := range rows {
		rows[i] = []any{"ep", time.Unix(int64(i), 0), 0.0, 0.0, 0.0, int64(i + 1)}
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "accelerometer_data"`).WillReturnResult(sqlmock.NewResult(0, int64(perStmt)))
	mock.ExpectExec(`INSERT INTO "accelerometer_data"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := NewPostgresWriter(db).InsertBatch(context.Background(), "accelerometer_data", cols, rows)
	if err != nil {
		t.Fatalf("insert batch: %v", err)
	}
	if n != int64(len(rows)) {
		t.Fatalf("expected %d rows, got %d", len(rows), n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestQuoteQualified(t *testing.T) {
	if got := quoteQualified("public.file_metadata"); got != `"public"."file_metadata"` {
		t.Fatalf("unexpected quoting: %s", got)
	}
}
