package source

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/harris-mohamed/sensorsync/internal/domain"
	"github.com/harris-mohamed/sensorsync/internal/ports"
)

const postgresMeasurementsQuery = `SELECT id, timestamp, accel_x, accel_y, accel_z, mag_x, mag_y, mag_z
FROM measurements
WHERE id > $1
ORDER BY id
LIMIT $2`

// PostgresReader pages accelerometer + magnetometer measurements out of Postgres endpoints.
type PostgresReader struct {
	pools *pools
}

func NewPostgresReader(creds Credentials) *PostgresReader {
	return &PostgresReader{pools: newPools(func(ep domain.Endpoint) (*sql.DB, error) {
		return openPostgres(creds, ep)
	})}
}

func (r *PostgresReader) FetchPage(ctx context.Context, ep domain.Endpoint, pageSize int, afterID int64) ([]domain.Measurement, error) {
	db, err := r.pools.get(ep)
	if err != nil {
		return nil, err
	}
	page, err := fetchMeasurements(ctx, db, postgresMeasurementsQuery, true, afterID, pageSize)
	if err != nil {
		return nil, fmt.Errorf("postgres %s: fetch after id %d: %w", hostPort(ep), afterID, err)
	}
	return page, nil
}

func (r *PostgresReader) Close() error { return r.pools.Close() }

func postgresConnString(creds Credentials, ep domain.Endpoint) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(creds.User, creds.Password),
		Host:   hostPort(ep),
		Path:   "/" + ep.Database,
	}
	sslmode := creds.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	u.RawQuery = url.Values{"sslmode": {sslmode}, "connect_timeout": {"10"}}.Encode()
	return u.String()
}

func openPostgres(creds Credentials, ep domain.Endpoint) (*sql.DB, error) {
	cfg, err := pgx.ParseConfig(postgresConnString(creds, ep))
	if err != nil {
		return nil, err
	}
	db := stdlib.OpenDB(*cfg)
	db.SetMaxOpenConns(2)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

var _ ports.MeasurementReader = (*PostgresReader)(nil)
