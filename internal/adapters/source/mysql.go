package source

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/harris-mohamed/sensorsync/internal/domain"
	"github.com/harris-mohamed/sensorsync/internal/ports"
)

const mysqlMeasurementsQuery = `SELECT id, timestamp, accel_x, accel_y, accel_z
FROM measurements
WHERE id > ?
ORDER BY id
LIMIT ?`

// MySQLReader pages accelerometer measurements out of MySQL endpoints.
type MySQLReader struct {
	pools *pools
}

func NewMySQLReader(creds Credentials) *MySQLReader {
	return &MySQLReader{pools: newPools(func(ep domain.Endpoint) (*sql.DB, error) {
		return openMySQL(creds, ep)
	})}
}

func (r *MySQLReader) FetchPage(ctx context.Context, ep domain.Endpoint, pageSize int, afterID int64) ([]domain.Measurement, error) {
	db, err := r.pools.get(ep)
	if err != nil {
		return nil, err
	}
	page, err := fetchMeasurements(ctx, db, mysqlMeasurementsQuery, false, afterID, pageSize)
	if err != nil {
		return nil, fmt.Errorf("mysql %s: fetch after id %d: %w", hostPort(ep), afterID, err)
	}
	return page, nil
}

func (r *MySQLReader) Close() error { return r.pools.Close() }

func mysqlConfig(creds Credentials, ep domain.Endpoint) *mysql.Config {
	cfg := mysql.NewConfig()
	cfg.User = creds.User
	cfg.Passwd = creds.Password
	cfg.Net = "tcp"
	cfg.Addr = hostPort(ep)
	cfg.DBName = ep.Database
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Timeout = 10 * time.Second
	return cfg
}

func openMySQL(creds Credentials, ep domain.Endpoint) (*sql.DB, error) {
	connector, err := mysql.NewConnector(mysqlConfig(creds, ep))
	if err != nil {
		return nil, err
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(2)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

var _ ports.MeasurementReader = (*MySQLReader)(nil)
