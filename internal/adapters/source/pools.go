package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/harris-mohamed/sensorsync/internal/domain"
)

// Credentials are shared by every endpoint of one kind. The control table
// carries no secrets.
type Credentials struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type openFunc func(ep domain.Endpoint) (*sql.DB, error)

// pools keeps one *sql.DB per endpoint address so repeated pages reuse connections.
type pools struct {
	mu   sync.Mutex
	open openFunc
	dbs  map[string]*sql.DB
}

func newPools(open openFunc) *pools {
	return &pools{open: open, dbs: make(map[string]*sql.DB)}
}

func (p *pools) get(ep domain.Endpoint) (*sql.DB, error) {
	key := poolKey(ep)

	p.mu.Lock()
	defer p.mu.Unlock()
	if db, ok := p.dbs[key]; ok {
		return db, nil
	}
	db, err := p.open(ep)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", key, err)
	}
	p.dbs[key] = db
	return db, nil
}

func (p *pools) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var errs []error
	for key, db := range p.dbs {
		if err := db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", key, err))
		}
		delete(p.dbs, key)
	}
	return errors.Join(errs...)
}

func poolKey(ep domain.Endpoint) string {
	return hostPort(ep) + "/" + ep.Database
}

func hostPort(ep domain.Endpoint) string {
	return net.JoinHostPort(ep.Host, strconv.Itoa(ep.Port))
}

func fetchMeasurements(ctx context.Context, db *sql.DB, query string, withMag bool, afterID int64, pageSize int) ([]domain.Measurement, error) {
	rows, err := db.QueryContext(ctx, query, afterID, pageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Measurement, 0, pageSize)
	for rows.Next() {
		var m domain.Measurement
		dest := []any{&m.SourceID, &m.Timestamp, &m.Accel.X, &m.Accel.Y, &m.Accel.Z}
		if withMag {
			dest = append(dest, &m.Mag.X, &m.Mag.Y, &m.Mag.Z)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
