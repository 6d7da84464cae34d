package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/harris-mohamed/sensorsync/internal/domain"
	"github.com/harris-mohamed/sensorsync/internal/ports"
)

var errInsert = errors.New("insert failed: connection reset")

// memWarehouse is a BatchWriter and a WatermarkStore over the same rows, so
// watermarks are derived from committed data exactly as in the real warehouse.
type memWarehouse struct {
	mu      sync.Mutex
	tables  map[string][][]any
	inserts int
	failOn  int
	wmErr   error
}

func newMemWarehouse() *memWarehouse {
	return &memWarehouse{tables: make(map[string][][]any)}
}

func (w *memWarehouse) InsertBatch(_ context.Context, table string, _ []string, rows [][]any) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(rows) == 0 {
		return 0, nil
	}
	w.inserts++
	if w.failOn == w.inserts {
		return 0, errInsert
	}
	w.tables[table] = append(w.tables[table], rows...)
	return int64(len(rows)), nil
}

func (w *memWarehouse) LastSourceID(_ context.Context, endpoint string, ds domain.Dataset) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.wmErr != nil {
		return 0, w.wmErr
	}
	var last int64
	for _, row := range w.tables[ds.Table] {
		if row[0] != endpoint {
			continue
		}
		last = max(last, row[len(row)-1].(int64))
	}
	return last, nil
}

func (w *memWarehouse) SeenFolders(_ context.Context, endpoint string) (map[string]struct{}, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.wmErr != nil {
		return nil, w.wmErr
	}
	seen := make(map[string]struct{})
	for _, row := range w.tables[domain.FileMetadata.Table] {
		if row[0] == endpoint {
			seen[row[1].(string)] = struct{}{}
		}
	}
	return seen, nil
}

func (w *memWarehouse) sourceIDs(table, endpoint string) []int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	var ids []int64
	for _, row := range w.tables[table] {
		if row[0] == endpoint {
			ids = append(ids, row[len(row)-1].(int64))
		}
	}
	return ids
}

// memSource serves a measurements table held in memory.
type memSource struct {
	mu      sync.Mutex
	rows    []domain.Measurement
	fetches []int
	err     error
}

func newMemSource(from, to int64) *memSource {
	s := &memSource{}
	s.add(from, to)
	return s
}

func (s *memSource) add(from, to int64) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for id := from; id <= to; id++ {
		s.rows = append(s.rows, domain.Measurement{
			SourceID:  id,
			Timestamp: base.Add(time.Duration(id) * 10 * time.Second),
			Accel:     domain.Axes{X: float64(id), Y: 0.5, Z: 9.81},
			Mag:       domain.Axes{X: 30, Y: -20, Z: 45},
		})
	}
}

func (s *memSource) FetchPage(_ context.Context, _ domain.Endpoint, pageSize int, afterID int64) ([]domain.Measurement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var page []domain.Measurement
	for _, m := range s.rows {
		if m.SourceID > afterID && len(page) < pageSize {
			page = append(page, m)
		}
	}
	s.fetches = append(s.fetches, len(page))
	return page, nil
}

type nopObs struct{}

func (nopObs) LogInfo(string, ...ports.Field)            {}
func (nopObs) LogWarn(string, ...ports.Field)            {}
func (nopObs) LogError(string, error, ...ports.Field)    {}
func (nopObs) LogCritical(string, error, ...ports.Field) {}
func (nopObs) IncCounter(string, float64)                {}
func (nopObs) ObserveLatency(string, float64)            {}
func (nopObs) SetGauge(string, float64)                  {}

type recordingObs struct {
	mu        sync.Mutex
	warnings  []string
	errors    []error
	criticals []error
	counters  map[string]float64
}

func newRecordingObs() *recordingObs {
	return &recordingObs{counters: make(map[string]float64)}
}

func (o *recordingObs) LogInfo(string, ...ports.Field) {}
func (o *recordingObs) LogWarn(msg string, _ ...ports.Field) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.warnings = append(o.warnings, msg)
}
func (o *recordingObs) LogError(_ string, err error, _ ...ports.Field) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.errors = append(o.errors, err)
}
func (o *recordingObs) LogCritical(_ string, err error, _ ...ports.Field) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.criticals = append(o.criticals, err)
}
func (o *recordingObs) IncCounter(name string, v float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.counters[name] += v
}
func (o *recordingObs) ObserveLatency(string, float64) {}
func (o *recordingObs) SetGauge(string, float64)       {}

func (o *recordingObs) counter(name string) float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.counters[name]
}
