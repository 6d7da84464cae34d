package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/harris-mohamed/sensorsync/internal/domain"
	"github.com/harris-mohamed/sensorsync/internal/ports"
)

// ErrSyncPanicked wraps a panic recovered from a syncer.
var ErrSyncPanicked = errors.New("pipeline: sync panicked")

// Engine picks the syncer for an endpoint's kind and wraps the invocation with
// run IDs, logging and metrics.
type Engine struct {
	syncers map[domain.Kind]ports.Syncer
	obs     ports.Observability
	runID   func() string
}

func NewEngine(obs ports.Observability) *Engine {
	return &Engine{
		syncers: make(map[domain.Kind]ports.Syncer),
		obs:     obs,
		runID:   uuid.NewString,
	}
}

// Register binds a syncer to kind, replacing any earlier one.
func (e *Engine) Register(kind domain.Kind, s ports.Syncer) *Engine {
	e.syncers[kind] = s
	return e
}

func (e *Engine) Invoke(ctx context.Context, ep domain.Endpoint) (domain.Result, error) {
	syncer, ok := e.syncers[ep.Kind]
	if !ok {
		return domain.Result{Endpoint: ep.Name, Kind: ep.Kind}, fmt.Errorf("%w: %q for endpoint %s", domain.ErrNoSyncer, ep.Kind, ep.Name)
	}

	runID := e.runID()
	e.obs.LogInfo("sync_started",
		ports.F("run_id", runID),
		ports.F("endpoint", ep.Name),
		ports.F("kind", ep.Kind),
		ports.F("page_size", ep.PageSize),
		ports.F("max_chunks_per_run", ep.MaxChunksPerRun))

	start := time.Now()
	res, err := e.sync(ctx, syncer, ep, runID)
	res.RunID = runID
	res.Endpoint = ep.Name
	res.Kind = ep.Kind
	res.Duration = time.Since(start)

	e.obs.ObserveLatency(ports.MetricSyncDuration, res.Duration.Seconds())
	// Chunks committed before a failure are durable, so they count either way.
	e.obs.IncCounter(ports.MetricRecordsIngested, float64(res.IngestedCount))
	e.obs.IncCounter(ports.MetricChunksProcessed, float64(res.ChunksProcessed))

	if err != nil {
		e.obs.IncCounter(ports.MetricSyncFailures, 1)
		e.obs.LogError("sync_failed", err, append(resultFields(res), ports.F("run_id", runID))...)
		return res, fmt.Errorf("sync %s: %w", ep.Name, err)
	}

	e.obs.LogInfo("sync_finished", append(resultFields(res), ports.F("run_id", runID))...)
	return res, nil
}

// sync runs one syncer call and reports a panic as ErrSyncPanicked.
func (e *Engine) sync(ctx context.Context, s ports.Syncer, ep domain.Endpoint, runID string) (res domain.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrSyncPanicked, r)
			e.obs.LogCritical("sync_panicked", err,
				ports.F("run_id", runID),
				ports.F("endpoint", ep.Name),
				ports.F("stack", string(debug.Stack())))
		}
	}()
	return s.Sync(ctx, ep)
}

func resultFields(res domain.Result) []ports.Field {
	payload := res.Payload()
	fields := make([]ports.Field, 0, len(payload)+1)
	for _, k := range []string{"endpoint", "ingested_count", "chunks_processed", "starting_id", "last_id", "total_new_folders", "remaining_folders"} {
		if v, ok := payload[k]; ok {
			fields = append(fields, ports.F(k, v))
		}
	}
	return append(fields, ports.F("duration", res.Duration))
}

var _ ports.Invoker = (*Engine)(nil)
