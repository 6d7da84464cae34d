package sensorsync

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/harris-mohamed/sensorsync/internal/adapters/observability"
	"github.com/harris-mohamed/sensorsync/internal/adapters/queue"
	"github.com/harris-mohamed/sensorsync/internal/adapters/source"
	"github.com/harris-mohamed/sensorsync/internal/adapters/warehouse"
	"github.com/harris-mohamed/sensorsync/internal/app/pipeline"
	"github.com/harris-mohamed/sensorsync/internal/app/scheduler"
	"github.com/harris-mohamed/sensorsync/internal/domain"
	"github.com/harris-mohamed/sensorsync/internal/ports"
)

// RuntimeOption customizes the dependencies used by Runtime.
type RuntimeOption func(*runtimeOverrides)

type runtimeOverrides struct {
	db            *sql.DB
	writer        BatchWriter
	watermarks    WatermarkStore
	registry      EndpointRegistry
	readers       map[Kind]MeasurementReader
	scanner       FolderScanner
	guard         InflightGuard
	observability Observability
	logger        *zap.Logger
}

// WithDB reuses an open warehouse connection instead of dialing warehouse.conn_string.
// The runtime does not close it.
func WithDB(db *sql.DB) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.db = db
	}
}

// WithWriter replaces the warehouse batch writer, e.g. with NewCallbackWriter for dry runs.
func WithWriter(w BatchWriter) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.writer = w
	}
}

// WithWatermarks replaces the warehouse-derived watermark store.
func WithWatermarks(wm WatermarkStore) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.watermarks = wm
	}
}

// WithRegistry replaces the control-table reader.
func WithRegistry(r EndpointRegistry) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.registry = r
	}
}

// WithMeasurementReader replaces the source reader for one relational kind.
func WithMeasurementReader(kind Kind, r MeasurementReader) RuntimeOption {
	return func(o *runtimeOverrides) {
		if o.readers == nil {
			o.readers = make(map[Kind]MeasurementReader)
		}
		o.readers[kind] = r
	}
}

// WithFolderScanner replaces the local drop-folder scanner.
func WithFolderScanner(s FolderScanner) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.scanner = s
	}
}

// WithGuard replaces the in-process in-flight set, e.g. with one shared across runtimes.
func WithGuard(g InflightGuard) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.guard = g
	}
}

// WithObservability plugs in a custom logging and metrics backend.
func WithObservability(obs Observability) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.observability = obs
	}
}

// WithLogger replaces the logger built from the log section of the config.
func WithLogger(l *zap.Logger) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.logger = l
	}
}

// Runtime wires registry → dispatcher → engine → source/warehouse adapters and
// exposes lifecycle hooks for running the sync on a schedule or once.
type Runtime struct {
	cfg        *Config
	logger     *zap.Logger
	obs        ports.Observability
	metrics    *prometheus.Registry
	db         *sql.DB
	ownsDB     bool
	closers    []io.Closer
	guard      ports.InflightGuard
	dispatcher *pipeline.Dispatcher
	scheduler  *scheduler.Scheduler
	metricsSrv *http.Server
}

// NewRuntime builds the default adapters (lib/pq warehouse, MySQL and pgx
// source readers, local folder scanner, Prometheus + zap observability).
// RuntimeOption values override any of them. ctx bounds the warehouse dial.
func NewRuntime(ctx context.Context, cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var o runtimeOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	rt := &Runtime{cfg: cfg, metrics: prometheus.NewRegistry()}
	rt.metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	rt.logger = o.logger
	if rt.logger == nil {
		l, err := observability.NewLogger(cfg.Log.Level, cfg.Log.Development)
		if err != nil {
			return nil, err
		}
		rt.logger = l
	}

	rt.obs = o.observability
	if rt.obs == nil {
		rt.obs = observability.NewPromObs(rt.metrics, rt.logger)
	}

	writer, watermarks, registry := o.writer, o.watermarks, o.registry
	if writer == nil || watermarks == nil || registry == nil {
		rt.db = o.db
		if rt.db == nil {
			db, err := warehouse.Open(ctx, cfg.Warehouse.ConnString, cfg.Warehouse.MaxOpenConns)
			if err != nil {
				return nil, err
			}
			rt.db, rt.ownsDB = db, true
		}
		if writer == nil {
			writer = warehouse.NewPostgresWriter(rt.db)
		}
		if watermarks == nil {
			watermarks = warehouse.NewWatermarks(rt.db)
		}
		if registry == nil {
			registry = warehouse.NewControlTable(rt.db, cfg.Warehouse.ControlTable)
		}
	}

	mysqlReader := o.readers[domain.KindMySQL]
	if mysqlReader == nil {
		r := source.NewMySQLReader(cfg.Sources.MySQL)
		rt.closers = append(rt.closers, r)
		mysqlReader = r
	}
	pgReader := o.readers[domain.KindPostgres]
	if pgReader == nil {
		r := source.NewPostgresReader(cfg.Sources.Postgres)
		rt.closers = append(rt.closers, r)
		pgReader = r
	}
	scanner := o.scanner
	if scanner == nil {
		scanner = source.NewDirScanner(nil)
	}

	engine := pipeline.NewEngine(rt.obs).
		Register(domain.KindMySQL, pipeline.NewRelationalSync(domain.AccelerometerData, mysqlReader, writer, watermarks, rt.obs)).
		Register(domain.KindPostgres, pipeline.NewRelationalSync(domain.AccelMagData, pgReader, writer, watermarks, rt.obs)).
		Register(domain.KindFile, pipeline.NewFolderSync(scanner, writer, watermarks, cfg.Files.Root))

	rt.guard = o.guard
	if rt.guard == nil {
		rt.guard = queue.NewInflightSet(0)
	}
	rt.dispatcher = pipeline.NewDispatcher(registry, engine, rt.guard, cfg.Defaults, cfg.Scheduler.Concurrency, rt.obs)
	return rt, nil
}

// Tick runs every active endpoint once and returns when all invocations finish.
func (r *Runtime) Tick(ctx context.Context) (TickReport, error) {
	if r.cfg.Scheduler.InvocationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Scheduler.InvocationTimeout)
		defer cancel()
	}
	return r.dispatcher.Tick(ctx)
}

// Plan lists the endpoints the next tick would run and the rows it would skip.
func (r *Runtime) Plan(ctx context.Context) ([]Endpoint, []SkippedEndpoint, error) {
	return r.dispatcher.Plan(ctx)
}

// Start launches the scheduler and the metrics server. It returns immediately;
// call Run to block on a context instead.
func (r *Runtime) Start(ctx context.Context) error {
	if r == nil {
		return fmt.Errorf("runtime is nil")
	}
	if r.scheduler == nil {
		s, err := scheduler.New(r.cfg.Scheduler.Schedule, r.dispatcher, r.cfg.Scheduler.InvocationTimeout,
			observability.NewCronLogger(r.logger), r.obs)
		if err != nil {
			return err
		}
		r.scheduler = s
	}
	if err := r.scheduler.Start(ctx); err != nil {
		return err
	}
	r.startMetrics()
	r.obs.LogInfo("runtime_started",
		ports.F("schedule", r.cfg.Scheduler.Schedule),
		ports.F("concurrency", r.cfg.Scheduler.Concurrency),
		ports.F("metrics_addr", r.cfg.Metrics.Addr))
	return nil
}

// Run starts the runtime and blocks until ctx is cancelled, then shuts down,
// waiting up to the invocation timeout for running syncs.
func (r *Runtime) Run(ctx context.Context) error {
	if err := r.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	grace := r.cfg.Scheduler.InvocationTimeout
	if grace <= 0 {
		grace = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	return r.Shutdown(shutdownCtx)
}

// Shutdown stops the scheduler, metrics server, source pools and warehouse connection.
func (r *Runtime) Shutdown(ctx context.Context) error {
	var errs []error

	if r.scheduler != nil {
		if err := r.scheduler.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop scheduler: %w", err))
		}
	}

	if r.metricsSrv != nil {
		if err := r.metricsSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
	}

	for _, c := range r.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil

	if r.db != nil && r.ownsDB {
		if err := r.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	_ = r.logger.Sync()
	return errors.Join(errs...)
}

// Handler serves /metrics and /healthz.
func (r *Runtime) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.metrics, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (r *Runtime) startMetrics() {
	if r.cfg.Metrics.Addr == "" {
		return
	}
	r.metricsSrv = &http.Server{
		Addr:              r.cfg.Metrics.Addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := r.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.obs.LogError("metrics_server_exited", err)
		}
	}()
}
