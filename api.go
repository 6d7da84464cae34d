package sensorsync

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	base "github.com/harris-mohamed/sensorsync/pkg/sensorsync"
)

// Re-exported errors for convenience.
var (
	ErrChannelWriterClosed = base.ErrChannelWriterClosed
)

// Type aliases so consumers can import github.com/harris-mohamed/sensorsync directly.
type (
	Config            = base.Config
	WarehouseConfig   = base.WarehouseConfig
	SourcesConfig     = base.SourcesConfig
	Credentials       = base.Credentials
	FilesConfig       = base.FilesConfig
	Defaults          = base.Defaults
	SchedulerConfig   = base.SchedulerConfig
	MetricsConfig     = base.MetricsConfig
	LogConfig         = base.LogConfig
	Runtime           = base.Runtime
	RuntimeOption     = base.RuntimeOption
	Endpoint          = base.Endpoint
	Kind              = base.Kind
	Result            = base.Result
	TickReport        = base.TickReport
	SkippedEndpoint   = base.SkippedEndpoint
	Measurement       = base.Measurement
	FolderRecord      = base.FolderRecord
	Dataset           = base.Dataset
	ControlRow        = base.ControlRow
	Batch             = base.Batch
	BatchFunc         = base.BatchFunc
	BatchWriter       = base.BatchWriter
	WatermarkStore    = base.WatermarkStore
	EndpointRegistry  = base.EndpointRegistry
	MeasurementReader = base.MeasurementReader
	FolderScanner     = base.FolderScanner
	InflightGuard     = base.InflightGuard
	Observability     = base.Observability
	Field             = base.Field
)

const (
	KindMySQL    = base.KindMySQL
	KindPostgres = base.KindPostgres
	KindFile     = base.KindFile
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

// Runtime and options.
func NewRuntime(ctx context.Context, cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	return base.NewRuntime(ctx, cfg, opts...)
}

func WithDB(db *sql.DB) RuntimeOption {
	return base.WithDB(db)
}

func WithWriter(w BatchWriter) RuntimeOption {
	return base.WithWriter(w)
}

func WithWatermarks(wm WatermarkStore) RuntimeOption {
	return base.WithWatermarks(wm)
}

func WithRegistry(r EndpointRegistry) RuntimeOption {
	return base.WithRegistry(r)
}

func WithMeasurementReader(kind Kind, r MeasurementReader) RuntimeOption {
	return base.WithMeasurementReader(kind, r)
}

func WithFolderScanner(s FolderScanner) RuntimeOption {
	return base.WithFolderScanner(s)
}

func WithGuard(g InflightGuard) RuntimeOption {
	return base.WithGuard(g)
}

func WithObservability(obs Observability) RuntimeOption {
	return base.WithObservability(obs)
}

func WithLogger(l *zap.Logger) RuntimeOption {
	return base.WithLogger(l)
}

// Writer adapters.
func NewCallbackWriter(name string, fn BatchFunc) BatchWriter {
	return base.NewCallbackWriter(name, fn)
}

func NewChannelWriter(name string, buffer int) (BatchWriter, <-chan Batch, func()) {
	return base.NewChannelWriter(name, buffer)
}
