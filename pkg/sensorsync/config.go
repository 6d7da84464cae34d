package sensorsync

import (
	"github.com/harris-mohamed/sensorsync/internal/adapters/source"
	"github.com/harris-mohamed/sensorsync/internal/app/config"
	"github.com/harris-mohamed/sensorsync/internal/domain"
)

// Config re-exports the root configuration struct so embedding services can
// construct or modify it programmatically.
type Config = config.Config

type (
	// WarehouseConfig points at the destination Postgres and its control table.
	WarehouseConfig = config.WarehouseConfig
	// SourcesConfig holds the credentials shared by every endpoint of a kind.
	SourcesConfig = config.SourcesConfig
	// Credentials is one kind's user, password and sslmode.
	Credentials = source.Credentials
	// FilesConfig maps filesystem endpoints to their drop-folder roots.
	FilesConfig = config.FilesConfig
	// Defaults fills in chunk sizes the control table leaves unset.
	Defaults = domain.Defaults
	// SchedulerConfig controls the cron schedule and tick concurrency.
	SchedulerConfig = config.SchedulerConfig
	// MetricsConfig configures the metrics HTTP server.
	MetricsConfig = config.MetricsConfig
	// LogConfig configures the zap logger.
	LogConfig = config.LogConfig
)

// LoadConfig loads YAML from disk, applies defaults and validates it.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}
