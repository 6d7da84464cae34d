package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/harris-mohamed/sensorsync/internal/adapters/source"
	"github.com/harris-mohamed/sensorsync/internal/domain"
)

type Config struct {
	Warehouse WarehouseConfig `yaml:"warehouse"`
	Sources   SourcesConfig   `yaml:"sources"`
	Files     FilesConfig     `yaml:"files"`
	Defaults  domain.Defaults `yaml:"defaults"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Log       LogConfig       `yaml:"log"`
}

type WarehouseConfig struct {
	ConnString   string `yaml:"conn_string"`
	ControlTable string `yaml:"control_table"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

type SourcesConfig struct {
	MySQL    source.Credentials `yaml:"mysql"`
	Postgres source.Credentials `yaml:"postgres"`
}

type FilesConfig struct {
	RootDir string            `yaml:"root_dir"`
	Roots   map[string]string `yaml:"roots"`
}

// Root returns the drop-folder root for the named endpoint.
func (f FilesConfig) Root(endpoint string) string {
	if dir, ok := f.Roots[endpoint]; ok && dir != "" {
		return dir
	}
	return f.RootDir
}

type SchedulerConfig struct {
	Schedule          string        `yaml:"schedule"`
	Concurrency       int           `yaml:"concurrency"`
	InvocationTimeout time.Duration `yaml:"invocation_timeout"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyDefaults fills unset fields. It is exported so programmatic configs get
// the same treatment as YAML ones.
func (c *Config) ApplyDefaults() {
	if c.Warehouse.ConnString == "" {
		c.Warehouse.ConnString = connStringFromEnv()
	}
	if c.Warehouse.ControlTable == "" {
		c.Warehouse.ControlTable = "ingest_control"
	}
	if c.Warehouse.MaxOpenConns == 0 {
		c.Warehouse.MaxOpenConns = 10
	}
	applyCredentialDefaults(&c.Sources.MySQL)
	applyCredentialDefaults(&c.Sources.Postgres)
	if c.Sources.Postgres.SSLMode == "" {
		c.Sources.Postgres.SSLMode = "disable"
	}
	if c.Files.RootDir == "" {
		c.Files.RootDir = "/data"
	}
	if c.Defaults.ChunkSize == 0 {
		c.Defaults.ChunkSize = 50
	}
	if c.Defaults.MaxChunksPerRun == 0 {
		c.Defaults.MaxChunksPerRun = 20
	}
	if c.Defaults.MaxFoldersPerRun == 0 {
		c.Defaults.MaxFoldersPerRun = 50
	}
	if c.Defaults.Database == "" {
		c.Defaults.Database = domain.DefaultDatabase
	}
	if c.Scheduler.Schedule == "" {
		c.Scheduler.Schedule = "@every 30s"
	}
	if c.Scheduler.Concurrency == 0 {
		c.Scheduler.Concurrency = 4
	}
	if c.Scheduler.InvocationTimeout == 0 {
		c.Scheduler.InvocationTimeout = 5 * time.Minute
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9100"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) Validate() error {
	if c.Warehouse.ConnString == "" {
		return fmt.Errorf("warehouse.conn_string is required")
	}
	if c.Defaults.ChunkSize <= 0 {
		return fmt.Errorf("defaults.chunk_size must be > 0")
	}
	if c.Defaults.MaxChunksPerRun <= 0 || c.Defaults.MaxFoldersPerRun <= 0 {
		return fmt.Errorf("defaults.max_chunks_per_run and defaults.max_folders_per_run must be > 0")
	}
	if _, err := cron.ParseStandard(c.Scheduler.Schedule); err != nil {
		return fmt.Errorf("scheduler.schedule: %w", err)
	}
	if c.Scheduler.Concurrency <= 0 {
		return fmt.Errorf("scheduler.concurrency must be > 0")
	}
	if c.Scheduler.InvocationTimeout < 0 {
		return fmt.Errorf("scheduler.invocation_timeout must not be negative")
	}
	if c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

func applyCredentialDefaults(c *source.Credentials) {
	if c.User == "" {
		c.User = "sensoruser"
	}
	if c.Password == "" {
		c.Password = "sensorpass"
	}
}

// connStringFromEnv assembles the warehouse URL from the SUPABASE_* variables
// used by the docker-compose deployment.
func connStringFromEnv() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(getenv("SUPABASE_USER", "postgres"), getenv("SUPABASE_PASSWORD", "postgres")),
		Host:     net.JoinHostPort(getenv("SUPABASE_HOST", "supabase-db"), getenv("SUPABASE_PORT", "5432")),
		Path:     "/" + getenv("SUPABASE_DB", "postgres"),
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
