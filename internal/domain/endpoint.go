package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownEndpointType marks a control-table row whose endpoint_type has no syncer.
var ErrUnknownEndpointType = errors.New("sensorsync: unknown endpoint type")

// ErrNoSyncer is returned when an endpoint reaches the engine with a kind nothing handles.
var ErrNoSyncer = errors.New("sensorsync: no syncer registered for endpoint kind")

// Kind is the endpoint_type column of the control table.
type Kind string

const (
	KindMySQL    Kind = "mysql"
	KindPostgres Kind = "postgres"
	KindFile     Kind = "file"
)

// DefaultDatabase is the source database used when a control row leaves
// database_name NULL.
const DefaultDatabase = "sensors"

// ParseKind maps a raw endpoint_type value to a Kind. The match is exact:
// "MySQL" or " mysql" are unknown types.
func ParseKind(raw string) (Kind, error) {
	switch k := Kind(raw); k {
	case KindMySQL, KindPostgres, KindFile:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEndpointType, raw)
	}
}

// Relational reports whether endpoints of this kind are paged by numeric source id.
func (k Kind) Relational() bool {
	return k == KindMySQL || k == KindPostgres
}

// DefaultAddr is where endpoints of this kind listen when the control row
// leaves ip_address or port unset.
func (k Kind) DefaultAddr() (host string, port int) {
	switch k {
	case KindMySQL:
		return "mysql-endpoint", 3306
	case KindPostgres:
		return "postgres-endpoint", 5432
	default:
		return "", 0
	}
}

// Endpoint is one active row of the control table, resolved with defaults.
// The sync engine only reads it.
type Endpoint struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Kind            Kind   `json:"kind"`
	Host            string `json:"host"`
	Port            int    `json:"port"`
	Database        string `json:"database,omitempty"`
	PageSize        int    `json:"page_size"`
	MaxChunksPerRun int    `json:"max_chunks_per_run"`
	Active          bool   `json:"active"`
}

// ControlRow is a raw ingest_control row before endpoint_type is validated.
type ControlRow struct {
	ID              int64
	Host            string
	Port            int
	Name            string
	ChunkSize       int
	MaxChunksPerRun int
	EndpointType    string
	Database        string
}

// Defaults holds the tunables applied when a control row leaves them unset.
type Defaults struct {
	ChunkSize        int    `yaml:"chunk_size"`
	MaxChunksPerRun  int    `yaml:"max_chunks_per_run"`
	MaxFoldersPerRun int    `yaml:"max_folders_per_run"`
	Database         string `yaml:"database"`
}

// Endpoint resolves the row into an Endpoint. Unknown endpoint types yield
// ErrUnknownEndpointType so callers can skip the row.
func (r ControlRow) Endpoint(d Defaults) (Endpoint, error) {
	kind, err := ParseKind(r.EndpointType)
	if err != nil {
		return Endpoint{}, err
	}

	ep := Endpoint{
		ID:              r.ID,
		Name:            r.Name,
		Kind:            kind,
		Host:            r.Host,
		Port:            r.Port,
		Database:        r.Database,
		PageSize:        r.ChunkSize,
		MaxChunksPerRun: r.MaxChunksPerRun,
		Active:          true,
	}
	if ep.PageSize <= 0 {
		ep.PageSize = d.ChunkSize
	}
	if !kind.Relational() {
		if ep.MaxChunksPerRun <= 0 {
			ep.MaxChunksPerRun = d.MaxFoldersPerRun
		}
		return ep, nil
	}

	if ep.MaxChunksPerRun <= 0 {
		ep.MaxChunksPerRun = d.MaxChunksPerRun
	}
	host, port := kind.DefaultAddr()
	if ep.Host == "" {
		ep.Host = host
	}
	if ep.Port <= 0 {
		ep.Port = port
	}
	if ep.Database == "" {
		ep.Database = d.Database
	}
	if ep.Database == "" {
		ep.Database = DefaultDatabase
	}
	return ep, nil
}
