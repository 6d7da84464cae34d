package sensorsync

import (
	"github.com/harris-mohamed/sensorsync/internal/app/pipeline"
	"github.com/harris-mohamed/sensorsync/internal/domain"
	"github.com/harris-mohamed/sensorsync/internal/ports"
)

// Endpoint is one active control-table row with defaults applied.
type Endpoint = domain.Endpoint

// Kind is an endpoint_type: mysql, postgres or file.
type Kind = domain.Kind

const (
	KindMySQL    = domain.KindMySQL
	KindPostgres = domain.KindPostgres
	KindFile     = domain.KindFile
)

// Result is what one endpoint invocation reports.
type Result = domain.Result

// TickReport summarizes one pass over all active endpoints.
type TickReport = pipeline.TickReport

// SkippedEndpoint is a control row the dispatcher could not run.
type SkippedEndpoint = pipeline.SkippedEndpoint

// Measurement is one source row of a relational endpoint.
type Measurement = domain.Measurement

// FolderRecord is one drop folder found under a filesystem endpoint root.
type FolderRecord = domain.FolderRecord

// Dataset names a warehouse table and its column order.
type Dataset = domain.Dataset

// ControlRow is a raw ingest_control row.
type ControlRow = domain.ControlRow

// BatchWriter commits rows to the warehouse atomically.
type BatchWriter = ports.BatchWriter

// WatermarkStore derives resume points from warehouse contents.
type WatermarkStore = ports.WatermarkStore

// EndpointRegistry lists the active control-table rows.
type EndpointRegistry = ports.EndpointRegistry

// MeasurementReader pages measurements out of a relational source.
type MeasurementReader = ports.MeasurementReader

// FolderScanner lists drop folders not yet ingested.
type FolderScanner = ports.FolderScanner

// InflightGuard serializes invocations per endpoint name.
type InflightGuard = ports.InflightGuard

// Observability emits logs and metrics about syncs.
type Observability = ports.Observability

// Field is a structured log field used by Observability implementations.
type Field = ports.Field
