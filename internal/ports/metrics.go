package ports

// Metric names understood by Observability implementations.
const (
	MetricRecordsIngested  = "sensorsync_records_ingested_total"
	MetricChunksProcessed  = "sensorsync_chunks_processed_total"
	MetricSyncFailures     = "sensorsync_sync_failures_total"
	MetricEndpointsSkipped = "sensorsync_endpoints_skipped_total"
	MetricEndpointsBusy    = "sensorsync_endpoints_busy_total"
	MetricActiveEndpoints  = "sensorsync_active_endpoints"
	MetricInflightSyncs    = "sensorsync_inflight_syncs"
	MetricSyncDuration     = "sensorsync_sync_duration_seconds"
	MetricTickDuration     = "sensorsync_tick_duration_seconds"
)
