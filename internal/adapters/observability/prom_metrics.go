package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/harris-mohamed/sensorsync/internal/ports"
)

type PromObs struct {
	log      *zap.Logger
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

// NewPromObs registers the sync metrics with reg and logs through logger.
// A nil logger discards logs.
func NewPromObs(reg prometheus.Registerer, logger *zap.Logger) *PromObs {
	if logger == nil {
		logger = zap.NewNop()
	}

	ingested := prometheus.NewCounter(prometheus.CounterOpts{
		Name: ports.MetricRecordsIngested,
		Help: "Rows committed to the warehouse across all endpoints.",
	})
	chunks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: ports.MetricChunksProcessed,
		Help: "Pages fetched and committed by relational syncs.",
	})
	failures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: ports.MetricSyncFailures,
		Help: "Sync invocations that ended in an error.",
	})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: ports.MetricEndpointsSkipped,
		Help: "Control-table rows skipped because their endpoint_type is unknown.",
	})
	busy := prometheus.NewCounter(prometheus.CounterOpts{
		Name: ports.MetricEndpointsBusy,
		Help: "Endpoints not started because a previous invocation was still running.",
	})
	active := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: ports.MetricActiveEndpoints,
		Help: "Active endpoints seen in the control table on the last tick.",
	})
	inflight := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: ports.MetricInflightSyncs,
		Help: "Sync invocations currently running.",
	})
	syncLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    ports.MetricSyncDuration,
		Help:    "Wall time of one endpoint sync invocation.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
	})
	tickLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    ports.MetricTickDuration,
		Help:    "Wall time of one dispatcher tick across all endpoints.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
	})

	reg.MustRegister(ingested, chunks, failures, skipped, busy, active, inflight, syncLatency, tickLatency)

	return &PromObs{
		log: logger,
		counters: map[string]prometheus.Counter{
			ports.MetricRecordsIngested:  ingested,
			ports.MetricChunksProcessed:  chunks,
			ports.MetricSyncFailures:     failures,
			ports.MetricEndpointsSkipped: skipped,
			ports.MetricEndpointsBusy:    busy,
		},
		gauges: map[string]prometheus.Gauge{
			ports.MetricActiveEndpoints: active,
			ports.MetricInflightSyncs:   inflight,
		},
		histos: map[string]prometheus.Observer{
			ports.MetricSyncDuration: syncLatency,
			ports.MetricTickDuration: tickLatency,
		},
	}
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {
	p.log.Info(msg, zapFields(nil, fields)...)
}

func (p *PromObs) LogWarn(msg string, fields ...ports.Field) {
	p.log.Warn(msg, zapFields(nil, fields)...)
}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	p.log.Error(msg, zapFields(err, fields)...)
}

// LogCritical logs at DPanic: it panics in development loggers only.
func (p *PromObs) LogCritical(msg string, err error, fields ...ports.Field) {
	p.log.DPanic(msg, zapFields(err, fields)...)
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func zapFields(err error, fields []ports.Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields)+1)
	if err != nil {
		out = append(out, zap.Error(err))
	}
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}

var _ ports.Observability = (*PromObs)(nil)
