package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/harris-mohamed/sensorsync/internal/domain"
	"github.com/harris-mohamed/sensorsync/internal/ports"
)

// SkippedEndpoint is a control row that could not be turned into an invocation.
type SkippedEndpoint struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	EndpointType string `json:"endpoint_type"`
	Reason       string `json:"reason"`
}

// TickReport summarizes one dispatcher tick.
type TickReport struct {
	Started  time.Time         `json:"started"`
	Duration time.Duration     `json:"duration"`
	Results  []domain.Result   `json:"results"`
	Failures map[string]error  `json:"-"`
	Skipped  []SkippedEndpoint `json:"skipped,omitempty"`
	Busy     []string          `json:"busy,omitempty"`
}

// Dispatcher turns the active control-table rows into one independent
// invocation per endpoint.
type Dispatcher struct {
	registry    ports.EndpointRegistry
	invoker     ports.Invoker
	guard       ports.InflightGuard
	defaults    domain.Defaults
	concurrency int
	obs         ports.Observability
}

// NewDispatcher builds a dispatcher. guard may be nil when the caller already
// serializes ticks; concurrency <= 0 runs endpoints one at a time.
func NewDispatcher(registry ports.EndpointRegistry, invoker ports.Invoker, guard ports.InflightGuard, defaults domain.Defaults, concurrency int, obs ports.Observability) *Dispatcher {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Dispatcher{
		registry:    registry,
		invoker:     invoker,
		guard:       guard,
		defaults:    defaults,
		concurrency: concurrency,
		obs:         obs,
	}
}

// Plan reads the control table and resolves each row. Rows with an unknown
// endpoint_type are returned as skipped rather than failing the plan.
func (d *Dispatcher) Plan(ctx context.Context) ([]domain.Endpoint, []SkippedEndpoint, error) {
	rows, err := d.registry.ActiveEndpoints(ctx)
	if err != nil {
		return nil, nil, err
	}

	endpoints := make([]domain.Endpoint, 0, len(rows))
	var skipped []SkippedEndpoint
	for _, row := range rows {
		ep, err := row.Endpoint(d.defaults)
		if err != nil {
			d.obs.LogWarn("endpoint_skipped",
				ports.F("id", row.ID),
				ports.F("endpoint", row.Name),
				ports.F("endpoint_type", row.EndpointType),
				ports.F("reason", err.Error()))
			d.obs.IncCounter(ports.MetricEndpointsSkipped, 1)
			skipped = append(skipped, SkippedEndpoint{
				ID:           row.ID,
				Name:         row.Name,
				EndpointType: row.EndpointType,
				Reason:       err.Error(),
			})
			continue
		}
		endpoints = append(endpoints, ep)
	}
	return endpoints, skipped, nil
}

// Tick runs every planned endpoint once. Invocations are independent: a failure
// is recorded and joined into the returned error without cancelling the others.
func (d *Dispatcher) Tick(ctx context.Context) (report TickReport, err error) {
	report = TickReport{Started: time.Now(), Failures: make(map[string]error)}
	defer func() {
		report.Duration = time.Since(report.Started)
		d.obs.ObserveLatency(ports.MetricTickDuration, report.Duration.Seconds())
	}()

	endpoints, skipped, err := d.Plan(ctx)
	if err != nil {
		d.obs.LogError("load_endpoints_failed", err)
		return report, fmt.Errorf("load endpoints: %w", err)
	}
	report.Skipped = skipped
	d.obs.SetGauge(ports.MetricActiveEndpoints, float64(len(endpoints)))

	var (
		results = make([]domain.Result, len(endpoints))
		errs    = make([]error, len(endpoints))
		ran     = make([]bool, len(endpoints))
		g       errgroup.Group
	)
	g.SetLimit(d.concurrency)

	for i, ep := range endpoints {
		if d.guard != nil && !d.guard.TryAcquire(ep.Name) {
			d.obs.LogWarn("endpoint_busy", ports.F("endpoint", ep.Name))
			d.obs.IncCounter(ports.MetricEndpointsBusy, 1)
			report.Busy = append(report.Busy, ep.Name)
			continue
		}
		ran[i] = true
		i, ep := i, ep
		g.Go(func() error {
			if d.guard != nil {
				d.obs.SetGauge(ports.MetricInflightSyncs, float64(d.guard.Len()))
				defer func() {
					d.guard.Release(ep.Name)
					d.obs.SetGauge(ports.MetricInflightSyncs, float64(d.guard.Len()))
				}()
			}
			results[i], errs[i] = d.invoker.Invoke(ctx, ep)
			return nil
		})
	}
	_ = g.Wait()

	var failed []error
	for i, ep := range endpoints {
		if !ran[i] {
			continue
		}
		if errs[i] != nil {
			report.Failures[ep.Name] = errs[i]
			failed = append(failed, errs[i])
			continue
		}
		report.Results = append(report.Results, results[i])
	}

	d.obs.LogInfo("tick_finished",
		ports.F("endpoints", len(endpoints)),
		ports.F("succeeded", len(report.Results)),
		ports.F("failed", len(failed)),
		ports.F("skipped", len(report.Skipped)),
		ports.F("busy", len(report.Busy)))

	return report, errors.Join(failed...)
}
