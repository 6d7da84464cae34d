package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/harris-mohamed/sensorsync/internal/app/pipeline"
	"github.com/harris-mohamed/sensorsync/internal/ports"
)

// ErrRunning is returned by Start when the scheduler is already started.
var ErrRunning = errors.New("scheduler: already running")

// Ticker runs one pass over all active endpoints.
type Ticker interface {
	Tick(ctx context.Context) (pipeline.TickReport, error)
}

// Scheduler fires Ticker on a cron schedule. Each tick gets its own timeout;
// overlapping ticks are left to the ticker's in-flight guard.
type Scheduler struct {
	cron    *cron.Cron
	ticker  Ticker
	timeout time.Duration
	obs     ports.Observability

	mu      sync.Mutex
	base    context.Context
	cancel  context.CancelFunc
	running bool
}

// New parses spec (standard five-field syntax or descriptors such as
// "@every 30s") and binds it to ticker.
func New(spec string, ticker Ticker, timeout time.Duration, logger cron.Logger, obs ports.Observability) (*Scheduler, error) {
	s := &Scheduler{ticker: ticker, timeout: timeout, obs: obs}
	s.cron = cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger)),
	)
	if _, err := s.cron.AddFunc(spec, s.runTick); err != nil {
		return nil, fmt.Errorf("schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins firing ticks in the background. ctx bounds every tick.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrRunning
	}
	s.base, s.cancel = context.WithCancel(ctx)
	s.running = true
	s.cron.Start()
	return nil
}

// Stop prevents further ticks, cancels the ones in progress and waits for
// them to return or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	done := s.cron.Stop()
	cancel()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) tickContext() (context.Context, context.CancelFunc) {
	s.mu.Lock()
	base := s.base
	s.mu.Unlock()
	if base == nil {
		base = context.Background()
	}
	if s.timeout <= 0 {
		return context.WithCancel(base)
	}
	return context.WithTimeout(base, s.timeout)
}

func (s *Scheduler) runTick() {
	ctx, cancel := s.tickContext()
	defer cancel()

	if _, err := s.ticker.Tick(ctx); err != nil {
		s.obs.LogError("tick_failed", err)
	}
}
