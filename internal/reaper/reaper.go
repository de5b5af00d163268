// Package reaper implements the liveness reaper: a periodic sweep that
// evicts endpoints idle beyond the liveness horizon.
package reaper

import (
	"context"
	"time"

	"github.com/rendezvous-relay/rendezvous/internal/registry"
)

// DefaultPeriod and DefaultHorizon are the factory-default sweep cadence
// and idle horizon.
const (
	DefaultPeriod  = 5 * time.Minute
	DefaultHorizon = 12 * time.Hour
)

// Registry is the subset of registry.Registry the reaper depends on.
type Registry interface {
	Sweep(horizon time.Duration) []registry.Eviction
}

// OnEviction is called once per evicted endpoint, for logging/audit.
type OnEviction func(registry.Eviction)

// Reaper runs the periodic sweep. Run blocks on the calling goroutine;
// it starts no goroutine of its own.
type Reaper struct {
	registry Registry
	period   time.Duration
	horizon  time.Duration
	onEvict  OnEviction
}

// New constructs a Reaper. A zero period or horizon falls back to the
// package defaults.
func New(reg Registry, period, horizon time.Duration, onEvict OnEviction) *Reaper {
	if period <= 0 {
		period = DefaultPeriod
	}
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	return &Reaper{registry: reg, period: period, horizon: horizon, onEvict: onEvict}
}

// Run blocks, sweeping every period until ctx is cancelled. The first
// tick is implicitly skipped: time.Ticker's first tick only fires after
// one full period elapses, so no explicit skip is needed.
func (r *Reaper) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.sweepOnce()
		}
	}
}

func (r *Reaper) sweepOnce() {
	for _, e := range r.registry.Sweep(r.horizon) {
		if r.onEvict != nil {
			r.onEvict(e)
		}
	}
}
