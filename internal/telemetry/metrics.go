// Package telemetry exposes the relay's counters as Prometheus metrics,
// reading live off the registry rather than keeping a second, separately
// synchronized set of counters.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rendezvous-relay/rendezvous/internal/registry"
)

// Metrics wraps the Prometheus collectors backing /metrics. Every
// collector is a *Func gauge or counter reading live off the registry,
// so there is no separate value to keep in sync on scrape.
type Metrics struct {
	admissions   prometheus.CounterFunc
	rejections   prometheus.CounterFunc
	forwarded    prometheus.CounterFunc
	sendFailures prometheus.CounterFunc
	evictions    prometheus.CounterFunc
	sessions     prometheus.GaugeFunc
	members      prometheus.GaugeFunc
}

// New registers the relay's collectors against reg, reading through to
// source on every scrape.
func New(source *registry.Registry, reg prometheus.Registerer) *Metrics {
	stat := func(pick func(registry.Stats) int64) func() float64 {
		return func() float64 { return float64(pick(source.Stats())) }
	}

	m := &Metrics{
		admissions: prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "rendezvous_admissions_total",
			Help: "Total successful CONNECT admissions.",
		}, stat(func(s registry.Stats) int64 { return s.Admissions })),
		rejections: prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "rendezvous_admission_rejections_total",
			Help: "Total CONNECT attempts rejected for a bad secret.",
		}, stat(func(s registry.Stats) int64 { return s.Rejections })),
		forwarded: prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "rendezvous_forwarded_datagrams_total",
			Help: "Total datagrams successfully forwarded to a peer.",
		}, stat(func(s registry.Stats) int64 { return s.Forwarded })),
		sendFailures: prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "rendezvous_send_failures_total",
			Help: "Total per-peer forwarding sends that failed.",
		}, stat(func(s registry.Stats) int64 { return s.SendFailures })),
		evictions: prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "rendezvous_reaper_evictions_total",
			Help: "Total endpoints evicted by the liveness reaper.",
		}, stat(func(s registry.Stats) int64 { return s.Evictions })),
		sessions: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "rendezvous_active_sessions",
			Help: "Current number of non-empty sessions.",
		}, func() float64 { return float64(len(source.Snapshot())) }),
		members: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "rendezvous_active_members",
			Help: "Current number of registered endpoints across all sessions.",
		}, func() float64 {
			total := 0
			for _, s := range source.Snapshot() {
				total += len(s.Members)
			}
			return float64(total)
		}),
	}

	reg.MustRegister(m.admissions, m.rejections, m.forwarded, m.sendFailures, m.evictions, m.sessions, m.members)
	return m
}
