package telemetry_test

import (
	"net/netip"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/rendezvous-relay/rendezvous/internal/registry"
	"github.com/rendezvous-relay/rendezvous/internal/telemetry"
)

func collectorValue(t *testing.T, name string, reg *prometheus.Registry) float64 {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather(): %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		var m *dto.Metric = mf.GetMetric()[0]
		if m.Counter != nil {
			return m.GetCounter().GetValue()
		}
		return m.GetGauge().GetValue()
	}
	t.Fatalf("metric %s not found among %d families", name, len(families))
	return 0
}

func TestMetricsReflectRegistryState(t *testing.T) {
	reg := registry.New()
	promReg := prometheus.NewRegistry()
	telemetry.New(reg, promReg)

	reg.Admit("room1", netip.MustParseAddrPort("1.2.3.4:10"))
	reg.Admit("room1", netip.MustParseAddrPort("5.6.7.8:20"))
	reg.RecordRejection()

	if got := collectorValue(t, "rendezvous_active_sessions", promReg); got != 1 {
		t.Errorf("rendezvous_active_sessions = %v, want 1", got)
	}
	if got := collectorValue(t, "rendezvous_active_members", promReg); got != 2 {
		t.Errorf("rendezvous_active_members = %v, want 2", got)
	}
	if got := collectorValue(t, "rendezvous_admissions_total", promReg); got != 2 {
		t.Errorf("rendezvous_admissions_total = %v, want 2", got)
	}
	if got := collectorValue(t, "rendezvous_admission_rejections_total", promReg); got != 1 {
		t.Errorf("rendezvous_admission_rejections_total = %v, want 1", got)
	}
}

func TestMetricsStayLiveAfterSweep(t *testing.T) {
	reg := registry.New()
	promReg := prometheus.NewRegistry()
	telemetry.New(reg, promReg)

	addr := netip.MustParseAddrPort("9.9.9.9:9")
	reg.Admit("solo", addr)
	reg.Sweep(0) // horizon 0 evicts any member idle for longer than zero

	if got := collectorValue(t, "rendezvous_active_sessions", promReg); got != 0 {
		t.Errorf("rendezvous_active_sessions after sweep = %v, want 0", got)
	}
	if got := collectorValue(t, "rendezvous_reaper_evictions_total", promReg); got != 1 {
		t.Errorf("rendezvous_reaper_evictions_total = %v, want 1", got)
	}
}
