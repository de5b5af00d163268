package audit

import (
	"net/netip"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
)

func newTestLogger() (*Logger, *test.Hook) {
	base, hook := test.NewNullLogger()
	return &Logger{log: base}, hook
}

func TestAdmittedLogsExpectedFields(t *testing.T) {
	l, hook := newTestLogger()
	id := uuid.New()
	addr := netip.MustParseAddrPort("1.2.3.4:5")

	l.Admitted("room1", addr, id)

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("no entry logged")
	}
	if got := entry.Data["event"]; got != "admitted" {
		t.Errorf("event = %v, want admitted", got)
	}
	if got := entry.Data["session_id"]; got != "room1" {
		t.Errorf("session_id = %v, want room1", got)
	}
	if got := entry.Data["member_id"]; got != id.String() {
		t.Errorf("member_id = %v, want %v", got, id.String())
	}
}

func TestAdmissionRejectedLogsWarning(t *testing.T) {
	l, hook := newTestLogger()
	addr := netip.MustParseAddrPort("9.9.9.9:1")

	l.AdmissionRejected(addr)

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("no entry logged")
	}
	if entry.Data["event"] != "admission_rejected" {
		t.Errorf("event = %v, want admission_rejected", entry.Data["event"])
	}
	if entry.Data["endpoint"] != addr.String() {
		t.Errorf("endpoint = %v, want %v", entry.Data["endpoint"], addr.String())
	}
}

func TestDeregisteredAndEvictedLogDistinctEvents(t *testing.T) {
	l, hook := newTestLogger()
	addr := netip.MustParseAddrPort("1.1.1.1:1")
	id := uuid.New()

	l.Deregistered(addr)
	if got := hook.LastEntry().Data["event"]; got != "deregistered" {
		t.Errorf("event = %v, want deregistered", got)
	}

	l.Evicted("roomX", addr, id)
	entry := hook.LastEntry()
	if entry.Data["event"] != "evicted" {
		t.Errorf("event = %v, want evicted", entry.Data["event"])
	}
	if entry.Data["session_id"] != "roomX" {
		t.Errorf("session_id = %v, want roomX", entry.Data["session_id"])
	}

	if len(hook.Entries) != 2 {
		t.Errorf("len(hook.Entries) = %d, want 2", len(hook.Entries))
	}
}
