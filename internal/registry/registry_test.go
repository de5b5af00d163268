package registry

import (
	"net/netip"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func addr(s string) netip.AddrPort {
	return netip.MustParseAddrPort(s)
}

func TestAdmitIdempotent(t *testing.T) {
	r := New()
	a := addr("1.2.3.4:10")

	if !r.Admit("room1", a) {
		t.Fatalf("first CONNECT should be a new admission")
	}
	if r.Admit("room1", a) {
		t.Errorf("repeat CONNECT should be a no-op, not a new admission")
	}
	if r.Admit("room2", a) {
		t.Errorf("CONNECT naming a different session from an already-registered endpoint must still be a no-op")
	}

	peers, session, ok := r.PeersExcept(a)
	if !ok || session != "room1" || len(peers) != 0 {
		t.Errorf("endpoint should remain solely in room1, got session=%q peers=%v", session, peers)
	}
}

func TestDisconnectInverseOfConnect(t *testing.T) {
	r := New()
	a := addr("1.2.3.4:10")

	r.Admit("room1", a)
	if !r.Deregister(a) {
		t.Fatalf("expected deregistration to succeed")
	}
	if got := r.Snapshot(); len(got) != 0 {
		t.Errorf("registry should be empty after solo member disconnects, got %+v", got)
	}
	if _, _, ok := r.PeersExcept(a); ok {
		t.Errorf("endpoint should no longer resolve to a session")
	}
}

func TestDeregisterUnknownEndpointIsNoop(t *testing.T) {
	r := New()
	if r.Deregister(addr("9.9.9.9:1")) {
		t.Errorf("deregistering an unknown endpoint must report no removal")
	}
}

func TestFanOutCardinality(t *testing.T) {
	r := New()
	a, b, c := addr("1.1.1.1:1"), addr("2.2.2.2:2"), addr("3.3.3.3:3")
	r.Admit("chat", a)
	r.Admit("chat", b)
	r.Admit("chat", c)

	peers, session, ok := r.PeersExcept(c)
	if !ok || session != "chat" {
		t.Fatalf("expected chat session, got %q ok=%v", session, ok)
	}
	if len(peers) != 2 {
		t.Fatalf("expected 2 peers for a 3-member session, got %d: %v", len(peers), peers)
	}
	for _, p := range peers {
		if p == c {
			t.Errorf("sender must never be included among its own peers")
		}
	}
}

func TestSessionDestroyedWhenEmpty(t *testing.T) {
	r := New()
	a, b := addr("1.1.1.1:1"), addr("2.2.2.2:2")
	r.Admit("room1", a)
	r.Admit("room1", b)

	r.Deregister(a)
	snap := r.Snapshot()
	if len(snap) != 1 || snap[0].ID != "room1" || len(snap[0].Members) != 1 {
		t.Fatalf("expected room1 with 1 member remaining, got %+v", snap)
	}

	r.Deregister(b)
	if snap := r.Snapshot(); len(snap) != 0 {
		t.Errorf("session should be removed once its last member leaves, got %+v", snap)
	}
}

func TestSweepEvictsOnlyExpired(t *testing.T) {
	r := New()
	alive, stale := addr("1.1.1.1:1"), addr("2.2.2.2:2")
	r.Admit("alone", alive)
	r.Admit("alone2", stale)

	time.Sleep(5 * time.Millisecond)
	r.Touch(alive) // keeps "alive" fresh right before the sweep; "stale" keeps aging

	evicted := r.Sweep(2 * time.Millisecond)
	if len(evicted) != 1 || evicted[0].Endpoint != stale {
		t.Fatalf("expected only the untouched endpoint to be evicted, got %+v", evicted)
	}
	if _, _, ok := r.PeersExcept(alive); !ok {
		t.Errorf("recently-touched endpoint must survive the sweep")
	}
	if _, _, ok := r.PeersExcept(stale); ok {
		t.Errorf("expired endpoint must be gone after the sweep")
	}
}

func TestSnapshotReflectsMembership(t *testing.T) {
	r := New()
	a, b := addr("1.1.1.1:1"), addr("2.2.2.2:2")
	r.Admit("room1", a)
	r.Admit("room1", b)

	snap := r.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected exactly one session, got %d", len(snap))
	}
	got := make([]netip.AddrPort, 0, len(snap[0].Members))
	for _, m := range snap[0].Members {
		got = append(got, m.Endpoint)
	}
	want := []netip.AddrPort{a, b}
	less := func(x, y netip.AddrPort) bool { return x.String() < y.String() }
	if diff := cmp.Diff(want, got, cmp.Transformer("sort", func(in []netip.AddrPort) []netip.AddrPort {
		out := append([]netip.AddrPort(nil), in...)
		for i := 1; i < len(out); i++ {
			for j := i; j > 0 && less(out[j], out[j-1]); j-- {
				out[j], out[j-1] = out[j-1], out[j]
			}
		}
		return out
	})); diff != "" {
		t.Errorf("snapshot members mismatch (-want +got):\n%s", diff)
	}
}

func TestMemberIDStableAcrossTouch(t *testing.T) {
	r := New()
	a := addr("1.1.1.1:1")
	r.Admit("room1", a)

	id, ok := r.MemberID(a)
	if !ok {
		t.Fatalf("expected a registration id for an admitted endpoint")
	}
	r.Touch(a)
	again, ok := r.MemberID(a)
	if !ok || again != id {
		t.Errorf("registration id must survive a touch, got %v want %v", again, id)
	}

	r.Deregister(a)
	if _, ok := r.MemberID(a); ok {
		t.Errorf("expected no registration id after deregistration")
	}
}

func TestStatsCountAdmissionsAndEvictions(t *testing.T) {
	r := New()
	a := addr("1.1.1.1:1")
	r.Admit("room1", a)
	r.Admit("room1", a) // idempotent, must not double-count

	if stats := r.Stats(); stats.Admissions != 1 {
		t.Errorf("Admissions = %d, want 1", stats.Admissions)
	}

	time.Sleep(2 * time.Millisecond)
	r.Sweep(time.Millisecond)
	if stats := r.Stats(); stats.Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", stats.Evictions)
	}
}
