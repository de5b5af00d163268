// Package registry implements the session registry: the mutually-
// consistent forward (session -> members) and reverse (endpoint ->
// session) mappings, admitted and mutated under a single serialization
// discipline shared by the data path and the liveness reaper.
package registry

import (
	"net/netip"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Registry is the concurrency-safe session table. A single mutex guards
// both mappings of the embedded store: every mutation here touches both
// mappings together, so a split lock would buy nothing.
type Registry struct {
	mu    sync.RWMutex
	store *store

	admissions   atomic.Int64
	rejections   atomic.Int64
	forwarded    atomic.Int64
	sendFailures atomic.Int64
	evictions    atomic.Int64
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{store: newStore()}
}

// Admit adds addr to sessionID, or refreshes its last-seen if it is
// already a member of some session. It never validates the admission
// secret — that is the caller's (internal/admission) responsibility
// before Admit is reached.
func (r *Registry) Admit(sessionID string, addr netip.AddrPort) bool {
	r.mu.Lock()
	admitted := r.store.admit(sessionID, addr, time.Now())
	r.mu.Unlock()
	if admitted {
		r.admissions.Add(1)
	}
	return admitted
}

// MemberID reports the registration id assigned to addr, for audit
// logging at the call site that just admitted it.
func (r *Registry) MemberID(addr netip.AddrPort) (uuid.UUID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store.memberID(addr)
}

// Deregister removes addr from the registry. The asserted session id is
// not checked against the reverse mapping before mutating.
func (r *Registry) Deregister(addr netip.AddrPort) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.remove(addr)
}

// Touch refreshes addr's last-seen and reports its session id. Used by
// the forwarding engine to update the sender's liveness independent of
// the fan-out itself.
func (r *Registry) Touch(addr netip.AddrPort) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.touch(addr, time.Now())
}

// PeersExcept returns every other member of addr's session, for the
// forwarding engine's fan-out.
func (r *Registry) PeersExcept(addr netip.AddrPort) ([]netip.AddrPort, string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store.peersExcept(addr)
}

// Sweep evicts every member idle beyond horizon and reports what was
// removed. Takes the same mutex as the data path, so a sweep never
// interleaves with a half-applied Admit/Deregister.
func (r *Registry) Sweep(horizon time.Duration) []Eviction {
	r.mu.Lock()
	evicted := r.store.sweep(horizon, time.Now())
	r.mu.Unlock()
	if len(evicted) > 0 {
		r.evictions.Add(int64(len(evicted)))
	}
	return evicted
}

// Snapshot returns a read-only view of the whole registry for the admin
// HTTP surface and dashboard.
func (r *Registry) Snapshot() []SessionSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store.snapshot(time.Now())
}

// RecordForwarded accounts one successful peer send.
func (r *Registry) RecordForwarded() { r.forwarded.Add(1) }

// RecordSendFailure accounts one failed peer send: logged and accounted,
// but independent of other peers' outcomes.
func (r *Registry) RecordSendFailure() { r.sendFailures.Add(1) }

// RecordRejection accounts one failed admission attempt.
func (r *Registry) RecordRejection() { r.rejections.Add(1) }

// Stats returns a consistent-enough snapshot of the monotonic counters
// for internal/telemetry. Each field is read independently; under
// concurrent mutation the tuple may not correspond to a single instant,
// which is acceptable for monitoring counters.
func (r *Registry) Stats() Stats {
	return Stats{
		Admissions:   r.admissions.Load(),
		Rejections:   r.rejections.Load(),
		Forwarded:    r.forwarded.Load(),
		SendFailures: r.sendFailures.Load(),
		Evictions:    r.evictions.Load(),
	}
}
