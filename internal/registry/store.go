package registry

import (
	"net/netip"
	"time"

	"github.com/google/uuid"
)

// member is an admitted endpoint's state, owned exclusively by the forward
// mapping. The reverse mapping never holds a pointer to it — only the
// session id by value, re-looked-up on every access.
type member struct {
	id       uuid.UUID
	lastSeen time.Time
}

// store is the unlocked core of the registry: the forward mapping
// (session id -> members) and the reverse mapping (endpoint -> session id).
// It assumes single-threaded access; registry.Registry adds the
// serialization discipline around it.
type store struct {
	sessions map[string]map[netip.AddrPort]*member
	reverse  map[netip.AddrPort]string
}

func newStore() *store {
	return &store{
		sessions: make(map[string]map[netip.AddrPort]*member),
		reverse:  make(map[netip.AddrPort]string),
	}
}

// admit inserts addr into sessionID's member set, or refreshes its
// last-seen if already present. Returns true when this was a new
// admission, false for an idempotent re-admit.
func (s *store) admit(sessionID string, addr netip.AddrPort, now time.Time) bool {
	if existingSession, ok := s.reverse[addr]; ok {
		// Any already-registered endpoint is a no-op success: it stays a
		// member of whatever session it already belongs to, regardless of
		// the session id this CONNECT names. Only last-seen is refreshed.
		s.sessions[existingSession][addr].lastSeen = now
		return false
	}

	members, ok := s.sessions[sessionID]
	if !ok {
		members = make(map[netip.AddrPort]*member)
		s.sessions[sessionID] = members
	}
	members[addr] = &member{id: uuid.New(), lastSeen: now}
	s.reverse[addr] = sessionID
	return true
}

// remove deletes addr from whichever session it belongs to, dropping the
// session entirely if it becomes empty. Returns false if addr was not
// registered.
func (s *store) remove(addr netip.AddrPort) bool {
	sessionID, ok := s.reverse[addr]
	if !ok {
		return false
	}
	delete(s.reverse, addr)

	members := s.sessions[sessionID]
	delete(members, addr)
	if len(members) == 0 {
		delete(s.sessions, sessionID)
	}
	return true
}

// touch refreshes addr's last-seen and reports its session id.
func (s *store) touch(addr netip.AddrPort, now time.Time) (string, bool) {
	sessionID, ok := s.reverse[addr]
	if !ok {
		return "", false
	}
	s.sessions[sessionID][addr].lastSeen = now
	return sessionID, true
}

// memberID reports the registration id assigned to addr, if registered.
func (s *store) memberID(addr netip.AddrPort) (uuid.UUID, bool) {
	sessionID, ok := s.reverse[addr]
	if !ok {
		return uuid.UUID{}, false
	}
	return s.sessions[sessionID][addr].id, true
}

// peersExcept returns every other member of addr's session.
func (s *store) peersExcept(addr netip.AddrPort) ([]netip.AddrPort, string, bool) {
	sessionID, ok := s.reverse[addr]
	if !ok {
		return nil, "", false
	}
	members := s.sessions[sessionID]
	peers := make([]netip.AddrPort, 0, len(members))
	for m := range members {
		if m != addr {
			peers = append(peers, m)
		}
	}
	return peers, sessionID, true
}

// sweep reports every member whose last-seen is older than the horizon
// and removes them, dropping any session left empty.
func (s *store) sweep(horizon time.Duration, now time.Time) []Eviction {
	var evicted []Eviction
	for sessionID, members := range s.sessions {
		for addr, m := range members {
			if now.Sub(m.lastSeen) > horizon {
				evicted = append(evicted, Eviction{SessionID: sessionID, Endpoint: addr, ID: m.id})
			}
		}
	}
	for _, e := range evicted {
		s.remove(e.Endpoint)
	}
	return evicted
}

// snapshot produces a point-in-time, order-irrelevant view of every
// session for observability (admin HTTP surface, dashboard, metrics).
func (s *store) snapshot(now time.Time) []SessionSnapshot {
	out := make([]SessionSnapshot, 0, len(s.sessions))
	for sessionID, members := range s.sessions {
		ms := make([]MemberSnapshot, 0, len(members))
		for addr, m := range members {
			ms = append(ms, MemberSnapshot{
				Endpoint: addr,
				ID:       m.id,
				IdleFor:  now.Sub(m.lastSeen),
			})
		}
		out = append(out, SessionSnapshot{ID: sessionID, Members: ms})
	}
	return out
}
