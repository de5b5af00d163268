package registry

import (
	"net/netip"
	"time"

	"github.com/google/uuid"
)

// Eviction describes a member removed by the liveness reaper.
type Eviction struct {
	SessionID string
	Endpoint  netip.AddrPort
	ID        uuid.UUID
}

// MemberSnapshot is a point-in-time, read-only view of one session member.
type MemberSnapshot struct {
	Endpoint netip.AddrPort
	ID       uuid.UUID
	IdleFor  time.Duration
}

// SessionSnapshot is a point-in-time, read-only view of one session.
type SessionSnapshot struct {
	ID      string
	Members []MemberSnapshot
}

// Stats holds the monotonic counters exposed to internal/telemetry.
type Stats struct {
	Admissions   int64
	Rejections   int64
	Forwarded    int64
	SendFailures int64
	Evictions    int64
}
