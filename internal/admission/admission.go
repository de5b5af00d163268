// Package admission validates the shared secret on CONNECT before the
// registry is ever mutated.
package admission

import (
	"crypto/subtle"
	"net/netip"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// rejectionCacheSize bounds the recent-rejection tracker so a flood of
// bad-secret attempts from distinct forged source addresses cannot grow
// it without bound.
const rejectionCacheSize = 4096

// rejectionLogWindow is how long a rejection from the same source is
// suppressed from the audit log after the first one.
const rejectionLogWindow = time.Minute

// Controller validates the admission secret supplied on CONNECT.
type Controller struct {
	secret string

	recent *lru.Cache[netip.Addr, time.Time]
}

// New returns a Controller comparing against secret. secret is immutable
// for the server's lifetime.
func New(secret string) *Controller {
	recent, err := lru.New[netip.Addr, time.Time](rejectionCacheSize)
	if err != nil {
		// Only returns an error for a non-positive size, which
		// rejectionCacheSize never is.
		panic(err)
	}
	return &Controller{secret: secret, recent: recent}
}

// Verify reports whether secret byte-equals the admission secret. It
// uses a constant-time comparison: a shared-secret check is exactly the
// kind of comparison that should not leak timing information about how
// many leading bytes matched.
func (c *Controller) Verify(secret string) bool {
	return subtle.ConstantTimeCompare([]byte(secret), []byte(c.secret)) == 1
}

// ShouldLogRejection reports whether a rejection from addr should be
// written to the audit log: the first rejection from an address always
// logs, subsequent ones within rejectionLogWindow do not. The core
// silent-rejection contract is unaffected by this — it only throttles
// log volume, never registry state.
func (c *Controller) ShouldLogRejection(addr netip.Addr) bool {
	now := time.Now()
	if last, ok := c.recent.Get(addr); ok && now.Sub(last) < rejectionLogWindow {
		return false
	}
	c.recent.Add(addr, now)
	return true
}
