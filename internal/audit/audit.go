// Package audit provides a structured, uuid-correlated event log for
// admission, deregistration, and eviction events — distinct from the
// plain operational log.Printf stream the rest of the relay uses for
// transient/diagnostic messages.
package audit

import (
	"net/netip"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Logger emits one structured line per session-membership event.
type Logger struct {
	log *logrus.Logger
}

// New returns a Logger writing JSON lines, suitable for shipping to a
// log aggregator independent of the operational stream.
func New() *Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	return &Logger{log: log}
}

// Admitted records a successful CONNECT.
func (l *Logger) Admitted(sessionID string, addr netip.AddrPort, id uuid.UUID) {
	l.log.WithFields(logrus.Fields{
		"event":      "admitted",
		"session_id": sessionID,
		"endpoint":   addr.String(),
		"member_id":  id.String(),
	}).Info("endpoint admitted to session")
}

// AdmissionRejected records a CONNECT rejected for a bad secret.
func (l *Logger) AdmissionRejected(addr netip.AddrPort) {
	l.log.WithFields(logrus.Fields{
		"event":    "admission_rejected",
		"endpoint": addr.String(),
	}).Warn("admission rejected")
}

// Deregistered records a DISCONNECT or an explicit removal.
func (l *Logger) Deregistered(addr netip.AddrPort) {
	l.log.WithFields(logrus.Fields{
		"event":    "deregistered",
		"endpoint": addr.String(),
	}).Info("endpoint deregistered")
}

// Evicted records a reaper-driven removal for liveness.
func (l *Logger) Evicted(sessionID string, addr netip.AddrPort, id uuid.UUID) {
	l.log.WithFields(logrus.Fields{
		"event":      "evicted",
		"session_id": sessionID,
		"endpoint":   addr.String(),
		"member_id":  id.String(),
	}).Info("endpoint evicted for inactivity")
}
