package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// sessionView is the JSON shape served by GET /sessions: one entry per
// session, one member per entry, with idle time rendered as a duration
// string rather than raw nanoseconds.
type sessionView struct {
	ID      string       `json:"id"`
	Members []memberView `json:"members"`
}

type memberView struct {
	Endpoint string `json:"endpoint"`
	ID       string `json:"id"`
	IdleFor  string `json:"idle_for"`
}

// newAdminServer builds the admin HTTP surface: health, metrics, and a
// read-only session snapshot. It never touches the registry outside a
// Snapshot call, so a slow or misbehaving client cannot affect relay
// forwarding.
func (s *Server) newAdminServer(running *livenessFlag) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if !running.healthy() {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	mux.Handle("/metrics", promhttp.HandlerFor(s.promReg, promhttp.HandlerOpts{}))

	mux.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
		snap := s.registry.Snapshot()
		out := make([]sessionView, 0, len(snap))
		for _, sess := range snap {
			members := make([]memberView, 0, len(sess.Members))
			for _, m := range sess.Members {
				members = append(members, memberView{
					Endpoint: m.Endpoint.String(),
					ID:       m.ID.String(),
					IdleFor:  m.IdleFor.Round(time.Second).String(),
				})
			}
			out = append(out, sessionView{ID: sess.ID, Members: members})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	})

	return &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// serveUntilCancelled runs srv over ln until ctx is cancelled, treating
// http.ErrServerClosed (the expected outcome of Shutdown) as a clean
// exit rather than a fatal error.
func serveUntilCancelled(ctx context.Context, srv *http.Server, ln net.Listener) error {
	err := srv.Serve(ln)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
