// Package server wires the relay's components together: the control
// parser, admission controller, session registry, forwarding engine,
// liveness reaper, and the admin/observability HTTP surface. One
// errgroup, one goroutine per concern, first error cancels the rest.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/netip"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"github.com/rendezvous-relay/rendezvous/internal/admission"
	"github.com/rendezvous-relay/rendezvous/internal/audit"
	"github.com/rendezvous-relay/rendezvous/internal/config"
	"github.com/rendezvous-relay/rendezvous/internal/forwarding"
	"github.com/rendezvous-relay/rendezvous/internal/protocol"
	"github.com/rendezvous-relay/rendezvous/internal/reaper"
	"github.com/rendezvous-relay/rendezvous/internal/registry"
	"github.com/rendezvous-relay/rendezvous/internal/telemetry"
	"github.com/rendezvous-relay/rendezvous/internal/transport"
)

// Server owns every long-running component of the relay process.
type Server struct {
	cfg *config.Config

	registry  *registry.Registry
	admission *admission.Controller
	audit     *audit.Logger
	promReg   *prometheus.Registry
	metrics   *telemetry.Metrics

	socket *transport.Socket
}

// New constructs a Server but does not bind any socket yet — binding
// happens in Run so that a single Server value can be reused across
// restarts in tests.
func New(cfg *config.Config) *Server {
	reg := registry.New()
	promReg := prometheus.NewRegistry()
	return &Server{
		cfg:       cfg,
		registry:  reg,
		admission: admission.New(cfg.Secret()),
		audit:     audit.New(),
		promReg:   promReg,
		metrics:   telemetry.New(reg, promReg),
	}
}

// Run binds the relay's UDP socket and the admin HTTP listener, then
// blocks running the dispatcher, the liveness reaper, and the admin
// server under one errgroup until ctx is cancelled or any one of them
// returns a fatal error.
func (s *Server) Run(ctx context.Context) error {
	tun := s.cfg.Tunables()

	socket, err := transport.Listen(tun.Addr)
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}
	s.socket = socket
	defer socket.Close()

	adminLn, err := net.Listen("tcp", tun.AdminAddr)
	if err != nil {
		return fmt.Errorf("server: binding admin surface on %s: %w", tun.AdminAddr, err)
	}
	if tun.AdminMaxConns > 0 {
		adminLn = netutil.LimitListener(adminLn, tun.AdminMaxConns)
	}

	log.Printf("server: relay listening on %s, admin surface on %s", socket.LocalAddr(), adminLn.Addr())

	g, gctx := errgroup.WithContext(ctx)

	running := newLivenessFlag()

	g.Go(func() error {
		running.markDispatcherUp()
		defer running.markDispatcherDown()
		return s.runDispatcher(socket)
	})

	g.Go(func() error {
		running.markReaperUp()
		defer running.markReaperDown()
		r := reaper.New(s.registry, tun.ReaperPeriod, tun.ReaperHorizon, s.onEviction)
		return r.Run(gctx)
	})

	adminSrv := s.newAdminServer(running)
	g.Go(func() error {
		return serveUntilCancelled(gctx, adminSrv, adminLn)
	})

	g.Go(func() error {
		<-gctx.Done()
		socket.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return adminSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// runDispatcher drives transport.Dispatch over the bound socket, feeding
// every datagram through handleDatagram. Any socket read error other
// than "closed" (the shutdown path) is treated as fatal.
func (s *Server) runDispatcher(socket *transport.Socket) error {
	err := transport.Dispatch(socket, func(payload []byte, sender netip.AddrPort) {
		s.handleDatagram(socket, payload, sender)
	}, func(error) bool {
		return true
	})
	if isClosedConnError(err) {
		return nil
	}
	return err
}

func (s *Server) handleDatagram(sender forwarding.Sender, payload []byte, from netip.AddrPort) {
	cmd := protocol.Parse(payload)
	switch cmd.Kind {
	case protocol.Connect:
		s.handleConnect(cmd, from)
	case protocol.Disconnect:
		s.handleDisconnect(from)
	default:
		s.handleData(sender, payload, from)
	}
}

func (s *Server) handleConnect(cmd protocol.Command, from netip.AddrPort) {
	if !s.admission.Verify(cmd.Secret) {
		s.registry.RecordRejection()
		if s.admission.ShouldLogRejection(from.Addr()) {
			s.audit.AdmissionRejected(from)
		}
		return
	}

	s.registry.Admit(cmd.SessionID, from)
	if id, ok := s.registry.MemberID(from); ok {
		s.audit.Admitted(cmd.SessionID, from, id)
	}
}

func (s *Server) handleDisconnect(from netip.AddrPort) {
	if s.registry.Deregister(from) {
		s.audit.Deregistered(from)
	}
}

func (s *Server) handleData(sender forwarding.Sender, payload []byte, from netip.AddrPort) {
	forwarding.Forward(s.registry, sender, s.onForwardFailure, from, payload)
}

func (s *Server) onForwardFailure(peer netip.AddrPort, err error) {
	log.Printf("server: forwarding to %s failed: %v", peer, err)
}

func (s *Server) onEviction(e registry.Eviction) {
	s.audit.Evicted(e.SessionID, e.Endpoint, e.ID)
}
