// Package transport implements the datagram socket and dispatch loop the
// relay is built on.
package transport

import (
	"fmt"
	"net"
	"net/netip"
)

// MaxDatagramBytes bounds the receive buffer at the typical Ethernet MTU
// ceiling. A payload larger than this is truncated at the receive
// boundary — a consequence of the fixed buffer, not a policy choice.
const MaxDatagramBytes = 1500

// Socket is a bound UDP endpoint: it receives datagrams with the
// sender's address and sends to arbitrary destinations.
type Socket struct {
	conn *net.UDPConn
}

// Listen binds addr and applies best-effort platform socket tuning
// (socket_linux.go / socket_other.go).
func Listen(addr string) (*Socket, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: failed to resolve bind address %q: %w", addr, err)
	}

	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("transport: failed to bind %q: %w", addr, err)
	}

	tuneSocketBuffers(conn)

	return &Socket{conn: conn}, nil
}

// Close releases the underlying file descriptor.
func (s *Socket) Close() error {
	return s.conn.Close()
}

// LocalAddr reports the bound address.
func (s *Socket) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

// ReadFrom reads one datagram into buf, truncating at len(buf).
func (s *Socket) ReadFrom(buf []byte) (n int, sender netip.AddrPort, err error) {
	n, sender, err = s.conn.ReadFromUDPAddrPort(buf)
	return n, sender, err
}

// SendTo writes payload to addr. Implements forwarding.Sender.
func (s *Socket) SendTo(addr netip.AddrPort, payload []byte) error {
	_, err := s.conn.WriteToUDPAddrPort(payload, addr)
	return err
}
