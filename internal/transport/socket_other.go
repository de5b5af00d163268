//go:build !linux

package transport

import "net"

// tuneSocketBuffers is a no-op outside Linux: the SO_RCVBUF/SO_SNDBUF
// tuning in socket_linux.go is an optimization, not a correctness
// requirement, so non-Linux platforms simply keep Go's defaults.
func tuneSocketBuffers(conn *net.UDPConn) {}
