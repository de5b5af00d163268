package server

import (
	"errors"
	"net"
)

// isClosedConnError reports whether err is the expected consequence of
// closing the relay socket during shutdown, which transport.Dispatch
// otherwise surfaces as a generic read error.
func isClosedConnError(err error) bool {
	return errors.Is(err, net.ErrClosed)
}
