package transport

import "net/netip"

// Receiver is the subset of Socket the Dispatcher reads from.
type Receiver interface {
	ReadFrom(buf []byte) (n int, sender netip.AddrPort, err error)
}

// Handler processes one received datagram. It returns no error: any
// failure is the handler's own to log, and Dispatch reads the next
// datagram once it returns.
type Handler func(payload []byte, sender netip.AddrPort)

// OnReadError is invoked for every socket read error. Returning true
// tells Dispatch to terminate the loop with that error; returning false
// treats it as transient and continues.
type OnReadError func(err error) (fatal bool)

// Dispatch runs an unbounded receive loop: one datagram read per
// iteration, handed synchronously to handle. The single-task shape is
// preferred over a spawn-per-datagram fan-out for this workload — each
// datagram's handling is O(peers) non-blocking work — so Dispatch does
// not spawn a goroutine per packet; callers wanting concurrent handlers
// can wrap handle themselves.
func Dispatch(recv Receiver, handle Handler, onReadError OnReadError) error {
	buf := make([]byte, MaxDatagramBytes)
	for {
		n, sender, err := recv.ReadFrom(buf)
		if err != nil {
			if onReadError != nil && onReadError(err) {
				return err
			}
			continue
		}

		payload := make([]byte, n)
		copy(payload, buf[:n])
		handle(payload, sender)
	}
}
