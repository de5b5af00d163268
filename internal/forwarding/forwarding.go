// Package forwarding implements the fan-out path: for a DATA datagram
// from a known endpoint, copy the payload to every other member of that
// endpoint's session and refresh the sender's last-seen.
package forwarding

import "net/netip"

// Registry is the subset of registry.Registry the forwarding engine
// depends on.
type Registry interface {
	PeersExcept(addr netip.AddrPort) (peers []netip.AddrPort, sessionID string, ok bool)
	Touch(addr netip.AddrPort) (sessionID string, ok bool)
	RecordForwarded()
	RecordSendFailure()
}

// Sender delivers a payload to one destination. Implemented by
// internal/transport.Socket.
type Sender interface {
	SendTo(addr netip.AddrPort, payload []byte) error
}

// FailureHandler is invoked once per failed peer send: logged and
// accounted but not retried. It must not block.
type FailureHandler func(peer netip.AddrPort, err error)

// Forward delivers payload, received from sender, to every other member
// of sender's session. Each peer send is independent: one peer's failure
// never affects another's, and the sender never receives its own copy.
// Returns the number of peers the payload was attempted against; 0 with
// ok=false means sender is not a registered endpoint and the datagram
// was dropped silently.
func Forward(reg Registry, send Sender, onFailure FailureHandler, sender netip.AddrPort, payload []byte) (attempted int, ok bool) {
	peers, _, ok := reg.PeersExcept(sender)
	if !ok {
		return 0, false
	}

	// Refresh the sender's liveness. Observable no later than completion
	// of this forwarding call.
	reg.Touch(sender)

	for _, peer := range peers {
		if err := send.SendTo(peer, payload); err != nil {
			reg.RecordSendFailure()
			if onFailure != nil {
				onFailure(peer, err)
			}
			continue
		}
		reg.RecordForwarded()
	}

	return len(peers), true
}
