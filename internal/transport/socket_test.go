package transport

import (
	"net/netip"
	"testing"
)

func TestListenAndSendToRoundTrip(t *testing.T) {
	a, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen(a) error: %v", err)
	}
	defer a.Close()

	b, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen(b) error: %v", err)
	}
	defer b.Close()

	dst := mustAddrPort(t, b.LocalAddr().String())
	payload := []byte("hello relay")
	if err := a.SendTo(dst, payload); err != nil {
		t.Fatalf("SendTo() error: %v", err)
	}

	buf := make([]byte, MaxDatagramBytes)
	n, _, err := b.ReadFrom(buf)
	if err != nil {
		t.Fatalf("ReadFrom() error: %v", err)
	}
	if got := string(buf[:n]); got != string(payload) {
		t.Errorf("received %q, want %q", got, payload)
	}
}

func TestReadFromTruncatesOversizedDatagram(t *testing.T) {
	a, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen(a) error: %v", err)
	}
	defer a.Close()

	b, err := Listen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen(b) error: %v", err)
	}
	defer b.Close()

	bAddr := b.LocalAddr().String()
	dst := mustAddrPort(t, bAddr)

	payload := make([]byte, 32)
	for i := range payload {
		payload[i] = byte(i)
	}
	if err := a.SendTo(dst, payload); err != nil {
		t.Fatalf("SendTo() error: %v", err)
	}

	small := make([]byte, 8)
	n, _, err := b.ReadFrom(small)
	if err != nil {
		t.Fatalf("ReadFrom() error: %v", err)
	}
	if n != len(small) {
		t.Errorf("ReadFrom() truncated length = %d, want %d", n, len(small))
	}
}

func mustAddrPort(t *testing.T, s string) netip.AddrPort {
	t.Helper()
	parsed, err := netip.ParseAddrPort(s)
	if err != nil {
		t.Fatalf("parsing address %q: %v", s, err)
	}
	return parsed
}
