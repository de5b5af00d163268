package transport

import (
	"log"
	"net"

	"golang.org/x/sys/unix"
)

// socketBufferBytes raises the kernel receive/send buffers beyond Go's
// modest default, reaching through golang.org/x/sys/unix for
// SO_RCVBUF/SO_SNDBUF so the request isn't silently capped by
// net.UDPConn's portable SetReadBuffer/SetWriteBuffer wrapper.
const socketBufferBytes = 4 * 1024 * 1024

// tuneSocketBuffers is the Linux half of a per-OS buffer-tuning split
// (socket_linux.go / socket_other.go). Best effort: a relay that can't
// enlarge its socket buffers still relays, just with more kernel-level
// drops under load.
func tuneSocketBuffers(conn *net.UDPConn) {
	raw, err := conn.SyscallConn()
	if err != nil {
		log.Printf("transport: could not obtain raw socket for buffer tuning: %v", err)
		return
	}

	ctrlErr := raw.Control(func(fd uintptr) {
		if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, socketBufferBytes); err != nil {
			log.Printf("transport: SO_RCVBUF tuning failed: %v", err)
		}
		if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_SNDBUF, socketBufferBytes); err != nil {
			log.Printf("transport: SO_SNDBUF tuning failed: %v", err)
		}
	})
	if ctrlErr != nil {
		log.Printf("transport: raw socket control failed: %v", ctrlErr)
	}
}
