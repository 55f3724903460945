// Package netfeed wraps the ingress UDP socket: unicast on a plain port,
// or multicast group membership when a group address is configured. The
// listen loop is non-blocking — a read that would block just means no
// packet is available yet, not an error — and checks a shutdown flag
// between reads so it exits promptly instead of blocking forever.
package netfeed

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	"bookfeed/infra/clock"
)

// SocketError wraps a failure to set up or read from the ingress socket.
type SocketError struct {
	Op  string
	Err error
}

func (e *SocketError) Error() string { return "netfeed: " + e.Op + ": " + e.Err.Error() }
func (e *SocketError) Unwrap() error { return e.Err }

// Listener receives ingress packets, unicast or multicast, and hands raw
// payload bytes to a callback along with the monotonic timestamp taken
// immediately after the read — the earliest point this process can stamp
// a packet.
type Listener struct {
	conn      *net.UDPConn
	multicast bool
	group     string
	port      int
}

// Listen binds a unicast UDP listener on port, with SO_REUSEADDR set so
// a restart doesn't have to wait out the previous socket's TIME_WAIT.
func Listen(port int) (*Listener, error) {
	lc := net.ListenConfig{Control: setReuseAddr}
	pc, err := lc.ListenPacket(context.Background(), "udp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, &SocketError{Op: "listen", Err: err}
	}
	return &Listener{conn: pc.(*net.UDPConn), port: port}, nil
}

func setReuseAddr(_, _ string, c syscall.RawConn) error {
	var sockErr error
	if err := c.Control(func(fd uintptr) {
		sockErr = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1)
	}); err != nil {
		return err
	}
	return sockErr
}

// ListenMulticast joins group on port. group must be a valid multicast
// address (224.0.0.0/4).
func ListenMulticast(group string, port int) (*Listener, error) {
	addr := &net.UDPAddr{IP: net.ParseIP(group), Port: port}
	if addr.IP == nil {
		return nil, &SocketError{Op: "listen-multicast", Err: errors.New("invalid multicast address " + group)}
	}
	conn, err := net.ListenMulticastUDP("udp", nil, addr)
	if err != nil {
		return nil, &SocketError{Op: "listen-multicast", Err: err}
	}
	return &Listener{conn: conn, multicast: true, group: group, port: port}, nil
}

// Close releases the underlying socket; closing it also drops any
// multicast group membership it held.
func (l *Listener) Close() error {
	return l.conn.Close()
}

// Addr returns the socket's bound local address, useful when Listen was
// given port 0 and the OS picked an ephemeral one.
func (l *Listener) Addr() net.Addr {
	return l.conn.LocalAddr()
}

// idleBackoff is the read deadline each receive waits at most before
// the loop treats the socket as idle and goes round again, standing in
// for the short EAGAIN sleep in the original listener —
// long enough to avoid spinning a full CPU core, short enough not to add
// meaningfully to ingress latency.
const idleBackoff = 100 * time.Microsecond

// Run reads packets until shutdown reports true, invoking onPacket for
// each one with the payload and the monotonic receive timestamp. Read
// errors other than a deadline timeout (used to implement the
// non-blocking poll) stop the loop and are returned.
func (l *Listener) Run(shutdown func() bool, onPacket func(payload []byte, rxMonoNS uint64)) error {
	buf := make([]byte, 65507) // max UDP payload
	for !shutdown() {
		l.conn.SetReadDeadline(time.Now().Add(idleBackoff))
		n, _, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			if isTimeout(err) {
				continue
			}
			return &SocketError{Op: "read", Err: err}
		}
		onPacket(buf[:n], clock.NowNS())
	}
	return nil
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
