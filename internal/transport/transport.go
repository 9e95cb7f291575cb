// Package transport implements the TCP operations a Telnet session needs:
// resolving an IPv4 literal, dialing, sending raw and escaped text, and a
// deadline-gated read path the reader goroutine uses to poll for a stop
// signal without blocking forever on a dead connection.
package transport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/chronicle-d/relic-telnet/internal/iacproto"
)

// Sentinel errors for transport-level failures.
var (
	ErrAddressNotValid = errors.New("transport: address is not a valid IPv4 literal")
	ErrNotConnected    = errors.New("transport: not connected")
	ErrFailedSend      = errors.New("transport: send transferred zero bytes")
	ErrPartialSend     = errors.New("transport: send transferred fewer bytes than requested")
)

// DefaultReadSlice bounds how long a single blocking read waits before the
// reader goroutine gets another chance to observe a stop signal.
const DefaultReadSlice = 1 * time.Second

// Transport wraps a dialed TCP connection together with the buffered
// reader the IAC codec consumes from.
type Transport struct {
	conn      net.Conn
	reader    *bufio.Reader
	readSlice time.Duration
}

// Resolve parses address as an IPv4 literal and builds a *net.TCPAddr.
// Only family 4 is supported; a literal that doesn't parse as IPv4, or a
// family other than 4, is rejected outright rather than guessed at.
func Resolve(address string, port, family int) (*net.TCPAddr, error) {
	if family != 4 {
		return nil, fmt.Errorf("%w: family %d is not supported", ErrAddressNotValid, family)
	}
	ip := net.ParseIP(address)
	if ip == nil || ip.To4() == nil {
		return nil, fmt.Errorf("%w: %q", ErrAddressNotValid, address)
	}
	return &net.TCPAddr{IP: ip.To4(), Port: port}, nil
}

// Dial opens a TCP connection to addr.
func Dial(ctx context.Context, addr *net.TCPAddr) (*Transport, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr.String())
	if err != nil {
		return nil, err
	}
	return newTransport(conn), nil
}

func newTransport(conn net.Conn) *Transport {
	return &Transport{
		conn:      conn,
		reader:    bufio.NewReaderSize(conn, 4096),
		readSlice: DefaultReadSlice,
	}
}

// Conn exposes the underlying connection so the reader goroutine can manage
// its own read deadline.
func (t *Transport) Conn() net.Conn { return t.conn }

// Reader returns the shared buffered reader. Returning the same reader on
// every call (rather than re-wrapping conn) matters: re-wrapping would
// silently drop whatever the previous bufio.Reader had already buffered.
func (t *Transport) Reader() *bufio.Reader { return t.reader }

// SetReadDeadlineSlice pushes the read deadline one read-slice into the
// future. The reader goroutine calls this before every blocking read so a
// dead peer can't wedge it forever.
func (t *Transport) SetReadDeadlineSlice() {
	if t.conn != nil {
		_ = t.conn.SetReadDeadline(time.Now().Add(t.readSlice))
	}
}

// SendRaw writes data verbatim — used for IAC negotiation replies, which
// must never be escaped.
func (t *Transport) SendRaw(data []byte) error {
	if t.conn == nil {
		return ErrNotConnected
	}
	n, err := t.conn.Write(data)
	if err != nil {
		return err
	}
	if n == 0 && len(data) > 0 {
		return ErrFailedSend
	}
	if n != len(data) {
		return ErrPartialSend
	}
	return nil
}

// SendText writes s as user data, doubling any literal 0xFF byte unless
// binaryBothEnabled indicates the stream is already 8-bit clean.
func (t *Transport) SendText(s string, binaryBothEnabled bool) error {
	data := []byte(s)
	if !binaryBothEnabled {
		data = iacproto.EscapeIAC(data)
	}
	return t.SendRaw(data)
}

// Close closes the underlying connection. Idempotent.
func (t *Transport) Close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}
