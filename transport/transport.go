// Package transport dials the TCP or TLS connection a STOMP session runs
// over and exposes it as a line- and byte-oriented reader, the layer the
// frame parser pulls raw bytes from without knowing how they arrived.
package transport

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"time"
)

// TransportError wraps a failure dialing, reading from, or writing to the
// underlying connection.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Options configures Dial. The zero value dials plain TCP with no
// timeout, mirroring net.Dial's own defaults.
type Options struct {
	// TLS, when non-nil, causes Dial to perform a TLS handshake over the
	// raw connection using this configuration.
	TLS *tls.Config

	// DialTimeout bounds both the TCP dial and, when TLS is set, the TLS
	// handshake. Zero means no timeout.
	DialTimeout time.Duration
}

// LineTransport wraps a net.Conn with buffered reads, giving the frame
// parser both line-oriented and fixed-length byte access to the stream.
type LineTransport struct {
	conn net.Conn
	r    *bufio.Reader
}

// Dial opens network/addr and returns a LineTransport atop it. When
// opts.TLS is set, Dial performs a TLS handshake after the raw connection
// is established.
func Dial(ctx context.Context, network, addr string, opts Options) (*LineTransport, error) {
	dialer := net.Dialer{Timeout: opts.DialTimeout}

	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, &TransportError{Op: "dial", Err: err}
	}

	if opts.TLS != nil {
		tlsConn := tls.Client(conn, opts.TLS)
		if opts.DialTimeout > 0 {
			if err := tlsConn.SetDeadline(time.Now().Add(opts.DialTimeout)); err != nil {
				conn.Close()
				return nil, &TransportError{Op: "tls-handshake", Err: err}
			}
		}
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			conn.Close()
			return nil, &TransportError{Op: "tls-handshake", Err: err}
		}
		if opts.DialTimeout > 0 {
			if err := tlsConn.SetDeadline(time.Time{}); err != nil {
				conn.Close()
				return nil, &TransportError{Op: "tls-handshake", Err: err}
			}
		}
		conn = tlsConn
	}

	return &LineTransport{conn: conn, r: bufio.NewReader(conn)}, nil
}

// ReadLine reads bytes up to and including delim. The returned slice
// includes delim.
func (t *LineTransport) ReadLine(delim byte) ([]byte, error) {
	line, err := t.r.ReadBytes(delim)
	if err != nil {
		return nil, &TransportError{Op: "read-line", Err: err}
	}
	return line, nil
}

// FastForward consumes consecutive lines consisting of only delim —
// STOMP's bare-LF heartbeat frames — stopping as soon as a line carries
// anything else, which it returns unconsumed relative to the caller (the
// byte has already been read off the wire and is returned in full).
func (t *LineTransport) FastForward(delim byte) ([]byte, error) {
	for {
		line, err := t.ReadLine(delim)
		if err != nil {
			return nil, err
		}
		if len(line) != 1 {
			return line, nil
		}
	}
}

// ReadBytes reads exactly n bytes.
func (t *LineTransport) ReadBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(t.r, buf); err != nil {
		return nil, &TransportError{Op: "read-bytes", Err: err}
	}
	return buf, nil
}

// Send writes b in a single Write call.
func (t *LineTransport) Send(b []byte) error {
	if _, err := t.conn.Write(b); err != nil {
		return &TransportError{Op: "write", Err: err}
	}
	return nil
}

// Close closes the underlying connection.
func (t *LineTransport) Close() error {
	if err := t.conn.Close(); err != nil {
		return &TransportError{Op: "close", Err: err}
	}
	return nil
}
