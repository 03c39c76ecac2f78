// Package receiver turns a byte stream from package transport into STOMP
// frames, one at a time, pulled on demand by whatever owns the
// connection. It knows nothing about subscriptions, acknowledgment, or
// compression — only the wire grammar.
package receiver

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/distribution/go-stomp/frame"
	"github.com/distribution/go-stomp/protocol"
	"github.com/distribution/go-stomp/transport"
)

var headerLineRegexp = regexp.MustCompile(`^([A-Za-z0-9-]+):(.*)$`)

// ParseError reports a malformed frame on the wire.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("receiver: malformed frame: %s", e.Reason)
}

// Result is what one pull of the receiver produces: exactly one of Frame
// or Err is set.
type Result struct {
	Frame *frame.Frame
	Err   error
}

// Receiver incrementally parses frames off a transport.LineTransport,
// tracking the negotiated protocol version since it changes how line
// endings are interpreted (protocol.V10 keeps a bare CR as header-value
// data; later versions trim it).
type Receiver struct {
	tr      *transport.LineTransport
	version protocol.Version
}

// New wraps tr, starting out assuming protocol.V10 until a version is
// sent on Run's setVersion channel. Handshake does not change it.
func New(tr *transport.LineTransport) *Receiver {
	return &Receiver{tr: tr, version: protocol.V10}
}

// Handshake performs the synchronous read of the server's CONNECTED or
// ERROR frame that follows a CONNECT/STOMP, used exactly once per
// connection before Run takes over.
func (r *Receiver) Handshake(ctx context.Context) (*frame.Frame, error) {
	return r.parseOne(ctx)
}

// Run starts a goroutine that parses one frame per request received on
// the returned next channel, replying on frames. Sends on next are
// fire-and-forget; the goroutine replies with exactly one Result per
// request, giving the owner natural backpressure (spec: pull-based
// delivery). Version changes sent on setVersion take effect only between
// frames, never mid-parse. The goroutine exits when ctx is done.
func (r *Receiver) Run(ctx context.Context) (next chan<- struct{}, frames <-chan Result, setVersion chan<- protocol.Version) {
	nextCh := make(chan struct{})
	framesCh := make(chan Result)
	versionCh := make(chan protocol.Version)

	go func() {
		defer close(framesCh)
		for {
			select {
			case <-ctx.Done():
				return
			case v := <-versionCh:
				r.version = v
			case <-nextCh:
				f, err := r.parseOne(ctx)
				select {
				case framesCh <- Result{Frame: f, Err: err}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return nextCh, framesCh, versionCh
}

// parseOne runs the state machine once: AwaitingCommand -> ReadingHeaders
// -> (ReadingBodyByLength | ReadingBodyByTerminator) -> Terminated. Go's
// blocking reads make each state a sequential function call rather than
// an explicit state enum walked by a dispatch loop.
func (r *Receiver) parseOne(ctx context.Context) (*frame.Frame, error) {
	command, err := r.awaitCommand()
	if err != nil {
		return nil, err
	}
	if command == "" {
		// Blank line while awaiting a command: heartbeat.
		return &frame.Frame{Command: frame.Heartbeat}, nil
	}

	header, err := r.readHeaders()
	if err != nil {
		return nil, err
	}

	body, err := r.readBody(header)
	if err != nil {
		return nil, err
	}

	return &frame.Frame{
		Command: strings.TrimSpace(command),
		Header:  header,
		Body:    body,
	}, nil
}

// awaitCommand reads the command line. An empty return with a nil error
// signals a heartbeat.
func (r *Receiver) awaitCommand() (string, error) {
	line, err := r.tr.ReadLine('\n')
	if err != nil {
		return "", err
	}
	trimmed := r.trimLine(line)
	if trimmed == "" {
		return "", nil
	}
	return trimmed, nil
}

// readHeaders reads header lines until a blank line ends them, honoring
// first-wins: later duplicates are still recorded (via Header.Add) for
// diagnostics, but Header.Get always returns the first occurrence.
func (r *Receiver) readHeaders() (frame.Header, error) {
	var header frame.Header
	for {
		line, err := r.tr.ReadLine('\n')
		if err != nil {
			return header, err
		}
		trimmed := r.trimLine(line)
		if trimmed == "" {
			return header, nil
		}

		m := headerLineRegexp.FindStringSubmatch(trimmed)
		if m == nil {
			return header, &ParseError{Reason: fmt.Sprintf("malformed header line %q", trimmed)}
		}
		header.Add(m[1], m[2])
	}
}

// readBody reads the frame body, by content-length when present and
// well-formed, otherwise by NUL terminator.
func (r *Receiver) readBody(header frame.Header) ([]byte, error) {
	if raw, ok := header.Get("content-length"); ok && raw != "" {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err == nil && n >= 0 {
			return r.readBodyByLength(n)
		}
	}
	return r.readBodyByTerminator()
}

func (r *Receiver) readBodyByLength(n int) ([]byte, error) {
	buf, err := r.tr.ReadBytes(n + 1)
	if err != nil {
		return nil, err
	}
	// The (n+1)th byte is the mandatory trailing NUL; exact equality on
	// the count read, not >=, decides completion.
	if len(buf) != n+1 {
		return nil, &ParseError{Reason: "short read for content-length body"}
	}
	if buf[n] != 0x00 {
		return nil, &ParseError{Reason: "missing NUL after content-length body"}
	}
	return buf[:n], nil
}

func (r *Receiver) readBodyByTerminator() ([]byte, error) {
	var body []byte
	for {
		chunk, err := r.tr.ReadLine(0x00)
		if err != nil {
			return nil, err
		}
		if idx := bytes.IndexByte(chunk, 0x00); idx >= 0 {
			body = append(body, chunk[:idx]...)
			return body, nil
		}
		body = append(body, chunk...)
	}
}

// trimLine trims the trailing LF (ReadLine's delimiter) and, for
// protocol versions 1.1 and later, a CR immediately before it. Under
// v1.0 a bare CR is data and is left untouched.
func (r *Receiver) trimLine(line []byte) string {
	line = bytes.TrimSuffix(line, []byte{'\n'})
	if r.version >= protocol.V11 {
		line = bytes.TrimSuffix(line, []byte{'\r'})
	}
	return string(line)
}
