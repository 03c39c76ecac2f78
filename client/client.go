// Package client runs a STOMP connection: one goroutine (the manager)
// owns all subscription and version state and is the only writer to the
// socket; a second goroutine (package receiver) is the only reader.
// Neither needs a lock because neither touches the other's state
// directly — they communicate over channels.
package client

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"

	"github.com/distribution/go-stomp/frame"
	"github.com/distribution/go-stomp/internal/dcontext"
	"github.com/distribution/go-stomp/internal/uuid"
	"github.com/distribution/go-stomp/protocol"
	"github.com/distribution/go-stomp/receiver"
	"github.com/distribution/go-stomp/transport"
)

// Delivery is a frame addressed to a destination, handed to the caller's
// goroutine when send-to-caller mode is active instead of being
// dispatched to registered callbacks.
type Delivery struct {
	Destination string
	Frame       *frame.Frame
}

type subscription struct {
	id         string
	compressed bool
	sink       *callbackSink
	queue      *eventQueue
}

// Conn is a single STOMP session. All exported methods are synchronous
// calls into the manager goroutine; the manager processes one request to
// completion before starting the next, so a caller observing Subscribe
// then Send knows SUBSCRIBE reached the wire first.
type Conn struct {
	tr      *transport.LineTransport
	rcv     *receiver.Receiver
	version protocol.Version
	ctx     context.Context
	cancel  context.CancelFunc

	reqCh chan func()
	done  chan struct{}

	deliveries chan Delivery

	subsByDest map[string]*subscription
	sendToMe   bool
}

// Dial establishes a TCP (or TLS) connection to addr, performs the
// CONNECT/STOMP handshake, and starts the manager and receiver
// goroutines. The returned Conn is ready for Subscribe/Send/etc.
func Dial(ctx context.Context, addr string, opts ...Option) (*Conn, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	tr, err := transport.Dial(ctx, "tcp", addr, transport.Options{
		TLS:         cfg.tlsConfig,
		DialTimeout: cfg.timeout,
	})
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	rcv := receiver.New(tr)

	handshakeCommand := frame.Stomp
	if cfg.acceptVersion == protocol.V10.String() {
		handshakeCommand = frame.Connect
	}
	hs := newHandshakeBuilder(ctx, handshakeCommand, cfg)

	if err := tr.Send(mustEncode(hs.Build())); err != nil {
		tr.Close()
		return nil, &TransportError{Err: err}
	}

	reply, err := rcv.Handshake(ctx)
	if err != nil {
		tr.Close()
		return nil, err
	}

	switch reply.Command {
	case frame.Connected:
		// fallthrough below
	case frame.Error:
		msg, _ := reply.Header.Get("message")
		if msg == "" {
			msg = "handshake rejected"
		}
		tr.Close()
		return nil, &ServerRejected{Message: msg}
	default:
		tr.Close()
		return nil, &ServerRejected{Message: "unexpected frame " + reply.Command}
	}

	version := protocol.V10
	if raw, ok := reply.Header.Get("version"); ok {
		version = protocol.NormalizeVersion(raw)
	}

	connCtx, cancel := context.WithCancel(ctx)
	c := &Conn{
		tr:         tr,
		rcv:        rcv,
		version:    version,
		ctx:        connCtx,
		cancel:     cancel,
		reqCh:      make(chan func()),
		done:       make(chan struct{}),
		deliveries: make(chan Delivery, 16),
		subsByDest: make(map[string]*subscription),
	}

	next, frames, setVersion := rcv.Run(connCtx)
	select {
	case setVersion <- version:
	case <-connCtx.Done():
	}

	go c.manage(next, frames)

	return c, nil
}

func newHandshakeBuilder(ctx context.Context, command string, cfg config) *frame.Builder {
	var b *frame.Builder
	if command == frame.Connect {
		b = frame.ConnectFrame(ctx, cfg.host, cfg.login, cfg.passcode, cfg.headers)
	} else {
		b = frame.StompFrame(ctx, cfg.host, cfg.login, cfg.passcode, cfg.headers)
	}
	return b.Header("accept-version", cfg.acceptVersion)
}

func mustEncode(f *frame.Frame) []byte {
	var buf bytes.Buffer
	_ = frame.Encode(&buf, f)
	return buf.Bytes()
}

// manage is the single-threaded event loop. It owns every piece of
// mutable connection state; nothing outside this goroutine touches it.
func (c *Conn) manage(next chan<- struct{}, frames <-chan receiver.Result) {
	defer close(c.done)

	requestNext := func() {
		select {
		case next <- struct{}{}:
		case <-c.ctx.Done():
		}
	}
	requestNext()

	for {
		select {
		case <-c.ctx.Done():
			return

		case fn := <-c.reqCh:
			fn()

		case res, ok := <-frames:
			if !ok {
				return
			}
			if res.Err != nil {
				dcontext.GetLogger(c.ctx).Warnf("stomp: receiver stopped: %v", res.Err)
				return
			}
			c.handleInbound(res.Frame)
			requestNext()
		}
	}
}

// call runs fn on the manager goroutine and blocks until it completes,
// giving every exported method the "one request to completion before the
// next starts" guarantee.
func (c *Conn) call(fn func()) {
	done := make(chan struct{})
	wrapped := func() {
		fn()
		close(done)
	}
	select {
	case c.reqCh <- wrapped:
		<-done
	case <-c.ctx.Done():
	}
}

func (c *Conn) handleInbound(f *frame.Frame) {
	if f.Command == frame.Heartbeat {
		return
	}
	if f.Command != frame.Message {
		return
	}

	dest, ok := f.Header.Get("destination")
	if !ok {
		return
	}

	sub, ok := c.subsByDest[dest]
	if !ok {
		return
	}

	if sub.compressed {
		decoded, err := gunzip(f.Body)
		if err != nil {
			dcontext.GetLogger(c.ctx).WithError(err).Errorf("stomp: decompression failed for %s", dest)
			return
		}
		f = f.Clone()
		f.Body = decoded
	}

	if c.sendToMe {
		select {
		case c.deliveries <- Delivery{Destination: dest, Frame: f}:
		case <-c.ctx.Done():
		}
		return
	}

	sub.queue.Write(callbackEvent{frame: f})
}

func gunzip(body []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// SubscribeOptions configures Subscribe beyond the destination: the
// subscription id (a generated UUID when empty), the ack mode ("auto"
// when empty), extra headers, and whether inbound bodies are
// gzip-compressed.
type SubscribeOptions struct {
	ID         string
	AckMode    string
	Headers    map[string]string
	Compressed bool
}

// Subscribe opens a subscription on destination. Fails with
// AlreadySubscribed if one is already active for that destination.
func (c *Conn) Subscribe(destination string, opts SubscribeOptions) error {
	var retErr error
	c.call(func() {
		if _, exists := c.subsByDest[destination]; exists {
			retErr = &AlreadySubscribed{Destination: destination}
			return
		}

		id := opts.ID
		if id == "" {
			id = uuid.NewString()
		}
		ackMode := opts.AckMode
		if ackMode == "" {
			ackMode = "auto"
		}

		b := frame.SubscribeFrame(c.ctx, id, destination, ackMode, opts.Headers)
		if err := c.tr.Send(mustEncode(b.Build())); err != nil {
			retErr = &TransportError{Err: err}
			return
		}

		sink := newCallbackSink()
		sub := &subscription{
			id:         id,
			compressed: opts.Compressed,
			sink:       sink,
			queue:      newEventQueue(sink),
		}
		c.subsByDest[destination] = sub
	})
	return retErr
}

// Unsubscribe closes the subscription on destination. Fails with
// NotSubscribed if none is active.
func (c *Conn) Unsubscribe(destination string) error {
	var retErr error
	c.call(func() {
		sub, ok := c.subsByDest[destination]
		if !ok {
			retErr = &NotSubscribed{Destination: destination}
			return
		}

		b := frame.UnsubscribeFrame(c.ctx, sub.id)
		if err := c.tr.Send(mustEncode(b.Build())); err != nil {
			retErr = &TransportError{Err: err}
			return
		}

		sub.queue.Close()
		delete(c.subsByDest, destination)
	})
	return retErr
}

// RegisterCallback appends fn to the list of callbacks invoked, in
// registration order, for every message delivered to destination. Fails
// with NotSubscribed if destination has no active subscription.
func (c *Conn) RegisterCallback(destination string, fn Callback) error {
	var retErr error
	c.call(func() {
		sub, ok := c.subsByDest[destination]
		if !ok {
			retErr = &NotSubscribed{Destination: destination}
			return
		}
		sub.sink.register(fn)
	})
	return retErr
}

// RemoveCallback removes fn, matched by identity, from destination's
// callback list.
func (c *Conn) RemoveCallback(destination string, fn Callback) error {
	var retErr error
	c.call(func() {
		sub, ok := c.subsByDest[destination]
		if !ok {
			retErr = &NotSubscribed{Destination: destination}
			return
		}
		sub.sink.remove(fn)
	})
	return retErr
}

// SetSendToCaller toggles delivery mode: when true, inbound messages are
// pushed onto the channel returned by Deliveries instead of being
// dispatched to registered callbacks.
func (c *Conn) SetSendToCaller(enabled bool) {
	c.call(func() { c.sendToMe = enabled })
}

// Deliveries returns the channel messages are pushed to while
// send-to-caller mode is active.
func (c *Conn) Deliveries() <-chan Delivery {
	return c.deliveries
}

// Send transmits a SEND frame with the given destination and body.
func (c *Conn) Send(destination string, body []byte, extra map[string]string) error {
	var retErr error
	c.call(func() {
		b := frame.SendFrame(c.ctx, destination, body, extra)
		if err := c.tr.Send(mustEncode(b.Build())); err != nil {
			retErr = &TransportError{Err: err}
		}
	})
	return retErr
}

// Ack acknowledges a MESSAGE frame using the version-appropriate id
// header.
func (c *Conn) Ack(f *frame.Frame) error {
	return c.ackOrNack(f, frame.AckFrame, "ACK")
}

// Nack negatively acknowledges a MESSAGE frame. A no-op with a logged
// warning under STOMP 1.0, which has no NACK command.
func (c *Conn) Nack(f *frame.Frame) error {
	return c.ackOrNack(f, frame.NackFrame, "NACK")
}

func (c *Conn) ackOrNack(f *frame.Frame, build func(context.Context, string, string) *frame.Builder, name string) error {
	var retErr error
	c.call(func() {
		if name == "NACK" && c.version < protocol.V11 {
			dcontext.GetLogger(c.ctx).Warnf("stomp: NACK unsupported under protocol %s", c.version)
			retErr = &VersionUnsupportedError{Feature: "NACK", Version: c.version.String()}
			return
		}

		idHeader := protocol.AckHeader(c.version)
		id, _ := f.Header.Get(idHeader)

		b := build(c.ctx, idHeader, id)
		if err := c.tr.Send(mustEncode(b.Build())); err != nil {
			retErr = &TransportError{Err: err}
		}
	})
	return retErr
}

// Disconnect sends DISCONNECT, stops the receiver, and closes the
// transport. The Conn must not be used afterward.
func (c *Conn) Disconnect() error {
	var sendErr error
	c.call(func() {
		b := frame.DisconnectFrame(c.ctx)
		sendErr = c.tr.Send(mustEncode(b.Build()))
	})

	c.cancel()
	<-c.done
	closeErr := c.tr.Close()

	if sendErr != nil {
		return &TransportError{Err: sendErr}
	}
	if closeErr != nil {
		return &TransportError{Err: closeErr}
	}
	return nil
}

