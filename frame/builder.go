package frame

import (
	"context"
	"strings"

	"github.com/distribution/go-stomp/internal/dcontext"
)

// knownCommands is the union of every command token this package will
// ever emit or parse, client- and server-originated, used only to catch
// programmer error in Command (and so in NewContext/NewBuilder) — not a substitute for the
// version-specific validity check in package protocol.
var knownCommands = map[string]bool{
	Connect: true, Stomp: true, Send: true, Subscribe: true,
	Unsubscribe: true, Begin: true, Commit: true, Abort: true,
	Ack: true, Nack: true, Disconnect: true,
	Connected: true, Message: true, Receipt: true, Error: true,
	Heartbeat: true,
}

// Builder assembles a Frame one piece at a time. The zero value is not
// usable; construct one with NewBuilder or NewContext.
type Builder struct {
	ctx   context.Context
	frame Frame
}

// NewContext starts a builder for command, logging through ctx if command
// is ever rejected by a later call.
func NewContext(ctx context.Context, command string) *Builder {
	b := &Builder{ctx: ctx}
	return b.Command(command)
}

// NewBuilder starts a builder for command using a background context for
// any diagnostic logging.
func NewBuilder(command string) *Builder {
	return NewContext(context.Background(), command)
}

// Command sets the frame's command. Setting an unrecognized command is a
// no-op that logs a warning and leaves the builder's command unchanged —
// every other Builder method is infallible, and a hard failure here would
// be the only error a caller of this fluent chain would ever have to
// check.
func (b *Builder) Command(command string) *Builder {
	if !knownCommands[command] {
		dcontext.GetLogger(b.ctx).Warnf("frame: ignoring unknown command %q", command)
		return b
	}
	b.frame.Command = command
	return b
}

// Header sets a single header, replacing any previous value for name.
func (b *Builder) Header(name, value string) *Builder {
	b.frame.Header.Set(name, value)
	return b
}

// HeaderIfSet sets a header only when value is non-empty, convenient for
// optional fields like login/passcode that should be omitted rather than
// sent blank.
func (b *Builder) HeaderIfSet(name, value string) *Builder {
	if value != "" {
		b.frame.Header.Set(name, value)
	}
	return b
}

// Headers merges every entry of extra into the frame, each replacing any
// existing value for the same name.
func (b *Builder) Headers(extra map[string]string) *Builder {
	for name, value := range extra {
		b.frame.Header.Set(name, value)
	}
	return b
}

// Body replaces the frame's body wholesale and sets content-length to its
// exact byte count.
func (b *Builder) Body(body []byte) *Builder {
	b.frame.Body = body
	b.frame.Header.Set("content-length", contentLengthString(len(body)))
	return b
}

// BodyOption configures AppendBody.
type BodyOption func(*appendOptions)

type appendOptions struct {
	newline bool
}

// WithNewline controls whether AppendBody appends a trailing LF after s.
// Defaults to true.
func WithNewline(newline bool) BodyOption {
	return func(o *appendOptions) { o.newline = newline }
}

// AppendBody appends s to the frame's body, by default followed by a LF,
// and refreshes content-length.
func (b *Builder) AppendBody(s string, opts ...BodyOption) *Builder {
	o := appendOptions{newline: true}
	for _, opt := range opts {
		opt(&o)
	}

	var sb strings.Builder
	sb.Write(b.frame.Body)
	sb.WriteString(s)
	if o.newline {
		sb.WriteByte('\n')
	}

	b.frame.Body = []byte(sb.String())
	b.frame.Header.Set("content-length", contentLengthString(len(b.frame.Body)))
	return b
}

// Build finalizes and returns the assembled frame. The builder remains
// usable afterward; Build takes a snapshot.
func (b *Builder) Build() *Frame {
	built := b.frame
	built.Header = b.frame.Header.Clone()
	built.Body = append([]byte(nil), b.frame.Body...)
	return &built
}

// ConnectFrame builds a CONNECT frame (STOMP 1.0 handshake).
func ConnectFrame(ctx context.Context, host, login, passcode string, extra map[string]string) *Builder {
	return newHandshake(ctx, Connect, host, login, passcode, extra)
}

// StompFrame builds a STOMP frame (the 1.1+ handshake command).
func StompFrame(ctx context.Context, host, login, passcode string, extra map[string]string) *Builder {
	return newHandshake(ctx, Stomp, host, login, passcode, extra)
}

func newHandshake(ctx context.Context, command, host, login, passcode string, extra map[string]string) *Builder {
	b := NewContext(ctx, command).
		Header("accept-version", "1.0,1.1,1.2").
		HeaderIfSet("host", host).
		HeaderIfSet("login", login).
		HeaderIfSet("passcode", passcode)
	return b.Headers(extra)
}

// SendFrame builds a SEND frame with destination and content-length set.
func SendFrame(ctx context.Context, destination string, body []byte, extra map[string]string) *Builder {
	return NewContext(ctx, Send).
		Header("destination", destination).
		Body(body).
		Headers(extra)
}

// SubscribeFrame builds a SUBSCRIBE frame.
func SubscribeFrame(ctx context.Context, id, destination, ackMode string, extra map[string]string) *Builder {
	return NewContext(ctx, Subscribe).
		Header("id", id).
		Header("destination", destination).
		Header("ack", ackMode).
		Headers(extra)
}

// UnsubscribeFrame builds an UNSUBSCRIBE frame.
func UnsubscribeFrame(ctx context.Context, id string) *Builder {
	return NewContext(ctx, Unsubscribe).Header("id", id)
}

// BeginFrame builds a BEGIN frame.
func BeginFrame(ctx context.Context, transaction string) *Builder {
	return NewContext(ctx, Begin).Header("transaction", transaction)
}

// CommitFrame builds a COMMIT frame.
func CommitFrame(ctx context.Context, transaction string) *Builder {
	return NewContext(ctx, Commit).Header("transaction", transaction)
}

// AbortFrame builds an ABORT frame.
func AbortFrame(ctx context.Context, transaction string) *Builder {
	return NewContext(ctx, Abort).Header("transaction", transaction)
}

// AckFrame builds an ACK frame. idHeader is "message-id" or "ack"
// depending on the negotiated protocol version (package protocol decides
// which).
func AckFrame(ctx context.Context, idHeader, id string) *Builder {
	return NewContext(ctx, Ack).Header(idHeader, id)
}

// NackFrame builds a NACK frame. Only meaningful for protocol versions
// 1.1 and later.
func NackFrame(ctx context.Context, idHeader, id string) *Builder {
	return NewContext(ctx, Nack).Header(idHeader, id)
}

// DisconnectFrame builds a DISCONNECT frame.
func DisconnectFrame(ctx context.Context) *Builder {
	return NewContext(ctx, Disconnect)
}
