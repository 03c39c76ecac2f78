package receiver

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/distribution/go-stomp/protocol"
	"github.com/distribution/go-stomp/transport"
)

// newLoopback starts a real TCP listener and hands the test both a
// Receiver (client side) and the accepted server-side connection to write
// into, which exercises the whole transport+receiver stack exactly as
// production code does.
func newLoopback(t *testing.T) (*Receiver, net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	serverConnCh := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			serverConnCh <- conn
		}
	}()

	tr, err := transport.Dial(context.Background(), "tcp", ln.Addr().String(), transport.Options{})
	require.NoError(t, err)

	var serverConn net.Conn
	select {
	case serverConn = <-serverConnCh:
	case <-time.After(time.Second):
		t.Fatal("server never accepted")
	}
	t.Cleanup(func() { serverConn.Close(); tr.Close() })

	return New(tr), serverConn
}

func TestFullFrameNoContentLength(t *testing.T) {
	r, server := newLoopback(t)
	server.Write([]byte("MESSAGE\nmessage-id:123\nheader-2:header-val\nheader-3:header-val\n\nbody text\n\x00"))

	f, err := r.Handshake(context.Background())
	require.NoError(t, err)
	require.Equal(t, "MESSAGE", f.Command)
	v, _ := f.Header.Get("message-id")
	require.Equal(t, "123", v)
	require.Equal(t, "body text\n", string(f.Body))
}

func TestFullFrameWithContentLengthEmbeddedNUL(t *testing.T) {
	r, server := newLoopback(t)
	body := "body text\n\x00\nbody text\n"
	require.Equal(t, 22, len(body))
	server.Write([]byte("MESSAGE\ncontent-length:22\n\n" + body + "\x00"))

	f, err := r.Handshake(context.Background())
	require.NoError(t, err)
	require.Equal(t, body, string(f.Body))
}

func TestTwoFramesBackToBack(t *testing.T) {
	r, server := newLoopback(t)
	one := "MESSAGE\nmessage-id:123\nheader-2:header-val\nheader-3:header-val\n\nbody text\n\x00"
	server.Write([]byte(one + one))

	ctx := context.Background()
	f1, err := r.Handshake(ctx)
	require.NoError(t, err)
	f2, err := r.parseOne(ctx)
	require.NoError(t, err)

	require.Equal(t, f1.Command, f2.Command)
	require.Equal(t, f1.Body, f2.Body)
}

func TestHeartbeat(t *testing.T) {
	r, server := newLoopback(t)
	server.Write([]byte("\n"))

	f, err := r.Handshake(context.Background())
	require.NoError(t, err)
	require.Equal(t, "HEARTBEAT", f.Command)
	require.Equal(t, 0, f.Header.Len())
	require.Empty(t, f.Body)
}

func TestHandshakeConnectedWithoutVersionHeader(t *testing.T) {
	r, server := newLoopback(t)
	server.Write([]byte("CONNECTED\n\n\x00"))

	f, err := r.Handshake(context.Background())
	require.NoError(t, err)
	_, ok := f.Header.Get("version")
	require.False(t, ok)
}

func TestRunDeliversFramesOnPull(t *testing.T) {
	r, server := newLoopback(t)
	server.Write([]byte("MESSAGE\nmessage-id:1\n\n\x00"))

	next, frames, _ := r.Run(context.Background())
	next <- struct{}{}

	select {
	case res := <-frames:
		require.NoError(t, res.Err)
		require.Equal(t, "MESSAGE", res.Frame.Command)
	case <-time.After(time.Second):
		t.Fatal("no frame delivered")
	}
}

func TestTrimLineHonorsVersionForCR(t *testing.T) {
	r, server := newLoopback(t)
	r.version = protocol.V12
	server.Write([]byte("MESSAGE\r\nheader:value\r\n\r\n\x00"))

	f, err := r.Handshake(context.Background())
	require.NoError(t, err)
	require.Equal(t, "MESSAGE", f.Command)
	v, _ := f.Header.Get("header")
	require.Equal(t, "value", v)
}
