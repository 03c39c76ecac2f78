package transport

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func serveOnce(t *testing.T, handle func(net.Conn)) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		handle(conn)
	}()

	return ln.Addr().String()
}

func TestDialAndSend(t *testing.T) {
	received := make(chan []byte, 1)
	addr := serveOnce(t, func(conn net.Conn) {
		defer conn.Close()
		buf := make([]byte, 5)
		n, _ := conn.Read(buf)
		received <- buf[:n]
	})

	tr, err := Dial(context.Background(), "tcp", addr, Options{DialTimeout: time.Second})
	require.NoError(t, err)
	defer tr.Close()

	require.NoError(t, tr.Send([]byte("hello")))
	assert := require.New(t)
	select {
	case got := <-received:
		assert.Equal("hello", string(got))
	case <-time.After(time.Second):
		t.Fatal("server never received data")
	}
}

func TestReadLine(t *testing.T) {
	addr := serveOnce(t, func(conn net.Conn) {
		defer conn.Close()
		conn.Write([]byte("MESSAGE\n"))
	})

	tr, err := Dial(context.Background(), "tcp", addr, Options{})
	require.NoError(t, err)
	defer tr.Close()

	line, err := tr.ReadLine('\n')
	require.NoError(t, err)
	require.Equal(t, "MESSAGE\n", string(line))
}

func TestFastForwardSkipsHeartbeats(t *testing.T) {
	addr := serveOnce(t, func(conn net.Conn) {
		defer conn.Close()
		conn.Write([]byte("\n\n\nMESSAGE\n"))
	})

	tr, err := Dial(context.Background(), "tcp", addr, Options{})
	require.NoError(t, err)
	defer tr.Close()

	line, err := tr.FastForward('\n')
	require.NoError(t, err)
	require.Equal(t, "MESSAGE\n", string(line))
}

func TestReadBytesExact(t *testing.T) {
	addr := serveOnce(t, func(conn net.Conn) {
		defer conn.Close()
		conn.Write([]byte("body text\x00"))
	})

	tr, err := Dial(context.Background(), "tcp", addr, Options{})
	require.NoError(t, err)
	defer tr.Close()

	b, err := tr.ReadBytes(9)
	require.NoError(t, err)
	require.Equal(t, "body text", string(b))
}
