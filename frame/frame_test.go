package frame

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeNoContentLength(t *testing.T) {
	f := NewBuilder(Message).
		Header("message-id", "123").
		Header("header-2", "header-val").
		Header("header-3", "header-val").
		Build()
	f.Body = []byte("body text\n")

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, f))

	assert.Equal(t,
		"MESSAGE\nmessage-id:123\nheader-2:header-val\nheader-3:header-val\n\nbody text\n\x00\n",
		buf.String())
}

func TestEncodeEmptyBodyStillTerminatesWithNUL(t *testing.T) {
	f := NewBuilder(Disconnect).Build()

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, f))
	assert.Equal(t, "DISCONNECT\n\n\x00\n", buf.String())
}

func TestEncodeHeartbeatIsBareLF(t *testing.T) {
	f := &Frame{Command: Heartbeat}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, f))
	assert.Equal(t, "\n", buf.String())
}

func TestBuilderUnknownCommandIsNoOp(t *testing.T) {
	b := NewBuilder(Send)
	b.Command("BOGUS")
	assert.Equal(t, Send, b.Build().Command)
}

func TestHeaderFirstWins(t *testing.T) {
	var h Header
	h.Add("destination", "/queue/a")
	h.Add("destination", "/queue/b")

	v, ok := h.Get("destination")
	require.True(t, ok)
	assert.Equal(t, "/queue/a", v)
	assert.Equal(t, []string{"/queue/a", "/queue/b"}, h.Values("destination"))
}

func TestHeaderSetReplacesFirstOccurrence(t *testing.T) {
	var h Header
	h.Set("ack", "auto")
	h.Set("ack", "client")

	v, ok := h.Get("ack")
	require.True(t, ok)
	assert.Equal(t, "client", v)
	assert.Equal(t, 1, h.Len())
}

func TestAppendBodyWithAndWithoutNewline(t *testing.T) {
	f := NewBuilder(Send).AppendBody("a").AppendBody("b", WithNewline(false)).Build()
	assert.Equal(t, "a\nb", string(f.Body))
}

func TestCloneIsIndependent(t *testing.T) {
	f := NewBuilder(Send).Header("destination", "/queue/a").Build()
	f.Body = []byte("hi")

	clone := f.Clone()
	clone.Header.Set("destination", "/queue/b")
	clone.Body[0] = 'H'

	orig, _ := f.Header.Get("destination")
	assert.Equal(t, "/queue/a", orig)
	assert.Equal(t, "hi", string(f.Body))
}
