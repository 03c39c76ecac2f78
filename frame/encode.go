package frame

import (
	"bytes"
	"io"
	"strconv"
)

// Encode writes f to w as the exact byte sequence the STOMP wire format
// requires: the command line, each header as "name:value", a blank line,
// the body, and a trailing NUL. A trailing LF is appended after the NUL
// for legibility, matching broker tolerance; parsers must not rely on it.
//
// No CR is ever emitted, even when the frame was parsed from a connection
// that uses CRLF line endings (STOMP 1.2 §3.2 allows but never requires it
// on the wire from the client).
func Encode(w io.Writer, f *Frame) error {
	var buf bytes.Buffer

	if f.Command == Heartbeat {
		buf.WriteByte('\n')
		_, err := w.Write(buf.Bytes())
		return err
	}

	buf.WriteString(f.Command)
	buf.WriteByte('\n')

	f.Header.Range(func(name, value string) {
		buf.WriteString(name)
		buf.WriteByte(':')
		buf.WriteString(value)
		buf.WriteByte('\n')
	})

	buf.WriteByte('\n')
	buf.Write(f.Body)
	buf.WriteByte(0)
	buf.WriteByte('\n')

	_, err := w.Write(buf.Bytes())
	return err
}

// contentLengthString renders n the way a content-length header value is
// written: a base-10 integer with no leading zeros or sign.
func contentLengthString(n int) string {
	return strconv.Itoa(n)
}
