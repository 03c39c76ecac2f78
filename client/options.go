package client

import (
	"crypto/tls"
	"time"

	"github.com/distribution/go-stomp/protocol"
)

// config holds the resolved result of applying a caller's Options to
// Dial, mirroring the connection-config table: host, login, passcode,
// extra headers, connect timeout, and TLS.
type config struct {
	host          string
	login         string
	passcode      string
	headers       map[string]string
	timeout       time.Duration
	tlsConfig     *tls.Config
	acceptVersion string
	backoff       Backoff
}

func defaultConfig() config {
	return config{
		timeout:       10 * time.Second,
		acceptVersion: "1.0,1.1,1.2",
		headers:       map[string]string{},
	}
}

// Option configures a Dial call.
type Option func(*config)

// WithLogin sets the login header sent during the handshake.
func WithLogin(login string) Option {
	return func(c *config) { c.login = login }
}

// WithPasscode sets the passcode header sent during the handshake.
func WithPasscode(passcode string) Option {
	return func(c *config) { c.passcode = passcode }
}

// WithHost sets the virtual-host header, required by the broker under
// STOMP 1.1 and later.
func WithHost(host string) Option {
	return func(c *config) { c.host = host }
}

// WithHeaders merges extra headers into the CONNECT/STOMP frame.
func WithHeaders(headers map[string]string) Option {
	return func(c *config) {
		for k, v := range headers {
			c.headers[k] = v
		}
	}
}

// WithTimeout bounds the TCP dial and TLS handshake. Default 10s.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithTLS enables TLS using the given configuration.
func WithTLS(cfg *tls.Config) Option {
	return func(c *config) { c.tlsConfig = cfg }
}

// WithVersion requests a specific protocol version be offered as the
// sole entry of accept-version, rather than the full 1.0,1.1,1.2 list.
func WithVersion(v protocol.Version) Option {
	return func(c *config) { c.acceptVersion = v.String() }
}

// WithBackoff records b in the Dial configuration. Nothing in this
// package reads it back: there is no reconnect loop here (see Backoff's
// doc comment), and Conn does not expose the recorded value.
func WithBackoff(b Backoff) Option {
	return func(c *config) { c.backoff = b }
}
