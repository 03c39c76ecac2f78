// Package config loads the broker connection settings a caller would
// otherwise build up through a chain of client.Option values, from a
// YAML file — the declarative counterpart to the functional options in
// package client.
package config

import (
	"crypto/tls"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/distribution/go-stomp/client"
)

// SSLOpts carries the subset of crypto/tls.Config this package exposes
// directly through YAML; callers needing anything more exotic (custom
// RootCAs, client certs) should build a *tls.Config themselves and pass
// it to client.WithTLS instead of using Defaults.ToOptions.
type SSLOpts struct {
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
	ServerName         string `yaml:"server_name"`
}

// Defaults mirrors the connection-config table: broker address,
// credentials, extra handshake headers, timeout, and TLS.
type Defaults struct {
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	Login    string            `yaml:"login"`
	Passcode string            `yaml:"passcode"`
	Headers  map[string]string `yaml:"headers"`
	Secure   bool              `yaml:"secure"`
	SSLOpts  *SSLOpts          `yaml:"ssl_opts"`

	// Timeout accepts either a Go duration string (e.g. "10s"), which
	// yaml.v2 parses for time.Duration fields, or a plain integer count of
	// nanoseconds (e.g. 10000000000 for 10s).
	Timeout time.Duration `yaml:"timeout"`
}

// Load reads and parses a YAML configuration file at path. Unlike this
// lineage's registry configuration parser, Load performs no environment
// variable overlay — broker credentials belong in the file or are
// supplied via client.Option at the call site, not spliced in from the
// process environment.
func Load(path string) (*Defaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	d := &Defaults{Port: 61613, Timeout: 10 * time.Second}
	if err := yaml.Unmarshal(data, d); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if d.Host == "" {
		return nil, fmt.Errorf("config: %s: host is required", path)
	}
	return d, nil
}

// Addr returns the host:port string to pass to client.Dial.
func (d *Defaults) Addr() string {
	return fmt.Sprintf("%s:%d", d.Host, d.Port)
}

// ToOptions renders d as the client.Option chain it describes.
func (d *Defaults) ToOptions() []client.Option {
	opts := []client.Option{
		client.WithLogin(d.Login),
		client.WithPasscode(d.Passcode),
		client.WithHost(d.Host),
		client.WithHeaders(d.Headers),
		client.WithTimeout(d.Timeout),
	}

	if d.Secure {
		tlsConfig := &tls.Config{}
		if d.SSLOpts != nil {
			tlsConfig.InsecureSkipVerify = d.SSLOpts.InsecureSkipVerify
			tlsConfig.ServerName = d.SSLOpts.ServerName
		}
		opts = append(opts, client.WithTLS(tlsConfig))
	}

	return opts
}
