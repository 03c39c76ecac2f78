package client

import "time"

// Backoff computes the delay before the Nth reconnect attempt (n starts
// at 0). This package never reconnects on its own — when the receiver's
// read fails, the manager logs the error and stops, and reconnecting is
// the caller's decision — but Dial callers driving their own reconnect
// loop can reuse this to avoid hammering a broker that's down.
//
// There is no third-party backoff library in the reference corpus aimed
// at raw TCP dialing (the one retry library present targets HTTP
// round-trippers), so this is a small stdlib implementation rather than
// an adopted dependency.
type Backoff struct {
	// Base is the delay before the first retry. Default 500ms.
	Base time.Duration
	// Max caps the computed delay. Default 30s.
	Max time.Duration
}

// DefaultBackoff supplies the Base and Max that Delay uses when a Backoff
// leaves them at zero.
var DefaultBackoff = Backoff{Base: 500 * time.Millisecond, Max: 30 * time.Second}

// Delay returns the backoff delay before attempt n (0-indexed),
// doubling each attempt and capping at Max.
func (b Backoff) Delay(n int) time.Duration {
	base := b.Base
	if base <= 0 {
		base = DefaultBackoff.Base
	}
	max := b.Max
	if max <= 0 {
		max = DefaultBackoff.Max
	}

	d := base
	if d >= max {
		return max
	}
	for i := 0; i < n; i++ {
		d *= 2
		if d >= max {
			return max
		}
	}
	return d
}
