// Package uuid generates identifiers used for subscription ids when the
// caller does not supply its own.
package uuid

import (
	"github.com/google/uuid"
)

// NewString returns a new V7 UUID string. V7 UUIDs are time-ordered, which
// keeps generated subscription ids roughly sorted by creation time.
// Panics on error to maintain compatibility with google/uuid's NewString.
func NewString() string {
	return uuid.Must(uuid.NewV7()).String()
}
