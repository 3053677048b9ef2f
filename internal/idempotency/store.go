// Package idempotency remembers client-supplied keys so a retried sale
// submission is recognised instead of being recorded twice.
package idempotency

import (
	"context"
	"time"
)

// DefaultTTL is how long a claimed key is remembered.
const DefaultTTL = 24 * time.Hour

// Store claims keys atomically.
type Store interface {
	// Claim records key and reports true if it was not already held.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release forgets key so it may be claimed again.
	Release(ctx context.Context, key string) error
	Close() error
}
