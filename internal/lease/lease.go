// Package lease keeps at most one live owner per room key across server instances.
package lease

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrHeld means another owner currently holds the key.
	ErrHeld = errors.New("lease held by another owner")
	// ErrNotHeld means the caller does not hold the key (expired or never acquired).
	ErrNotHeld = errors.New("lease not held")
)

// Store grants time-limited exclusive ownership of keys.
// Acquire is re-entrant for the current owner and extends the ttl.
type Store interface {
	Acquire(ctx context.Context, key, owner string, ttl time.Duration) error
	Renew(ctx context.Context, key, owner string, ttl time.Duration) error
	Release(ctx context.Context, key, owner string) error
	Close() error
}
