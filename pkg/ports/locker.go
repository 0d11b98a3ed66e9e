package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker defines the interface for cross-process concurrency control.
// The host exposes a single active document and selection per instance, so
// independent clients (CLI runs, MCP agents, HTTP requests) driving the same
// instance must take turns.
type DistributedLocker interface {
	// Lock attempts to acquire the lock for the given key (e.g. host instance name).
	// It blocks until the lock is acquired or the context is canceled.
	// Returns an UnlockFunc that MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
