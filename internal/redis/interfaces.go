package redis

import (
	"context"
	"time"

	"payswiftly/internal/session"
)

// LockStoreInterface defines the interface for submission locking.
type LockStoreInterface interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// Ensure concrete types implement interfaces.
var (
	_ session.Store      = (*SessionStore)(nil)
	_ LockStoreInterface = (*SubmitLock)(nil)
)
