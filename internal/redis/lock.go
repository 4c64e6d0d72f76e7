package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const submitLockPrefix = "lock:submit:"

// SubmitLock guards payment submissions across front-end instances.
type SubmitLock struct {
	client *redis.Client
}

// NewSubmitLock creates a new SubmitLock.
func NewSubmitLock(client *redis.Client) *SubmitLock {
	return &SubmitLock{client: client}
}

// Acquire takes the lock for key.
// Returns true if the lock was acquired, false if a submission is already in flight.
func (s *SubmitLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, submitLockPrefix+key, "1", ttl).Result()
}

// Release frees the lock for key.
func (s *SubmitLock) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, submitLockPrefix+key).Err()
}
