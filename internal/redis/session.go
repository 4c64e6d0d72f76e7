package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionPrefix = "session:"

// SessionStore keeps browser sessions as Redis hashes, one field per value.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Get reads a session value. A missing session or field yields "".
func (s *SessionStore) Get(ctx context.Context, sessionID, key string) (string, error) {
	value, err := s.client.HGet(ctx, sessionPrefix+sessionID, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

// Set writes a session value and refreshes the session expiry.
func (s *SessionStore) Set(ctx context.Context, sessionID, key, value string, ttl time.Duration) error {
	hashKey := sessionPrefix + sessionID

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, hashKey, key, value)
	if ttl > 0 {
		pipe.Expire(ctx, hashKey, ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Delete removes a session value. Redis drops the hash once it is empty.
func (s *SessionStore) Delete(ctx context.Context, sessionID, key string) error {
	return s.client.HDel(ctx, sessionPrefix+sessionID, key).Err()
}
