package session

import (
	"context"
	"fmt"

	"paygate/internal/cache"
	"paygate/internal/model"
)

const redisKeyPrefix = "session:"

// RedisStore keeps one session record in Redis, keyed by the browser's
// session ID. The record survives portal restarts, which is what lets a
// session be rehydrated by Manager.Bootstrap.
type RedisStore struct {
	cache *cache.Client
	key   string
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a store scoped to one session ID.
func NewRedisStore(c *cache.Client, sid string) *RedisStore {
	return &RedisStore{cache: c, key: redisKeyPrefix + sid}
}

// Save persists the token/profile pair as a single record.
func (s *RedisStore) Save(ctx context.Context, token string, user model.User) error {
	raw, err := encodeRecord(token, user)
	if err != nil {
		return fmt.Errorf("encode session record: %w", err)
	}
	return s.cache.Set(ctx, s.key, raw, recordTTL)
}

// Load returns the stored pair, or nothing. A corrupt record is deleted.
func (s *RedisStore) Load(ctx context.Context) (string, *model.User, bool) {
	raw, _ := s.cache.Get(ctx, s.key)
	if raw == nil {
		return "", nil, false
	}
	token, user, ok := decodeRecord(raw)
	if !ok {
		_ = s.cache.Delete(ctx, s.key)
		return "", nil, false
	}
	return token, user, true
}

// Clear removes the record; removing an absent record is fine.
func (s *RedisStore) Clear(ctx context.Context) error {
	return s.cache.Delete(ctx, s.key)
}
