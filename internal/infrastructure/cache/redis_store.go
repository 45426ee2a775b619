package cache

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/turtacn/claimtrack/internal/infrastructure/database/redis"
)

// RedisStore adapts the shared redis cache to Store. Values are stored as raw
// JSON so they stay readable with redis-cli.
type RedisStore struct {
	cache redis.Cache
}

func NewRedisStore(c redis.Cache) *RedisStore {
	return &RedisStore{cache: c}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var raw json.RawMessage
	err := s.cache.Get(ctx, key, &raw)
	if stderrors.Is(err, redis.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.cache.Set(ctx, key, json.RawMessage(value), ttl)
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.cache.Delete(ctx, key)
}
