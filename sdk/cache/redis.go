package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKVStore is the distributed KV tier backed by a real Redis instance,
// the Go analogue of original_source's redis_config.rs. It also serves as
// the lookup path for the TOML config fallback at the fixed key
// "convertor:config" (§6).
type RedisKVStore struct {
	client *redis.Client
	prefix string
}

// NewRedisKVStore wraps an already-configured *redis.Client. prefix, if
// non-empty, is prepended to every key (mirrors RedisConfig.prefix in
// original_source).
func NewRedisKVStore(client *redis.Client, prefix string) *RedisKVStore {
	return &RedisKVStore{client: client, prefix: prefix}
}

func (s *RedisKVStore) fullKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + key
}

func (s *RedisKVStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.fullKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *RedisKVStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return s.client.Set(ctx, s.fullKey(key), value, ttl).Err()
}
