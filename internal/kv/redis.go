package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type RedisStore struct {
	client redis.Cmdable
	prefix string
}

// NewRedisStore keys every entry as prefix+key so several storefronts can share one instance.
func NewRedisStore(client redis.Cmdable, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		log.Error().Err(err).Str("key", s.prefix+key).Msg("repository: redis get failed")
		return nil, false, fmt.Errorf("redis: get %s: %w", s.prefix+key, err)
	}

	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		log.Error().Err(err).Str("key", s.prefix+key).Msg("repository: redis set failed")
		return fmt.Errorf("redis: set %s: %w", s.prefix+key, err)
	}

	return nil
}
