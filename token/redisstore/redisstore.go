// Package redisstore provides a redis backed token.Backend.
//
// Keys live under a prefix and carry a TTL, so an abandoned session disappears on its own
// the way browser session storage does when the tab goes away. Several processes pointing
// at the same redis share one session.
package redisstore

import (
	"context"
	"time"

	"github.com/Jaemnie/sellog/token"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
}

var _ token.Backend = (*RedisStore)(nil)

// New creates a RedisStore. prefix is prepended to every key.
func New(rdb redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) Load(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, errors.Wrapf(err, "[RedisStore Load] %s", key)
	}
	return v, true, nil
}

// Save overwrites key. A zero ttl keeps the value until it is removed.
func (s *RedisStore) Save(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, s.prefix+key, value, ttl).Err(); err != nil {
		return errors.Wrapf(err, "[RedisStore Save] %s", key)
	}
	return nil
}

// Remove deletes key. Removing a missing key is a no-op.
func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.prefix+key).Err(); err != nil {
		return errors.Wrapf(err, "[RedisStore Remove] %s", key)
	}
	return nil
}
