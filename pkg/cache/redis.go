package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rubiojr/kashif/pkg/core"
)

// RedisBackend stores entries in a Redis server using GET and SET EX.
type RedisBackend struct {
	client *redis.Client
}

// NewRedisBackend creates a backend for the given server. No connection is
// made until the first command.
func NewRedisBackend(opts *redis.Options) *RedisBackend {
	return &RedisBackend{client: redis.NewClient(opts)}
}

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("%w: redis get: %v", core.ErrCacheUnavailable, err)
	}
	return val, nil
}

func (r *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: redis set: %v", core.ErrCacheUnavailable, err)
	}
	return nil
}

// Ping checks connectivity.
func (r *RedisBackend) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: redis ping: %v", core.ErrCacheUnavailable, err)
	}
	return nil
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}
