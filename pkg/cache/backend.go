package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by a Backend when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Backend is a byte-oriented key/value store with per-entry expiry. Any error
// other than ErrMiss means the backend could not be reached.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// NopBackend never stores anything. It is used when caching is disabled.
type NopBackend struct{}

func (NopBackend) Get(context.Context, string) ([]byte, error) {
	return nil, ErrMiss
}

func (NopBackend) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (NopBackend) Close() error {
	return nil
}
