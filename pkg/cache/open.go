package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rubiojr/kashif/pkg/config"
)

// Open builds the ResultCache selected by the configuration. An unreachable
// Redis server is logged and tolerated; lookups simply miss until it comes
// back.
func Open(ctx context.Context, cfg config.CacheConfig) (*ResultCache, error) {
	opts := Options{
		Namespace:  cfg.Namespace,
		TTL:        cfg.TTL.Duration,
		Timeout:    cfg.Timeout.Duration,
		CacheEmpty: cfg.CacheEmpty,
	}

	switch cfg.Backend {
	case config.CacheRedis:
		backend := NewRedisBackend(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		timeout := cfg.Timeout.Duration
		if timeout <= 0 {
			timeout = time.Second
		}
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := backend.Ping(pingCtx); err != nil {
			logger.Warnf("redis at %s not reachable, searches will hit the index: %v", cfg.RedisAddr, err)
		} else {
			logger.Infof("using redis at %s", cfg.RedisAddr)
		}
		return New(backend, opts), nil
	case config.CacheBadger:
		backend, err := OpenBadgerBackend(cfg.BadgerDir, false)
		if err != nil {
			return nil, err
		}
		logger.Infof("using badger cache in %s", cfg.BadgerDir)
		return New(backend, opts), nil
	case config.CacheNone, "":
		logger.Infof("result cache disabled")
		return New(NopBackend{}, opts), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
