// Package cache implements the read-through result cache: ordered lists of
// logical document ids keyed by the normalized query. The cache is
// best-effort. Backend failures are logged and reported to callers as a miss
// or a no-op, never as an error.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/rubiojr/kashif/pkg/log"
	"golang.org/x/text/cases"
)

var logger = log.ForService("cache")

// DefaultNamespace prefixes every key so the cache can share a Redis
// database with other users.
const DefaultNamespace = "hadith_search_unique"

type Options struct {
	Namespace string
	TTL       time.Duration
	// Timeout bounds each backend round-trip.
	Timeout time.Duration
	// CacheEmpty also stores empty result lists.
	CacheEmpty bool
}

// ResultCache maps normalized queries to ordered logical id lists.
type ResultCache struct {
	backend Backend
	opts    Options
}

func New(backend Backend, opts Options) *ResultCache {
	if backend == nil {
		backend = NopBackend{}
	}
	if opts.Namespace == "" {
		opts.Namespace = DefaultNamespace
	}
	if opts.TTL <= 0 {
		opts.TTL = time.Hour
	}
	return &ResultCache{backend: backend, opts: opts}
}

// Key derives the cache key for a raw query: trimmed, case-folded and
// namespaced. Expansion happens later and never affects the key.
func (c *ResultCache) Key(query string) string {
	// A Caser is stateful, so one is built per call.
	folded := cases.Fold().String(strings.TrimSpace(query))
	return c.opts.Namespace + ":" + folded
}

// Get returns the cached ids for query and whether there was a hit.
func (c *ResultCache) Get(ctx context.Context, query string) ([]string, bool) {
	key := c.Key(query)
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	data, err := c.backend.Get(ctx, key)
	if errors.Is(err, ErrMiss) {
		logger.Debugf("miss %q", key)
		return nil, false
	}
	if err != nil {
		logger.Errorf("get %q: %v", key, err)
		return nil, false
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		logger.Warnf("discarding undecodable entry %q: %v", key, err)
		return nil, false
	}
	if ids == nil {
		ids = []string{}
	}
	logger.Debugf("hit %q (%d ids)", key, len(ids))
	return ids, true
}

// Set stores ids for query. Empty lists are skipped unless CacheEmpty is set.
func (c *ResultCache) Set(ctx context.Context, query string, ids []string) {
	if len(ids) == 0 && !c.opts.CacheEmpty {
		return
	}
	if ids == nil {
		ids = []string{}
	}

	key := c.Key(query)
	data, err := json.Marshal(ids)
	if err != nil {
		logger.Errorf("encoding %q: %v", key, err)
		return
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	if err := c.backend.Set(ctx, key, data, c.opts.TTL); err != nil {
		logger.Errorf("set %q: %v", key, err)
		return
	}
	logger.Debugf("stored %q (%d ids, ttl %s)", key, len(ids), c.opts.TTL)
}

// Close releases the backend.
func (c *ResultCache) Close() error {
	return c.backend.Close()
}

// Backend returns the underlying store.
func (c *ResultCache) Backend() Backend {
	return c.backend
}

func (c *ResultCache) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.opts.Timeout)
}
