package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/rubiojr/kashif/pkg/core"
	"github.com/rubiojr/kashif/pkg/log"
)

var logger = log.ForService("search")

// Index is the full-text index consulted on a cache miss.
type Index interface {
	MatchQuery(ctx context.Context, expression string) ([]core.SearchHit, error)
	Get(ctx context.Context, logicalID string) (core.Document, error)
}

// Cache stores ordered id lists by raw query. Implementations never fail;
// an unreachable cache behaves as an empty one.
type Cache interface {
	Get(ctx context.Context, query string) ([]string, bool)
	Set(ctx context.Context, query string, ids []string)
}

// Service runs cache-backed searches. It holds no per-request state and is
// safe for concurrent use.
type Service struct {
	index Index
	cache Cache
}

// NewService creates a search service. cache may be nil.
func NewService(index Index, cache Cache) *Service {
	return &Service{index: index, cache: cache}
}

// Search returns the distinct logical ids matching query in rank order.
// A cache hit skips the index entirely. Index failures are wrapped in
// core.ErrIndexQuery and leave the cache untouched.
func (s *Service) Search(ctx context.Context, query string) ([]string, error) {
	query = core.NormalizeQuery(query)
	if query == "" {
		return nil, core.ErrEmptyQuery
	}

	if s.cache != nil {
		if ids, ok := s.cache.Get(ctx, query); ok {
			logger.Debugf("cache hit for %q: %d ids", query, len(ids))
			return ids, nil
		}
	}

	expr, err := Expand(query)
	if err != nil {
		return nil, err
	}
	logger.Debugf("match expression: %s", expr)

	hits, err := s.index.MatchQuery(ctx, expr)
	if err != nil {
		if !errors.Is(err, core.ErrIndexQuery) {
			err = fmt.Errorf("%w: %v", core.ErrIndexQuery, err)
		}
		logger.Warnf("index query for %q failed: %v", query, err)
		return nil, err
	}

	ids := Deduplicate(hits)
	logger.Debugf("%q: %d rows, %d distinct documents", query, len(hits), len(ids))

	if s.cache != nil {
		s.cache.Set(ctx, query, ids)
	}
	return ids, nil
}

// Documents loads the documents for ids, preserving order. Ids that no
// longer resolve are skipped.
func (s *Service) Documents(ctx context.Context, ids []string) ([]core.Document, error) {
	docs := make([]core.Document, 0, len(ids))
	for _, id := range ids {
		doc, err := s.index.Get(ctx, id)
		if errors.Is(err, core.ErrNotFound) {
			logger.Warnf("document %s vanished from the index", id)
			continue
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Document loads a single document.
func (s *Service) Document(ctx context.Context, id string) (core.Document, error) {
	return s.index.Get(ctx, id)
}
