// Package api exposes the search engine over a small read-only JSON API.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rubiojr/kashif/pkg/core"
	"github.com/rubiojr/kashif/pkg/log"
)

var logger = log.ForService("api")

// Searcher resolves queries and documents.
type Searcher interface {
	Search(ctx context.Context, query string) ([]string, error)
	Documents(ctx context.Context, ids []string) ([]core.Document, error)
	Document(ctx context.Context, id string) (core.Document, error)
}

// StatsSource reports corpus and usage counters.
type StatsSource interface {
	Stats(ctx context.Context) (map[string]int64, error)
	Count(ctx context.Context) (int, error)
	CountDistinct(ctx context.Context) (int, error)
}

type Options struct {
	MaxListResults      int
	SnippetContextWords int
}

type Server struct {
	search Searcher
	stats  StatsSource
	opts   Options
}

func NewServer(search Searcher, stats StatsSource, opts Options) *Server {
	if opts.MaxListResults <= 0 {
		opts.MaxListResults = 10
	}
	if opts.SnippetContextWords <= 0 {
		opts.SnippetContextWords = 5
	}
	return &Server{search: search, stats: stats, opts: opts}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Errorf("encoding JSON response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, error, message string) {
	response := ErrorResponse{
		Error:   error,
		Message: message,
	}
	s.writeJSON(w, status, response)
}

func CorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
