package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rubiojr/kashif/pkg/bot"
	"github.com/rubiojr/kashif/pkg/core"
	"github.com/rubiojr/kashif/pkg/search"
	"github.com/rubiojr/kashif/pkg/version"
)

func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := core.NormalizeQuery(r.URL.Query().Get("q"))
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "Missing query parameter", "Query parameter 'q' is required")
		return
	}

	ids, err := s.search.Search(r.Context(), query)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Search failed", err.Error())
		return
	}

	mode := bot.Route(len(ids), s.opts.MaxListResults)
	response := SearchResponse{
		Query: query,
		IDs:   ids,
		Count: len(ids),
		Mode:  mode.String(),
	}
	if response.IDs == nil {
		response.IDs = []string{}
	}

	// Snippets are only worth computing when the bot would show a list.
	if mode == bot.ModeList {
		docs, err := s.search.Documents(r.Context(), ids)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, "Failed to load documents", err.Error())
			return
		}
		for _, doc := range docs {
			sn := search.Extract(doc.Body, query, s.opts.SnippetContextWords)
			response.Snippets = append(response.Snippets, SnippetResponse{
				ID:      doc.LogicalID,
				Group:   doc.GroupTag,
				Snippet: sn.Text("**"),
			})
		}
	}

	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) HandleDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		s.writeError(w, http.StatusBadRequest, "Invalid path", "Document id is required")
		return
	}

	doc, err := s.search.Document(r.Context(), id)
	if errors.Is(err, core.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "Document not found", fmt.Sprintf("Document '%s' does not exist", id))
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to load document", err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, DocumentResponse{
		ID:         doc.LogicalID,
		Group:      doc.GroupTag,
		Body:       doc.Body,
		QualityTag: doc.QualityTag,
	})
}

func (s *Server) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	counters, err := s.stats.Stats(ctx)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to get stats", err.Error())
		return
	}
	total, err := s.stats.Count(ctx)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to get stats", err.Error())
		return
	}
	distinct, err := s.stats.CountDistinct(ctx)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to get stats", err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, StatsResponse{
		Documents:         total,
		DistinctDocuments: distinct,
		Counters:          counters,
	})
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   version.APIVersion(),
	}

	s.writeJSON(w, http.StatusOK, health)
}
