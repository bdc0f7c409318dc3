package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Router returns the HTTP handler for every API route.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(CorsMiddleware)

	r.Get("/health", s.HandleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/search", s.HandleSearch)
		r.Get("/documents/{id}", s.HandleDocument)
		r.Get("/stats", s.HandleStats)
	})

	return r
}
