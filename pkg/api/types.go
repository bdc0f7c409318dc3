package api

import (
	"time"
)

type DocumentResponse struct {
	ID         string `json:"id"`
	Group      string `json:"group"`
	Body       string `json:"body"`
	QualityTag string `json:"quality_tag,omitempty"`
}

type SnippetResponse struct {
	ID      string `json:"id"`
	Group   string `json:"group"`
	Snippet string `json:"snippet"`
}

type SearchResponse struct {
	Query    string            `json:"query"`
	IDs      []string          `json:"ids"`
	Count    int               `json:"count"`
	Mode     string            `json:"mode"`
	Snippets []SnippetResponse `json:"snippets,omitempty"`
}

type StatsResponse struct {
	Documents         int              `json:"documents"`
	DistinctDocuments int              `json:"distinct_documents"`
	Counters          map[string]int64 `json:"counters"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}
