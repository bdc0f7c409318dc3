// Package core holds the records shared by the index, the search engine and
// the chat front-end, plus the error kinds every boundary converts backend
// failures into.
package core

import (
	"strings"
	"time"
)

// Document is one logical corpus entry. LogicalID is stable, unique and the
// deduplication key: the same document may be reachable through several
// index rows but appears at most once in any result list.
type Document struct {
	LogicalID  string
	GroupTag   string // source collection, e.g. the book name
	Body       string
	QualityTag string // optional grading annotation
}

// SearchHit is one raw row emitted by the full-text index. RowRef never
// leaves the search package.
type SearchHit struct {
	RowRef    int64
	LogicalID string
}

// Submission is a user-proposed document waiting for moderation.
type Submission struct {
	ID                int64
	SubmitterID       int64
	SubmitterUsername string
	GroupTag          string
	Body              string
	QualityTag        string
	SubmittedAt       time.Time
	ApprovalMessageID int
}

// Document returns the document that approving the submission would store.
func (s Submission) Document(logicalID string) Document {
	return Document{
		LogicalID:  logicalID,
		GroupTag:   s.GroupTag,
		Body:       s.Body,
		QualityTag: s.QualityTag,
	}
}

// Clitics are the single-character conjunctions and prepositions that attach
// to the following word without a space (wa, fa, bi, li, ka). Order matters:
// query expansion and snippet matching both try them in this order.
var Clitics = []string{"و", "ف", "ب", "ل", "ك"}

// NormalizeQuery trims a raw query. Case folding is applied by the cache key
// derivation, not here, so snippets still see the user's spelling.
func NormalizeQuery(q string) string {
	return strings.TrimSpace(q)
}
