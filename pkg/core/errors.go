package core

import "errors"

// Error kinds. Every component converts backend failures into one of these at
// the boundary that owns the resource; raw driver errors never reach the
// presentation layer.
var (
	// ErrCacheUnavailable is non-fatal: the caller falls through to the index.
	ErrCacheUnavailable = errors.New("cache unavailable")

	// ErrIndexQuery covers malformed match expressions and index backend
	// failures. The user sees the no-results notice.
	ErrIndexQuery = errors.New("index query failed")

	// ErrCompositionOverflow means a fully composed message exceeds the
	// transport size cap. The message is not sent.
	ErrCompositionOverflow = errors.New("composed message exceeds transport limit")

	// ErrStaleAffordance means a "show more" token references a missing or
	// exhausted chunk set. Never shown to the user.
	ErrStaleAffordance = errors.New("stale affordance")

	// ErrDelivery means the transport rejected a send, edit or delete.
	ErrDelivery = errors.New("delivery failed")

	// ErrNotFound indicates a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmptyQuery is returned for blank queries, which are rejected upstream
	// of expansion.
	ErrEmptyQuery = errors.New("empty query")

	// ErrInvalidToken indicates a callback payload that cannot be decoded.
	ErrInvalidToken = errors.New("invalid callback token")
)
