package paginate

import (
	"fmt"
	"sync"
	"time"

	"github.com/rubiojr/kashif/pkg/core"
)

// Key identifies the delivered message currently holding a "show more"
// control.
type Key struct {
	ChatID    int64
	MessageID int
}

// ChunkSet holds every page of a document being read and the index of the
// page to serve on the next tap.
type ChunkSet struct {
	Pages     []string
	Next      int
	CreatedAt time.Time
}

// Total is the number of pages in the sequence.
func (c *ChunkSet) Total() int {
	return len(c.Pages)
}

// Remaining reports whether a page is left after Next.
func (c *ChunkSet) Remaining() bool {
	return c.Next+1 < len(c.Pages)
}

// Store maps message identities to their pending pages. It lives only in
// process memory and is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	entries map[Key]*ChunkSet
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		entries: make(map[Key]*ChunkSet),
		now:     time.Now,
	}
}

// Put registers pages for key with next as the index of the page to serve
// on the next tap. Sequences with nothing left to serve are not stored.
func (s *Store) Put(key Key, pages []string, next int) {
	if next < 1 || next >= len(pages) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = &ChunkSet{Pages: pages, Next: next, CreatedAt: s.now()}
}

// Take removes and returns the entry for key when it expects page next.
// A missing entry, a mismatched index or an exhausted sequence yields
// core.ErrStaleAffordance. Removal makes concurrent taps on the same message
// race-free: only one of them gets the entry.
func (s *Store) Take(key Key, next int) (*ChunkSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs, ok := s.entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: no pages for message %d", core.ErrStaleAffordance, key.MessageID)
	}
	if cs.Next != next || next >= cs.Total() {
		return nil, fmt.Errorf("%w: message %d expects page %d, got %d", core.ErrStaleAffordance, key.MessageID, cs.Next, next)
	}
	delete(s.entries, key)
	return cs, nil
}

// Restore puts back an entry taken for a delivery that failed.
func (s *Store) Restore(key Key, cs *ChunkSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[key]; !exists {
		s.entries[key] = cs
	}
}

// Sweep drops entries older than maxAge and returns how many were removed.
func (s *Store) Sweep(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxAge)
	removed := 0
	for k, cs := range s.entries {
		if cs.CreatedAt.Before(cutoff) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of live sequences.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
