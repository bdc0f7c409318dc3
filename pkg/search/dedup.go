package search

import "github.com/rubiojr/kashif/pkg/core"

// Deduplicate collapses index rows into logical ids, keeping the first
// occurrence of each id and preserving rank order. Rows without an id are
// dropped.
func Deduplicate(hits []core.SearchHit) []string {
	seen := make(map[string]struct{}, len(hits))
	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		if h.LogicalID == "" {
			continue
		}
		if _, dup := seen[h.LogicalID]; dup {
			logger.Debugf("skipping row %d (duplicate id %s)", h.RowRef, h.LogicalID)
			continue
		}
		seen[h.LogicalID] = struct{}{}
		ids = append(ids, h.LogicalID)
	}
	return ids
}
