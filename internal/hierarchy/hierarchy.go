package hierarchy

import (
	"github.com/docscrape/docscrape/internal/model"
)

// Build links entries into a parent/child hierarchy in place.
//
// For every entry whose id contains a separator, the parent id is the id
// with its last dot-delimited segment dropped. When an entry with that
// exact id exists in the set, the child records it as Parent and the
// parent appends the child's id to Children, in entry processing order.
// Entries with no matching parent stay top-level.
//
// Design decision: We index ids up front instead of scanning linearly per
// entry. When the same id occurs more than once, the first occurrence is
// the one that receives children; duplicates are preserved in the slice
// but never merged.
func Build(entries []model.Entry) {
	index := make(map[string]int, len(entries))
	for i, e := range entries {
		if _, ok := index[e.ID]; !ok {
			index[e.ID] = i
		}
	}

	for i := range entries {
		parentID := model.ParentID(entries[i].ID)
		if parentID == "" {
			continue
		}
		parentIdx, ok := index[parentID]
		if !ok {
			continue
		}
		entries[i].Parent = parentID
		entries[parentIdx].Children = append(entries[parentIdx].Children, entries[i].ID)
	}
}
