package collection

import (
	"maps"
	"slices"
)

// Selected returns the selected ids that still exist in the merged view,
// sorted. Ids that vanished are skipped here and dropped from the stored set
// by the next SelectionPruned event.
func (s State[E]) Selected() []string {
	out := make([]string, 0, len(s.selection))
	for _, id := range slices.Sorted(maps.Keys(s.selection)) {
		if _, ok := s.Read(id); ok {
			out = append(out, id)
		}
	}
	return out
}

// IsSelected reports whether id is selected and still exists.
func (s State[E]) IsSelected(id string) bool {
	if _, ok := s.selection[id]; !ok {
		return false
	}
	_, ok := s.Read(id)
	return ok
}

func (t *txn[E]) toggle(id string) {
	if id == "" {
		return
	}
	if _, ok := t.s.selection[id]; ok {
		delete(t.selection(), id)
		return
	}
	if _, ok := t.s.Read(id); !ok {
		return
	}
	t.selection()[id] = struct{}{}
}

// selectAll adds exactly the given ids; callers pass the visible page, so
// selecting across pages takes one call per page.
func (t *txn[E]) selectAll(ids []string) {
	for _, id := range ids {
		if _, ok := t.s.Read(id); !ok {
			continue
		}
		if _, ok := t.s.selection[id]; ok {
			continue
		}
		t.selection()[id] = struct{}{}
	}
}

func (t *txn[E]) pruneSelection() {
	for id := range t.s.selection {
		if _, ok := t.s.Read(id); !ok {
			delete(t.selection(), id)
		}
	}
}
