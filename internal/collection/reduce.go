package collection

import (
	"errors"
	"maps"
	"slices"
	"time"
)

// Event is a state transition input for Reduce.
type Event interface {
	event()
}

// Apply optimistically applies a mutation to ID and schedules its write.
type Apply[E Entity] struct {
	ID       string
	Mutation Mutation[E]
}

// Confirmed reports that the write carrying Version succeeded. Entity is the
// server's value (zero for deletes).
type Confirmed[E Entity] struct {
	ID      string
	Version uint64
	Entity  E
}

// Failed reports that the write carrying Version was rejected.
type Failed struct {
	ID      string
	Version uint64
	Err     error
}

// RetryRequested re-applies the last failed mutation for ID.
type RetryRequested struct{ ID string }

// ReloadStarted marks the start of a full load.
type ReloadStarted struct{}

// Reloaded replaces the canonical map with a fresh full load.
type Reloaded[E Entity] struct {
	Entities []E
	At       time.Time
}

// ReloadFailed records a failed full load.
type ReloadFailed struct {
	Err error
	At  time.Time
}

// FilterChanged merges Patch into the active filter.
type FilterChanged struct{ Patch FilterPatch }

// SortChanged replaces the sort key and direction.
type SortChanged struct{ Sort SortSpec }

// PageChanged requests a page. Out-of-range values are clamped when read.
type PageChanged struct{ Page int }

// PageSizeChanged sets the page size, clamped to [1, max].
type PageSizeChanged struct{ Size int }

// SelectionToggled flips the selection of ID.
type SelectionToggled struct{ ID string }

// SelectedAll adds IDs (the currently visible page) to the selection.
type SelectedAll struct{ IDs []string }

// SelectionCleared empties the selection.
type SelectionCleared struct{}

// SelectionPruned drops selected ids that no longer exist in the merged view.
type SelectionPruned struct{}

func (Apply[E]) event()          {}
func (Confirmed[E]) event()      {}
func (Failed) event()            {}
func (RetryRequested) event()    {}
func (ReloadStarted) event()     {}
func (Reloaded[E]) event()       {}
func (ReloadFailed) event()      {}
func (FilterChanged) event()     {}
func (SortChanged) event()       {}
func (PageChanged) event()       {}
func (PageSizeChanged) event()   {}
func (SelectionToggled) event()  {}
func (SelectedAll) event()       {}
func (SelectionCleared) event()  {}
func (SelectionPruned) event()   {}

// Effect is a remote write Reduce asks the caller to perform. Its outcome
// must be fed back as Confirmed or Failed carrying the same ID and Version.
type Effect[E Entity] struct {
	Op      Op
	ID      string
	Version uint64
	Value   E
}

// Reduce applies ev to s and returns the next state plus any remote writes
// to start. It never mutates s. Events that do not apply (unknown ids,
// stale versions, refused mutations) return s unchanged.
func Reduce[E Entity](s State[E], ev Event) (State[E], []Effect[E]) {
	t := &txn[E]{s: s}
	switch ev := ev.(type) {
	case Apply[E]:
		t.apply(ev.ID, ev.Mutation)
	case Confirmed[E]:
		t.confirm(ev)
	case Failed:
		t.fail(ev)
	case RetryRequested:
		if f, ok := t.s.failed[ev.ID]; ok {
			t.apply(ev.ID, f.mutation)
		}
	case ReloadStarted:
		if !t.s.loading {
			t.s.loadWrites = nil
		}
		t.s.loading = true
	case Reloaded[E]:
		t.reloaded(ev)
	case ReloadFailed:
		if t.s.heldLoad == nil {
			t.s.loading = false
			t.s.loadWrites = nil
		}
		t.s.err = ev.Err
		t.s.episodeFailed = true
		t.s.consecutiveFailures++
	case FilterChanged:
		t.setFilter(t.s.filter.With(ev.Patch))
	case SortChanged:
		t.setFilter(t.s.filter.WithSort(ev.Sort))
	case PageChanged:
		t.s.page = max(ev.Page, 1)
	case PageSizeChanged:
		t.s.pageSize = clampPageSize(ev.Size, t.s.maxPageSize)
	case SelectionToggled:
		t.toggle(ev.ID)
	case SelectedAll:
		t.selectAll(ev.IDs)
	case SelectionCleared:
		t.s.selection = nil
	case SelectionPruned:
		t.pruneSelection()
	}
	if t.s.heldLoad != nil && !t.s.creating() {
		t.applyLoad(*t.s.heldLoad)
	}
	t.pruneGhosts()
	t.settleStatus()
	return t.s, t.effects
}

// txn accumulates one Reduce call. Maps shared with the input state are
// cloned the first time they are written.
type txn[E Entity] struct {
	s       State[E]
	owned   uint8
	effects []Effect[E]
}

const (
	ownCanonical uint8 = 1 << iota
	ownOverlay
	ownPending
	ownFailed
	ownVersions
	ownSelection
	ownLoadWrites
)

func own[M ~map[K]V, K comparable, V any](t uint8, bit uint8, m *M) uint8 {
	if t&bit != 0 {
		return t
	}
	if *m == nil {
		*m = make(M)
	} else {
		*m = maps.Clone(*m)
	}
	return t | bit
}

func (t *txn[E]) canonical() map[string]E {
	t.owned = own(t.owned, ownCanonical, &t.s.canonical)
	t.s.generation++
	return t.s.canonical
}

func (t *txn[E]) overlay() map[string]overlayEntry[E] {
	t.owned = own(t.owned, ownOverlay, &t.s.overlay)
	t.s.generation++
	return t.s.overlay
}

func (t *txn[E]) pending() map[string]pendingWrite[E] {
	t.owned = own(t.owned, ownPending, &t.s.pending)
	return t.s.pending
}

func (t *txn[E]) failed() map[string]failedWrite[E] {
	t.owned = own(t.owned, ownFailed, &t.s.failed)
	return t.s.failed
}

func (t *txn[E]) versions() map[string]uint64 {
	t.owned = own(t.owned, ownVersions, &t.s.versions)
	return t.s.versions
}

func (t *txn[E]) selection() map[string]struct{} {
	t.owned = own(t.owned, ownSelection, &t.s.selection)
	return t.s.selection
}

func (t *txn[E]) loadWrites() map[string]loadWrite[E] {
	t.owned = own(t.owned, ownLoadWrites, &t.s.loadWrites)
	return t.s.loadWrites
}

func (t *txn[E]) apply(id string, m Mutation[E]) {
	if t.s.checkApply(id, m) != nil {
		return
	}
	base, _ := t.s.Read(id)
	view := m.view(base)

	version := t.s.versions[id] + 1
	t.versions()[id] = version
	t.overlay()[id] = overlayEntry[E]{value: view, tombstone: m.Op == OpDelete, version: version}
	if _, ok := t.s.failed[id]; ok {
		delete(t.failed(), id)
	}

	if p, ok := t.s.pending[id]; ok {
		// One write per id at a time; later mutations wait and are re-based
		// once the in-flight one resolves.
		p.queued = append(slices.Clone(p.queued), m)
		t.pending()[id] = p
		return
	}
	t.pending()[id] = pendingWrite[E]{mutation: m, version: version}
	t.effects = append(t.effects, Effect[E]{Op: m.Op, ID: id, Version: version, Value: view})
}

func (t *txn[E]) confirm(ev Confirmed[E]) {
	p, ok := t.s.pending[ev.ID]
	if !ok || p.version != ev.Version {
		return
	}
	id := ev.ID
	switch p.mutation.Op {
	case OpDelete:
		delete(t.canonical(), id)
	case OpCreate:
		if serverID := ev.Entity.EntityID(); serverID != "" && serverID != id {
			t.rename(id, serverID)
			id = serverID
		}
		t.canonical()[id] = ev.Entity
	default:
		t.canonical()[id] = ev.Entity
	}
	if t.s.loading {
		t.loadWrites()[id] = loadWrite[E]{value: ev.Entity, deleted: p.mutation.Op == OpDelete}
	}

	if len(p.queued) == 0 {
		delete(t.overlay(), id)
		delete(t.pending(), id)
		return
	}
	// The confirmed write was superseded locally: server truth lands in
	// canonical, the newer overlay value stays visible and is sent next.
	t.rebase(id, p.queued)
}

func (t *txn[E]) fail(ev Failed) {
	p, ok := t.s.pending[ev.ID]
	if !ok || p.version != ev.Version {
		return
	}
	err := ev.Err
	if err == nil {
		err = ErrNetwork
	}
	t.s.err = err
	t.s.episodeFailed = true
	if errors.Is(err, ErrNotFound) {
		t.s.stale = true
	}

	if p.mutation.Op == OpCreate {
		// Nothing exists remotely yet, so queued edits fold into the create
		// and a retry recreates the latest local value.
		delete(t.overlay(), ev.ID)
		delete(t.pending(), ev.ID)
		retry := p.mutation
		if len(p.queued) > 0 {
			next := compose(p.queued)
			if next.Op == OpDelete {
				return
			}
			retry = Create(next.view(p.mutation.Value))
		}
		t.failed()[ev.ID] = failedWrite[E]{mutation: retry, err: err}
		return
	}

	t.failed()[ev.ID] = failedWrite[E]{mutation: p.mutation, err: err}
	if len(p.queued) == 0 {
		delete(t.overlay(), ev.ID)
		delete(t.pending(), ev.ID)
		return
	}
	t.rebase(ev.ID, p.queued)
}

// rebase replays queued mutations on top of the current canonical value and
// dispatches them as a single write carrying the latest version token.
func (t *txn[E]) rebase(id string, queued []Mutation[E]) {
	base, exists := t.s.canonical[id]
	if !exists {
		delete(t.overlay(), id)
		delete(t.pending(), id)
		return
	}
	m := compose(queued)
	view := m.view(base)
	version := t.s.versions[id]
	t.overlay()[id] = overlayEntry[E]{value: view, tombstone: m.Op == OpDelete, version: version}
	t.pending()[id] = pendingWrite[E]{mutation: m, version: version}
	t.effects = append(t.effects, Effect[E]{Op: m.Op, ID: id, Version: version, Value: view})
}

// rename moves local bookkeeping from a temporary creation id to the id the
// server assigned.
func (t *txn[E]) rename(from, to string) {
	if entry, ok := t.s.overlay[from]; ok {
		ov := t.overlay()
		delete(ov, from)
		ov[to] = entry
	}
	if p, ok := t.s.pending[from]; ok {
		pd := t.pending()
		delete(pd, from)
		pd[to] = p
	}
	if v, ok := t.s.versions[from]; ok {
		vs := t.versions()
		delete(vs, from)
		vs[to] = max(v, vs[to])
	}
	if _, ok := t.s.selection[from]; ok {
		sel := t.selection()
		delete(sel, from)
		sel[to] = struct{}{}
	}
}

// reloaded holds the load back while a create is in flight: the server may
// already list the new row under its real id while the overlay still shows
// it under the temporary one.
func (t *txn[E]) reloaded(ev Reloaded[E]) {
	if t.s.creating() {
		t.s.heldLoad = &ev
		t.s.loading = true
		return
	}
	t.applyLoad(ev)
}

func (t *txn[E]) applyLoad(ev Reloaded[E]) {
	next := make(map[string]E, len(ev.Entities))
	for _, e := range ev.Entities {
		if id := e.EntityID(); id != "" {
			next[id] = e
		}
	}
	for id, w := range t.s.loadWrites {
		if w.deleted {
			delete(next, id)
		} else {
			next[id] = w.value
		}
	}
	t.s.canonical = next
	t.owned |= ownCanonical
	t.s.generation++
	t.s.heldLoad = nil
	t.s.loadWrites = nil
	t.s.loading = false
	t.s.stale = false
	t.s.lastLoaded = ev.At
	t.s.consecutiveFailures = 0

	// A failed update or delete of a row the server no longer has cannot be
	// retried meaningfully.
	for id, f := range t.s.failed {
		if _, ok := next[id]; !ok && f.mutation.Op != OpCreate {
			delete(t.failed(), id)
		}
	}
}

func (t *txn[E]) setFilter(next FilterSpec) {
	if next.Equal(t.s.filter) {
		return
	}
	t.s.filter = next
	t.s.page = 1
}

// pruneGhosts drops overlay entries whose write is no longer tracked.
func (t *txn[E]) pruneGhosts() {
	for id := range t.s.overlay {
		if _, ok := t.s.pending[id]; !ok {
			delete(t.overlay(), id)
		}
	}
}

func clampPageSize(size, maxSize int) int {
	if maxSize <= 0 {
		maxSize = DefaultMaxPageSize
	}
	return min(max(size, 1), maxSize)
}
