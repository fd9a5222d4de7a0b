package collection

import (
	"maps"
	"slices"
	"time"
)

// Entity is anything the collection can hold. IDs must be unique and stable.
type Entity interface {
	EntityID() string
}

// Op identifies the kind of write a mutation performs.
type Op int

const (
	OpCreate Op = iota + 1
	OpUpdate
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Patch derives a new value of an entity from its current value.
type Patch[E any] func(E) E

// Mutation is a local change waiting to be written remotely.
type Mutation[E Entity] struct {
	Op    Op
	Value E        // OpCreate only
	Patch Patch[E] // OpUpdate only
}

// Create builds a creation mutation for value.
func Create[E Entity](value E) Mutation[E] {
	return Mutation[E]{Op: OpCreate, Value: value}
}

// Update builds an update mutation applying patch to the current value.
func Update[E Entity](patch Patch[E]) Mutation[E] {
	return Mutation[E]{Op: OpUpdate, Patch: patch}
}

// Replace builds an update mutation that overwrites the current value.
func Replace[E Entity](value E) Mutation[E] {
	return Update(func(E) E { return value })
}

// Delete builds a deletion mutation.
func Delete[E Entity]() Mutation[E] {
	return Mutation[E]{Op: OpDelete}
}

func (m Mutation[E]) view(base E) E {
	switch m.Op {
	case OpCreate:
		return m.Value
	case OpUpdate:
		if m.Patch == nil {
			return base
		}
		return m.Patch(base)
	default:
		return base
	}
}

// compose folds queued mutations into one. Only updates followed by an
// optional trailing delete can queue behind an in-flight write.
func compose[E Entity](queued []Mutation[E]) Mutation[E] {
	if n := len(queued); n > 0 && queued[n-1].Op == OpDelete {
		return Delete[E]()
	}
	patches := slices.Clone(queued)
	return Update(func(e E) E {
		for _, m := range patches {
			e = m.view(e)
		}
		return e
	})
}

type overlayEntry[E Entity] struct {
	value     E
	tombstone bool
	version   uint64
}

type pendingWrite[E Entity] struct {
	mutation Mutation[E]
	version  uint64
	queued   []Mutation[E]
}

type failedWrite[E Entity] struct {
	mutation Mutation[E]
	err      error
}

// loadWrite is a write confirmed while a full load was in flight. It is
// replayed over the load's snapshot, which may predate it.
type loadWrite[E Entity] struct {
	value   E
	deleted bool
}

// FailedWrite describes a write that was rolled back and can be retried.
type FailedWrite struct {
	ID  string
	Op  Op
	Err error
}

// State is the complete, immutable state of one collection. Every change
// goes through Reduce, which returns a new State and leaves the old one
// untouched; maps are copied before they are written.
type State[E Entity] struct {
	canonical map[string]E
	overlay   map[string]overlayEntry[E]
	pending   map[string]pendingWrite[E]
	failed    map[string]failedWrite[E]
	versions  map[string]uint64
	selection map[string]struct{}

	filter      FilterSpec
	page        int
	pageSize    int
	maxPageSize int

	status        SyncStatus
	err           error
	episodeFailed bool
	loading       bool
	stale         bool

	// heldLoad is a finished load waiting for in-flight creates to resolve,
	// so a row the server already returned is not shown twice.
	heldLoad   *Reloaded[E]
	loadWrites map[string]loadWrite[E]

	generation          uint64
	lastLoaded          time.Time
	consecutiveFailures int
}

const (
	DefaultPageSize    = 20
	DefaultMaxPageSize = 100
)

// NewState returns an empty idle state. Page sizes are clamped into
// [1, maxPageSize]; non-positive values fall back to the defaults.
func NewState[E Entity](pageSize, maxPageSize int) State[E] {
	if maxPageSize <= 0 {
		maxPageSize = DefaultMaxPageSize
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return State[E]{
		page:        1,
		pageSize:    min(pageSize, maxPageSize),
		maxPageSize: maxPageSize,
		status:      StatusIdle,
	}
}

// Read returns the overlay value when present, else the canonical value.
// Tombstoned ids read as absent.
func (s State[E]) Read(id string) (E, bool) {
	if entry, ok := s.overlay[id]; ok {
		if entry.tombstone {
			var zero E
			return zero, false
		}
		return entry.value, true
	}
	e, ok := s.canonical[id]
	return e, ok
}

// ReadAll returns the merged view ordered by id.
func (s State[E]) ReadAll() []E {
	view := Merge(s.canonical, s.overlay)
	ids := slices.Sorted(maps.Keys(view))
	out := make([]E, 0, len(ids))
	for _, id := range ids {
		out = append(out, view[id])
	}
	return out
}

// Merge layers overlay on top of canonical. Overlay values shadow canonical
// ones, overlay-only ids (unconfirmed creations) are included and tombstones
// remove ids. Neither input is modified.
func Merge[E Entity](canonical map[string]E, overlay map[string]overlayEntry[E]) map[string]E {
	view := make(map[string]E, len(canonical)+len(overlay))
	maps.Copy(view, canonical)
	for id, entry := range overlay {
		if entry.tombstone {
			delete(view, id)
			continue
		}
		view[id] = entry.value
	}
	return view
}

// Canonical returns the last confirmed server value for id.
func (s State[E]) Canonical(id string) (E, bool) {
	e, ok := s.canonical[id]
	return e, ok
}

// HasOverlay reports whether id has an unconfirmed local mutation.
func (s State[E]) HasOverlay(id string) bool {
	_, ok := s.overlay[id]
	return ok
}

// IsPending reports whether a write for id is in flight.
func (s State[E]) IsPending(id string) bool {
	_, ok := s.pending[id]
	return ok
}

// creating reports whether any create is still waiting for the server.
func (s State[E]) creating() bool {
	for _, p := range s.pending {
		if p.mutation.Op == OpCreate {
			return true
		}
	}
	return false
}

// PendingIDs returns the ids with an in-flight write, sorted.
func (s State[E]) PendingIDs() []string {
	return slices.Sorted(maps.Keys(s.pending))
}

// Version returns the version token of the latest optimistic mutation for id.
func (s State[E]) Version(id string) uint64 {
	return s.versions[id]
}

// Failures returns the rolled-back writes that can be retried, sorted by id.
func (s State[E]) Failures() []FailedWrite {
	ids := slices.Sorted(maps.Keys(s.failed))
	out := make([]FailedWrite, 0, len(ids))
	for _, id := range ids {
		f := s.failed[id]
		out = append(out, FailedWrite{ID: id, Op: f.mutation.Op, Err: f.err})
	}
	return out
}

// Status returns the sync status.
func (s State[E]) Status() SyncStatus { return s.status }

// Err returns the error recorded by the last failure, if any.
func (s State[E]) Err() error { return s.err }

// Stale reports whether a write hit an entity that no longer exists remotely.
func (s State[E]) Stale() bool { return s.stale }

// Filter returns the active filter.
func (s State[E]) Filter() FilterSpec { return s.filter }

// Page returns the requested page (before clamping against the result size).
func (s State[E]) Page() int { return s.page }

// PageSize returns the page size.
func (s State[E]) PageSize() int { return s.pageSize }

// Generation changes whenever the merged entity view may have changed.
func (s State[E]) Generation() uint64 { return s.generation }

// LastLoaded returns when the last full load succeeded.
func (s State[E]) LastLoaded() time.Time { return s.lastLoaded }

// ConsecutiveFailures counts full loads that failed in a row.
func (s State[E]) ConsecutiveFailures() int { return s.consecutiveFailures }

// IsOffline reports whether the remote has been unreachable for repeated loads.
func (s State[E]) IsOffline() bool { return s.consecutiveFailures >= 2 }

func (s State[E]) checkApply(id string, m Mutation[E]) error {
	if id == "" {
		return errEmptyID
	}
	_, exists := s.Read(id)
	switch m.Op {
	case OpCreate:
		_, known := s.canonical[id]
		if exists || known || s.IsPending(id) {
			return errExists
		}
	case OpUpdate, OpDelete:
		if !exists {
			return errMissing
		}
	default:
		return errUnknownOp
	}
	return nil
}
