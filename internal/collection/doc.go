// Package collection manages a client-side copy of a remote entity collection.
//
// # Overview
//
// The package keeps the last server-confirmed data, the user's unconfirmed
// local changes, and the view state (filter, sort, page, selection) of one
// collection. Local changes become visible immediately and are written to the
// server in the background; a failed write reverts exactly the change it
// carried.
//
// # Architecture
//
// All state lives in an immutable State value. The only way to change it is
// Reduce, a pure function from (State, Event) to (State, []Effect):
//
//	UI / caller                   Manager                        Remote
//	┌──────────────┐   Submit*   ┌──────────────────┐  Effect   ┌──────────┐
//	│ SubmitUpdate │───────────→ │ Reduce(Apply)    │─────────→ │ Update() │
//	│ SetFilter    │             │      ↓           │           │    ↓     │
//	│ VisiblePage  │ ←────────── │ state = next     │ ←──────── │ result   │
//	└──────────────┘   Page      │ Reduce(Confirmed │ Confirmed └──────────┘
//	                             │     or Failed)   │ / Failed
//	                             └──────────────────┘
//
// Manager serialises Reduce calls under a mutex and runs every Effect in its
// own goroutine, outside the lock. Remote results are fed back as Confirmed
// or Failed events.
//
// # Layered Maps
//
// State holds two maps per collection:
//
//   - canonical: the last value the server confirmed for each id
//   - overlay: the optimistic value (or a tombstone) for ids with a write in flight
//
// Reads consult the overlay first, then canonical. Merge builds the full view
// the same way without modifying either input. Reduce copies a map before it
// first writes to it, so older State values stay valid.
//
// # Write Lifecycle
//
// Apply validates the mutation against the merged view, records the overlay
// entry, bumps the id's version token and emits an Effect. At most one write
// per id is in flight:
//
//	Apply(2, title=B2)     → overlay v1, Effect{Update, 2, v1}
//	Apply(2, price=5)      → overlay v2, queued (no Effect)
//	Confirmed(2, v1, e)    → canonical[2] = e, queued patches re-based on e,
//	                         Effect{Update, 2, v2}
//	Confirmed(2, v2, e')   → canonical[2] = e', overlay cleared
//
// A Confirmed or Failed whose version does not match the in-flight write is
// ignored. A confirmed create whose server value carries a different id moves
// overlay, pending, version and selection bookkeeping to the server id.
//
// # Sync Status
//
//   - idle: nothing has been loaded or written yet
//   - syncing: a write or a full load is in flight
//   - synced: the last batch drained without failures
//   - error: something failed since the batch began; Err holds the cause
//
// Failed writes are listed by State.Failures and can be re-sent unchanged
// with Manager.Retry. ErrNotFound additionally marks the data stale until
// the next successful Reload.
//
// # Querying
//
// FilterSpec combines a free-text search, discrete equality predicates and
// inclusive numeric ranges. Evaluate applies it through caller-supplied Fields
// accessors and sorts stably with the id as the final tie-break, so equal
// specs over equal data always produce the same order. Evaluator caches the
// result until the state generation or the filter key changes.
//
// Paginate clamps the requested page into [1, totalPages]; an empty result
// still has one page.
//
// # Usage Example
//
//	m := collection.NewManager(remote, fields, withID, collection.Options{PageSize: 20})
//	defer m.Close()
//	if err := m.Reload(ctx); err != nil {
//		logger.Warn("initial load failed", "error", err)
//	}
//	m.SetFilter(collection.SearchFor("go"))
//	m.SubmitUpdate(id, func(c Course) Course { c.Title = "New"; return c })
//	page := m.VisiblePage()
//
// Manager methods never return write failures. They surface through
// Page.SyncStatus, Page.Err and Page.Failures.
package collection
