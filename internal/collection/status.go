package collection

import "errors"

// SyncStatus summarises whether writes are in flight and how the last batch ended.
type SyncStatus int

const (
	StatusIdle SyncStatus = iota
	StatusSyncing
	StatusSynced
	StatusError
)

func (s SyncStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSyncing:
		return "syncing"
	case StatusSynced:
		return "synced"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// settleStatus derives the status from the pending set and in-flight load.
// Syncing holds iff something is in flight. When the last write or load
// drains, the episode ends in error if anything failed since it began or a
// rolled-back write still waits for a retry, otherwise in synced (which
// clears the recorded error).
func (t *txn[E]) settleStatus() {
	busy := len(t.s.pending) > 0 || t.s.loading
	switch {
	case busy:
		if t.s.status != StatusSyncing {
			t.s.status = StatusSyncing
			t.s.episodeFailed = false
		}
	case t.s.status == StatusSyncing:
		switch {
		case t.s.episodeFailed && t.s.err != nil:
			t.s.status = StatusError
		case len(t.s.failed) > 0:
			t.s.status = StatusError
			t.s.err = t.s.lastWriteErr()
		default:
			t.s.status = StatusSynced
			t.s.err = nil
		}
		t.s.episodeFailed = false
	}
}

// lastWriteErr returns the error of an outstanding failed write, preferring
// the recorded error when it belongs to one.
func (s State[E]) lastWriteErr() error {
	var first error
	for _, f := range s.Failures() {
		if s.err != nil && errors.Is(f.Err, s.err) {
			return s.err
		}
		if first == nil {
			first = f.Err
		}
	}
	return first
}
