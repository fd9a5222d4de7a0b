package collection

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Remote is the server side of a collection.
type Remote[E Entity] interface {
	LoadAll(ctx context.Context) ([]E, error)
	Create(ctx context.Context, entity E) (E, error)
	Update(ctx context.Context, id string, entity E) (E, error)
	Delete(ctx context.Context, id string) error
}

// Options configure a Manager. The zero value is usable.
type Options struct {
	PageSize    int
	MaxPageSize int
	Sort        SortSpec

	// WriteTimeout bounds each remote write. Default: 15s.
	WriteTimeout time.Duration

	Logger *slog.Logger
	Now    func() time.Time
	// NewID generates temporary ids for creations submitted without one.
	NewID func() string
}

const defaultWriteTimeout = 15 * time.Second

// TempIDPrefix marks ids assigned locally to not-yet-confirmed creations.
const TempIDPrefix = "tmp-"

// Page is everything a consumer needs to render the collection. It is the
// only supported read path.
type Page[E Entity] struct {
	Entities            []E
	Pagination          Pagination
	Selection           []string
	SyncStatus          SyncStatus
	Err                 error
	Stale               bool
	Pending             []string
	Failures            []FailedWrite
	Filter              FilterSpec
	LastLoaded          time.Time
	ConsecutiveFailures int
	Offline             bool
}

// Manager owns one collection State and runs the remote writes Reduce asks
// for. Public methods never return write failures; they show up in the
// Page as SyncStatus, Err and Failures.
//
// Methods are safe for concurrent use: the state is replaced under a mutex
// and remote calls happen outside it.
type Manager[E Entity] struct {
	mu    sync.Mutex
	state State[E]
	eval  *Evaluator[E]

	remote   Remote[E]
	assignID func(E, string) E
	newID    func() string
	now      func() time.Time
	timeout  time.Duration
	logger   *slog.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	writes  sync.WaitGroup
	reloads singleflight.Group

	subMu sync.Mutex
	subs  []chan struct{}
}

// NewManager creates a manager over remote. assignID stamps a temporary id
// onto entities created without one.
func NewManager[E Entity](remote Remote[E], fields Fields[E], assignID func(E, string) E, opts Options) *Manager[E] {
	state := NewState[E](opts.PageSize, opts.MaxPageSize)
	state.filter = NewFilter(opts.Sort)

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager[E]{
		state:    state,
		eval:     NewEvaluator(fields),
		remote:   remote,
		assignID: assignID,
		newID:    opts.NewID,
		now:      opts.Now,
		timeout:  opts.WriteTimeout,
		logger:   opts.Logger,
		ctx:      ctx,
		cancel:   cancel,
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.timeout <= 0 {
		m.timeout = defaultWriteTimeout
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.newID == nil {
		m.newID = func() string { return TempIDPrefix + uuid.NewString() }
	}
	return m
}

// State returns the current state. States are immutable, so the result can
// be inspected without further locking.
func (m *Manager[E]) State() State[E] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Read returns the merged value of id.
func (m *Manager[E]) Read(id string) (E, bool) {
	return m.State().Read(id)
}

// VisiblePage evaluates filter, sort and pagination over the merged view.
// Selected ids that no longer exist are pruned as a side effect.
func (m *Manager[E]) VisiblePage() Page[E] {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state, _ = Reduce(m.state, SelectionPruned{})
	s := m.state
	win := Paginate(m.eval.Evaluate(s), s.page, s.pageSize)
	if win.Meta.Page != s.page {
		m.state, _ = Reduce(m.state, PageChanged{Page: win.Meta.Page})
	}

	entities := make([]E, 0, len(win.IDs))
	for _, id := range win.IDs {
		if e, ok := s.Read(id); ok {
			entities = append(entities, e)
		}
	}
	return Page[E]{
		Entities:            entities,
		Pagination:          win.Meta,
		Selection:           s.Selected(),
		SyncStatus:          s.status,
		Err:                 s.err,
		Stale:               s.stale,
		Pending:             s.PendingIDs(),
		Failures:            s.Failures(),
		Filter:              s.filter,
		LastLoaded:          s.lastLoaded,
		ConsecutiveFailures: s.consecutiveFailures,
		Offline:             s.IsOffline(),
	}
}

// SetFilter merges patch into the filter. A real change resets to page 1.
func (m *Manager[E]) SetFilter(patch FilterPatch) {
	m.dispatch(FilterChanged{Patch: patch})
}

// SetSort changes the sort. A real change resets to page 1.
func (m *Manager[E]) SetSort(key string, dir SortDir) {
	m.dispatch(SortChanged{Sort: SortSpec{Key: key, Dir: dir}})
}

// SetPage moves to page n, clamped into [1, totalPages].
func (m *Manager[E]) SetPage(n int) {
	m.mu.Lock()
	win := Paginate(m.eval.Evaluate(m.state), n, m.state.pageSize)
	m.mu.Unlock()
	m.dispatch(PageChanged{Page: win.Meta.Page})
}

// SetPageSize changes the page size, clamped into [1, maxPageSize].
func (m *Manager[E]) SetPageSize(n int) {
	m.dispatch(PageSizeChanged{Size: n})
}

// ToggleSelection flips the selection of id.
func (m *Manager[E]) ToggleSelection(id string) {
	m.dispatch(SelectionToggled{ID: id})
}

// SelectAllVisible selects the ids on the current page only.
func (m *Manager[E]) SelectAllVisible() {
	m.dispatch(SelectedAll{IDs: m.visibleIDs()})
}

// ClearSelection empties the selection.
func (m *Manager[E]) ClearSelection() {
	m.dispatch(SelectionCleared{})
}

// SubmitCreate optimistically inserts entity and starts its remote create.
// Entities without an id get a temporary one, replaced by the server id on
// confirmation. It returns the id used locally, or "" when refused.
func (m *Manager[E]) SubmitCreate(entity E) string {
	id := entity.EntityID()
	if id == "" && m.assignID != nil {
		id = m.newID()
		entity = m.assignID(entity, id)
	}
	if !m.submit(id, Create(entity)) {
		return ""
	}
	return id
}

// SubmitUpdate optimistically applies patch to id. A write already in
// flight for id delays the remote call, never the local update.
func (m *Manager[E]) SubmitUpdate(id string, patch Patch[E]) bool {
	return m.submit(id, Update(patch))
}

// SubmitDelete optimistically hides id and starts its remote delete.
func (m *Manager[E]) SubmitDelete(id string) bool {
	return m.submit(id, Delete[E]())
}

// DeleteSelected submits a delete for every selected id on the current page
// and returns how many were submitted.
func (m *Manager[E]) DeleteSelected() int {
	m.mu.Lock()
	s := m.state
	ids := Paginate(m.eval.Evaluate(s), s.page, s.pageSize).IDs
	var targets []string
	for _, id := range ids {
		if s.IsSelected(id) {
			targets = append(targets, id)
		}
	}
	m.mu.Unlock()

	n := 0
	for _, id := range targets {
		if m.SubmitDelete(id) {
			n++
		}
	}
	return n
}

// Retry re-submits exactly the mutation that last failed for id.
func (m *Manager[E]) Retry(id string) bool {
	err := m.guarded(RetryRequested{ID: id}, func(s State[E]) error {
		f, ok := s.failed[id]
		if !ok {
			return errNoFailure
		}
		return s.checkApply(id, f.mutation)
	})
	if err != nil {
		m.logger.Debug("retry refused", slog.String("id", id), slog.String("reason", err.Error()))
		return false
	}
	m.logger.Info("retrying write", slog.String("id", id))
	return true
}

// Reload replaces the canonical data with a full load. Concurrent calls
// share one request. Failures are recorded in the state and also returned.
func (m *Manager[E]) Reload(ctx context.Context) error {
	_, err, _ := m.reloads.Do("reload", func() (any, error) {
		m.dispatch(ReloadStarted{})
		entities, err := m.remote.LoadAll(ctx)
		if err != nil {
			m.logger.Warn("reload failed", slog.String("error", err.Error()))
			m.dispatch(ReloadFailed{Err: err, At: m.now()})
			return nil, err
		}
		m.logger.Info("collection reloaded", slog.Int("count", len(entities)))
		m.dispatch(Reloaded[E]{Entities: entities, At: m.now()})
		return nil, nil
	})
	return err
}

// Subscribe returns a channel that receives a value after state changes.
// Notifications coalesce; a slow reader sees at least one pending signal.
func (m *Manager[E]) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	m.subMu.Lock()
	m.subs = append(m.subs, ch)
	m.subMu.Unlock()
	return ch
}

// Wait blocks until every started remote write has been resolved.
func (m *Manager[E]) Wait() {
	m.writes.Wait()
}

// Close cancels in-flight writes and waits for them to resolve.
func (m *Manager[E]) Close() {
	m.cancel()
	m.writes.Wait()
}

func (m *Manager[E]) submit(id string, mut Mutation[E]) bool {
	err := m.guarded(Apply[E]{ID: id, Mutation: mut}, func(s State[E]) error {
		return s.checkApply(id, mut)
	})
	if err != nil {
		m.logger.Debug("mutation refused",
			slog.String("id", id),
			slog.String("op", mut.Op.String()),
			slog.String("reason", err.Error()))
		return false
	}
	m.logger.Debug("mutation applied", slog.String("id", id), slog.String("op", mut.Op.String()))
	return true
}

func (m *Manager[E]) visibleIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.state
	return Paginate(m.eval.Evaluate(s), s.page, s.pageSize).IDs
}

func (m *Manager[E]) dispatch(ev Event) {
	_ = m.guarded(ev, nil)
}

// guarded reduces ev if check passes against the current state, then starts
// the resulting writes.
func (m *Manager[E]) guarded(ev Event, check func(State[E]) error) error {
	m.mu.Lock()
	if check != nil {
		if err := check(m.state); err != nil {
			m.mu.Unlock()
			return err
		}
	}
	next, effects := Reduce(m.state, ev)
	m.state = next
	m.mu.Unlock()

	for _, eff := range effects {
		m.run(eff)
	}
	m.notify()
	return nil
}

func (m *Manager[E]) run(eff Effect[E]) {
	m.writes.Add(1)
	go func() {
		defer m.writes.Done()
		ctx, cancel := context.WithTimeout(m.ctx, m.timeout)
		defer cancel()

		var (
			result E
			err    error
		)
		switch eff.Op {
		case OpCreate:
			result, err = m.remote.Create(ctx, eff.Value)
		case OpUpdate:
			result, err = m.remote.Update(ctx, eff.ID, eff.Value)
		case OpDelete:
			err = m.remote.Delete(ctx, eff.ID)
		}
		if err != nil {
			m.logger.Warn("write rolled back",
				slog.String("id", eff.ID),
				slog.String("op", eff.Op.String()),
				slog.Uint64("version", eff.Version),
				slog.String("error", err.Error()))
			m.dispatch(Failed{ID: eff.ID, Version: eff.Version, Err: err})
			return
		}
		m.dispatch(Confirmed[E]{ID: eff.ID, Version: eff.Version, Entity: result})
	}()
}

func (m *Manager[E]) notify() {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	for _, ch := range m.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
