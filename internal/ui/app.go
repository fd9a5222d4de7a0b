package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/curator/internal/catalog"
	"github.com/five82/curator/internal/collection"
	"github.com/five82/curator/internal/editor"
	"github.com/five82/curator/internal/prefs"
)

// Options configure the UI runtime.
type Options struct {
	Context   context.Context
	Manager   *collection.Manager[catalog.Course]
	Editor    *editor.Editor
	Prefs     prefs.Prefs
	PrefsPath string // empty uses prefs.DefaultPath()
	Logger    *slog.Logger
	Now       func() time.Time
}

// mode is what currently receives key presses.
type mode int

const (
	modeList mode = iota
	modeSearch
	modeForm
	modeConfirmDelete
	modeHelp
)

// statusFilters is the cycle for the status filter key. AllValues clears the
// predicate.
var statusFilters = []string{
	collection.AllValues,
	string(catalog.StatusDraft),
	string(catalog.StatusPublished),
	string(catalog.StatusArchived),
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Dependencies
	ctx     context.Context
	manager *collection.Manager[catalog.Course]
	editor  *editor.Editor
	logger  *slog.Logger
	now     func() time.Time
	changes <-chan struct{}
	keys    keyMap

	prefs     prefs.Prefs
	prefsPath string

	// UI state
	theme  Theme
	width  int
	height int
	ready  bool
	mode   mode

	// Data state
	page          collection.Page[catalog.Course]
	cursor        int
	search        textinput.Model
	form          *courseForm
	detail        viewport.Model
	deleteTargets []string
	flash         string
	reloading     bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	ed := opts.Editor
	if ed == nil {
		ed = editor.New()
	}

	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "search courses"
	search.CharLimit = 200

	m := Model{
		ctx:       ctx,
		manager:   opts.Manager,
		editor:    ed,
		logger:    logger,
		now:       now,
		changes:   opts.Manager.Subscribe(),
		keys:      DefaultKeyMap(),
		prefs:     opts.Prefs,
		prefsPath: prefsPath,
		theme:     GetTheme(opts.Prefs.Theme),
		search:    search,
		detail:    viewport.New(0, 0),
	}
	m.refresh()
	m.search.SetValue(m.page.Filter.Search)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForChange(m.changes),
		clockCmd(),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeDetail()
		return m, nil

	case changedMsg:
		m.refresh()
		return m, waitForChange(m.changes)

	case clockMsg:
		return m, clockCmd()

	case reloadDoneMsg:
		m.reloading = false
		m.refresh()
		if msg.err != nil {
			m.flash = "Reload failed: " + msg.err.Error()
		} else {
			m.flash = fmt.Sprintf("Loaded %d courses", m.page.Pagination.Total)
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	switch m.mode {
	case modeHelp:
		return m.renderHelp()
	case modeForm:
		return m.renderFormOverlay()
	}
	return m.renderMain()
}

// handleKey processes keyboard input for the active mode.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeHelp:
		m.mode = modeList
		return m, nil
	case modeSearch:
		return m.handleSearchKey(msg)
	case modeForm:
		return m.handleFormKey(msg)
	case modeConfirmDelete:
		return m.handleConfirmKey(msg)
	}
	return m.handleListKey(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	m.flash = ""

	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit

	case key.Matches(msg, k.Help):
		m.mode = modeHelp

	case key.Matches(msg, k.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()

	case key.Matches(msg, k.Reload):
		if m.reloading {
			return m, nil
		}
		m.reloading = true
		return m, reloadCmd(m.ctx, m.manager)

	case key.Matches(msg, k.Up):
		m.moveCursor(m.cursor - 1)
	case key.Matches(msg, k.Down):
		m.moveCursor(m.cursor + 1)
	case key.Matches(msg, k.Top):
		m.moveCursor(0)
	case key.Matches(msg, k.Bottom):
		m.moveCursor(len(m.page.Entities) - 1)

	case key.Matches(msg, k.NextPage):
		m.manager.SetPage(m.page.Pagination.Page + 1)
		m.cursor = 0
	case key.Matches(msg, k.PrevPage):
		m.manager.SetPage(m.page.Pagination.Page - 1)
		m.cursor = 0

	case key.Matches(msg, k.Bigger):
		m.manager.SetPageSize(m.page.Pagination.PageSize + pageSizeStep)
		m.savePageSize()
	case key.Matches(msg, k.Smaller):
		m.manager.SetPageSize(m.page.Pagination.PageSize - pageSizeStep)
		m.savePageSize()

	case key.Matches(msg, k.Search):
		m.mode = modeSearch
		cmd := m.search.Focus()
		return m, cmd

	case key.Matches(msg, k.CycleSort):
		sort := m.page.Filter.Sort
		i := slices.Index(catalog.SortKeys, sort.Key)
		next := catalog.SortKeys[(i+1)%len(catalog.SortKeys)]
		m.manager.SetSort(next, sort.Dir)
		m.prefs.SortKey = next
		m.savePrefs()
	case key.Matches(msg, k.FlipSort):
		sort := m.page.Filter.Sort
		dir := collection.Desc
		if sort.Dir == collection.Desc {
			dir = collection.Asc
		}
		m.manager.SetSort(sort.Key, dir)
		m.prefs.SortDir = string(dir)
		m.savePrefs()

	case key.Matches(msg, k.CycleFilter):
		cur := m.page.Filter.Equals(catalog.FieldStatus)
		if cur == "" {
			cur = collection.AllValues
		}
		i := slices.Index(statusFilters, cur)
		next := statusFilters[(i+1)%len(statusFilters)]
		m.manager.SetFilter(collection.FilterPatch{Equals: map[string]string{catalog.FieldStatus: next}})
		m.cursor = 0

	case key.Matches(msg, k.Toggle):
		if c, ok := m.current(); ok {
			m.manager.ToggleSelection(c.ID)
			m.moveCursor(m.cursor + 1)
		}
	case key.Matches(msg, k.SelectAll):
		m.manager.SelectAllVisible()
	case key.Matches(msg, k.Clear):
		m.manager.ClearSelection()

	case key.Matches(msg, k.New):
		m.form = newCourseForm(m.editor, m.editor.Blank())
		m.mode = modeForm
		return m, textinput.Blink
	case key.Matches(msg, k.Edit):
		c, ok := m.current()
		if !ok {
			return m, nil
		}
		if strings.HasPrefix(c.ID, collection.TempIDPrefix) {
			m.flash = "Wait until the course is created"
			return m, nil
		}
		m.form = newCourseForm(m.editor, m.editor.Open(c))
		m.mode = modeForm
		return m, textinput.Blink

	case key.Matches(msg, k.Delete):
		m.deleteTargets = m.visibleSelection()
		if len(m.deleteTargets) == 0 {
			if c, ok := m.current(); ok {
				m.deleteTargets = []string{c.ID}
			}
		}
		if len(m.deleteTargets) > 0 {
			m.mode = modeConfirmDelete
		}

	case key.Matches(msg, k.Retry):
		n := 0
		for _, f := range m.page.Failures {
			if m.manager.Retry(f.ID) {
				n++
			}
		}
		m.flash = fmt.Sprintf("Retrying %d write(s)", n)
	}

	m.refresh()
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.SetValue("")
		m.manager.SetFilter(collection.SearchFor(""))
		m.search.Blur()
		m.mode = modeList
		m.refresh()
		return m, nil
	case "enter":
		m.search.Blur()
		m.mode = modeList
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if v := m.search.Value(); v != before {
		m.manager.SetFilter(collection.SearchFor(v))
		m.cursor = 0
		m.refresh()
	}
	return m, cmd
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.form = nil
		m.mode = modeList
		return m, nil
	case "ctrl+s":
		return m.submitForm()
	case "enter":
		if m.form.focus == len(m.form.fields)-1 {
			return m.submitForm()
		}
		m.form.setFocus(m.form.focus + 1)
		return m, nil
	}
	return m, m.form.Update(msg)
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	res, err := m.form.commit()
	switch {
	case errors.Is(err, editor.ErrUnchanged):
		m.flash = "No changes"
	case err != nil:
		return m, nil
	case res.Create():
		if id := m.manager.SubmitCreate(res.Course); id != "" {
			m.flash = "Creating " + truncate(res.Course.Title, 40)
			m.logger.Info("course create submitted", slog.String("id", id))
		} else {
			m.flash = "Create refused"
		}
	default:
		if m.manager.SubmitUpdate(res.ID, res.PatchFunc()) {
			m.flash = "Saving changes"
			m.logger.Info("course update submitted", slog.String("id", res.ID))
		} else {
			m.flash = "Course no longer exists"
		}
	}
	m.form = nil
	m.mode = modeList
	m.refresh()
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		n := 0
		if len(m.visibleSelection()) > 0 {
			n = m.manager.DeleteSelected()
		} else {
			for _, id := range m.deleteTargets {
				if m.manager.SubmitDelete(id) {
					n++
				}
			}
		}
		m.flash = fmt.Sprintf("Deleting %d course(s)", n)
	case key.Matches(msg, m.keys.Cancel), msg.String() == "n":
		m.flash = ""
	default:
		return m, nil
	}
	m.deleteTargets = nil
	m.mode = modeList
	m.refresh()
	return m, nil
}

// refresh pulls the visible page from the manager and keeps the cursor on
// a row.
func (m *Model) refresh() {
	m.page = m.manager.VisiblePage()
	m.moveCursor(m.cursor)
}

func (m *Model) moveCursor(i int) {
	m.cursor = min(max(i, 0), max(len(m.page.Entities)-1, 0))
	m.updateDetail()
}

func (m Model) current() (catalog.Course, bool) {
	if m.cursor < 0 || m.cursor >= len(m.page.Entities) {
		return catalog.Course{}, false
	}
	return m.page.Entities[m.cursor], true
}

func (m Model) isPending(id string) bool {
	return slices.Contains(m.page.Pending, id)
}

func (m Model) isSelected(id string) bool {
	return slices.Contains(m.page.Selection, id)
}

func (m Model) failure(id string) (collection.FailedWrite, bool) {
	for _, f := range m.page.Failures {
		if f.ID == id {
			return f, true
		}
	}
	return collection.FailedWrite{}, false
}

// visibleSelection returns the selected ids that are on the current page.
func (m Model) visibleSelection() []string {
	var out []string
	for _, c := range m.page.Entities {
		if m.isSelected(c.ID) {
			out = append(out, c.ID)
		}
	}
	return out
}

func (m *Model) savePageSize() {
	m.refresh()
	m.prefs.PageSize = m.page.Pagination.PageSize
	m.savePrefs()
}

func (m *Model) savePrefs() {
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.logger.Warn("save prefs failed", slog.String("error", err.Error()))
	}
}

// renderMain renders the header, the list and the footer line.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// Messages

type changedMsg struct{}

type clockMsg time.Time

type reloadDoneMsg struct{ err error }

// Commands

// waitForChange blocks on the manager's subscription channel. Notifications
// coalesce, so one message may stand for several state changes.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return changedMsg{}
	}
}

func clockCmd() tea.Cmd {
	return tea.Tick(ClockTick, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}

type reloader interface {
	Reload(ctx context.Context) error
}

func reloadCmd(ctx context.Context, r reloader) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, ReloadTimeout)
		defer cancel()
		return reloadDoneMsg{err: r.Reload(ctx)}
	}
}

// Run starts the Bubble Tea program and blocks until it exits or the
// context is cancelled.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
