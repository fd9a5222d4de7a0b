// Package editor holds the form state for creating or editing one course.
//
// The editor is a reducer: every change is an Event passed to Editor.Reduce,
// which returns a new State. Validation runs after every event that touches
// a field; SetErrors only replaces the error map (for example with errors the
// server reported) and Reset returns to the state the editor started from.
//
// While the user has not typed a slug, the slug follows the title. The first
// SetSlug freezes it for the rest of the editor's life.
package editor

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/five82/curator/internal/catalog"
	"github.com/five82/curator/internal/slug"
)

// Event is an editor state transition.
type Event interface {
	editorEvent()
}

type (
	SetTitle          struct{ Title string }
	SetSlug           struct{ Slug string }
	SetDescription    struct{ Description string }
	SetSummary        struct{ Summary string }
	SetCategory       struct{ Category string }
	SetDifficulty     struct{ Difficulty int }
	SetMedia          struct{ Media catalog.Media }
	SetProducts       struct{ Products []string }
	SetEnrollment     struct{ Enrollment catalog.Enrollment }
	SetEstimatedHours struct{ Hours float64 }
	SetTags           struct{ Tags []string }
	SetStatus         struct{ Status catalog.Status }
	SetPrice          struct{ Price float64 }
	// SetErrors replaces the error map without re-validating.
	SetErrors struct{ Errors map[string]string }
	// Reset discards every change since the editor was opened.
	Reset struct{}
)

func (SetTitle) editorEvent()          {}
func (SetSlug) editorEvent()           {}
func (SetDescription) editorEvent()    {}
func (SetSummary) editorEvent()        {}
func (SetCategory) editorEvent()       {}
func (SetDifficulty) editorEvent()     {}
func (SetMedia) editorEvent()          {}
func (SetProducts) editorEvent()       {}
func (SetEnrollment) editorEvent()     {}
func (SetEstimatedHours) editorEvent() {}
func (SetTags) editorEvent()           {}
func (SetStatus) editorEvent()         {}
func (SetPrice) editorEvent()          {}
func (SetErrors) editorEvent()         {}
func (Reset) editorEvent()             {}

// State is one editor instance. Draft holds the current form values.
type State struct {
	Draft          catalog.Course
	ManualSlugEdit bool
	Errors         map[string]string
	IsValid        bool

	seed     catalog.Course
	existing bool
	manual0  bool
	dirty    []string
}

// Existing reports whether the editor edits a stored course rather than
// creating one.
func (s State) Existing() bool { return s.existing }

// ID returns the id of the course being edited, "" for a new one.
func (s State) ID() string {
	if !s.existing {
		return ""
	}
	return s.seed.ID
}

// Dirty returns the fields that differ from the value the editor opened with.
func (s State) Dirty() []string { return slices.Clone(s.dirty) }

// IsDirty reports whether field was changed.
func (s State) IsDirty(field string) bool { return slices.Contains(s.dirty, field) }

// Error returns the validation message for field, if any.
func (s State) Error(field string) string { return s.Errors[field] }

// Editor carries the dependencies Reduce needs. It holds no form state and
// may be shared by any number of editor instances.
type Editor struct {
	now   func() time.Time
	slugs *slug.Slugifier
	v     *validator.Validate
}

// Option configures an Editor.
type Option func(*Editor)

// WithClock sets the time source used by deadline validation and commit
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Editor) { e.now = now }
}

// WithSlugifier memoises slug derivation through s.
func WithSlugifier(s *slug.Slugifier) Option {
	return func(e *Editor) { e.slugs = s }
}

// New creates an Editor.
func New(opts ...Option) *Editor {
	e := &Editor{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	e.v = newValidate(func() time.Time { return e.now() })
	return e
}

// Blank opens an editor for a new course.
func (e *Editor) Blank() State {
	return e.open(catalog.Course{Status: catalog.StatusDraft}, false, false)
}

// Open opens an editor seeded from an existing course. A stored slug that
// differs from the one its title would produce counts as manually edited.
func (e *Editor) Open(c catalog.Course) State {
	manual := c.Slug != "" && c.Slug != e.slugs.Slug(c.Title)
	return e.open(c.Clone(), true, manual)
}

func (e *Editor) open(seed catalog.Course, existing, manual bool) State {
	s := State{
		Draft:          seed.Clone(),
		ManualSlugEdit: manual,
		seed:           seed,
		existing:       existing,
		manual0:        manual,
	}
	return e.validate(s)
}

// Reduce applies ev to s. s is not modified.
func (e *Editor) Reduce(s State, ev Event) State {
	d := s.Draft.Clone()
	switch ev := ev.(type) {
	case SetTitle:
		d.Title = ev.Title
		if !s.ManualSlugEdit {
			d.Slug = e.slugs.Slug(ev.Title)
		}
	case SetSlug:
		d.Slug = ev.Slug
		s.ManualSlugEdit = true
	case SetDescription:
		d.Description = ev.Description
	case SetSummary:
		d.Summary = ev.Summary
	case SetCategory:
		d.Category = strings.TrimSpace(ev.Category)
	case SetDifficulty:
		d.Difficulty = ev.Difficulty
	case SetMedia:
		d.Media = ev.Media
	case SetProducts:
		d.Products = cleanList(ev.Products)
	case SetEnrollment:
		d.Enrollment = catalog.Course{Enrollment: ev.Enrollment}.Clone().Enrollment
	case SetEstimatedHours:
		d.EstimatedHours = ev.Hours
	case SetTags:
		d.Tags = cleanList(ev.Tags)
	case SetStatus:
		d.Status = ev.Status
	case SetPrice:
		d.Price = ev.Price
	case SetErrors:
		s.Errors = maps.Clone(ev.Errors)
		if s.Errors == nil {
			s.Errors = map[string]string{}
		}
		s.IsValid = len(s.Errors) == 0
		return s
	case Reset:
		return e.open(s.seed, s.existing, s.manual0)
	default:
		return s
	}
	s.Draft = d
	s.dirty = changedFields(s.seed, d)
	return e.validate(s)
}

// Discard returns the editor to the state it was opened with.
func (e *Editor) Discard(s State) State {
	return e.Reduce(s, Reset{})
}

func (e *Editor) validate(s State) State {
	s.Errors = check(e.v, s.Draft)
	s.IsValid = len(s.Errors) == 0
	return s
}

func cleanList(in []string) []string {
	var out []string
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
