package ui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/curator/internal/catalog"
	"github.com/five82/curator/internal/editor"
)

func setField(f *courseForm, name, value string) {
	f.field(name).input.SetValue(value)
	f.apply(name)
}

func newTestForm() *courseForm {
	ed := editor.New(editor.WithClock(func() time.Time { return testNow }))
	return newCourseForm(ed, ed.Blank())
}

func TestForm_TitleDrivesSlugUntilSlugEdited(t *testing.T) {
	f := newTestForm()

	for _, r := range "Hello World" {
		f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	if got := f.field(catalog.FieldSlug).input.Value(); got != "hello-world" {
		t.Fatalf("slug = %q, want hello-world", got)
	}

	setField(f, catalog.FieldSlug, "custom")
	setField(f, catalog.FieldTitle, "Something Else")
	if got := f.state.Draft.Slug; got != "custom" {
		t.Fatalf("slug after manual edit = %q, want custom", got)
	}
}

func TestForm_ParseErrorsKeepDraft(t *testing.T) {
	f := newTestForm()

	setField(f, catalog.FieldPrice, "12")
	setField(f, catalog.FieldPrice, "twelve")
	if f.errorFor(catalog.FieldPrice) == "" {
		t.Fatalf("no error for unparseable price")
	}
	if f.state.Draft.Price != 12 {
		t.Fatalf("Draft.Price = %v, want last good value 12", f.state.Draft.Price)
	}

	setField(f, catalog.FieldStatus, "live")
	if f.errorFor(catalog.FieldStatus) != errBadStatus.Error() {
		t.Fatalf("status error = %q", f.errorFor(catalog.FieldStatus))
	}

	if _, err := f.commit(); !errors.Is(err, editor.ErrInvalid) {
		t.Fatalf("commit error = %v, want ErrInvalid", err)
	}

	setField(f, catalog.FieldPrice, "")
	if f.errorFor(catalog.FieldPrice) != "" || f.state.Draft.Price != 0 {
		t.Fatalf("clearing price should clear its error and zero it")
	}
}

func TestForm_EnrollmentFields(t *testing.T) {
	f := newTestForm()

	setField(f, editor.FieldMaxEnrollments, "25")
	setField(f, editor.FieldDeadline, "2026-12-31")
	e := f.state.Draft.Enrollment
	if e.MaxEnrollments == nil || *e.MaxEnrollments != 25 {
		t.Fatalf("MaxEnrollments = %v, want 25", e.MaxEnrollments)
	}
	if e.Deadline == nil || e.Deadline.Format(deadlineLayout) != "2026-12-31" {
		t.Fatalf("Deadline = %v, want 2026-12-31", e.Deadline)
	}

	setField(f, editor.FieldDeadline, "2020-01-01")
	if f.errorFor(editor.FieldDeadline) == "" {
		t.Fatalf("past deadline should fail validation")
	}
	setField(f, editor.FieldDeadline, "not a date")
	if f.errorFor(editor.FieldDeadline) == "" {
		t.Fatalf("bad date should be a parse error")
	}

	setField(f, editor.FieldMaxEnrollments, "")
	if f.state.Draft.Enrollment.MaxEnrollments != nil {
		t.Fatalf("blank max seats should clear the limit")
	}
}

func TestForm_ListsAndMedia(t *testing.T) {
	f := newTestForm()

	setField(f, catalog.FieldTags, "go, testing, go")
	if got := f.state.Draft.Tags; len(got) != 2 || got[0] != "go" || got[1] != "testing" {
		t.Fatalf("Tags = %v, want [go testing]", got)
	}
	setField(f, editor.FieldShowcaseVideoURL, "not a url")
	if f.errorFor(editor.FieldShowcaseVideoURL) == "" {
		t.Fatalf("bad video URL should fail validation")
	}
	setField(f, fieldThumbnail, "https://cdn.example.com/t.png")
	if f.state.Draft.Media.ThumbnailURL != "https://cdn.example.com/t.png" || f.state.Draft.Media.ShowcaseVideoURL != "not a url" {
		t.Fatalf("Media = %+v, want both fields kept", f.state.Draft.Media)
	}
}

func TestForm_ResetRestoresOpenedValues(t *testing.T) {
	ed := editor.New(editor.WithClock(func() time.Time { return testNow }))
	f := newCourseForm(ed, ed.Open(catalog.Course{ID: "1", Title: "Go Basics", Slug: "go-basics", Price: 10}))

	setField(f, catalog.FieldTitle, "Changed")
	if !f.state.IsDirty(catalog.FieldTitle) {
		t.Fatalf("title should be dirty")
	}
	f.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	if got := f.field(catalog.FieldTitle).input.Value(); got != "Go Basics" {
		t.Fatalf("title input after reset = %q, want Go Basics", got)
	}
	if len(f.state.Dirty()) != 0 {
		t.Fatalf("Dirty after reset = %v, want none", f.state.Dirty())
	}
}

func TestForm_FocusWraps(t *testing.T) {
	f := newTestForm()
	f.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if f.focus != len(f.fields)-1 {
		t.Fatalf("focus = %d, want last field", f.focus)
	}
	f.Update(tea.KeyMsg{Type: tea.KeyTab})
	if f.focus != 0 {
		t.Fatalf("focus = %d, want 0", f.focus)
	}
}
