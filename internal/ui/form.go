package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/curator/internal/catalog"
	"github.com/five82/curator/internal/editor"
)

const (
	fieldThumbnail = "thumbnailUrl"
	deadlineLayout = "2006-01-02"
)

var formLayout = []struct{ name, label, placeholder string }{
	{catalog.FieldTitle, "Title", ""},
	{catalog.FieldSlug, "Slug", "follows the title until edited"},
	{catalog.FieldSummary, "Summary", ""},
	{catalog.FieldDescription, "Description", ""},
	{catalog.FieldCategory, "Category", ""},
	{catalog.FieldDifficulty, "Difficulty", "1-5"},
	{catalog.FieldStatus, "Status", "draft, published or archived"},
	{catalog.FieldPrice, "Price", "0 for free"},
	{catalog.FieldEstimatedHours, "Hours", "estimated hours"},
	{catalog.FieldTags, "Tags", "comma separated"},
	{catalog.FieldProducts, "Products", "comma separated"},
	{editor.FieldMaxEnrollments, "Max seats", "blank for unlimited"},
	{editor.FieldDeadline, "Deadline", "YYYY-MM-DD"},
	{fieldThumbnail, "Thumbnail", "https://"},
	{editor.FieldShowcaseVideoURL, "Video", "https://"},
}

type formField struct {
	name  string
	label string
	input textinput.Model
}

// courseForm binds one editor.State to a column of text inputs. Every edit
// becomes an editor event; inputs that cannot be parsed keep their error
// locally and leave the draft untouched.
type courseForm struct {
	editor    *editor.Editor
	state     editor.State
	fields    []formField
	focus     int
	parseErrs map[string]string
	err       string
}

func newCourseForm(ed *editor.Editor, s editor.State) *courseForm {
	f := &courseForm{editor: ed, parseErrs: map[string]string{}}
	for _, l := range formLayout {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = l.placeholder
		in.CharLimit = 2000
		f.fields = append(f.fields, formField{name: l.name, label: l.label, input: in})
	}
	f.load(s)
	f.fields[0].input.Focus()
	return f
}

// load replaces the form state and rewrites every input from the draft.
func (f *courseForm) load(s editor.State) {
	f.state = s
	f.parseErrs = map[string]string{}
	for i := range f.fields {
		f.fields[i].input.SetValue(fieldValue(f.fields[i].name, s.Draft))
	}
}

func fieldValue(name string, c catalog.Course) string {
	switch name {
	case catalog.FieldTitle:
		return c.Title
	case catalog.FieldSlug:
		return c.Slug
	case catalog.FieldSummary:
		return c.Summary
	case catalog.FieldDescription:
		return c.Description
	case catalog.FieldCategory:
		return c.Category
	case catalog.FieldDifficulty:
		if c.Difficulty == 0 {
			return ""
		}
		return strconv.Itoa(c.Difficulty)
	case catalog.FieldStatus:
		return string(c.Status)
	case catalog.FieldPrice:
		return formatNumber(c.Price)
	case catalog.FieldEstimatedHours:
		return formatNumber(c.EstimatedHours)
	case catalog.FieldTags:
		return strings.Join(c.Tags, ", ")
	case catalog.FieldProducts:
		return strings.Join(c.Products, ", ")
	case editor.FieldMaxEnrollments:
		if c.Enrollment.MaxEnrollments == nil {
			return ""
		}
		return strconv.Itoa(*c.Enrollment.MaxEnrollments)
	case editor.FieldDeadline:
		if c.Enrollment.Deadline == nil {
			return ""
		}
		return c.Enrollment.Deadline.Format(deadlineLayout)
	case fieldThumbnail:
		return c.Media.ThumbnailURL
	case editor.FieldShowcaseVideoURL:
		return c.Media.ShowcaseVideoURL
	default:
		return ""
	}
}

func formatNumber(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (f *courseForm) field(name string) *formField {
	for i := range f.fields {
		if f.fields[i].name == name {
			return &f.fields[i]
		}
	}
	return nil
}

func (f *courseForm) setFocus(i int) {
	n := len(f.fields)
	i = (i%n + n) % n
	f.fields[f.focus].input.Blur()
	f.focus = i
	f.fields[f.focus].input.Focus()
}

// Update routes a key to the focused input and applies the resulting edit.
func (f *courseForm) Update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "down":
		f.setFocus(f.focus + 1)
		return nil
	case "shift+tab", "up":
		f.setFocus(f.focus - 1)
		return nil
	case "ctrl+r":
		f.load(f.editor.Discard(f.state))
		f.err = ""
		return nil
	}

	cur := &f.fields[f.focus]
	before := cur.input.Value()
	var cmd tea.Cmd
	cur.input, cmd = cur.input.Update(msg)
	if cur.input.Value() != before {
		f.apply(cur.name)
	}
	return cmd
}

// apply turns the current value of the named input into an editor event.
func (f *courseForm) apply(name string) {
	delete(f.parseErrs, name)
	f.err = ""
	ev, err := f.eventFor(name)
	if err != nil {
		f.parseErrs[name] = err.Error()
		return
	}
	f.state = f.editor.Reduce(f.state, ev)
	if name == catalog.FieldTitle && !f.state.ManualSlugEdit {
		if slugField := f.field(catalog.FieldSlug); slugField != nil {
			slugField.input.SetValue(f.state.Draft.Slug)
		}
	}
}

var errBadStatus = errors.New("must be draft, published or archived")

func (f *courseForm) eventFor(name string) (editor.Event, error) {
	raw := f.field(name).input.Value()
	v := strings.TrimSpace(raw)
	switch name {
	case catalog.FieldTitle:
		return editor.SetTitle{Title: raw}, nil
	case catalog.FieldSlug:
		return editor.SetSlug{Slug: v}, nil
	case catalog.FieldSummary:
		return editor.SetSummary{Summary: raw}, nil
	case catalog.FieldDescription:
		return editor.SetDescription{Description: raw}, nil
	case catalog.FieldCategory:
		return editor.SetCategory{Category: v}, nil
	case catalog.FieldDifficulty:
		n, err := parseInt(v)
		if err != nil {
			return nil, err
		}
		return editor.SetDifficulty{Difficulty: n}, nil
	case catalog.FieldStatus:
		switch s := catalog.Status(strings.ToLower(v)); s {
		case catalog.StatusDraft, catalog.StatusPublished, catalog.StatusArchived:
			return editor.SetStatus{Status: s}, nil
		default:
			return nil, errBadStatus
		}
	case catalog.FieldPrice:
		p, err := parseFloat(v)
		if err != nil {
			return nil, err
		}
		return editor.SetPrice{Price: p}, nil
	case catalog.FieldEstimatedHours:
		h, err := parseFloat(v)
		if err != nil {
			return nil, err
		}
		return editor.SetEstimatedHours{Hours: h}, nil
	case catalog.FieldTags:
		return editor.SetTags{Tags: splitList(v)}, nil
	case catalog.FieldProducts:
		return editor.SetProducts{Products: splitList(v)}, nil
	case editor.FieldMaxEnrollments:
		e := f.state.Draft.Enrollment
		if v == "" {
			e.MaxEnrollments = nil
		} else {
			n, err := parseInt(v)
			if err != nil {
				return nil, err
			}
			e.MaxEnrollments = &n
		}
		return editor.SetEnrollment{Enrollment: e}, nil
	case editor.FieldDeadline:
		e := f.state.Draft.Enrollment
		if v == "" {
			e.Deadline = nil
		} else {
			d, err := time.ParseInLocation(deadlineLayout, v, time.Local)
			if err != nil {
				return nil, fmt.Errorf("must be a date like %s", deadlineLayout)
			}
			e.Deadline = &d
		}
		return editor.SetEnrollment{Enrollment: e}, nil
	case fieldThumbnail:
		m := f.state.Draft.Media
		m.ThumbnailURL = v
		return editor.SetMedia{Media: m}, nil
	case editor.FieldShowcaseVideoURL:
		m := f.state.Draft.Media
		m.ShowcaseVideoURL = v
		return editor.SetMedia{Media: m}, nil
	default:
		return nil, fmt.Errorf("unknown field %q", name)
	}
}

func parseInt(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New("must be a whole number")
	}
	return n, nil
}

func parseFloat(v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.New("must be a number")
	}
	return n, nil
}

// errorFor returns the message shown under a field: parse problems first,
// then validation.
func (f *courseForm) errorFor(name string) string {
	if msg := f.parseErrs[name]; msg != "" {
		return msg
	}
	return f.state.Error(name)
}

// commit validates once more and returns the edit ready for the manager.
func (f *courseForm) commit() (editor.Result, error) {
	if len(f.parseErrs) > 0 {
		return editor.Result{}, fmt.Errorf("%w: fix the highlighted fields", editor.ErrInvalid)
	}
	res, err := f.editor.Commit(f.state)
	if err != nil {
		f.err = err.Error()
	}
	return res, err
}

// render draws the form as a bordered modal.
func (f *courseForm) render(th Theme, width int) string {
	styles := th.Styles()
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(th.Muted)).Width(12)
	focusLabel := labelStyle.Foreground(lipgloss.Color(th.Accent)).Bold(true)
	dirtyMark := styles.WarningText.Render("*")

	title := "New course"
	if f.state.Existing() {
		title = "Edit " + truncate(f.state.Draft.Title, 40)
	}

	inputWidth := max(width-20, 20)
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(title))
	b.WriteString("\n\n")
	for i := range f.fields {
		fld := &f.fields[i]
		fld.input.Width = inputWidth
		label := labelStyle
		if i == f.focus {
			label = focusLabel
		}
		mark := " "
		if f.state.IsDirty(fld.name) {
			mark = dirtyMark
		}
		b.WriteString(label.Render(fld.label))
		b.WriteString(mark)
		b.WriteString(" ")
		b.WriteString(fld.input.View())
		b.WriteString("\n")
		if msg := f.errorFor(fld.name); msg != "" {
			b.WriteString(labelStyle.Render(""))
			b.WriteString("  ")
			b.WriteString(styles.DangerText.Render(msg))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	if f.err != "" {
		b.WriteString(styles.DangerText.Render(f.err))
		b.WriteString("\n")
	}
	valid := ternary(f.state.IsValid && len(f.parseErrs) == 0, "valid", "invalid")
	validStyle := styles.SuccessText
	if valid == "invalid" {
		validStyle = styles.DangerText
	}
	b.WriteString(validStyle.Render(valid))
	b.WriteString(styles.FaintText.Render("  tab next · ctrl+s save · ctrl+r reset · esc cancel"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(th.BorderFocus)).
		Padding(1, 2).
		Width(width).
		Render(b.String())
}
