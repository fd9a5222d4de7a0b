package editor

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/five82/curator/internal/catalog"
	"github.com/five82/curator/internal/collection"
)

var (
	// ErrInvalid is returned by Commit while the form has validation errors.
	ErrInvalid = errors.New("editor: form is invalid")
	// ErrUnchanged is returned by Commit for an existing course with no edits.
	ErrUnchanged = errors.New("editor: nothing changed")
)

// Result is a committed edit, ready to hand to the collection manager.
type Result struct {
	// ID is "" for a new course.
	ID string
	// Course is the full value to create. Unused for updates.
	Course catalog.Course
	// Patch holds only the changed fields of an existing course.
	Patch catalog.CoursePatch
	At    time.Time
}

// Create reports whether the result creates a course.
func (r Result) Create() bool { return r.ID == "" }

// Mutation converts the result into a collection mutation.
func (r Result) Mutation() collection.Mutation[catalog.Course] {
	if r.Create() {
		return collection.Create(r.Course)
	}
	return collection.Update(r.PatchFunc())
}

// PatchFunc applies the changed fields on top of whatever value is current
// when the write is sent.
func (r Result) PatchFunc() collection.Patch[catalog.Course] {
	patch, at := r.Patch, r.At
	return func(c catalog.Course) catalog.Course {
		return catalog.Touch(patch.Apply(c), at)
	}
}

// Commit validates s once more against the current time and turns it into a
// Result. The editor instance should be dropped afterwards.
func (e *Editor) Commit(s State) (Result, error) {
	errs := check(e.v, s.Draft)
	if len(errs) > 0 {
		fields := slices.Sorted(maps.Keys(errs))
		return Result{}, fmt.Errorf("%w: %s", ErrInvalid, strings.Join(fields, ", "))
	}
	now := e.now()
	draft := normalize(s.Draft)

	if !s.existing {
		draft.ID = ""
		if draft.Status == "" {
			draft.Status = catalog.StatusDraft
		}
		draft.CreatedAt = now
		draft.UpdatedAt = now
		return Result{Course: draft, At: now}, nil
	}

	fields := changedFields(s.seed, draft)
	if len(fields) == 0 {
		return Result{}, ErrUnchanged
	}
	return Result{ID: s.seed.ID, Patch: patchFor(fields, draft), At: now}, nil
}

func normalize(c catalog.Course) catalog.Course {
	c = c.Clone()
	c.Title = strings.TrimSpace(c.Title)
	c.Description = strings.TrimSpace(c.Description)
	c.Summary = strings.TrimSpace(c.Summary)
	c.Media.ThumbnailURL = strings.TrimSpace(c.Media.ThumbnailURL)
	c.Media.ShowcaseVideoURL = strings.TrimSpace(c.Media.ShowcaseVideoURL)
	return c
}

// changedFields lists the editable fields that differ between a and b.
func changedFields(a, b catalog.Course) []string {
	var out []string
	add := func(changed bool, field string) {
		if changed {
			out = append(out, field)
		}
	}
	add(a.Title != b.Title, catalog.FieldTitle)
	add(a.Slug != b.Slug, catalog.FieldSlug)
	add(a.Description != b.Description, catalog.FieldDescription)
	add(a.Summary != b.Summary, catalog.FieldSummary)
	add(a.Category != b.Category, catalog.FieldCategory)
	add(a.Difficulty != b.Difficulty, catalog.FieldDifficulty)
	add(a.Media != b.Media, catalog.FieldMedia)
	add(!slices.Equal(a.Products, b.Products), catalog.FieldProducts)
	add(!sameEnrollment(a.Enrollment, b.Enrollment), catalog.FieldEnrollment)
	add(a.EstimatedHours != b.EstimatedHours, catalog.FieldEstimatedHours)
	add(!slices.Equal(a.Tags, b.Tags), catalog.FieldTags)
	add(a.Status != b.Status, catalog.FieldStatus)
	add(a.Price != b.Price, catalog.FieldPrice)
	return out
}

func sameEnrollment(a, b catalog.Enrollment) bool {
	return samePtr(a.MaxEnrollments, b.MaxEnrollments, func(x, y int) bool { return x == y }) &&
		samePtr(a.Deadline, b.Deadline, time.Time.Equal)
}

func samePtr[T any](a, b *T, eq func(T, T) bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return eq(*a, *b)
}

func patchFor(fields []string, c catalog.Course) catalog.CoursePatch {
	var p catalog.CoursePatch
	for _, f := range fields {
		switch f {
		case catalog.FieldTitle:
			p.Title = &c.Title
		case catalog.FieldSlug:
			p.Slug = &c.Slug
		case catalog.FieldDescription:
			p.Description = &c.Description
		case catalog.FieldSummary:
			p.Summary = &c.Summary
		case catalog.FieldCategory:
			p.Category = &c.Category
		case catalog.FieldDifficulty:
			p.Difficulty = &c.Difficulty
		case catalog.FieldMedia:
			p.Media = &c.Media
		case catalog.FieldProducts:
			p.Products, p.SetProducts = c.Products, true
		case catalog.FieldEnrollment:
			p.Enrollment = &c.Enrollment
		case catalog.FieldEstimatedHours:
			p.EstimatedHours = &c.EstimatedHours
		case catalog.FieldTags:
			p.Tags, p.SetTags = c.Tags, true
		case catalog.FieldStatus:
			p.Status = &c.Status
		case catalog.FieldPrice:
			p.Price = &c.Price
		}
	}
	return p
}
