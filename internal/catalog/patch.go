package catalog

import (
	"slices"
	"time"
)

// Field names shared by the editor, the filter engine and the CLI.
const (
	FieldTitle          = "title"
	FieldSlug           = "slug"
	FieldDescription    = "description"
	FieldSummary        = "summary"
	FieldCategory       = "category"
	FieldLevel          = "level"
	FieldDifficulty     = "difficulty"
	FieldInstructor     = "instructor"
	FieldMedia          = "media"
	FieldProducts       = "products"
	FieldEnrollment     = "enrollment"
	FieldEstimatedHours = "estimatedHours"
	FieldTags           = "tags"
	FieldStatus         = "status"
	FieldPrice          = "price"
	FieldRating         = "rating"
	FieldCreatedAt      = "createdAt"
	FieldUpdatedAt      = "updatedAt"
)

// CoursePatch carries only the fields an edit changed. Applying it on top of
// a newer server value keeps that value's other fields.
type CoursePatch struct {
	Title          *string
	Slug           *string
	Description    *string
	Summary        *string
	Category       *string
	Difficulty     *int
	Media          *Media
	Products       []string
	SetProducts    bool
	Enrollment     *Enrollment
	EstimatedHours *float64
	Tags           []string
	SetTags        bool
	Status         *Status
	Price          *float64
}

// Empty reports whether the patch changes nothing.
func (p CoursePatch) Empty() bool {
	return p.Title == nil && p.Slug == nil && p.Description == nil && p.Summary == nil &&
		p.Category == nil && p.Difficulty == nil && p.Media == nil && !p.SetProducts &&
		p.Enrollment == nil && p.EstimatedHours == nil && !p.SetTags && p.Status == nil &&
		p.Price == nil
}

// Apply returns a copy of c with the patch applied. c is not modified.
func (p CoursePatch) Apply(c Course) Course {
	out := c.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Slug != nil {
		out.Slug = *p.Slug
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Summary != nil {
		out.Summary = *p.Summary
	}
	if p.Category != nil {
		out.Category = *p.Category
	}
	if p.Difficulty != nil {
		out.Difficulty = *p.Difficulty
	}
	if p.Media != nil {
		out.Media = *p.Media
	}
	if p.SetProducts {
		out.Products = slices.Clone(p.Products)
	}
	if p.Enrollment != nil {
		out.Enrollment = Course{Enrollment: *p.Enrollment}.Clone().Enrollment
	}
	if p.EstimatedHours != nil {
		out.EstimatedHours = *p.EstimatedHours
	}
	if p.SetTags {
		out.Tags = slices.Clone(p.Tags)
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.Price != nil {
		out.Price = *p.Price
	}
	return out
}

// Touch stamps UpdatedAt, used for the optimistic view of an edit.
func Touch(c Course, now time.Time) Course {
	c.UpdatedAt = now
	return c
}
