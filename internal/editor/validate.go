package editor

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/five82/curator/internal/catalog"
	"github.com/five82/curator/internal/slug"
)

// Error keys for fields nested inside the course payload.
const (
	FieldMaxEnrollments   = "maxEnrollments"
	FieldDeadline         = "deadline"
	FieldShowcaseVideoURL = "showcaseVideoUrl"
)

// form is the validated projection of a draft. Tag names double as the keys
// of State.Errors.
type form struct {
	Title            string     `name:"title" validate:"required"`
	Slug             string     `name:"slug" validate:"required,slug"`
	Description      string     `name:"description" validate:"required"`
	Summary          string     `name:"summary" validate:"required"`
	EstimatedHours   float64    `name:"estimatedHours" validate:"gt=0"`
	MaxEnrollments   *int       `name:"maxEnrollments" validate:"omitempty,gt=0"`
	Deadline         *time.Time `name:"deadline" validate:"omitempty,future"`
	ShowcaseVideoURL string     `name:"showcaseVideoUrl" validate:"omitempty,url"`
}

func formOf(c catalog.Course) form {
	return form{
		Title:            strings.TrimSpace(c.Title),
		Slug:             c.Slug,
		Description:      strings.TrimSpace(c.Description),
		Summary:          strings.TrimSpace(c.Summary),
		EstimatedHours:   c.EstimatedHours,
		MaxEnrollments:   c.Enrollment.MaxEnrollments,
		Deadline:         c.Enrollment.Deadline,
		ShowcaseVideoURL: strings.TrimSpace(c.Media.ShowcaseVideoURL),
	}
}

var messages = map[string]string{
	"required": "is required",
	"slug":     "may only contain lowercase letters, digits and hyphens",
	"gt":       "must be greater than 0",
	"future":   "must be in the future",
	"url":      "must be a valid URL",
}

// newValidate builds a validator whose "future" rule reads now at
// validation time.
func newValidate(now func() time.Time) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("name")
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slug.Valid(fl.Field().String())
	})
	_ = v.RegisterValidation("future", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		return ok && t.After(now())
	})
	return v
}

// check validates c and returns field -> message. An empty map means valid.
func check(v *validator.Validate, c catalog.Course) map[string]string {
	out := map[string]string{}
	err := v.Struct(formOf(c))
	if err == nil {
		return out
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		out["form"] = err.Error()
		return out
	}
	for _, fe := range fieldErrs {
		msg, ok := messages[fe.Tag()]
		if !ok {
			msg = "is invalid"
		}
		out[fe.Field()] = msg
	}
	return out
}
