package catalog

import (
	"strconv"
	"strings"

	"github.com/five82/curator/internal/collection"
)

// DefaultSearchFields are searched when the configuration names none.
var DefaultSearchFields = []string{FieldTitle, FieldDescription, FieldTags}

// SortKeys lists the keys the UI cycles through, in order.
var SortKeys = []string{"", FieldTitle, FieldUpdatedAt, FieldPrice, FieldRating, FieldDifficulty}

// Fields returns the accessors the collection engine uses for courses.
// Unknown names in searchFields are ignored.
func Fields(searchFields []string) collection.Fields[Course] {
	var active []string
	for _, f := range searchFields {
		f = strings.TrimSpace(f)
		if _, ok := textFields[f]; ok {
			active = append(active, f)
		}
	}
	if len(active) == 0 {
		active = DefaultSearchFields
	}
	return collection.Fields[Course]{
		Text:         courseText,
		Number:       courseNumber,
		SearchFields: active,
	}
}

var textFields = map[string]struct{}{
	FieldTitle: {}, FieldSlug: {}, FieldDescription: {}, FieldSummary: {},
	FieldCategory: {}, FieldLevel: {}, FieldInstructor: {}, FieldTags: {},
	FieldStatus: {}, FieldProducts: {},
}

func courseText(c Course, field string) []string {
	switch field {
	case FieldTitle:
		return []string{c.Title}
	case FieldSlug:
		return []string{c.Slug}
	case FieldDescription:
		return []string{c.Description}
	case FieldSummary:
		return []string{c.Summary}
	case FieldCategory:
		return []string{c.Category}
	case FieldLevel:
		return []string{c.Level}
	case FieldInstructor:
		return []string{c.Instructor}
	case FieldStatus:
		return []string{string(c.Status)}
	case FieldTags:
		return c.Tags
	case FieldProducts:
		return c.Products
	case FieldDifficulty:
		return []string{strconv.Itoa(c.Difficulty)}
	default:
		return nil
	}
}

func courseNumber(c Course, field string) (float64, bool) {
	switch field {
	case FieldPrice:
		return c.Price, true
	case FieldRating:
		return c.Rating, true
	case FieldDifficulty:
		return float64(c.Difficulty), true
	case FieldEstimatedHours:
		return c.EstimatedHours, true
	case FieldCreatedAt:
		return timeNumber(c.CreatedAt.Unix(), c.CreatedAt.IsZero())
	case FieldUpdatedAt:
		return timeNumber(c.UpdatedAt.Unix(), c.UpdatedAt.IsZero())
	default:
		return 0, false
	}
}

func timeNumber(unix int64, zero bool) (float64, bool) {
	if zero {
		return 0, false
	}
	return float64(unix), true
}
