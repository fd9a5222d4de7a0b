package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/curator/internal/collection"
)

func ptr[T any](v T) *T { return &v }

func sample() Course {
	deadline := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	return Course{
		ID:         "1",
		Title:      "Go Basics",
		Slug:       "go-basics",
		Category:   "backend",
		Difficulty: 2,
		Tags:       []string{"go", "intro"},
		Products:   []string{"pro"},
		Enrollment: Enrollment{MaxEnrollments: ptr(30), Deadline: &deadline},
		Status:     StatusPublished,
		Price:      19.5,
		Rating:     4.2,
		UpdatedAt:  time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestClone_IsDeep(t *testing.T) {
	c := sample()
	cp := c.Clone()

	cp.Tags[0] = "rust"
	cp.Products[0] = "free"
	*cp.Enrollment.MaxEnrollments = 99
	*cp.Enrollment.Deadline = time.Time{}

	assert.Equal(t, []string{"go", "intro"}, c.Tags)
	assert.Equal(t, []string{"pro"}, c.Products)
	assert.Equal(t, 30, *c.Enrollment.MaxEnrollments)
	assert.False(t, c.Enrollment.Deadline.IsZero())
}

func TestWithID(t *testing.T) {
	c := sample()
	got := WithID(c, "42")
	assert.Equal(t, "42", got.ID)
	assert.Equal(t, "1", c.ID)
	assert.Equal(t, "42", got.EntityID())
}

func TestParseStatus(t *testing.T) {
	tests := map[string]Status{
		"published":  StatusPublished,
		" ARCHIVED ": StatusArchived,
		"draft":      StatusDraft,
		"":           StatusDraft,
		"live":       StatusDraft,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseStatus(in), "ParseStatus(%q)", in)
	}
}

func TestCoursePatch_ApplyTouchesOnlySetFields(t *testing.T) {
	base := sample()
	p := CoursePatch{
		Title:   ptr("Go Deep Dive"),
		Tags:    []string{"go"},
		SetTags: true,
		Status:  ptr(StatusArchived),
	}

	got := p.Apply(base)

	assert.Equal(t, "Go Deep Dive", got.Title)
	assert.Equal(t, []string{"go"}, got.Tags)
	assert.Equal(t, StatusArchived, got.Status)
	assert.Equal(t, base.Slug, got.Slug)
	assert.Equal(t, base.Price, got.Price)
	assert.Equal(t, base.Products, got.Products)

	assert.Equal(t, "Go Basics", base.Title, "base must not change")
	assert.Equal(t, []string{"go", "intro"}, base.Tags)
}

func TestCoursePatch_ClearsListsAndEnrollment(t *testing.T) {
	base := sample()
	p := CoursePatch{SetProducts: true, Enrollment: &Enrollment{}}

	got := p.Apply(base)

	assert.Empty(t, got.Products)
	assert.Nil(t, got.Enrollment.MaxEnrollments)
	assert.Nil(t, got.Enrollment.Deadline)
	assert.NotNil(t, base.Enrollment.MaxEnrollments)
}

func TestCoursePatch_Empty(t *testing.T) {
	assert.True(t, CoursePatch{}.Empty())
	assert.False(t, CoursePatch{SetTags: true}.Empty())
	assert.False(t, CoursePatch{Price: ptr(0.0)}.Empty())
}

func TestTouch(t *testing.T) {
	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, now, Touch(sample(), now).UpdatedAt)
}

func TestFields_SearchFieldSelection(t *testing.T) {
	f := Fields([]string{" title ", "bogus"})
	assert.Equal(t, []string{FieldTitle}, f.SearchFields)

	f = Fields(nil)
	assert.Equal(t, DefaultSearchFields, f.SearchFields)

	f = Fields([]string{"bogus"})
	assert.Equal(t, DefaultSearchFields, f.SearchFields)
}

func TestFields_Accessors(t *testing.T) {
	f := Fields(nil)
	c := sample()

	assert.Equal(t, []string{"go", "intro"}, f.Text(c, FieldTags))
	assert.Equal(t, []string{"published"}, f.Text(c, FieldStatus))
	assert.Equal(t, []string{"2"}, f.Text(c, FieldDifficulty))
	assert.Nil(t, f.Text(c, "unknown"))

	v, ok := f.Number(c, FieldPrice)
	require.True(t, ok)
	assert.Equal(t, 19.5, v)

	v, ok = f.Number(c, FieldUpdatedAt)
	require.True(t, ok)
	assert.Equal(t, float64(c.UpdatedAt.Unix()), v)

	_, ok = f.Number(c, FieldCreatedAt)
	assert.False(t, ok, "zero createdAt has no numeric value")

	_, ok = f.Number(c, FieldTitle)
	assert.False(t, ok)
}

func TestFields_DriveEvaluation(t *testing.T) {
	a := sample()
	b := sample()
	b.ID, b.Title, b.Category, b.Price, b.Tags = "2", "CSS Layout", "frontend", 5, []string{"css"}
	c := sample()
	c.ID, c.Title, c.Price = "3", "Advanced Go", 40

	spec := collection.NewFilter(collection.SortSpec{Key: FieldPrice, Dir: collection.Desc}).
		With(collection.FilterPatch{
			Search: ptr("go"),
			Equals: map[string]string{FieldCategory: "backend"},
		})

	got := collection.Evaluate([]Course{a, b, c}, spec, Fields(nil))
	assert.Equal(t, []string{"3", "1"}, got)
}
