package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchMatchesCaseInsensitively(t *testing.T) {
	s := abc()
	s, _ = Reduce(s, FilterChanged{Patch: SearchFor("b")})

	ids := NewEvaluator(itemFields).Evaluate(s)
	assert.Equal(t, []string{"2"}, ids)

	win := Paginate(ids, s.Page(), s.PageSize())
	assert.Equal(t, 1, win.Meta.Page)
	assert.Equal(t, 1, win.Meta.TotalPages)
}

func TestEvaluateFiltersAndSorts(t *testing.T) {
	items := []item{
		{ID: "10", Title: "Go basics", Category: "dev", Price: 20, Tags: []string{"golang"}},
		{ID: "2", Title: "Watercolour", Category: "art", Price: 5},
		{ID: "3", Title: "Advanced Go", Category: "dev", Price: 40},
		{ID: "4", Title: "Sketching", Category: "Art", Price: 20, Tags: []string{"pencil"}},
	}

	tests := []struct {
		name string
		spec FilterSpec
		want []string
	}{
		{
			name: "no predicates orders numeric ids numerically",
			spec: FilterSpec{},
			want: []string{"2", "3", "4", "10"},
		},
		{
			name: "search looks at tags",
			spec: FilterSpec{}.With(SearchFor("PENCIL")),
			want: []string{"4"},
		},
		{
			name: "discrete predicate ignores case",
			spec: FilterSpec{}.With(FilterPatch{Equals: map[string]string{"category": "art"}}),
			want: []string{"2", "4"},
		},
		{
			name: "range is inclusive",
			spec: FilterSpec{}.With(FilterPatch{Ranges: map[string]Range{"price": Between(5, 20)}}),
			want: []string{"2", "4", "10"},
		},
		{
			name: "numeric sort breaks ties by id",
			spec: NewFilter(SortSpec{Key: "price"}),
			want: []string{"2", "4", "10", "3"},
		},
		{
			name: "descending sort keeps id tie-break ascending",
			spec: NewFilter(SortSpec{Key: "price", Dir: Desc}),
			want: []string{"3", "4", "10", "2"},
		},
		{
			name: "text sort",
			spec: NewFilter(SortSpec{Key: "title"}),
			want: []string{"3", "10", "4", "2"},
		},
		{
			name: "predicates combine",
			spec: NewFilter(SortSpec{Key: "title"}).With(FilterPatch{
				Equals: map[string]string{"category": "dev"},
				Ranges: map[string]Range{"price": AtLeast(30)},
			}),
			want: []string{"3"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(items, tt.spec, itemFields))
		})
	}
}

func TestIDTieBreakIgnoresInputOrder(t *testing.T) {
	ids := []string{"9", "10", "1a", "b", "07", "7"}
	want := []string{"07", "7", "9", "10", "1a", "b"}

	permutations := [][]int{
		{0, 1, 2, 3, 4, 5},
		{1, 2, 0, 5, 3, 4},
		{2, 0, 1, 4, 5, 3},
		{5, 4, 3, 2, 1, 0},
		{3, 5, 1, 0, 4, 2},
	}
	for _, sortKey := range []string{"", "price"} {
		spec := NewFilter(SortSpec{Key: sortKey, Dir: Desc})
		for _, perm := range permutations {
			items := make([]item, 0, len(perm))
			for _, i := range perm {
				items = append(items, item{ID: ids[i], Price: 1})
			}
			assert.Equal(t, want, Evaluate(items, spec, itemFields), "sort %q, order %v", sortKey, perm)
		}
	}
}

func TestCompareIDsIsTotal(t *testing.T) {
	ids := []string{"9", "10", "1a", "b", "07", "7", "-3", ""}
	for _, a := range ids {
		assert.Zero(t, compareIDs(a, a))
		for _, b := range ids {
			assert.Equal(t, -compareIDs(b, a), compareIDs(a, b), "antisymmetry %q %q", a, b)
			for _, c := range ids {
				if compareIDs(a, b) < 0 && compareIDs(b, c) < 0 {
					assert.Negative(t, compareIDs(a, c), "transitivity %q < %q < %q", a, b, c)
				}
			}
		}
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	items := []item{
		{ID: "1", Title: "beta", Price: 3},
		{ID: "2", Title: "alpha", Price: 3},
		{ID: "3", Title: "gamma", Price: 1},
		{ID: "4", Title: "alphabet", Price: 9},
	}
	spec := NewFilter(SortSpec{Key: "price", Dir: Desc}).With(SearchFor("a"))

	first := Evaluate(items, spec, itemFields)
	byID := make(map[string]item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	again := make([]item, 0, len(first))
	for _, id := range first {
		again = append(again, byID[id])
	}
	assert.Equal(t, first, Evaluate(again, spec, itemFields))
}

func TestFilterSpecEquality(t *testing.T) {
	a := NewFilter(SortSpec{Key: "title"}).With(FilterPatch{
		Equals: map[string]string{"category": "dev", "level": "beginner"},
		Ranges: map[string]Range{"price": AtMost(10)},
	})
	b := NewFilter(SortSpec{Key: "title", Dir: Asc}).With(FilterPatch{
		Ranges: map[string]Range{"price": AtMost(10)},
		Equals: map[string]string{"level": "beginner", "category": "dev"},
	})
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Key(), b.Key())

	c := b.With(FilterPatch{Equals: map[string]string{"level": AllValues}})
	assert.False(t, a.Equal(c))
	assert.Empty(t, c.Equals("level"))
	assert.Equal(t, "beginner", a.Equals("level"), "With must not modify its receiver")

	r, ok := a.Range("price")
	require.True(t, ok)
	assert.Equal(t, 10.0, r.Max)
	_, ok = a.With(FilterPatch{Ranges: map[string]Range{"price": {}}}).Range("price")
	assert.False(t, ok)
}

func TestParseSortDir(t *testing.T) {
	assert.Equal(t, Desc, ParseSortDir(" DESC "))
	assert.Equal(t, Asc, ParseSortDir("asc"))
	assert.Equal(t, Asc, ParseSortDir("sideways"))
}

func TestEvaluatorMemoises(t *testing.T) {
	ev := NewEvaluator(itemFields)
	s := abc()

	ev.Evaluate(s)
	ev.Evaluate(s)
	assert.Equal(t, 1, ev.Runs())

	s, _ = Reduce(s, SelectionToggled{ID: "1"})
	ev.Evaluate(s)
	assert.Equal(t, 1, ev.Runs(), "selection does not affect the ordered ids")

	s, _ = Reduce(s, Apply[item]{ID: "1", Mutation: Update(setTitle("Z"))})
	ev.Evaluate(s)
	assert.Equal(t, 2, ev.Runs())

	s, _ = Reduce(s, SortChanged{Sort: SortSpec{Key: "title"}})
	assert.Equal(t, []string{"2", "3", "1"}, ev.Evaluate(s))
	assert.Equal(t, 3, ev.Runs())
}
