package collection

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// SortDir is the sort direction.
type SortDir string

const (
	Asc  SortDir = "asc"
	Desc SortDir = "desc"
)

// ParseSortDir accepts "asc"/"desc" in any case; anything else is ascending.
func ParseSortDir(s string) SortDir {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

// SortSpec orders results by Key. An empty Key orders by id.
type SortSpec struct {
	Key string
	Dir SortDir
}

// Range bounds a numeric field. Bounds are inclusive; an unset bound is open.
type Range struct {
	Min, Max       float64
	HasMin, HasMax bool
}

// AtLeast matches values >= v (e.g. a rating threshold).
func AtLeast(v float64) Range { return Range{Min: v, HasMin: true} }

// AtMost matches values <= v.
func AtMost(v float64) Range { return Range{Max: v, HasMax: true} }

// Between matches lo <= value <= hi.
func Between(lo, hi float64) Range { return Range{Min: lo, Max: hi, HasMin: true, HasMax: true} }

func (r Range) contains(v float64) bool {
	if r.HasMin && v < r.Min {
		return false
	}
	if r.HasMax && v > r.Max {
		return false
	}
	return true
}

func (r Range) open() bool { return !r.HasMin && !r.HasMax }

// AllValues is the discrete predicate value meaning "no constraint".
const AllValues = "all"

// FilterSpec is an immutable description of which entities are visible and
// in what order. Use With/WithSort to derive new specs.
type FilterSpec struct {
	Search string
	equals map[string]string
	ranges map[string]Range
	Sort   SortSpec
}

// NewFilter returns a spec with only a sort set.
func NewFilter(sort SortSpec) FilterSpec {
	return FilterSpec{Sort: normalizeSort(sort)}
}

// Equals returns the discrete predicate for field, or "" when unset.
func (f FilterSpec) Equals(field string) string { return f.equals[field] }

// Range returns the numeric predicate for field.
func (f FilterSpec) Range(field string) (Range, bool) {
	r, ok := f.ranges[field]
	return r, ok
}

// FilterPatch is a partial update to a FilterSpec. Nil/absent members leave
// the current value alone.
type FilterPatch struct {
	Search *string
	// Equals sets discrete predicates; "" or "all" removes one.
	Equals map[string]string
	// Ranges sets numeric predicates; an open Range removes one.
	Ranges map[string]Range
}

// SearchFor is a convenience for a patch that only changes the search text.
func SearchFor(q string) FilterPatch { return FilterPatch{Search: &q} }

// With returns a copy of f with patch applied.
func (f FilterSpec) With(patch FilterPatch) FilterSpec {
	next := f
	if patch.Search != nil {
		next.Search = strings.TrimSpace(*patch.Search)
	}
	if len(patch.Equals) > 0 {
		next.equals = maps.Clone(f.equals)
		if next.equals == nil {
			next.equals = make(map[string]string)
		}
		for field, value := range patch.Equals {
			value = strings.TrimSpace(value)
			if value == "" || strings.EqualFold(value, AllValues) {
				delete(next.equals, field)
				continue
			}
			next.equals[field] = value
		}
	}
	if len(patch.Ranges) > 0 {
		next.ranges = maps.Clone(f.ranges)
		if next.ranges == nil {
			next.ranges = make(map[string]Range)
		}
		for field, r := range patch.Ranges {
			if r.open() {
				delete(next.ranges, field)
				continue
			}
			next.ranges[field] = r
		}
	}
	return next
}

// WithSort returns a copy of f with a new sort.
func (f FilterSpec) WithSort(s SortSpec) FilterSpec {
	next := f
	next.Sort = normalizeSort(s)
	return next
}

// Equal reports whether every field of f and o matches.
func (f FilterSpec) Equal(o FilterSpec) bool {
	return f.Search == o.Search &&
		f.Sort == o.Sort &&
		maps.Equal(f.equals, o.equals) &&
		maps.Equal(f.ranges, o.ranges)
}

// Key returns a canonical string for f, stable across map ordering.
func (f FilterSpec) Key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "q=%q;sort=%s:%s", strings.ToLower(f.Search), f.Sort.Key, f.Sort.Dir)
	for _, field := range slices.Sorted(maps.Keys(f.equals)) {
		fmt.Fprintf(&b, ";%s=%q", field, f.equals[field])
	}
	for _, field := range slices.Sorted(maps.Keys(f.ranges)) {
		r := f.ranges[field]
		fmt.Fprintf(&b, ";%s~", field)
		if r.HasMin {
			b.WriteString(strconv.FormatFloat(r.Min, 'g', -1, 64))
		}
		b.WriteByte(':')
		if r.HasMax {
			b.WriteString(strconv.FormatFloat(r.Max, 'g', -1, 64))
		}
	}
	return b.String()
}

func normalizeSort(s SortSpec) SortSpec {
	s.Key = strings.TrimSpace(s.Key)
	if s.Dir != Desc {
		s.Dir = Asc
	}
	return s
}

// Fields tells the engine how to read entity fields. The engine never looks
// at an entity except through these accessors and EntityID.
type Fields[E any] struct {
	// Text returns the string values of field (several for tag-like fields).
	Text func(e E, field string) []string
	// Number returns the numeric value of field, if it has one.
	Number func(e E, field string) (float64, bool)
	// SearchFields are the text fields the free-text search looks at.
	SearchFields []string
}

// Evaluate returns the ids of entities matching spec, in sorted order.
// Ties (and an empty sort key) are broken by id.
func Evaluate[E Entity](entities []E, spec FilterSpec, fields Fields[E]) []string {
	query := strings.ToLower(spec.Search)
	matched := make([]E, 0, len(entities))
	for _, e := range entities {
		if matches(e, spec, query, fields) {
			matched = append(matched, e)
		}
	}

	slices.SortStableFunc(matched, func(a, b E) int {
		c := compareBy(a, b, spec.Sort.Key, fields)
		if spec.Sort.Dir == Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return compareIDs(a.EntityID(), b.EntityID())
	})

	ids := make([]string, len(matched))
	for i, e := range matched {
		ids[i] = e.EntityID()
	}
	return ids
}

func matches[E Entity](e E, spec FilterSpec, query string, fields Fields[E]) bool {
	if query != "" && !containsText(e, query, fields) {
		return false
	}
	for field, want := range spec.equals {
		if fields.Text == nil || !slices.ContainsFunc(fields.Text(e, field), func(v string) bool {
			return strings.EqualFold(v, want)
		}) {
			return false
		}
	}
	for field, r := range spec.ranges {
		if fields.Number == nil {
			return false
		}
		v, ok := fields.Number(e, field)
		if !ok || !r.contains(v) {
			return false
		}
	}
	return true
}

func containsText[E Entity](e E, query string, fields Fields[E]) bool {
	if fields.Text == nil {
		return false
	}
	for _, field := range fields.SearchFields {
		for _, v := range fields.Text(e, field) {
			if strings.Contains(strings.ToLower(v), query) {
				return true
			}
		}
	}
	return false
}

func compareBy[E Entity](a, b E, key string, fields Fields[E]) int {
	if key == "" {
		return 0
	}
	if fields.Number != nil {
		av, aok := fields.Number(a, key)
		bv, bok := fields.Number(b, key)
		if aok || bok {
			switch {
			case !aok:
				return 1
			case !bok:
				return -1
			default:
				return cmp.Compare(av, bv)
			}
		}
	}
	if fields.Text == nil {
		return 0
	}
	return cmp.Compare(firstLower(fields.Text(a, key)), firstLower(fields.Text(b, key)))
}

func firstLower(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return strings.ToLower(values[0])
}

// compareIDs orders numeric ids numerically and everything else lexically.
// compareIDs orders numeric ids numerically ahead of all other ids, which
// compare as text. Numerically equal ids ("7", "07") fall back to text.
func compareIDs(a, b string) int {
	ai, aerr := strconv.ParseInt(a, 10, 64)
	bi, berr := strconv.ParseInt(b, 10, 64)
	switch {
	case aerr == nil && berr == nil:
		if c := cmp.Compare(ai, bi); c != 0 {
			return c
		}
	case aerr == nil:
		return -1
	case berr == nil:
		return 1
	}
	return cmp.Compare(a, b)
}

// Evaluator memoises Evaluate so repeated reads of an unchanged state do not
// re-sort. The cache key is the state generation plus the filter key.
type Evaluator[E Entity] struct {
	fields Fields[E]

	valid      bool
	generation uint64
	key        string
	ids        []string
	runs       int
}

// NewEvaluator creates an evaluator over fields.
func NewEvaluator[E Entity](fields Fields[E]) *Evaluator[E] {
	return &Evaluator[E]{fields: fields}
}

// Evaluate returns the ordered matching ids for s. The returned slice must
// not be modified.
func (ev *Evaluator[E]) Evaluate(s State[E]) []string {
	key := s.filter.Key()
	if ev.valid && ev.generation == s.generation && ev.key == key {
		return ev.ids
	}
	ev.ids = Evaluate(s.ReadAll(), s.filter, ev.fields)
	ev.generation = s.generation
	ev.key = key
	ev.valid = true
	ev.runs++
	return ev.ids
}

// Runs reports how many times the evaluator actually recomputed.
func (ev *Evaluator[E]) Runs() int { return ev.runs }
