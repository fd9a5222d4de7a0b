// Package slug derives URL slugs from free-form titles.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Make converts title into a lowercase slug: accents are folded to their base
// letters, every run of non-alphanumeric characters becomes a single hyphen,
// and leading/trailing hyphens are trimmed.
func Make(title string) string {
	folded, _, err := transform.String(foldChain(), title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		if isSlugRune(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// Valid reports whether s is a non-empty slug made only of [a-z0-9-].
func Valid(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != '-' && !isSlugRune(r) {
			return false
		}
	}
	return true
}

// Slugifier memoises Make through a bounded cache.
type Slugifier struct {
	cache *Cache
}

// NewSlugifier wraps cache; a nil cache disables memoisation.
func NewSlugifier(cache *Cache) *Slugifier {
	return &Slugifier{cache: cache}
}

// Slug returns Make(title), served from the cache when possible.
func (s *Slugifier) Slug(title string) string {
	if s == nil || s.cache == nil {
		return Make(title)
	}
	if v, ok := s.cache.Get(title); ok {
		return v
	}
	v := Make(title)
	s.cache.Put(title, v)
	return v
}

func isSlugRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// transform chains are stateful, so each call gets its own.
func foldChain() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}
