package ui

import (
	"reflect"
	"testing"
	"time"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"  short ", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"a longer title", 8, "a lon..."},
		{"abcdef", 3, "abc"},
		{"unlimited", 0, "unlimited"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.limit); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}

func TestTitleCase(t *testing.T) {
	if got := titleCase("published"); got != "Published" {
		t.Fatalf("titleCase(published) = %q", got)
	}
	if got := titleCase("in_review"); got != "In Review" {
		t.Fatalf("titleCase(in_review) = %q", got)
	}
}

func TestFormatPrice(t *testing.T) {
	if got := formatPrice(0); got != "free" {
		t.Fatalf("formatPrice(0) = %q, want free", got)
	}
	if got := formatPrice(19.5); got != "$19.50" {
		t.Fatalf("formatPrice(19.5) = %q, want $19.50", got)
	}
}

func TestFormatAgo(t *testing.T) {
	now := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Time{}, "never"},
		{now.Add(-2 * time.Second), "just now"},
		{now.Add(-30 * time.Second), "30s ago"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "12:04"},
	}
	for _, tt := range tests {
		if got := formatAgo(tt.at, now); got != tt.want {
			t.Fatalf("formatAgo(%v) = %q, want %q", tt.at, got, tt.want)
		}
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" go, ,testing ,")
	if !reflect.DeepEqual(got, []string{"go", "testing"}) {
		t.Fatalf("splitList = %#v", got)
	}
	if splitList("   ") != nil {
		t.Fatalf("splitList of blanks should be nil")
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 4); got != "ab  " {
		t.Fatalf("padRight = %q", got)
	}
	if got := padRight("abcdef", 4); got != "abcdef" {
		t.Fatalf("padRight should not cut, got %q", got)
	}
}
