// Package catalog defines the course entity and how the collection engine
// reads its fields.
package catalog

import (
	"slices"
	"strings"
	"time"
)

// Status is the publication state of a course.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Course mirrors the course payload of the catalog API.
type Course struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Slug           string     `json:"slug"`
	Description    string     `json:"description"`
	Summary        string     `json:"summary"`
	Category       string     `json:"category"`
	Level          string     `json:"level"`
	Difficulty     int        `json:"difficulty"`
	Instructor     string     `json:"instructor"`
	Media          Media      `json:"media"`
	Products       []string   `json:"products"`
	Enrollment     Enrollment `json:"enrollment"`
	EstimatedHours float64    `json:"estimatedHours"`
	Tags           []string   `json:"tags"`
	Status         Status     `json:"status"`
	Price          float64    `json:"price"`
	Rating         float64    `json:"rating"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Media holds presentation assets.
type Media struct {
	ThumbnailURL     string `json:"thumbnailUrl,omitempty"`
	ShowcaseVideoURL string `json:"showcaseVideoUrl,omitempty"`
}

// Enrollment limits who can join a course and until when.
type Enrollment struct {
	MaxEnrollments *int       `json:"maxEnrollments,omitempty"`
	Deadline       *time.Time `json:"deadline,omitempty"`
}

// EntityID implements collection.Entity.
func (c Course) EntityID() string { return c.ID }

// WithID returns c with its id replaced.
func WithID(c Course, id string) Course {
	c.ID = id
	return c
}

// Clone returns a deep copy of c.
func (c Course) Clone() Course {
	out := c
	out.Products = slices.Clone(c.Products)
	out.Tags = slices.Clone(c.Tags)
	if c.Enrollment.MaxEnrollments != nil {
		n := *c.Enrollment.MaxEnrollments
		out.Enrollment.MaxEnrollments = &n
	}
	if c.Enrollment.Deadline != nil {
		d := *c.Enrollment.Deadline
		out.Enrollment.Deadline = &d
	}
	return out
}

// ParseStatus normalises s; unknown values become draft.
func ParseStatus(s string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPublished:
		return StatusPublished
	case StatusArchived:
		return StatusArchived
	default:
		return StatusDraft
	}
}
