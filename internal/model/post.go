package model

import "time"

type Post struct {
	ID          string     `db:"id" json:"id"`
	Slug        string     `db:"slug" json:"slug"`
	Title       string     `db:"title" json:"title"`
	Published   bool       `db:"published" json:"published"`
	PublishedAt *time.Time `db:"published_at" json:"published_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// DueAt reports whether the post should be flipped to published at the
// given instant: not yet published, and its publish time has passed.
func (p *Post) DueAt(now time.Time) bool {
	return !p.Published && p.PublishedAt != nil && !p.PublishedAt.After(now)
}
