package models

import "time"

// ContentSection is a managed block of storefront copy (home, about,
// footer, contact) keyed by slug.
type ContentSection struct {
	Slug      string    `json:"slug" db:"slug"`
	Title     string    `json:"title" db:"title"`
	Body      string    `json:"body" db:"body"`
	ImageKey  *string   `json:"image_key" db:"image_key"`
	ImageURL  string    `json:"image_url,omitempty" db:"-"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
