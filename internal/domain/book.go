package domain

import "time"

// Book is an entry in the catalog.
type Book struct {
	ID            string
	Title         string
	Author        string
	Description   *string
	PublishedYear *int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BookPatch carries a partial update; nil fields are left untouched.
type BookPatch struct {
	Title         *string
	Author        *string
	Description   *string
	PublishedYear *int
}

// Apply copies the patch onto b.
func (p BookPatch) Apply(b *Book) {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.Description != nil {
		description := *p.Description
		b.Description = &description
	}
	if p.PublishedYear != nil {
		year := *p.PublishedYear
		b.PublishedYear = &year
	}
}
