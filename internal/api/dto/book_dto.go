package dto

import (
	"time"

	"github.com/deskflow/helpdesk-api/internal/domain"
)

// BookResponse is the API view of a catalog entry.
type BookResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Description   *string   `json:"description"`
	PublishedYear *int      `json:"publishedYear"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func NewBookResponse(book *domain.Book) BookResponse {
	return BookResponse{
		ID:            book.ID,
		Title:         book.Title,
		Author:        book.Author,
		Description:   book.Description,
		PublishedYear: book.PublishedYear,
		CreatedAt:     book.CreatedAt,
		UpdatedAt:     book.UpdatedAt,
	}
}

func NewBookList(books []domain.Book) []BookResponse {
	items := make([]BookResponse, 0, len(books))
	for i := range books {
		items = append(items, NewBookResponse(&books[i]))
	}
	return items
}
