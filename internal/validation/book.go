package validation

import "github.com/deskflow/helpdesk-api/internal/domain"

// BookParams is the raw book payload used for both create and update.
type BookParams struct {
	Title         *string `json:"title" validate:"omitnil,min=1,max=255"`
	Author        *string `json:"author" validate:"omitnil,min=1,max=255"`
	Description   *string `json:"description" validate:"omitnil,max=5000"`
	PublishedYear *int    `json:"publishedYear" validate:"omitnil,gte=1000,lte=9999"`
}

// DeleteBooksParams lists the ids for a bulk delete.
type DeleteBooksParams struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,uuid4"`
}

// Book validates a book payload. When partial is false title and author are mandatory.
func (v *Validator) Book(p BookParams, partial bool) (domain.BookPatch, error) {
	if !partial {
		if p.Title == nil {
			return domain.BookPatch{}, required("title")
		}
		if p.Author == nil {
			return domain.BookPatch{}, required("author")
		}
	}
	if err := v.check(p); err != nil {
		return domain.BookPatch{}, err
	}
	return domain.BookPatch{
		Title:         p.Title,
		Author:        p.Author,
		Description:   p.Description,
		PublishedYear: p.PublishedYear,
	}, nil
}

// DeleteBooks validates a bulk delete request.
func (v *Validator) DeleteBooks(p DeleteBooksParams) ([]string, error) {
	if err := v.check(p); err != nil {
		return nil, err
	}
	return p.IDs, nil
}
