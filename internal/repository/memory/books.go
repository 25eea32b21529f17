package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/deskflow/helpdesk-api/internal/domain"
	"github.com/deskflow/helpdesk-api/internal/repository"
)

var _ repository.BookRepository = (*BookRepository)(nil)

// BookRepository is an in-memory repository.BookRepository.
type BookRepository struct {
	mu   sync.RWMutex
	opts options
	byID map[string]domain.Book
}

// NewBookRepository creates an empty repository.
func NewBookRepository(opts ...Option) *BookRepository {
	return &BookRepository{
		opts: buildOptions(opts),
		byID: make(map[string]domain.Book),
	}
}

func (r *BookRepository) Create(_ context.Context, book *domain.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[book.ID]; exists {
		return repository.ErrConflict
	}
	now := r.opts.now()
	book.CreatedAt = now
	book.UpdatedAt = now
	r.byID[book.ID] = *book
	return nil
}

func (r *BookRepository) GetByID(_ context.Context, id string) (*domain.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	book, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &book, nil
}

func (r *BookRepository) List(_ context.Context) ([]domain.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Book, 0, len(r.byID))
	for _, book := range r.byID {
		result = append(result, book)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *BookRepository) Update(_ context.Context, id string, patch domain.BookPatch) (*domain.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	book, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	patch.Apply(&book)
	book.UpdatedAt = r.opts.now()
	// key by the stored id; the caller's id may alias a reused request buffer
	r.byID[book.ID] = book
	return &book, nil
}

func (r *BookRepository) Delete(_ context.Context, id string) (*domain.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	book, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(r.byID, id)
	return &book, nil
}

func (r *BookRepository) DeleteMany(_ context.Context, ids []string) ([]domain.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := []domain.Book{}
	for _, id := range ids {
		book, ok := r.byID[id]
		if !ok {
			continue
		}
		delete(r.byID, id)
		deleted = append(deleted, book)
	}
	return deleted, nil
}
