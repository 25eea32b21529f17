package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/deskflow/helpdesk-api/internal/auth"
	"github.com/deskflow/helpdesk-api/internal/domain"
	"github.com/deskflow/helpdesk-api/internal/repository"
	"github.com/deskflow/helpdesk-api/internal/validation"
)

// BookService manages the book catalog. Reads are public, writes need an authenticated caller.
type BookService struct {
	books     repository.BookRepository
	validator *validation.Validator
	logger    *zap.Logger
	newID     func() string
}

// BookDependencies bundles collaborators for the book service.
type BookDependencies struct {
	BookRepo  repository.BookRepository
	Validator *validation.Validator
	Logger    *zap.Logger
}

// NewBookService constructs the service.
func NewBookService(deps BookDependencies) *BookService {
	validator := deps.Validator
	if validator == nil {
		validator = validation.New()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookService{
		books:     deps.BookRepo,
		validator: validator,
		logger:    logger,
		newID:     uuid.NewString,
	}
}

func (s *BookService) List(ctx context.Context) ([]domain.Book, error) {
	books, err := s.books.List(ctx)
	if err != nil {
		return nil, repoError(err, "book")
	}
	if books == nil {
		books = []domain.Book{}
	}
	return books, nil
}

func (s *BookService) Get(ctx context.Context, id string) (*domain.Book, error) {
	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "book")
	}
	return book, nil
}

// Create adds a book; title and author are required.
func (s *BookService) Create(ctx context.Context, actor *domain.Actor, params validation.BookParams) (*domain.Book, error) {
	if err := auth.RequireActor(actor); err != nil {
		return nil, err
	}
	patch, err := s.validator.Book(params, false)
	if err != nil {
		return nil, err
	}
	book := &domain.Book{ID: s.newID()}
	patch.Apply(book)
	if err := s.books.Create(ctx, book); err != nil {
		return nil, repoError(err, "book")
	}
	s.logger.Info("book created", zap.String("book_id", book.ID), zap.Int64("actor_id", actor.ID))
	return book, nil
}

// Update applies the supplied fields and leaves the rest untouched.
func (s *BookService) Update(ctx context.Context, actor *domain.Actor, id string, params validation.BookParams) (*domain.Book, error) {
	if err := auth.RequireActor(actor); err != nil {
		return nil, err
	}
	patch, err := s.validator.Book(params, true)
	if err != nil {
		return nil, err
	}
	book, err := s.books.Update(ctx, id, patch)
	if err != nil {
		return nil, repoError(err, "book")
	}
	return book, nil
}

// Delete removes a book and returns it.
func (s *BookService) Delete(ctx context.Context, actor *domain.Actor, id string) (*domain.Book, error) {
	if err := auth.RequireActor(actor); err != nil {
		return nil, err
	}
	book, err := s.books.Delete(ctx, id)
	if err != nil {
		return nil, repoError(err, "book")
	}
	s.logger.Info("book deleted", zap.String("book_id", id), zap.Int64("actor_id", actor.ID))
	return book, nil
}

// DeleteMany removes every listed book that exists and returns the removed rows.
// Unknown ids are ignored.
func (s *BookService) DeleteMany(ctx context.Context, actor *domain.Actor, params validation.DeleteBooksParams) ([]domain.Book, error) {
	if err := auth.RequireActor(actor); err != nil {
		return nil, err
	}
	ids, err := s.validator.DeleteBooks(params)
	if err != nil {
		return nil, err
	}
	books, err := s.books.DeleteMany(ctx, ids)
	if err != nil {
		return nil, repoError(err, "book")
	}
	if books == nil {
		books = []domain.Book{}
	}
	s.logger.Info("books deleted", zap.Int("count", len(books)), zap.Int64("actor_id", actor.ID))
	return books, nil
}
