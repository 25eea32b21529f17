package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deskflow/helpdesk-api/internal/domain"
)

// BookRepository persists the book catalog.
type BookRepository interface {
	Create(ctx context.Context, book *domain.Book) error
	GetByID(ctx context.Context, id string) (*domain.Book, error)
	List(ctx context.Context) ([]domain.Book, error)
	Update(ctx context.Context, id string, patch domain.BookPatch) (*domain.Book, error)
	Delete(ctx context.Context, id string) (*domain.Book, error)
	DeleteMany(ctx context.Context, ids []string) ([]domain.Book, error)
}

type bookRepository struct {
	pool *pgxpool.Pool
}

// NewBookRepository returns a Postgres-backed implementation.
func NewBookRepository(pool *pgxpool.Pool) BookRepository {
	return &bookRepository{pool: pool}
}

const bookColumns = `id, title, author, description, published_year, created_at, updated_at`

func (r *bookRepository) Create(ctx context.Context, book *domain.Book) error {
	const query = `
        INSERT INTO books (id, title, author, description, published_year)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		book.ID,
		book.Title,
		book.Author,
		book.Description,
		book.PublishedYear,
	).Scan(&book.CreatedAt, &book.UpdatedAt)
	return translate(err)
}

func (r *bookRepository) GetByID(ctx context.Context, id string) (*domain.Book, error) {
	book, err := scanBook(r.pool.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE id=$1`, id))
	if err != nil {
		return nil, translate(err)
	}
	return book, nil
}

func (r *bookRepository) List(ctx context.Context) ([]domain.Book, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+bookColumns+` FROM books ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBooks(rows)
}

func (r *bookRepository) Update(ctx context.Context, id string, patch domain.BookPatch) (*domain.Book, error) {
	const query = `
        UPDATE books SET
            title=COALESCE($1, title),
            author=COALESCE($2, author),
            description=COALESCE($3, description),
            published_year=COALESCE($4, published_year),
            updated_at=NOW()
        WHERE id=$5
        RETURNING ` + bookColumns
	book, err := scanBook(r.pool.QueryRow(ctx, query,
		patch.Title,
		patch.Author,
		patch.Description,
		patch.PublishedYear,
		id,
	))
	if err != nil {
		return nil, translate(err)
	}
	return book, nil
}

func (r *bookRepository) Delete(ctx context.Context, id string) (*domain.Book, error) {
	book, err := scanBook(r.pool.QueryRow(ctx, `DELETE FROM books WHERE id=$1 RETURNING `+bookColumns, id))
	if err != nil {
		return nil, translate(err)
	}
	return book, nil
}

func (r *bookRepository) DeleteMany(ctx context.Context, ids []string) ([]domain.Book, error) {
	rows, err := r.pool.Query(ctx, `DELETE FROM books WHERE id = ANY($1) RETURNING `+bookColumns, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBooks(rows)
}

func scanBook(row pgx.Row) (*domain.Book, error) {
	var book domain.Book
	if err := row.Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.Description,
		&book.PublishedYear,
		&book.CreatedAt,
		&book.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &book, nil
}

func scanBooks(rows pgx.Rows) ([]domain.Book, error) {
	result := []domain.Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *book)
	}
	return result, rows.Err()
}
