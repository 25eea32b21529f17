package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deskflow/helpdesk-api/internal/domain"
)

// TicketRepository encapsulates ticket persistence. Every method is a single statement,
// so each lifecycle write is atomic on its own.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	Update(ctx context.Context, id int64, patch domain.TicketPatch) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	UpdateMany(ctx context.Context, filter TicketFilter, patch domain.TicketPatch) (int64, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, subject, content, status, resolution, cancel_reason, author_id, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (subject, content, status, author_id)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		ticket.Subject,
		ticket.Content,
		ticket.Status,
		ticket.AuthorID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
	return translate(err)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id)
	ticket, err := scanTicket(row)
	if err != nil {
		return nil, translate(err)
	}
	return ticket, nil
}

func (r *ticketRepository) Update(ctx context.Context, id int64, patch domain.TicketPatch) (*domain.Ticket, error) {
	set, args := patchSet(patch, nil)
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE id=$%d RETURNING %s`, set, len(args), ticketColumns)
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translate(err)
	}
	return ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	where, args := filter.whereClause(nil)
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY %s`, ticketColumns, where, TicketOrderSQL)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) UpdateMany(ctx context.Context, filter TicketFilter, patch domain.TicketPatch) (int64, error) {
	set, args := patchSet(patch, nil)
	where, args := filter.whereClause(args)
	cmd, err := r.pool.Exec(ctx, fmt.Sprintf(`UPDATE tickets SET %s WHERE %s`, set, where), args...)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func patchSet(patch domain.TicketPatch, args []any) (string, []any) {
	set := "updated_at=GREATEST(NOW(), created_at)"
	if patch.Status != "" {
		args = append(args, string(patch.Status))
		set += fmt.Sprintf(", status=$%d", len(args))
	}
	if patch.Resolution != nil {
		args = append(args, *patch.Resolution)
		set += fmt.Sprintf(", resolution=$%d", len(args))
	}
	if patch.CancelReason != nil {
		args = append(args, *patch.CancelReason)
		set += fmt.Sprintf(", cancel_reason=$%d", len(args))
	}
	return set, args
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Subject,
		&ticket.Content,
		&ticket.Status,
		&ticket.Resolution,
		&ticket.CancelReason,
		&ticket.AuthorID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}
