package repository

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/deskflow/helpdesk-api/internal/domain"
)

// TicketFilter is the predicate used to list or bulk-update tickets.
// Unset fields do not constrain the match.
type TicketFilter struct {
	AuthorID    *int64
	Statuses    []domain.TicketStatus
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// Matches evaluates the filter against a ticket. Both date bounds are inclusive.
func (f TicketFilter) Matches(t domain.Ticket) bool {
	if f.AuthorID != nil && t.AuthorID != *f.AuthorID {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, status := range f.Statuses {
			if t.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.CreatedFrom != nil && t.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && t.CreatedAt.After(*f.CreatedTo) {
		return false
	}
	return true
}

// whereClause renders the filter as SQL, numbering placeholders after the given args.
func (f TicketFilter) whereClause(args []any) (string, []any) {
	clauses := []string{"1=1"}

	if f.AuthorID != nil {
		args = append(args, *f.AuthorID)
		clauses = append(clauses, fmt.Sprintf("author_id=$%d", len(args)))
	}
	if len(f.Statuses) > 0 {
		placeholders := make([]string, len(f.Statuses))
		for i, status := range f.Statuses {
			args = append(args, string(status))
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if f.CreatedFrom != nil {
		args = append(args, *f.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if f.CreatedTo != nil {
		args = append(args, *f.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	return strings.Join(clauses, " AND "), args
}

// TicketOrderSQL is the listing order: newest first, ties broken by id.
const TicketOrderSQL = "created_at DESC, id DESC"

// SortTickets orders tickets the same way TicketOrderSQL does.
func SortTickets(tickets []domain.Ticket) {
	sort.SliceStable(tickets, func(i, j int) bool {
		if !tickets[i].CreatedAt.Equal(tickets[j].CreatedAt) {
			return tickets[i].CreatedAt.After(tickets[j].CreatedAt)
		}
		return tickets[i].ID > tickets[j].ID
	})
}
