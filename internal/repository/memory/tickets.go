package memory

import (
	"context"
	"sync"

	"github.com/deskflow/helpdesk-api/internal/domain"
	"github.com/deskflow/helpdesk-api/internal/repository"
)

var _ repository.TicketRepository = (*TicketRepository)(nil)

// TicketRepository is an in-memory repository.TicketRepository.
type TicketRepository struct {
	mu     sync.RWMutex
	opts   options
	nextID int64
	byID   map[int64]domain.Ticket
}

// NewTicketRepository creates an empty repository.
func NewTicketRepository(opts ...Option) *TicketRepository {
	return &TicketRepository{
		opts: buildOptions(opts),
		byID: make(map[int64]domain.Ticket),
	}
}

func (r *TicketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	now := r.opts.now()
	ticket.ID = r.nextID
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	r.byID[ticket.ID] = cloneTicket(*ticket)
	return nil
}

func (r *TicketRepository) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ticket, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneTicket(ticket)
	return &out, nil
}

func (r *TicketRepository) Update(_ context.Context, id int64, patch domain.TicketPatch) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	r.applyLocked(&ticket, patch)
	out := cloneTicket(ticket)
	return &out, nil
}

func (r *TicketRepository) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []domain.Ticket{}
	for _, ticket := range r.byID {
		if filter.Matches(ticket) {
			result = append(result, cloneTicket(ticket))
		}
	}
	repository.SortTickets(result)
	return result, nil
}

func (r *TicketRepository) UpdateMany(_ context.Context, filter repository.TicketFilter, patch domain.TicketPatch) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var affected int64
	for _, ticket := range r.byID {
		if !filter.Matches(ticket) {
			continue
		}
		r.applyLocked(&ticket, patch)
		affected++
	}
	return affected, nil
}

func (r *TicketRepository) applyLocked(ticket *domain.Ticket, patch domain.TicketPatch) {
	patch.Apply(ticket)
	if now := r.opts.now(); now.After(ticket.CreatedAt) {
		ticket.UpdatedAt = now
	} else {
		ticket.UpdatedAt = ticket.CreatedAt
	}
	r.byID[ticket.ID] = cloneTicket(*ticket)
}

func cloneTicket(t domain.Ticket) domain.Ticket {
	if t.Resolution != nil {
		resolution := *t.Resolution
		t.Resolution = &resolution
	}
	if t.CancelReason != nil {
		reason := *t.CancelReason
		t.CancelReason = &reason
	}
	return t
}
