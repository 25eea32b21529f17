package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/deskflow/helpdesk-api/internal/domain"
	"github.com/deskflow/helpdesk-api/internal/events"
	"github.com/deskflow/helpdesk-api/internal/lifecycle"
	"github.com/deskflow/helpdesk-api/internal/repository"
	"github.com/deskflow/helpdesk-api/internal/repository/memory"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// countingTickets records every repository call.
type countingTickets struct {
	repository.TicketRepository
	calls int
}

func (c *countingTickets) Create(ctx context.Context, t *domain.Ticket) error {
	c.calls++
	return c.TicketRepository.Create(ctx, t)
}

func (c *countingTickets) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	c.calls++
	return c.TicketRepository.GetByID(ctx, id)
}

func (c *countingTickets) Update(ctx context.Context, id int64, p domain.TicketPatch) (*domain.Ticket, error) {
	c.calls++
	return c.TicketRepository.Update(ctx, id, p)
}

func (c *countingTickets) List(ctx context.Context, f repository.TicketFilter) ([]domain.Ticket, error) {
	c.calls++
	return c.TicketRepository.List(ctx, f)
}

func (c *countingTickets) UpdateMany(ctx context.Context, f repository.TicketFilter, p domain.TicketPatch) (int64, error) {
	c.calls++
	return c.TicketRepository.UpdateMany(ctx, f, p)
}

type recordingDispatcher struct {
	events.Dispatcher
	mu        sync.Mutex
	published []events.Event
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{Dispatcher: events.NewInMemoryDispatcher()}
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.mu.Lock()
	d.published = append(d.published, event)
	d.mu.Unlock()
	return d.Dispatcher.Publish(ctx, event)
}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.published))
	for _, e := range d.published {
		out = append(out, e.Type)
	}
	return out
}

type ticketFixture struct {
	service    *TicketService
	repo       *countingTickets
	clock      *fakeClock
	dispatcher *recordingDispatcher
}

func newTicketFixture(t *testing.T, strict bool) *ticketFixture {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)}
	repo := &countingTickets{TicketRepository: memory.NewTicketRepository(memory.WithClock(clock.Now))}
	dispatcher := newRecordingDispatcher()
	svc := NewTicketService(TicketDependencies{
		TicketRepo: repo,
		Machine:    lifecycle.NewMachine(strict),
		Dispatcher: dispatcher,
		Location:   time.UTC,
	})
	return &ticketFixture{service: svc, repo: repo, clock: clock, dispatcher: dispatcher}
}

func (f *ticketFixture) create(t *testing.T, actor domain.Actor, subject string) *domain.Ticket {
	t.Helper()
	ticket, err := f.service.Create(context.Background(), &actor, createParams(subject))
	require.NoError(t, err)
	return ticket
}

func strPtr(s string) *string { return &s }

var (
	alice = domain.Actor{ID: 1, Role: domain.UserRoleUser}
	bob   = domain.Actor{ID: 2, Role: domain.UserRoleUser}
	admin = domain.Actor{ID: 3, Role: domain.UserRoleAdmin}
)
