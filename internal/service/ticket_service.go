package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/deskflow/helpdesk-api/internal/auth"
	"github.com/deskflow/helpdesk-api/internal/domain"
	"github.com/deskflow/helpdesk-api/internal/events"
	"github.com/deskflow/helpdesk-api/internal/lifecycle"
	"github.com/deskflow/helpdesk-api/internal/repository"
	"github.com/deskflow/helpdesk-api/internal/validation"
	apperrors "github.com/deskflow/helpdesk-api/pkg/util/errorutil"
)

// TransitionRecorder counts applied lifecycle transitions.
type TransitionRecorder interface {
	RecordTransition(action, status string, n int64)
}

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets   repository.TicketRepository
	machine   *lifecycle.Machine
	validator *validation.Validator
	metrics   TransitionRecorder
	location  *time.Location
	logger    *zap.Logger
	events    publisher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Machine    *lifecycle.Machine
	Validator  *validation.Validator
	Dispatcher events.Dispatcher
	Metrics    TransitionRecorder
	// Location is the zone used for single-day filters. Nil means time.Local.
	Location *time.Location
	Logger   *zap.Logger
}

// BulkCancelResult is the outcome of cancelInProgressTickets.
type BulkCancelResult struct {
	Message string
	Count   int64
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	machine := deps.Machine
	if machine == nil {
		machine = lifecycle.NewMachine(false)
	}
	validator := deps.Validator
	if validator == nil {
		validator = validation.New()
	}
	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:   deps.TicketRepo,
		machine:   machine,
		validator: validator,
		metrics:   deps.Metrics,
		location:  loc,
		logger:    logger,
		events:    publisher{dispatcher: deps.Dispatcher, logger: logger},
	}
}

// List returns the tickets visible to actor, newest first.
func (s *TicketService) List(ctx context.Context, actor *domain.Actor, params TicketQueryParams) (_ []domain.Ticket, err error) {
	ctx, span := tracer().Start(ctx, "TicketService.List")
	defer func() { endSpan(span, err) }()

	if err := auth.RequireActor(actor); err != nil {
		return nil, err
	}
	filter, err := BuildTicketFilter(*actor, params, s.location)
	if err != nil {
		return nil, err
	}
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, repoError(err, "ticket")
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	span.SetAttributes(attribute.Int("tickets.count", len(tickets)))
	return tickets, nil
}

// Create opens a NEW ticket authored by actor.
func (s *TicketService) Create(ctx context.Context, actor *domain.Actor, params validation.CreateTicketParams) (_ *domain.Ticket, err error) {
	ctx, span := tracer().Start(ctx, "TicketService.Create")
	defer func() { endSpan(span, err) }()

	if err := auth.RequireActor(actor); err != nil {
		return nil, err
	}
	input, err := s.validator.CreateTicket(params)
	if err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		Subject:  input.Subject,
		Content:  input.Content,
		Status:   lifecycle.Initial(),
		AuthorID: actor.ID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, repoError(err, "ticket")
	}
	span.SetAttributes(attribute.Int64("ticket.id", ticket.ID))

	s.events.publish(ctx, *actor, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			AuthorID: ticket.AuthorID,
			Subject:  ticket.Subject,
		},
	})
	return ticket, nil
}

// Take moves a ticket to IN_PROGRESS. Taking an IN_PROGRESS ticket again is a no-op
// apart from updatedAt.
func (s *TicketService) Take(ctx context.Context, actor *domain.Actor, id int64) (*domain.Ticket, error) {
	return s.transition(ctx, actor, id, domain.TicketActionTake, lifecycle.Input{})
}

// Complete moves a ticket to COMPLETED with a resolution.
func (s *TicketService) Complete(ctx context.Context, actor *domain.Actor, id int64, params validation.UpdateTicketParams) (*domain.Ticket, error) {
	if err := auth.RequireActor(actor); err != nil {
		return nil, err
	}
	input, err := s.validator.UpdateTicket(params)
	if err != nil {
		return nil, err
	}
	resolution, err := input.RequireResolution()
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, actor, id, domain.TicketActionComplete, lifecycle.Input{Resolution: resolution})
}

// Cancel moves a ticket to CANCELLED with a reason.
func (s *TicketService) Cancel(ctx context.Context, actor *domain.Actor, id int64, params validation.UpdateTicketParams) (*domain.Ticket, error) {
	if err := auth.RequireActor(actor); err != nil {
		return nil, err
	}
	input, err := s.validator.UpdateTicket(params)
	if err != nil {
		return nil, err
	}
	reason, err := input.RequireCancelReason()
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, actor, id, domain.TicketActionCancel, lifecycle.Input{CancelReason: reason})
}

// CancelInProgress cancels every IN_PROGRESS ticket with the administrator reason.
func (s *TicketService) CancelInProgress(ctx context.Context, actor *domain.Actor) (_ *BulkCancelResult, err error) {
	ctx, span := tracer().Start(ctx, "TicketService.CancelInProgress")
	defer func() { endSpan(span, err) }()

	if err := auth.RequireActor(actor); err != nil {
		return nil, err
	}
	if !auth.CanBulkCancel(*actor) {
		return nil, apperrors.NewForbidden("admin role required")
	}

	from, patch := s.machine.BulkCancel()
	count, err := s.tickets.UpdateMany(ctx, repository.TicketFilter{
		Statuses: []domain.TicketStatus{from},
	}, patch)
	if err != nil {
		return nil, repoError(err, "ticket")
	}
	span.SetAttributes(attribute.Int64("tickets.cancelled", count))
	s.recordTransition(domain.TicketActionCancel, patch.Status, count)
	s.logger.Info("bulk cancelled in-progress tickets",
		zap.Int64("count", count),
		zap.Int64("actor_id", actor.ID))

	s.events.publish(ctx, *actor, events.Event{
		Type: events.EventTicketsBulkCancelled,
		Payload: events.TicketsBulkCancelledPayload{
			Count:  count,
			Reason: *patch.CancelReason,
		},
	})
	return &BulkCancelResult{
		Message: fmt.Sprintf("Cancelled %d tickets", count),
		Count:   count,
	}, nil
}

// transition runs lookup, existence, authorization and the state machine, then writes once.
func (s *TicketService) transition(ctx context.Context, actor *domain.Actor, id int64, action domain.TicketAction, in lifecycle.Input) (_ *domain.Ticket, err error) {
	ctx, span := tracer().Start(ctx, "TicketService."+titleCase(string(action)))
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.Int64("ticket.id", id))

	if err := auth.RequireActor(actor); err != nil {
		return nil, err
	}

	current, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "ticket")
	}
	if !auth.CanActOnTicket(*actor, current, action) {
		return nil, apperrors.NewForbidden(fmt.Sprintf("not allowed to %s this ticket", action))
	}

	patch, err := s.machine.Transition(current.Status, action, in)
	if err != nil {
		return nil, err
	}
	updated, err := s.tickets.Update(ctx, id, patch)
	if err != nil {
		return nil, repoError(err, "ticket")
	}
	s.recordTransition(action, updated.Status, 1)

	comment := in.Resolution
	if action == domain.TicketActionCancel {
		comment = in.CancelReason
	}
	s.events.publish(ctx, *actor, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: updated.ID,
		Payload: events.TicketStatusChangedPayload{
			Action:    action,
			OldStatus: current.Status,
			NewStatus: updated.Status,
			Comment:   comment,
		},
	})
	return updated, nil
}

func (s *TicketService) recordTransition(action domain.TicketAction, status domain.TicketStatus, n int64) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordTransition(string(action), string(status), n)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
