package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/deskflow/helpdesk-api/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketsBulkCancelled, n.handleTicketsBulkCancelled)
}

func (n *NotificationService) handleTicketCreated(_ context.Context, event events.Event) error {
	fields := n.baseFields(event)
	if payload, ok := event.Payload.(events.TicketCreatedPayload); ok {
		fields = append(fields, zap.Int64("author_id", payload.AuthorID), zap.String("subject", payload.Subject))
	}
	n.logger.Info("TicketCreated", fields...)
	return nil
}

func (n *NotificationService) handleTicketStatusChanged(_ context.Context, event events.Event) error {
	fields := n.baseFields(event)
	if payload, ok := event.Payload.(events.TicketStatusChangedPayload); ok {
		fields = append(fields,
			zap.String("action", string(payload.Action)),
			zap.String("old_status", string(payload.OldStatus)),
			zap.String("new_status", string(payload.NewStatus)))
	}
	n.logger.Info("TicketStatusChanged", fields...)
	return nil
}

func (n *NotificationService) handleTicketsBulkCancelled(_ context.Context, event events.Event) error {
	fields := n.baseFields(event)
	if payload, ok := event.Payload.(events.TicketsBulkCancelledPayload); ok {
		fields = append(fields, zap.Int64("count", payload.Count), zap.String("reason", payload.Reason))
	}
	n.logger.Info("TicketsBulkCancelled", fields...)
	return nil
}

func (n *NotificationService) baseFields(event events.Event) []zap.Field {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.Int64("actor_id", event.Actor.UserID),
		zap.String("actor_role", string(event.Actor.Role)),
	}
	if event.TicketID != 0 {
		fields = append(fields, zap.Int64("ticket_id", event.TicketID))
	}
	return fields
}
