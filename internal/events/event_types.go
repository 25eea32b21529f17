package events

import (
	"time"

	"github.com/deskflow/helpdesk-api/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated        EventType = "ticket_created"
	EventTicketStatusChanged  EventType = "ticket_status_changed"
	EventTicketsBulkCancelled EventType = "tickets_bulk_cancelled"
)

// AllTypes lists every event type, for subscribers that want the whole feed.
var AllTypes = []EventType{
	EventTicketCreated,
	EventTicketStatusChanged,
	EventTicketsBulkCancelled,
}

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID int64           `json:"user_id"`
	Role   domain.UserRole `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	AuthorID int64  `json:"author_id"`
	Subject  string `json:"subject"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	Action    domain.TicketAction `json:"action"`
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment,omitempty"`
}

// TicketsBulkCancelledPayload payload.
type TicketsBulkCancelledPayload struct {
	Count  int64  `json:"count"`
	Reason string `json:"reason"`
}

// ActorFrom converts a domain actor.
func ActorFrom(actor domain.Actor) Actor {
	return Actor{UserID: actor.ID, Role: actor.Role}
}
