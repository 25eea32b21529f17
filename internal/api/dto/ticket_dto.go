package dto

import (
	"time"

	"github.com/deskflow/helpdesk-api/internal/domain"
)

// TicketResponse is the API view of a ticket.
type TicketResponse struct {
	ID           int64               `json:"id"`
	Subject      string              `json:"subject"`
	Content      string              `json:"content"`
	Status       domain.TicketStatus `json:"status"`
	Resolution   *string             `json:"resolution"`
	CancelReason *string             `json:"cancelReason"`
	AuthorID     int64               `json:"authorId"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

// CancellationResult is returned by the bulk cancel endpoint.
type CancellationResult struct {
	Message string `json:"message"`
	Count   int64  `json:"count"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:           ticket.ID,
		Subject:      ticket.Subject,
		Content:      ticket.Content,
		Status:       ticket.Status,
		Resolution:   ticket.Resolution,
		CancelReason: ticket.CancelReason,
		AuthorID:     ticket.AuthorID,
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
	}
}

// NewTicketList maps a slice, never returning nil.
func NewTicketList(tickets []domain.Ticket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketResponse(&tickets[i]))
	}
	return items
}
