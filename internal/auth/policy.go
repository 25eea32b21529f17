package auth

import (
	"github.com/deskflow/helpdesk-api/internal/domain"
	apperrors "github.com/deskflow/helpdesk-api/pkg/util/errorutil"
)

// CanActOnTicket decides whether actor may take, complete or cancel ticket.
// Admins may act on any ticket, everyone else only on tickets they authored.
func CanActOnTicket(actor domain.Actor, ticket *domain.Ticket, action domain.TicketAction) bool {
	if ticket == nil {
		return false
	}
	switch action {
	case domain.TicketActionTake, domain.TicketActionComplete, domain.TicketActionCancel:
		return actor.IsAdmin() || actor.ID == ticket.AuthorID
	default:
		return false
	}
}

// CanBulkCancel gates cancelInProgressTickets. Authorship is irrelevant.
func CanBulkCancel(actor domain.Actor) bool {
	return actor.IsAdmin()
}

// CanViewAllTickets reports whether listing is unscoped for actor.
func CanViewAllTickets(actor domain.Actor) bool {
	return actor.IsAdmin()
}

// RequireActor fails with an authentication error when no caller was resolved.
func RequireActor(actor *domain.Actor) error {
	if actor == nil {
		return apperrors.NewUnauthorized("not authenticated")
	}
	return nil
}
