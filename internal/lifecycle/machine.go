// Package lifecycle implements the ticket status state machine.
package lifecycle

import (
	"github.com/deskflow/helpdesk-api/internal/domain"
	apperrors "github.com/deskflow/helpdesk-api/pkg/util/errorutil"
)

// BulkCancelReason is stored on every ticket cancelled by cancelInProgressTickets.
const BulkCancelReason = "Cancelled by administrator"

// Input carries the fields a transition may require.
type Input struct {
	Resolution   string
	CancelReason string
}

type transitionKey struct {
	from   domain.TicketStatus
	action domain.TicketAction
}

// Machine maps (current status, action) to the next status.
// A missing entry means the transition is not allowed.
type Machine struct {
	table map[transitionKey]domain.TicketStatus
}

var allStatuses = []domain.TicketStatus{
	domain.TicketStatusNew,
	domain.TicketStatusInProgress,
	domain.TicketStatusCompleted,
	domain.TicketStatusCancelled,
}

// NewMachine builds the transition table. With strict false every status accepts
// take, complete and cancel. With strict true COMPLETED and CANCELLED are closed.
func NewMachine(strict bool) *Machine {
	m := &Machine{table: make(map[transitionKey]domain.TicketStatus)}
	for _, from := range allStatuses {
		if strict && from.Terminal() {
			continue
		}
		m.table[transitionKey{from, domain.TicketActionTake}] = domain.TicketStatusInProgress
		m.table[transitionKey{from, domain.TicketActionComplete}] = domain.TicketStatusCompleted
		m.table[transitionKey{from, domain.TicketActionCancel}] = domain.TicketStatusCancelled
	}
	return m
}

// Allowed reports whether action is permitted from status.
func (m *Machine) Allowed(from domain.TicketStatus, action domain.TicketAction) bool {
	_, ok := m.table[transitionKey{from, action}]
	return ok
}

// Transition returns the patch that moves a ticket in status current through action.
func (m *Machine) Transition(current domain.TicketStatus, action domain.TicketAction, in Input) (domain.TicketPatch, error) {
	next, ok := m.table[transitionKey{current, action}]
	if !ok {
		return domain.TicketPatch{}, apperrors.NewInvalidTransition(string(current), string(action))
	}

	patch := domain.TicketPatch{Status: next}
	switch action {
	case domain.TicketActionComplete:
		if in.Resolution == "" {
			return domain.TicketPatch{}, apperrors.NewFieldError("resolution", "resolution is required")
		}
		resolution := in.Resolution
		patch.Resolution = &resolution
	case domain.TicketActionCancel:
		if in.CancelReason == "" {
			return domain.TicketPatch{}, apperrors.NewFieldError("cancelReason", "cancelReason is required")
		}
		reason := in.CancelReason
		patch.CancelReason = &reason
	}
	return patch, nil
}

// BulkCancel returns the source status and the patch applied by cancelInProgressTickets.
func (m *Machine) BulkCancel() (domain.TicketStatus, domain.TicketPatch) {
	reason := BulkCancelReason
	return domain.TicketStatusInProgress, domain.TicketPatch{
		Status:       domain.TicketStatusCancelled,
		CancelReason: &reason,
	}
}

// Initial is the status of a newly created ticket.
func Initial() domain.TicketStatus {
	return domain.TicketStatusNew
}
