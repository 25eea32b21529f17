package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "NEW"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusCompleted  TicketStatus = "COMPLETED"
	TicketStatusCancelled  TicketStatus = "CANCELLED"
)

// Terminal reports whether no exposed transition leaves the status.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusCompleted || s == TicketStatusCancelled
}

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusNew, TicketStatusInProgress, TicketStatusCompleted, TicketStatusCancelled:
		return true
	}
	return false
}

// TicketAction names a lifecycle operation on a single ticket.
type TicketAction string

const (
	TicketActionTake     TicketAction = "take"
	TicketActionComplete TicketAction = "complete"
	TicketActionCancel   TicketAction = "cancel"
)

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID           int64
	Subject      string
	Content      string
	Status       TicketStatus
	Resolution   *string
	CancelReason *string
	AuthorID     int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TicketPatch is the set of columns a lifecycle transition writes.
// Nil fields are left untouched.
type TicketPatch struct {
	Status       TicketStatus
	Resolution   *string
	CancelReason *string
}

// Apply copies the patch onto t.
func (p TicketPatch) Apply(t *Ticket) {
	if p.Status != "" {
		t.Status = p.Status
	}
	if p.Resolution != nil {
		resolution := *p.Resolution
		t.Resolution = &resolution
	}
	if p.CancelReason != nil {
		reason := *p.CancelReason
		t.CancelReason = &reason
	}
}
