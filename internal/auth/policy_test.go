package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deskflow/helpdesk-api/internal/domain"
	apperrors "github.com/deskflow/helpdesk-api/pkg/util/errorutil"
)

func TestCanActOnTicket(t *testing.T) {
	ticket := &domain.Ticket{ID: 1, AuthorID: 7}
	author := domain.Actor{ID: 7, Role: domain.UserRoleUser}
	stranger := domain.Actor{ID: 8, Role: domain.UserRoleUser}
	admin := domain.Actor{ID: 9, Role: domain.UserRoleAdmin}

	for _, action := range []domain.TicketAction{
		domain.TicketActionTake,
		domain.TicketActionComplete,
		domain.TicketActionCancel,
	} {
		t.Run(string(action), func(t *testing.T) {
			assert.True(t, CanActOnTicket(author, ticket, action))
			assert.False(t, CanActOnTicket(stranger, ticket, action))
			assert.True(t, CanActOnTicket(admin, ticket, action))
		})
	}

	assert.False(t, CanActOnTicket(admin, nil, domain.TicketActionTake))
	assert.False(t, CanActOnTicket(author, ticket, domain.TicketAction("reopen")))
}

func TestCanBulkCancelIgnoresAuthorship(t *testing.T) {
	assert.True(t, CanBulkCancel(domain.Actor{ID: 1, Role: domain.UserRoleAdmin}))
	assert.False(t, CanBulkCancel(domain.Actor{ID: 1, Role: domain.UserRoleUser}))
}

func TestCanViewAllTickets(t *testing.T) {
	assert.True(t, CanViewAllTickets(domain.Actor{Role: domain.UserRoleAdmin}))
	assert.False(t, CanViewAllTickets(domain.Actor{Role: domain.UserRoleUser}))
}

func TestRequireActor(t *testing.T) {
	err := RequireActor(nil)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
	assert.NoError(t, RequireActor(&domain.Actor{ID: 1, Role: domain.UserRoleUser}))
}
