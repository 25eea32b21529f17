package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/deskflow/helpdesk-api/internal/domain"
	"github.com/deskflow/helpdesk-api/internal/events"
)

func TestNotificationServiceLogsLifecycleEvents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, zap.New(core)).RegisterHandlers()
	ctx := context.Background()

	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		ID:       "e1",
		Type:     events.EventTicketStatusChanged,
		TicketID: 9,
		Actor:    events.Actor{UserID: 1, Role: domain.UserRoleUser},
		Payload: events.TicketStatusChangedPayload{
			Action:    domain.TicketActionTake,
			OldStatus: domain.TicketStatusNew,
			NewStatus: domain.TicketStatusInProgress,
		},
	}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		ID:      "e2",
		Type:    events.EventTicketsBulkCancelled,
		Payload: events.TicketsBulkCancelledPayload{Count: 4, Reason: "Cancelled by administrator"},
	}))

	changed := logs.FilterMessage("TicketStatusChanged").All()
	require.Len(t, changed, 1)
	fields := changed[0].ContextMap()
	assert.Equal(t, int64(9), fields["ticket_id"])
	assert.Equal(t, "IN_PROGRESS", fields["new_status"])

	bulk := logs.FilterMessage("TicketsBulkCancelled").All()
	require.Len(t, bulk, 1)
	assert.Equal(t, int64(4), bulk[0].ContextMap()["count"])
	_, hasTicket := bulk[0].ContextMap()["ticket_id"]
	assert.False(t, hasTicket)
}
