package worker

import (
	"github.com/deskflow/helpdesk-api/internal/events"
	"github.com/deskflow/helpdesk-api/internal/service"
)

// StartNotificationWorker registers every event subscriber on dispatcher.
// A nil sink means the redis event stream is disabled.
func StartNotificationWorker(dispatcher events.Dispatcher, notificationService *service.NotificationService, sink *events.RedisStreamSink) {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	if sink != nil && dispatcher != nil {
		sink.SubscribeAll(dispatcher)
	}
}
