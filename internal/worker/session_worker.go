package worker

import (
	"github.com/spec-kit/vitalmotion-client/internal/events"
	"github.com/spec-kit/vitalmotion-client/internal/live"
	"github.com/spec-kit/vitalmotion-client/internal/service"
)

// StartSessionWorkers wires the event-driven components to dispatcher: the
// operator notices and the live dashboard registry.
func StartSessionWorkers(dispatcher events.Dispatcher, notifications *service.NotificationService, registry *live.Registry) {
	if notifications != nil {
		notifications.RegisterHandlers()
	}
	if registry != nil {
		registry.RegisterHandlers(dispatcher)
	}
}
