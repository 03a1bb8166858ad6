package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/vitalmotion-client/internal/events"
)

// Notifier shows a one-line notice to the operator.
type Notifier func(message string)

// NotificationService turns session events into operator notices.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	notify     Notifier
}

// NewNotificationService creates the service. A nil notify only logs.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, notify Notifier) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger.Named("notifications"),
		notify:     notify,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventSessionStarted, n.handleSessionStarted)
	n.dispatcher.Subscribe(events.EventSessionTornDown, n.handleSessionTornDown)
	n.dispatcher.Subscribe(events.EventConnectivityLost, n.handleConnectivityLost)
	n.dispatcher.Subscribe(events.EventConnectivityRestored, n.handleConnectivityRestored)
}

func (n *NotificationService) handleSessionStarted(_ context.Context, event events.Event) error {
	p, _ := event.Payload.(events.SessionStartedPayload)
	n.logger.Info("SessionStarted", zap.String("role", string(p.Role)))
	n.emit(fmt.Sprintf("signed in as %s", p.Role))
	return nil
}

func (n *NotificationService) handleSessionTornDown(_ context.Context, event events.Event) error {
	p, _ := event.Payload.(events.SessionTornDownPayload)
	n.logger.Info("SessionTornDown", zap.String("reason", p.Reason))
	if p.Reason == "unauthorized" {
		n.emit("session expired, please sign in again")
		return nil
	}
	n.emit("signed out")
	return nil
}

func (n *NotificationService) handleConnectivityLost(_ context.Context, event events.Event) error {
	p, _ := event.Payload.(events.ConnectivityPayload)
	n.logger.Warn("ConnectivityLost", zap.String("target", p.Target), zap.String("error", p.Error))
	n.emit(fmt.Sprintf("backend %s unreachable, the session is kept", p.Target))
	return nil
}

func (n *NotificationService) handleConnectivityRestored(_ context.Context, event events.Event) error {
	p, _ := event.Payload.(events.ConnectivityPayload)
	n.logger.Info("ConnectivityRestored", zap.String("target", p.Target))
	n.emit(fmt.Sprintf("backend %s reachable again", p.Target))
	return nil
}

func (n *NotificationService) emit(message string) {
	if n.notify == nil {
		return
	}
	n.notify(message)
}
