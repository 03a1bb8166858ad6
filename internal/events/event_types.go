package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/vitalmotion-client/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSessionStarted       EventType = "session_started"
	EventSessionTornDown      EventType = "session_torn_down"
	EventNavigated            EventType = "navigated"
	EventConnectivityLost     EventType = "connectivity_lost"
	EventConnectivityRestored EventType = "connectivity_restored"
)

// Event represents a client lifecycle event.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event of type t.
func New(t EventType, payload interface{}) Event {
	return Event{ID: uuid.NewString(), Type: t, Timestamp: time.Now(), Payload: payload}
}

// SessionStartedPayload payload.
type SessionStartedPayload struct {
	Role domain.Role `json:"role"`
}

// SessionTornDownPayload payload.
type SessionTornDownPayload struct {
	Reason string `json:"reason"`
}

// NavigatedPayload payload.
type NavigatedPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ConnectivityPayload payload.
type ConnectivityPayload struct {
	Target string `json:"target"`
	Error  string `json:"error,omitempty"`
}
