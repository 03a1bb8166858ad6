package navigation

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/vitalmotion-client/internal/events"
)

// DefaultEntry is the unauthenticated entry point.
const DefaultEntry = "/user/auth"

var authViews = map[string]struct{}{
	"/user/auth":            {},
	"/user/login":           {},
	"/user/otp":             {},
	"/user/create-password": {},
	"/doctor/login":         {},
	"/admin/login":          {},
}

// IsAuthView reports whether path is an authentication view.
func IsAuthView(path string) bool {
	path = strings.TrimRight(path, "/")
	if _, ok := authViews[path]; ok {
		return true
	}
	return strings.Contains(path, "/auth")
}

// Navigator tracks the current view of the client.
type Navigator interface {
	Location() string
	Navigate(ctx context.Context, path string)
}

// History is an in-memory Navigator that announces every change.
type History struct {
	mu         sync.RWMutex
	location   string
	visited    []string
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewHistory starts at start. dispatcher may be nil.
func NewHistory(start string, dispatcher events.Dispatcher, logger *zap.Logger) *History {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &History{location: start, dispatcher: dispatcher, logger: logger}
}

func (h *History) Location() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.location
}

// Navigate moves to path. Navigating to the current location is a no-op.
func (h *History) Navigate(ctx context.Context, path string) {
	h.mu.Lock()
	from := h.location
	if from == path {
		h.mu.Unlock()
		return
	}
	h.location = path
	h.visited = append(h.visited, path)
	h.mu.Unlock()

	h.logger.Debug("navigated", zap.String("from", from), zap.String("to", path))
	if h.dispatcher != nil {
		_ = h.dispatcher.Publish(ctx, events.New(events.EventNavigated, events.NavigatedPayload{From: from, To: path}))
	}
}

// Visited returns the paths navigated to, oldest first.
func (h *History) Visited() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]string(nil), h.visited...)
}
