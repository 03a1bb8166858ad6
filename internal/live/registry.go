package live

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/vitalmotion-client/internal/auth"
	"github.com/spec-kit/vitalmotion-client/internal/domain"
	"github.com/spec-kit/vitalmotion-client/internal/events"
	"github.com/spec-kit/vitalmotion-client/internal/observability"
	"github.com/spec-kit/vitalmotion-client/internal/poll"
	"github.com/spec-kit/vitalmotion-client/internal/session"
	apperrors "github.com/spec-kit/vitalmotion-client/pkg/util"
)

// Authorizer decides whether the session may view a role's dashboard.
type Authorizer interface {
	Authorize(ctx context.Context, role domain.Role) auth.Decision
}

// SessionSource yields the current session.
type SessionSource interface {
	Current(ctx context.Context) session.Session
}

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	Backend  Backend
	Guard    Authorizer
	Sessions SessionSource
	// PatientDevice is the device a doctor observes.
	PatientDevice string
	Intervals     map[poll.Kind]time.Duration
	Logger        *zap.Logger
	Metrics       *observability.Metrics
	NewTicker     poll.TickerFactory
}

// Registry keeps at most one dashboard mounted: the one matching the current
// view. It follows navigation and session teardown events.
type Registry struct {
	base   context.Context
	opts   RegistryOptions
	logger *zap.Logger

	mu     sync.Mutex
	active *Dashboard
}

// NewRegistry builds a registry whose dashboards live at most as long as base.
func NewRegistry(base context.Context, opts RegistryOptions) *Registry {
	if opts.PatientDevice == "" {
		opts.PatientDevice = domain.DefaultDeviceID
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{base: base, opts: opts, logger: logger.Named("live")}
}

// RegisterHandlers subscribes the registry to navigation and session events.
func (r *Registry) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventNavigated, r.handleNavigated)
	dispatcher.Subscribe(events.EventSessionTornDown, r.handleTornDown)
}

// DashboardRole returns the role whose dashboard path is path.
func DashboardRole(path string) (domain.Role, bool) {
	path = strings.TrimRight(path, "/")
	for _, role := range []domain.Role{domain.RoleUser, domain.RoleDoctor} {
		if path == role.DashboardPath() {
			return role, true
		}
	}
	return "", false
}

// Open mounts the dashboard of role, replacing any other mounted dashboard.
// It fails with AuthorizationFailure when the guard denies the view.
func (r *Registry) Open(ctx context.Context, role domain.Role) (*Dashboard, error) {
	d := r.opts.Guard.Authorize(ctx, role)
	if !d.Allowed() {
		return nil, apperrors.NewAuthorizationFailure("session cannot view the " + string(role) + " dashboard")
	}
	device := r.deviceFor(ctx, role)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil && r.active.Role() == role && r.active.DeviceID() == device && r.active.Mounted() {
		return r.active, nil
	}
	r.unmountLocked()

	dash := NewDashboard(Options{
		Role:      role,
		DeviceID:  device,
		Backend:   r.opts.Backend,
		Intervals: r.opts.Intervals,
		Logger:    r.logger,
		Metrics:   r.opts.Metrics,
		NewTicker: r.opts.NewTicker,
	})
	dash.Mount(r.base)
	r.active = dash
	return dash, nil
}

// Active returns the mounted dashboard.
func (r *Registry) Active() (*Dashboard, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active, r.active != nil
}

// Close unmounts the active dashboard.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unmountLocked()
}

func (r *Registry) unmountLocked() {
	if r.active == nil {
		return
	}
	r.active.Unmount()
	r.active = nil
}

func (r *Registry) deviceFor(ctx context.Context, role domain.Role) string {
	if role == domain.RoleDoctor {
		return r.opts.PatientDevice
	}
	if r.opts.Sessions != nil {
		if s := r.opts.Sessions.Current(ctx); s.Claims != nil {
			return s.Claims.DeviceOrDefault()
		}
	}
	return domain.DefaultDeviceID
}

func (r *Registry) handleNavigated(ctx context.Context, e events.Event) error {
	p, ok := e.Payload.(events.NavigatedPayload)
	if !ok {
		return nil
	}
	role, isDashboard := DashboardRole(p.To)
	if !isDashboard {
		r.Close()
		return nil
	}
	if _, err := r.Open(ctx, role); err != nil {
		r.Close()
		r.logger.Debug("dashboard not mounted", zap.String("path", p.To), zap.Error(err))
	}
	return nil
}

func (r *Registry) handleTornDown(context.Context, events.Event) error {
	r.Close()
	return nil
}
