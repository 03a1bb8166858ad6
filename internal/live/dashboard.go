// Package live holds the dashboards that stay in sync with the backend while mounted.
package live

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/vitalmotion-client/internal/domain"
	"github.com/spec-kit/vitalmotion-client/internal/observability"
	"github.com/spec-kit/vitalmotion-client/internal/poll"
	apperrors "github.com/spec-kit/vitalmotion-client/pkg/util"
)

// Banners shown while a dashboard cannot sync.
const (
	UserOfflineBanner   = "OFFLINE: UNABLE TO SYNC WEARABLE"
	DoctorOfflineBanner = "SYSTEM FAILURE: PATIENT TELEMETRY UPLINK OFFLINE"
)

// Insight fallbacks when the analysis service fails.
const (
	UserInsightFallback   = "AI Guide is recalibrating. Please retry shortly."
	DoctorInsightFallback = "Diagnostic Engine Throttled. Review raw telemetry manually."
)

// ErrNoVitals is returned by Insight before the first telemetry sample arrived.
var ErrNoVitals = errors.New("no vitals received yet")

// Backend is the part of the typed API a dashboard polls and acts on.
type Backend interface {
	LiveTelemetry(ctx context.Context, device string) (*domain.Telemetry, error)
	LatestAlerts(ctx context.Context, device string) ([]domain.Alert, error)
	ChatMessages(ctx context.Context, device string) ([]domain.ChatMessage, error)
	SendChat(ctx context.Context, device, text string, sender domain.Role) error
	AnalyzeVitals(ctx context.Context, sample domain.VitalsSample) (string, error)
}

// Snapshot is the state rendered by a dashboard.
type Snapshot struct {
	Role      domain.Role          `json:"role"`
	DeviceID  string               `json:"device_id"`
	Mounted   bool                 `json:"mounted"`
	Telemetry *domain.Telemetry    `json:"telemetry,omitempty"`
	Alerts    []domain.Alert       `json:"alerts"`
	Messages  []domain.ChatMessage `json:"messages"`
	Offline   bool                 `json:"offline"`
	Banner    string               `json:"banner,omitempty"`
	LastError string               `json:"last_error,omitempty"`
	Insight   string               `json:"insight,omitempty"`
	UpdatedAt time.Time            `json:"updated_at,omitempty"`
}

// Options configures a Dashboard.
type Options struct {
	Role      domain.Role
	DeviceID  string
	Backend   Backend
	Intervals map[poll.Kind]time.Duration
	Logger    *zap.Logger
	Metrics   *observability.Metrics
	NewTicker poll.TickerFactory
}

// Dashboard is one live view over a device.
type Dashboard struct {
	opts   Options
	logger *zap.Logger

	mountMu sync.Mutex
	group   *poll.Group
	cancel  context.CancelFunc

	mu    sync.RWMutex
	state Snapshot
}

// NewDashboard builds an unmounted dashboard.
func NewDashboard(opts Options) *Dashboard {
	if opts.DeviceID == "" {
		opts.DeviceID = domain.DefaultDeviceID
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dashboard{
		opts:   opts,
		logger: logger.Named("dashboard").With(zap.String("role", string(opts.Role)), zap.String("device_id", opts.DeviceID)),
		state: Snapshot{
			Role:     opts.Role,
			DeviceID: opts.DeviceID,
			Alerts:   []domain.Alert{},
			Messages: []domain.ChatMessage{},
		},
	}
}

// Mount starts the telemetry, alerts and chat subscriptions. Mounting a
// mounted dashboard does nothing.
func (d *Dashboard) Mount(ctx context.Context) {
	d.mountMu.Lock()
	defer d.mountMu.Unlock()
	if d.group != nil {
		return
	}
	ctx, d.cancel = context.WithCancel(ctx)
	d.group = &poll.Group{}
	device := d.opts.DeviceID

	d.group.Add(poll.Start(ctx, poll.Config[*domain.Telemetry]{
		Name:      "telemetry/" + device,
		Kind:      poll.KindTelemetry,
		Interval:  d.interval(poll.KindTelemetry),
		Fetch:     func(ctx context.Context) (*domain.Telemetry, error) { return d.opts.Backend.LiveTelemetry(ctx, device) },
		OnResult:  d.setTelemetry,
		OnError:   d.syncFailed,
		Logger:    d.logger,
		Metrics:   d.opts.Metrics,
		NewTicker: d.opts.NewTicker,
	}))
	d.group.Add(poll.Start(ctx, poll.Config[[]domain.Alert]{
		Name:      "alerts/" + device,
		Kind:      poll.KindAlerts,
		Interval:  d.interval(poll.KindAlerts),
		Fetch:     func(ctx context.Context) ([]domain.Alert, error) { return d.opts.Backend.LatestAlerts(ctx, device) },
		OnResult:  d.setAlerts,
		OnError:   d.syncFailed,
		Logger:    d.logger,
		Metrics:   d.opts.Metrics,
		NewTicker: d.opts.NewTicker,
	}))
	d.group.Add(poll.Start(ctx, poll.Config[[]domain.ChatMessage]{
		Name:     "chat/" + device,
		Kind:     poll.KindChat,
		Interval: d.interval(poll.KindChat),
		Fetch:    func(ctx context.Context) ([]domain.ChatMessage, error) { return d.opts.Backend.ChatMessages(ctx, device) },
		OnResult: d.setMessages,
		// Chat failures are logged only; the thread keeps its last content.
		OnError: func(err error) {
			d.logger.Debug("chat sync failed", zap.Error(err))
		},
		Logger:    d.logger,
		Metrics:   d.opts.Metrics,
		NewTicker: d.opts.NewTicker,
	}))

	d.mu.Lock()
	d.state.Mounted = true
	d.mu.Unlock()
	d.logger.Info("dashboard mounted")
}

// Unmount stops every subscription. After it returns the snapshot no longer
// changes because of polling.
func (d *Dashboard) Unmount() {
	d.mountMu.Lock()
	defer d.mountMu.Unlock()
	if d.group == nil {
		return
	}
	d.group.StopAll()
	d.cancel()
	d.group, d.cancel = nil, nil

	d.mu.Lock()
	d.state.Mounted = false
	d.mu.Unlock()
	d.logger.Info("dashboard unmounted")
}

// Mounted reports whether the subscriptions are running.
func (d *Dashboard) Mounted() bool {
	d.mountMu.Lock()
	defer d.mountMu.Unlock()
	return d.group != nil
}

// Role returns the role the dashboard serves.
func (d *Dashboard) Role() domain.Role { return d.opts.Role }

// DeviceID returns the observed device.
func (d *Dashboard) DeviceID() string { return d.opts.DeviceID }

// Snapshot returns a copy of the current state.
func (d *Dashboard) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := d.state
	out.Alerts = append([]domain.Alert(nil), d.state.Alerts...)
	out.Messages = append([]domain.ChatMessage(nil), d.state.Messages...)
	if d.state.Telemetry != nil {
		t := *d.state.Telemetry
		out.Telemetry = &t
	}
	return out
}

// Insight asks the analysis service about the latest vitals. A failing
// service yields the role's fallback text rather than an error, except for
// authorization failures which end the session.
func (d *Dashboard) Insight(ctx context.Context) (string, error) {
	d.mu.RLock()
	latest := d.state.Telemetry
	d.mu.RUnlock()
	if latest == nil {
		return "", ErrNoVitals
	}

	text, err := d.opts.Backend.AnalyzeVitals(ctx, latest.Sample())
	if err != nil {
		if apperrors.IsAuthorizationFailure(err) {
			return "", err
		}
		d.logger.Warn("insight unavailable", zap.Error(err))
		text = d.insightFallback()
	}

	d.mu.Lock()
	d.state.Insight = text
	d.mu.Unlock()
	return text, nil
}

// SendChat posts text to the device thread as the dashboard role and reloads
// the thread. Blank text is ignored.
func (d *Dashboard) SendChat(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if err := d.opts.Backend.SendChat(ctx, d.opts.DeviceID, text, d.opts.Role); err != nil {
		return fmt.Errorf("send chat: %w", err)
	}
	msgs, err := d.opts.Backend.ChatMessages(ctx, d.opts.DeviceID)
	if err != nil {
		d.logger.Debug("chat reload failed", zap.Error(err))
		return nil
	}
	d.setMessages(msgs)
	return nil
}

func (d *Dashboard) interval(kind poll.Kind) time.Duration {
	if v, ok := d.opts.Intervals[kind]; ok && v > 0 {
		return v
	}
	return poll.IntervalFor(kind)
}

func (d *Dashboard) banner() string {
	if d.opts.Role == domain.RoleDoctor {
		return DoctorOfflineBanner
	}
	return UserOfflineBanner
}

func (d *Dashboard) insightFallback() string {
	if d.opts.Role == domain.RoleDoctor {
		return DoctorInsightFallback
	}
	return UserInsightFallback
}

func (d *Dashboard) setTelemetry(t *domain.Telemetry) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.Telemetry = t
	d.synced()
}

func (d *Dashboard) setAlerts(alerts []domain.Alert) {
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.Alerts = alerts
	d.synced()
}

func (d *Dashboard) setMessages(msgs []domain.ChatMessage) {
	if msgs == nil {
		msgs = []domain.ChatMessage{}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.Messages = msgs
	d.state.UpdatedAt = time.Now()
}

// synced clears the banner; d.mu must be held.
func (d *Dashboard) synced() {
	d.state.Offline = false
	d.state.Banner = ""
	d.state.LastError = ""
	d.state.UpdatedAt = time.Now()
}

func (d *Dashboard) syncFailed(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.Offline = apperrors.IsConnectivityFailure(err)
	d.state.Banner = d.banner()
	d.state.LastError = err.Error()
}
