// Package app assembles the client from configuration.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/vitalmotion-client/internal/api/http"
	"github.com/spec-kit/vitalmotion-client/internal/api/http/handlers"
	"github.com/spec-kit/vitalmotion-client/internal/auth"
	"github.com/spec-kit/vitalmotion-client/internal/client"
	"github.com/spec-kit/vitalmotion-client/internal/config"
	"github.com/spec-kit/vitalmotion-client/internal/events"
	"github.com/spec-kit/vitalmotion-client/internal/live"
	"github.com/spec-kit/vitalmotion-client/internal/navigation"
	"github.com/spec-kit/vitalmotion-client/internal/observability"
	"github.com/spec-kit/vitalmotion-client/internal/persistence"
	"github.com/spec-kit/vitalmotion-client/internal/poll"
	"github.com/spec-kit/vitalmotion-client/internal/repository"
	"github.com/spec-kit/vitalmotion-client/internal/service"
	"github.com/spec-kit/vitalmotion-client/internal/session"
	"github.com/spec-kit/vitalmotion-client/internal/worker"
)

// Session store backends.
const (
	StoreFile     = "file"
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Options adjusts how the client is assembled.
type Options struct {
	// Notify receives operator notices; nil only logs them.
	Notify service.Notifier
	// HTTPClient overrides the backend HTTP client.
	HTTPClient *http.Client
	// Slots overrides the configured session store backend.
	Slots repository.SlotRepository
	// NewTicker overrides the polling ticker.
	NewTicker poll.TickerFactory
}

// App is the assembled client: one session, one pipeline, one navigator.
type App struct {
	Config        *config.Config
	Logger        *zap.Logger
	Metrics       *observability.Metrics
	Dispatcher    events.Dispatcher
	Store         *session.CredentialStore
	Navigator     *navigation.History
	Pipeline      *client.Pipeline
	API           *client.API
	Guard         *auth.Guard
	Auth          *service.AuthService
	Admin         *service.AdminService
	Clinical      *service.ClinicalService
	Notifications *service.NotificationService
	Registry      *live.Registry

	pingers map[string]handlers.Pinger
	closers []func()
	cancel  context.CancelFunc
}

// New wires every component. Dashboards mounted by the registry live until
// ctx is cancelled or Close is called.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(ctx)
	a := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewMetrics(),
		pingers: map[string]handlers.Pinger{},
		cancel:  cancel,
	}

	slots := opts.Slots
	if slots == nil {
		var err error
		if slots, err = a.openSlots(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}

	a.Dispatcher = events.NewInMemoryDispatcher(logger)
	a.Store = session.NewCredentialStore(slots, logger)
	a.Navigator = navigation.NewHistory(navigation.DefaultEntry, a.Dispatcher, logger)

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.App.RequestTimeout()}
	}
	a.Pipeline = client.NewPipeline(client.Options{
		BaseURL:    cfg.API.BaseURL,
		HTTPClient: httpClient,
		Store:      a.Store,
		Navigator:  a.Navigator,
		Dispatcher: a.Dispatcher,
		Logger:     logger,
		Metrics:    a.Metrics,
	})
	a.API = client.NewAPI(a.Pipeline)
	a.Guard = auth.NewGuard(a.Store, logger)

	a.Auth = service.NewAuthService(service.AuthDependencies{
		API:        a.API,
		Store:      a.Store,
		Navigator:  a.Navigator,
		Dispatcher: a.Dispatcher,
		Logger:     logger,
	})
	a.Admin = service.NewAdminService(a.API, logger)
	a.Clinical = service.NewClinicalService(a.API, logger)
	a.Notifications = service.NewNotificationService(a.Dispatcher, logger, opts.Notify)

	a.Registry = live.NewRegistry(ctx, live.RegistryOptions{
		Backend:       a.API,
		Guard:         a.Guard,
		Sessions:      a.Store,
		PatientDevice: cfg.Devices.Patient,
		Intervals: map[poll.Kind]time.Duration{
			poll.KindTelemetry: cfg.Polling.Telemetry(),
			poll.KindAlerts:    cfg.Polling.Alerts(),
			poll.KindChat:      cfg.Polling.Chat(),
		},
		Logger:    logger,
		Metrics:   a.Metrics,
		NewTicker: opts.NewTicker,
	})
	a.closers = append(a.closers, a.Registry.Close)

	worker.StartSessionWorkers(a.Dispatcher, a.Notifications, a.Registry)

	logger.Info("client assembled",
		zap.String("api", cfg.API.BaseURL),
		zap.String("api_source", cfg.API.Source),
		zap.String("session_store", cfg.Store.Backend))
	return a, nil
}

func (a *App) openSlots(ctx context.Context) (repository.SlotRepository, error) {
	cfg := a.Config
	switch cfg.Store.Backend {
	case StoreMemory:
		return repository.NewMemorySlotRepository(), nil
	case StoreFile, "":
		var sealer repository.Sealer
		if cfg.Store.Passphrase != "" {
			s, err := persistence.NewPassphraseSealer(cfg.Store.Passphrase)
			if err != nil {
				return nil, err
			}
			sealer = s
		}
		return repository.NewFileSlotRepository(cfg.Store.FilePath, sealer, a.Logger), nil
	case StoreRedis:
		r, err := persistence.NewRedis(ctx, cfg.Redis, a.Logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, r.Close)
		a.pingers["redis"] = r
		return repository.NewRedisSlotRepository(r.Client, cfg.Store.KeyPrefix), nil
	case StorePostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, a.Logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pg.Close)
		a.pingers["postgres"] = pg
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.Pool, a.Logger); err != nil {
				return nil, err
			}
		}
		return repository.NewPostgresSlotRepository(pg.Pool), nil
	default:
		return nil, fmt.Errorf("unknown SESSION_STORE %q", cfg.Store.Backend)
	}
}

// Portal builds the local HTTP surface.
func (a *App) Portal() *fiber.App {
	portal := fiber.New(fiber.Config{
		AppName:               a.Config.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(portal, a.Logger, a.Metrics, a.Config.App.RequestTimeout())
	httptransport.RegisterRoutes(portal, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(a.Config.App.Name, a.Config.App.Version, a.Pipeline, a.pingers),
		Auth:      handlers.NewAuthHandler(a.Auth, a.Navigator),
		Dashboard: handlers.NewDashboardHandler(a.Auth, a.Clinical, a.Registry),
		Admin:     handlers.NewAdminHandler(a.Admin),
		Guard:     a.Guard,
		Navigator: a.Navigator,
		Metrics:   a.Metrics,
	})
	return portal
}

// Close stops live dashboards and releases store connections.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
	a.cancel()
}
