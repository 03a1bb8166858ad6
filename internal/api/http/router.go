package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/vitalmotion-client/internal/api/http/handlers"
	"github.com/spec-kit/vitalmotion-client/internal/auth"
	"github.com/spec-kit/vitalmotion-client/internal/domain"
	"github.com/spec-kit/vitalmotion-client/internal/navigation"
	"github.com/spec-kit/vitalmotion-client/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Auth      *handlers.AuthHandler
	Dashboard *handlers.DashboardHandler
	Admin     *handlers.AdminHandler
	Guard     *auth.Guard
	Navigator navigation.Navigator
	Metrics   *observability.Metrics
}

// RegisterRoutes wires the portal routes. GET on a view is a navigation;
// dashboards are guarded by role.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	view := TrackView(cfg.Navigator)

	app.Get("/", cfg.Auth.Root)
	app.Get("/about", view, cfg.Health.About)

	app.Get(navigation.DefaultEntry, view, cfg.Auth.View)
	app.Post(navigation.DefaultEntry, cfg.Auth.Entry)
	for _, role := range domain.Roles {
		app.Get(role.LoginPath(), view, cfg.Auth.View)
		app.Post(role.LoginPath(), cfg.Auth.Login(role))
	}
	app.Get("/user/otp", view, cfg.Auth.ActivationView)
	app.Post("/user/otp", cfg.Auth.VerifyOTP)
	app.Get("/user/create-password", view, cfg.Auth.ActivationView)
	app.Post("/user/create-password", cfg.Auth.CreatePassword)
	app.Post("/logout", cfg.Auth.Logout)

	for _, role := range []domain.Role{domain.RoleUser, domain.RoleDoctor} {
		guard := auth.RequireView(cfg.Guard, role, cfg.Navigator)
		dash := app.Group(role.DashboardPath())
		dash.Get("", guard, view, cfg.Dashboard.Show(role))
		dash.Post("/insight", guard, cfg.Dashboard.Insight(role))
		dash.Post("/chat", guard, cfg.Dashboard.Chat(role))
	}
	app.Post(domain.RoleDoctor.DashboardPath()+"/scan", auth.RequireView(cfg.Guard, domain.RoleDoctor, cfg.Navigator), cfg.Dashboard.Scan)

	adminGuard := auth.RequireView(cfg.Guard, domain.RoleAdmin, cfg.Navigator)
	app.Get(domain.RoleAdmin.DashboardPath(), adminGuard, view, cfg.Admin.Show)
	admin := app.Group("/admin/doctors", adminGuard)
	admin.Post("", cfg.Admin.CreateDoctor)
	admin.Patch("/:email/status", cfg.Admin.SetStatus)
}
