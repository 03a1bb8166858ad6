package handlers

import (
	"context"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger is a dependency whose reachability gates readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BackendStatus reports whether the backend answered the last request.
type BackendStatus interface {
	BaseURL() string
	Offline() bool
}

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	backend     BackendStatus
	deps        map[string]Pinger
}

// NewHealthHandler returns a new handler instance. deps names the session
// store dependencies checked by Ready.
func NewHealthHandler(serviceName, version string, backend BackendStatus, deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, backend: backend, deps: deps}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking dependencies. The backend is
// reported but does not gate readiness: the client keeps its session offline.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true

	names := make([]string, 0, len(h.deps))
	for name := range h.deps {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := h.deps[name].Ping(ctx); err != nil {
			depStatus[name] = err.Error()
			ready = false
		} else {
			depStatus[name] = "ok"
		}
	}

	if h.backend != nil {
		state := "online"
		if h.backend.Offline() {
			state = "offline"
		}
		depStatus["backend"] = fiber.Map{"url": h.backend.BaseURL(), "state": state}
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "one or more dependencies unavailable",
			"details": depStatus,
		},
	})
}

// About handles GET /about.
func (h *HealthHandler) About(c *fiber.Ctx) error {
	data := fiber.Map{
		"name":    "VitalMotion",
		"service": h.serviceName,
		"version": h.version,
		"notice":  "AI insights are advisory and support licensed medical professionals.",
	}
	if h.backend != nil {
		data["api"] = h.backend.BaseURL()
	}
	return c.JSON(fiber.Map{"data": data})
}
