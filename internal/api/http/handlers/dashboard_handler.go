package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/vitalmotion-client/internal/api/dto"
	"github.com/spec-kit/vitalmotion-client/internal/domain"
	"github.com/spec-kit/vitalmotion-client/internal/live"
	"github.com/spec-kit/vitalmotion-client/internal/service"
	apperrors "github.com/spec-kit/vitalmotion-client/pkg/util"
)

// DashboardHandler serves the live patient and doctor dashboards.
type DashboardHandler struct {
	auth     *service.AuthService
	clinical *service.ClinicalService
	registry *live.Registry
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(authService *service.AuthService, clinical *service.ClinicalService, registry *live.Registry) *DashboardHandler {
	return &DashboardHandler{auth: authService, clinical: clinical, registry: registry}
}

// Show handles GET /{role}/dashboard.
func (h *DashboardHandler) Show(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dash, err := h.registry.Open(c.UserContext(), role)
		if err != nil {
			return err
		}
		data := fiber.Map{
			"view":      role.DashboardPath(),
			"dashboard": dash.Snapshot(),
		}
		if role == domain.RoleDoctor {
			s := h.auth.Current(c.UserContext())
			data["doctor_name"] = s.Claims.DisplayName("Physician")
		}
		return c.JSON(fiber.Map{"data": data})
	}
}

// Insight handles POST /{role}/dashboard/insight.
func (h *DashboardHandler) Insight(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dash, err := h.registry.Open(c.UserContext(), role)
		if err != nil {
			return err
		}
		text, err := dash.Insight(c.UserContext())
		if err != nil {
			if errors.Is(err, live.ErrNoVitals) {
				return apperrors.NewValidationError(err.Error(), nil)
			}
			return err
		}
		return c.JSON(fiber.Map{"data": fiber.Map{"insight": text}})
	}
}

// Chat handles POST /{role}/dashboard/chat.
func (h *DashboardHandler) Chat(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req dto.ChatForm
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
		dash, err := h.registry.Open(c.UserContext(), role)
		if err != nil {
			return err
		}
		if err := dash.SendChat(c.UserContext(), req.Message); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": fiber.Map{"messages": dash.Snapshot().Messages}})
	}
}

// Scan handles POST /doctor/dashboard/scan with a multipart "file" field.
func (h *DashboardHandler) Scan(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("a document is required", nil)
	}
	f, err := header.Open()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	defer f.Close()

	data, err := h.clinical.AnalyzeDocument(c.UserContext(), header.Filename, f)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": data})
}
