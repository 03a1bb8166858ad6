package handlers

import (
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/vitalmotion-client/internal/api/dto"
	"github.com/spec-kit/vitalmotion-client/internal/domain"
	"github.com/spec-kit/vitalmotion-client/internal/service"
	apperrors "github.com/spec-kit/vitalmotion-client/pkg/util"
)

// AdminHandler serves physician account management.
type AdminHandler struct {
	admin *service.AdminService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(admin *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// Show handles GET /admin/dashboard.
func (h *AdminHandler) Show(c *fiber.Ctx) error {
	doctors, err := h.admin.ListDoctors(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"view": domain.RoleAdmin.DashboardPath(), "doctors": doctors}})
}

// CreateDoctor handles POST /admin/doctors.
func (h *AdminHandler) CreateDoctor(c *fiber.Ctx) error {
	var req dto.DoctorForm
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	doctors, err := h.admin.CreateDoctor(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": fiber.Map{"doctors": doctors}})
}

// SetStatus handles PATCH /admin/doctors/:email/status?active=bool.
func (h *AdminHandler) SetStatus(c *fiber.Ctx) error {
	active, err := strconv.ParseBool(c.Query("active"))
	if err != nil {
		return apperrors.NewValidationError("active must be true or false", nil)
	}
	email, err := url.PathUnescape(c.Params("email"))
	if err != nil {
		return apperrors.NewValidationError("invalid email", nil)
	}
	doctors, err := h.admin.SetDoctorActive(c.UserContext(), email, active)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"doctors": doctors}})
}
