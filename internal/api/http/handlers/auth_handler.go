package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/vitalmotion-client/internal/api/dto"
	"github.com/spec-kit/vitalmotion-client/internal/domain"
	"github.com/spec-kit/vitalmotion-client/internal/navigation"
	"github.com/spec-kit/vitalmotion-client/internal/service"
	apperrors "github.com/spec-kit/vitalmotion-client/pkg/util"
)

// AuthHandler serves the authentication views.
type AuthHandler struct {
	auth *service.AuthService
	nav  navigation.Navigator
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, nav navigation.Navigator) *AuthHandler {
	return &AuthHandler{auth: authService, nav: nav}
}

// Root handles GET / by sending the client to the entry view.
func (h *AuthHandler) Root(c *fiber.Ctx) error {
	h.nav.Navigate(c.UserContext(), navigation.DefaultEntry)
	return redirect(c, navigation.DefaultEntry)
}

// View handles GET on the authentication views.
func (h *AuthHandler) View(c *fiber.Ctx) error {
	data := fiber.Map{"view": c.Path()}
	if email, ok := h.auth.PendingEmail(c.UserContext()); ok {
		data["pending_email"] = email
	}
	return c.JSON(fiber.Map{"data": data})
}

// ActivationView handles GET /user/otp and /user/create-password, which need
// an account pending activation.
func (h *AuthHandler) ActivationView(c *fiber.Ctx) error {
	email, ok := h.auth.PendingEmail(c.UserContext())
	if !ok {
		h.nav.Navigate(c.UserContext(), navigation.DefaultEntry)
		return redirect(c, navigation.DefaultEntry)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"view": c.Path(), "pending_email": email}})
}

// Entry handles POST /user/auth: patient login or signup.
func (h *AuthHandler) Entry(c *fiber.Ctx) error {
	var req dto.AuthForm
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.EqualFold(req.Mode, "signup") {
		if err := h.auth.Signup(c.UserContext(), req.Email, req.Phone); err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"data":     fiber.Map{"pending_email": strings.TrimSpace(req.Email)},
			"redirect": service.ViewOTP,
		})
	}
	return h.login(c, domain.RoleUser, req.Email, req.Password)
}

// Login handles POST on the per-role login views.
func (h *AuthHandler) Login(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req dto.LoginForm
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
		return h.login(c, role, req.Email, req.Password)
	}
}

// VerifyOTP handles POST /user/otp.
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req dto.OTPForm
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.auth.VerifyOTP(c.UserContext(), req.OTP); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"redirect": service.ViewCreatePassword})
}

// CreatePassword handles POST /user/create-password.
func (h *AuthHandler) CreatePassword(c *fiber.Ctx) error {
	var req dto.PasswordForm
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.auth.CreatePassword(c.UserContext(), req.Password, req.Confirm); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":     fiber.Map{"message": "account fully activated"},
		"redirect": navigation.DefaultEntry,
	})
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.auth.Logout(c.UserContext()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"redirect": service.ViewUserLogin})
}

func (h *AuthHandler) login(c *fiber.Ctx, role domain.Role, email, password string) error {
	landing, err := h.auth.Login(c.UserContext(), role, email, password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data":     fiber.Map{"role": landing},
		"redirect": landing.DashboardPath(),
	})
}

func redirect(c *fiber.Ctx, to string) error {
	c.Location(to)
	return c.Status(fiber.StatusFound).JSON(fiber.Map{"redirect": to})
}
