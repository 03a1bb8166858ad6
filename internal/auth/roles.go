package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/vitalmotion-client/internal/domain"
	"github.com/spec-kit/vitalmotion-client/internal/navigation"
)

const sessionKey = "auth_session_role"

// RequireRole renders the protected route only when the guard allows it and
// redirects to the role's login view otherwise. JSON clients get the redirect
// target in the body alongside the Location header.
func RequireRole(guard *Guard, role domain.Role) fiber.Handler {
	return RequireView(guard, role, nil)
}

// RequireView is RequireRole for a client that tracks its current view: a
// denied visit moves nav to the login view.
func RequireView(guard *Guard, role domain.Role, nav navigation.Navigator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d := guard.Authorize(c.UserContext(), role)
		if d.Allowed() {
			c.Locals(sessionKey, role)
			return c.Next()
		}
		if nav != nil {
			nav.Navigate(c.UserContext(), d.RedirectTo)
		}
		c.Location(d.RedirectTo)
		return c.Status(fiber.StatusFound).JSON(fiber.Map{"redirect": d.RedirectTo})
	}
}

// RoleFromContext returns the role admitted by RequireRole.
func RoleFromContext(c *fiber.Ctx) (domain.Role, bool) {
	role, ok := c.Locals(sessionKey).(domain.Role)
	return role, ok
}
