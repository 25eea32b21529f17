package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/deskflow/helpdesk-api/pkg/util/errorutil"
)

// RequireAuthenticated ensures a principal was resolved.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := RequireActor(ActorFromContext(c)); err != nil {
			return err
		}
		return c.Next()
	}
}

// RequireAdmin ensures the caller holds the ADMIN role.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := ActorFromContext(c)
		if err := RequireActor(actor); err != nil {
			return err
		}
		if !actor.IsAdmin() {
			return apperrors.NewForbidden("admin role required")
		}
		return c.Next()
	}
}
