package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/AvaliaJa/AvaliaJa/internal/pkg/billing"
	"github.com/AvaliaJa/AvaliaJa/internal/pkg/usercontext"
)

// RequireAuth rejects unauthenticated requests with a JSON 401.
func RequireAuth(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}
	return c.Next()
}

// RequireAdmin allows only admin users through.
func RequireAdmin(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)
	if !uc.IsLoggedIn || !uc.IsAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "admin access required",
		})
	}
	return c.Next()
}

// RequireActiveSubscription gates a route behind a valid subscription.
// Entitlement is derived from the billing state on every request, never
// from a cached flag on the user.
func RequireActiveSubscription(svc *billing.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uc := usercontext.GetUserContext(c)
		if !uc.IsLoggedIn {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authentication required",
			})
		}

		status, err := svc.CheckSubscription(c.Context(), uc.UserID)
		if err != nil {
			log.Errorf("subscription check failed for user %d: %v", uc.UserID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "could not verify subscription",
			})
		}

		if !status.IsSubscribed {
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
				"error": "active subscription required",
			})
		}

		return c.Next()
	}
}
