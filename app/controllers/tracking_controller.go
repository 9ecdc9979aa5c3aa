package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/AvaliaJa/AvaliaJa/internal/pkg/tracking"
)

var trackingService *tracking.Service

// SetTrackingService wires the tracking service used by the public redirect
// handler. Called once during router setup.
func SetTrackingService(svc *tracking.Service) {
	trackingService = svc
}

// HandleTrackingRedirect resolves a tracking token, records the click and
// redirects the visitor to the restaurant's review page. Unknown, inactive
// and expired tokens all produce the same generic 404 so the token space
// cannot be probed.
func HandleTrackingRedirect(c *fiber.Ctx) error {
	token := c.Params("token")

	link, err := trackingService.Resolve(c.Context(), token)
	if err != nil {
		if errors.Is(err, tracking.ErrLinkNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Link invalid or expired"})
		}
		log.Errorf("[Tracking] token resolution failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Something went wrong"})
	}

	if _, err := trackingService.RecordClick(c.Context(), link, tracking.ClickMeta{
		IP:        c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}); err != nil {
		// The visitor still gets redirected; losing one click row is
		// preferable to showing an error page.
		log.Errorf("[Tracking] failed to record click for waiter %d: %v", link.WaiterID, err)
	}

	return c.Redirect(link.GoogleReviewURL, fiber.StatusSeeOther)
}
