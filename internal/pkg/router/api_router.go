package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/AvaliaJa/AvaliaJa/app/controllers"
	"github.com/AvaliaJa/AvaliaJa/internal/pkg/billing"
	"github.com/AvaliaJa/AvaliaJa/internal/pkg/database"
	"github.com/AvaliaJa/AvaliaJa/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	billingService := billing.NewServiceFromDB(database.GetDB())
	controllers.SetBillingService(billingService)

	v1 := api.Group("/v1", middleware.RequireAuth)

	v1.Post("/billing/intents", controllers.HandleBillingCreateIntent)
	v1.Post("/billing/confirm", controllers.HandleBillingConfirm)
	v1.Get("/billing/subscription", controllers.HandleBillingSubscription)

	v1.Get("/waiters", controllers.HandleWaiterList)
	v1.Post("/waiters", controllers.HandleWaiterCreate)
	v1.Put("/waiters/:id", controllers.HandleWaiterUpdate)
	v1.Delete("/waiters/:id", controllers.HandleWaiterDelete)

	v1.Get("/stats", controllers.HandleRestaurantStats)

	// The leaderboard is the paid feature. Entitlement is checked against
	// the billing state on every request.
	gated := v1.Group("/restaurants/:id", middleware.RequireActiveSubscription(billingService))
	gated.Get("/leaderboard", controllers.HandleLeaderboard)
	gated.Get("/champions", controllers.HandleChampionList)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
