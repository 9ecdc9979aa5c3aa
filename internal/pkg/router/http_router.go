package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/AvaliaJa/AvaliaJa/app/controllers"
	"github.com/AvaliaJa/AvaliaJa/internal/pkg/middleware"
	"github.com/AvaliaJa/AvaliaJa/internal/pkg/session"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	h.registerPublicRoutes(app)
}

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	// The tracking redirect is the hot path: no auth, no session writes.
	app.Get("/r/:token", controllers.HandleTrackingRedirect)

	app.Post("/register", controllers.HandleAuthRegister)
	app.Post("/login", controllers.HandleAuthLogin)
	app.Post("/logout", controllers.HandleAuthLogout)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
