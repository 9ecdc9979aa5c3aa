package router

import (
	"github.com/gofiber/fiber/v2"
)

// Router installs a group of routes into the app.
type Router interface {
	InstallRouter(app *fiber.App)
}

// InstallRouter wires all route groups. The HTTP router runs first so the
// session store and the global UserContext middleware exist before the API
// routes that depend on them.
func InstallRouter(app *fiber.App) {
	setup(app, NewHttpRouter(), NewApiRouter())
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
