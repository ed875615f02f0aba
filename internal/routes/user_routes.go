package routes

import (
	"github.com/gofiber/fiber/v2"

	"compilex/internal/handlers"
	"compilex/internal/middleware"
)

func UserRoutes(app *fiber.App, h *handlers.UserHandler) {
	user := app.Group("/api/user")

	user.Post("/register", h.Register)
	user.Post("/login", h.Login)
	user.Get("/me", middleware.RequireAuth(), h.Me)
}
