package routes

import (
	"github.com/gofiber/fiber/v2"

	"compilex/internal/handlers"
)

type Deps struct {
	Users   *handlers.UserHandler
	Uploads *handlers.UploadHandler
	Social  *handlers.SocialHandler
}

func Register(app *fiber.App, d Deps) {
	UserRoutes(app, d.Users)
	UploadRoutes(app, d.Uploads, d.Social)
}
