package routes

import (
	"github.com/gofiber/fiber/v2"

	"compilex/internal/handlers"
	"compilex/internal/middleware"
)

// UploadRoutes mirrors the client's API contract: feeds and lookups
// first, then the parameterized post and interaction routes.
func UploadRoutes(app *fiber.App, uploads *handlers.UploadHandler, social *handlers.SocialHandler) {
	protect := middleware.RequireAuth()
	group := app.Group("/api/uploads")

	group.Post("/", protect, uploads.Create)
	group.Get("/", protect, uploads.InfoFeed)
	group.Get("/all", protect, uploads.ListAll)
	group.Get("/projects", protect, uploads.ProjectFeed)
	group.Get("/my", protect, uploads.MyUploads)

	// subject lookups stay open for the browse pages
	group.Get("/subjects", uploads.Subjects)
	group.Get("/subjects/list", uploads.SubjectList)

	group.Get("/download/:id", protect, uploads.Download)
	group.Get("/:id/download", protect, uploads.Download)

	group.Get("/:id", protect, uploads.GetByID)
	group.Put("/:id", protect, uploads.Update)
	group.Delete("/:id", protect, uploads.Delete)

	group.Post("/:id/like", protect, social.ToggleLike)
	group.Post("/:id/comment", protect, social.AddComment)
	group.Post("/:id/comment/:commentId/like", protect, social.ToggleCommentLike)
	group.Post("/:id/comment/:commentId/reply", protect, social.AddReply)
	group.Put("/:id/comment/:commentId/reply/:replyId", protect, social.EditReply)
	group.Delete("/:id/comment/:commentId/reply/:replyId", protect, social.DeleteReply)
	group.Put("/:id/comment/:commentId", protect, social.EditComment)
	group.Delete("/:id/comment/:commentId", protect, social.DeleteComment)
}
