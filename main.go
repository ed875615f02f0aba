package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"

	"compilex/bootstrap"
	"compilex/configs"
	"compilex/database"
	_ "compilex/docs"
	"compilex/internal/filestore"
	"compilex/internal/handlers"
	"compilex/internal/middleware"
	"compilex/internal/repository"
	"compilex/internal/routes"
	"compilex/services"
)

// @title        CompileX API
// @version      1.0
// @description  Student academic resource sharing backend.
// @BasePath     /api
func main() {
	cfg := configs.Load()

	var uploads repository.UploadStore
	var users repository.UserStore
	var files filestore.FileStore

	if cfg.Storage == "memory" {
		log.Println("STORAGE=memory: state is not persisted")
		uploads = repository.NewMemoryUploadStore()
		users = repository.NewMemoryUserStore()
		files = filestore.NewMemoryStore()
	} else {
		client := database.ConnectMongo(cfg.MongoURI)
		defer database.DisconnectMongo(client)

		db := client.Database(cfg.DBName)
		if err := bootstrap.EnsureIndexes(db); err != nil {
			log.Fatalf("ensure indexes failed: %v", err)
		}
		uploads = repository.NewUploadRepository(db)
		users = repository.NewUserRepository(db)

		store, err := filestore.NewCloudinaryStore(cfg.CloudinaryURL)
		if err != nil {
			log.Fatalf("cloudinary setup failed: %v", err)
		}
		files = store
	}

	auth := services.NewAuthService(users, cfg.JWTSecret)
	social := services.NewSocialService(uploads, users)
	uploadSvc := services.NewUploadService(uploads, users, files)

	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	app.Get("/docs/*", swagger.HandlerDefault)
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Server is live.")
	})

	app.Use(middleware.JWTAuth(cfg.JWTSecret))

	routes.Register(app, routes.Deps{
		Users:   &handlers.UserHandler{Service: auth},
		Uploads: &handlers.UploadHandler{Service: uploadSvc},
		Social:  &handlers.SocialHandler{Service: social},
	})

	log.Printf("listening at http://localhost:%s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
