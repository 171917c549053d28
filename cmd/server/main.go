package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	config "github.com/maheshrc27/clipcast/configs"
	"github.com/maheshrc27/clipcast/internal/api/handlers"
	"github.com/maheshrc27/clipcast/internal/service"
	"github.com/maheshrc27/clipcast/internal/workspace"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    cfg.MaxUploadMB * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	frameService := service.NewFrameService()
	videoService := service.NewVideoService(*cfg)
	driveService := service.NewDriveService()
	facebookService := service.NewFacebookService()
	instagramService := service.NewInstagramService()
	tiktokService := service.NewTiktokService()
	youtubeService := service.NewYoutubeService()

	var archiveService *service.ArchiveService
	if cfg.ArchiveEnabled() {
		archiveService = service.NewArchiveService(*cfg)
	}

	renderService := service.NewRenderService(
		*cfg,
		frameService,
		videoService,
		driveService,
		facebookService,
		instagramService,
		tiktokService,
		youtubeService,
		archiveService,
	)

	render := handlers.NewRenderHandler(renderService)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	api := app.Group("/api")
	api.Post("/render", render.CreateRender)

	// janitor for workspaces leaked by a crashed process
	maxAge := time.Duration(cfg.WorkspaceMaxAge) * time.Minute
	c := cron.New()
	c.AddFunc("@every 00h10m00s", func() {
		workspace.Sweep(cfg.TempDir, maxAge)
	})
	c.Start()

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on http://localhost:%s", cfg.Port)

	gracefulShutdown(app)
}

func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	log.Println("Server shutdown complete.")
}
