package main

import (
	"log"

	"tasksonline/backend/config"
	"tasksonline/backend/middleware"
	"tasksonline/backend/routes"
	"tasksonline/backend/storage"
	"tasksonline/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}
	if err := utils.SeedBasicData(db); err != nil {
		log.Fatalf("Error seeding basic data: %v", err)
	}

	// Initialize upload storage
	store, err := storage.New(cfg.UploadDir, cfg.MaxUploadSize)
	if err != nil {
		log.Fatalf("Error initializing upload storage: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: int(cfg.MaxUploadSize) * cfg.MaxUploadFiles,
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, db, cfg, store)

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
