package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/wyzo-ops/orderbot-backend/database"
	"github.com/wyzo-ops/orderbot-backend/internal/bot"
	"github.com/wyzo-ops/orderbot-backend/internal/config"
	"github.com/wyzo-ops/orderbot-backend/internal/models"
	"github.com/wyzo-ops/orderbot-backend/internal/routes"
	"github.com/wyzo-ops/orderbot-backend/internal/services"
	"github.com/wyzo-ops/orderbot-backend/internal/storage"
)

func main() {
	cfg := config.Load()

	// Initialize storage
	var store storage.Store

	if cfg.UseMemoryStore {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect()

		log.Println("🔄 Running database migrations...")
		if err := database.DB.AutoMigrate(&models.Session{}); err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(database.DB)
	}

	apiClient := services.NewAPIClient(cfg)

	tgBot, err := bot.New(cfg, store, apiClient)
	if err != nil {
		log.Fatal("Failed to initialize Telegram bot:", err)
	}

	// Create fiber app for the operational surface
	app := fiber.New(fiber.Config{
		AppName: "OrderBot Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	routes.SetupRoutes(app, tgBot.Dialogue().Conversations())

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	go func() {
		log.Printf("🚀 OrderBot backend starting on port %s", cfg.AppPort)
		if err := app.Listen(":" + cfg.AppPort); err != nil {
			log.Printf("HTTP server stopped: %v", err)
		}
	}()

	log.Println("🤖 Starting Telegram bot...")
	tgBot.Run(ctx)
	log.Println("👋 Bot stopped")
}
