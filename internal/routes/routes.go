package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wyzo-ops/orderbot-backend/internal/bot"
	"github.com/wyzo-ops/orderbot-backend/internal/handlers"
)

// SetupRoutes configures the operational HTTP surface.
func SetupRoutes(app *fiber.App, convs *bot.ConversationManager) {

	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": "OrderBot Backend",
			"version": "1.0.0",
			"endpoints": fiber.Map{
				"health": "/health",
			},
		})
	})

	app.Get("/health", handlers.Health(convs))
}
