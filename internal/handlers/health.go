package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wyzo-ops/orderbot-backend/database"
	"github.com/wyzo-ops/orderbot-backend/internal/bot"
)

// Health returns a handler reporting process and dependency status.
func Health(convs *bot.ConversationManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := "healthy"
		statusCode := fiber.StatusOK

		dbConnected := false
		if database.DB != nil {
			sqlDB, err := database.DB.DB()
			if err != nil || sqlDB.Ping() != nil {
				status = "unhealthy"
				statusCode = fiber.StatusServiceUnavailable
			} else {
				dbConnected = true
			}
		}

		return c.Status(statusCode).JSON(fiber.Map{
			"status": status,
			"services": fiber.Map{
				"database":             dbConnected,
				"active_conversations": convs.ActiveCount(),
			},
		})
	}
}
