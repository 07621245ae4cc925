package engine

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, h *Handler) {
	api := app.Group("/api")

	api.Post("/message", h.Message)
}
