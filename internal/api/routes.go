package api

import (
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all API routes.
func SetupRoutes(app *fiber.App, handler *Handler, apiKey string) {
	v1 := app.Group("/v1")
	v1.Use(RateLimiter(600))
	if apiKey != "" {
		v1.Use(ValidateAPIKey(apiKey))
	}

	objects := v1.Group("/objects")
	objects.Post("/", handler.Register)
	objects.Post("/batch", handler.RegisterBatch)

	app.Get("/healthz", handler.Health)
	app.Get("/metrics", handler.Metrics)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": "jsonregistry",
			"status":  "running",
			"endpoints": fiber.Map{
				"register":      "POST /v1/objects",
				"registerBatch": "POST /v1/objects/batch",
				"health":        "GET /healthz",
				"metrics":       "GET /metrics",
			},
		})
	})

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(
			NewErrorResponse("endpoint not found", ErrCodeNotFound),
		)
	})
}
