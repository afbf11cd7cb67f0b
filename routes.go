package main

import (
	"github.com/Aquilabot/KreaPC-Specs/internal/models"
	"github.com/Aquilabot/KreaPC-Specs/pkg/gateway"
	"github.com/Aquilabot/KreaPC-Specs/pkg/resolver"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type LookupRequest struct {
	ComponentType string `json:"component_type" validate:"required"`
	Query         string `json:"query" validate:"required,max=300"`
}

var requestValidator = validator.New()

// lookupStatusCodes maps lookup outcomes onto HTTP statuses. Quota exhaustion gets its own code
// so clients can tell the user to wait or upgrade.
var lookupStatusCodes = map[models.LookupStatus]int{
	models.StatusMatched:        fiber.StatusOK,
	models.StatusNotFound:       fiber.StatusNotFound,
	models.StatusQuotaExhausted: fiber.StatusPaymentRequired,
	models.StatusError:          fiber.StatusInternalServerError,
}

func newApp(engine *resolver.Engine, credits *gateway.Credits) *fiber.App {
	// Create a Fiber app
	app := fiber.New()
	app.Use(helmet.New())
	app.Use(logger.New(logger.Config{
		Format: "${pid} | ${time} | ${latency} | [${ip}]:${port} | ${status} - ${method} ${path}\n",
	}))

	// Endpoint for resolving a component's specifications
	app.Post("/lookup", func(c *fiber.Ctx) error {
		var req LookupRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request payload"})
		}
		if err := requestValidator.Struct(req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		ct, err := models.ParseComponentType(req.ComponentType)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		result := engine.Lookup(c.UserContext(), ct, req.Query)
		return c.Status(lookupStatusCodes[result.Status]).JSON(result)
	})

	app.Get("/jobs", func(c *fiber.Ctx) error {
		return c.JSON(engine.Jobs().List())
	})

	app.Get("/jobs/:id", func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid job id"})
		}
		job, ok := engine.Jobs().Get(id)
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Job not found"})
		}
		return c.JSON(job)
	})

	app.Get("/credits", func(c *fiber.Ctx) error {
		return c.JSON(credits.Balance())
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	return app
}
