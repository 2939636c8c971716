package controller

import (
	"rag-api-explorer-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	HealthCheck(ctx *fiber.Ctx) error
	Liveness(ctx *fiber.Ctx) error
}

type healthController struct {
	service service.IHealthService
}

func NewHealthController(service service.IHealthService) IHealthController {
	return &healthController{service: service}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.HealthCheck)
	r.Get("/health/live", c.Liveness)
}

// HealthCheck pings the database. 503 when it is unreachable.
func (c *healthController) HealthCheck(ctx *fiber.Ctx) error {
	res := c.service.Check(ctx.UserContext())
	if res.Status != service.HealthStatusHealthy {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(res)
	}
	return ctx.JSON(res)
}

func (c *healthController) Liveness(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{"status": "alive"})
}
