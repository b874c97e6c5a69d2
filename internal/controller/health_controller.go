package controller

import (
	"aivaidya-be/internal/dto"
	"aivaidya-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

type IHealthController interface {
	RegisterRoutes(api fiber.Router)
	Liveness(ctx *fiber.Ctx) error
}

type healthController struct {
	provider string
}

func NewHealthController(provider string) IHealthController {
	return &healthController{provider: provider}
}

func (c *healthController) RegisterRoutes(api fiber.Router) {
	api.Get("/health", c.Liveness)
}

// Liveness reports that the process is up. It does not call the model; use
// /api/ai/self-test for that.
// @Summary Liveness check
// @Tags Health
// @Produce json
// @Success 200 {object} serverutils.BaseResponse[dto.HealthResponse]
// @Router /api/health [get]
func (c *healthController) Liveness(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("", dto.HealthResponse{
		Status:   "ok",
		Provider: c.provider,
	}))
}
