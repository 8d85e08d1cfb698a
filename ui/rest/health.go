package rest

import (
	"github.com/gofiber/fiber/v2"
	domainHealth "github.com/wadesk/wadesk/domains/health"
	"github.com/wadesk/wadesk/pkg/utils"
)

type Health struct {
	Service domainHealth.IHealthUsecase
}

func InitRestHealth(app fiber.Router, service domainHealth.IHealthUsecase) Health {
	handler := Health{Service: service}

	app.Get("/api/health", handler.GetStatus)

	return handler
}

func (h *Health) GetStatus(c *fiber.Ctx) error {
	record, err := h.Service.GetStatus(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Health status retrieved",
		Results: record,
	})
}
