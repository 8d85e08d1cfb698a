package rest

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	pkgError "github.com/wadesk/wadesk/pkg/error"
	"github.com/wadesk/wadesk/pkg/utils"
)

// agentID extracts the acting agent's id. Authentication itself lives in a
// fronting proxy; this layer only requires that the identity header arrived.
func agentID(c *fiber.Ctx) (string, error) {
	id := c.Get("X-Agent-ID")
	if id == "" {
		return "", pkgError.ValidationError("missing X-Agent-ID header")
	}
	return id, nil
}

// respondError maps a usecase error onto the response envelope, honoring the
// status/code of typed errors and defaulting everything else to 500.
func respondError(c *fiber.Ctx, err error) error {
	var generic pkgError.GenericError
	if errors.As(err, &generic) {
		return c.Status(generic.StatusCode()).JSON(utils.ResponseData{
			Status:  generic.StatusCode(),
			Code:    generic.ErrCode(),
			Message: generic.Error(),
		})
	}
	return c.Status(500).JSON(utils.ResponseData{
		Status:  500,
		Code:    "INTERNAL_SERVER_ERROR",
		Message: err.Error(),
	})
}
