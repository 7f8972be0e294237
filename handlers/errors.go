package handlers

import (
	"errors"
	"log/slog"

	"city-game-system/apperrors"

	"github.com/gofiber/fiber/v2"
)

// respondError writes err as a JSON error body. Domain errors keep their
// status and code; anything else is logged and reported as a 500.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}
	return c.Status(apperrors.StatusOf(err)).JSON(fiber.Map{
		"error": appErr.Message,
		"code":  apperrors.CodeOf(err),
	})
}
