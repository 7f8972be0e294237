package handlers

import (
	"log/slog"

	"city-game-system/apperrors"
	"city-game-system/geo"
	"city-game-system/middleware"
	"city-game-system/services"

	"github.com/gofiber/fiber/v2"
)

type PlayHandler struct {
	Play *services.PlayService
}

// completeTaskRequest uses pointers so a missing field is told apart from 0.
type completeTaskRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (h *PlayHandler) Start(c *fiber.Ctx) error {
	res, err := h.Play.StartSession(c.UserContext(), c.Params("gameId"), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

func (h *PlayHandler) CompleteTask(c *fiber.Ctx) error {
	var req completeTaskRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Debug("complete task: bad body", "error", err)
		return respondError(c, apperrors.ErrInvalidRequest.WithMessage("request body must be JSON with latitude and longitude"))
	}
	if req.Latitude == nil || req.Longitude == nil {
		return respondError(c, apperrors.ErrInvalidRequest.WithMessage("latitude and longitude are required"))
	}
	if !geo.ValidCoordinates(*req.Latitude, *req.Longitude) {
		return respondError(c, apperrors.ErrInvalidCoordinates)
	}

	res, err := h.Play.CompleteTask(c.UserContext(), middleware.UserID(c),
		c.Params("userGameId"), c.Params("taskId"), *req.Latitude, *req.Longitude)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}
