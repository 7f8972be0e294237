package handlers

import (
	"city-game-system/middleware"
	"city-game-system/services"

	"github.com/gofiber/fiber/v2"
)

type GameHandler struct {
	Games *services.GameService
}

func (h *GameHandler) List(c *fiber.Ctx) error {
	page, err := h.Games.ListGames(c.UserContext(), c.QueryInt("page", 1), c.QueryInt("limit", services.DefaultPageLimit))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

func (h *GameHandler) Get(c *fiber.Ctx) error {
	game, err := h.Games.GetGame(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(game)
}

func (h *GameHandler) ListActive(c *fiber.Ctx) error {
	games, err := h.Games.ListActive(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": games})
}

func (h *GameHandler) GetActive(c *fiber.Ctx) error {
	game, err := h.Games.GetActive(c.UserContext(), middleware.UserID(c), c.Params("userGameId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(game)
}

func (h *GameHandler) ListCompleted(c *fiber.Ctx) error {
	page, err := h.Games.ListCompleted(c.UserContext(), middleware.UserID(c),
		c.QueryInt("page", 1), c.QueryInt("limit", services.DefaultPageLimit))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}
