package handlers

import (
	"city-game-system/services"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	Tasks *services.TaskService
}

// DeleteTask soft-deletes a task and the game steps using it.
func (h *AdminHandler) DeleteTask(c *fiber.Ctx) error {
	steps, err := h.Tasks.DeleteTask(c.UserContext(), c.Params("taskId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": true, "gameStepsRemoved": steps})
}
