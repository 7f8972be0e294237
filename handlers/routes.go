package handlers

import (
	"city-game-system/middleware"
	"city-game-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupGameRoutes registers the player and admin API. Every route needs the
// user context forwarded by the gateway.
func SetupGameRoutes(app *fiber.App, games *services.GameService, play *services.PlayService, tasks *services.TaskService) {
	gh := &GameHandler{Games: games}
	ph := &PlayHandler{Play: play}
	ah := &AdminHandler{Tasks: tasks}

	api := app.Group("/api", middleware.UserContextMiddleware())

	// Static segments before /games/:id.
	api.Get("/games", gh.List)
	api.Get("/games/active", gh.ListActive)
	api.Get("/games/active/:userGameId", gh.GetActive)
	api.Get("/games/completed", gh.ListCompleted)
	api.Get("/games/:id", gh.Get)

	api.Post("/games/:gameId/start", ph.Start)
	api.Post("/games/:userGameId/tasks/:taskId/complete", ph.CompleteTask)

	admin := api.Group("/admin", middleware.RequireRole(middleware.RoleAdmin))
	admin.Delete("/tasks/:taskId", ah.DeleteTask)
}

// SetupHealthRoutes registers the liveness check.
func SetupHealthRoutes(app *fiber.App) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}
