package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"city-game-system/middleware"
	"city-game-system/services"
	"city-game-system/testkit"

	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
)

const token = "test-token"

type apiEnv struct {
	app  *fiber.App
	game *testkit.Fixture
}

func setupAPI(t *testing.T) *apiEnv {
	t.Helper()
	db := testkit.NewDB(t)
	clock := clockwork.NewFakeClockAt(testkit.FixedTime)

	app := fiber.New()
	SetupHealthRoutes(app)
	app.Use(middleware.GatewayAuthMiddleware(token))
	SetupGameRoutes(app,
		services.NewGameService(db, clock),
		services.NewPlayService(db, clock, nil, nil),
		services.NewTaskService(db),
	)
	return &apiEnv{
		app:  app,
		game: testkit.SeedGame(t, db, "Old Town", true, testkit.ThreeStops()...),
	}
}

// do sends a request as userID with optional comma separated roles and
// decodes the JSON response into a map.
func (e *apiEnv) do(t *testing.T, method, path, userID, roles, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Authorization", "Bearer "+token)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if roles != "" {
		req.Header.Set("X-User-Roles", roles)
	}
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	out := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
		}
	}
	return resp.StatusCode, out
}

func coords(i int) string {
	p := testkit.ThreeStops()[i]
	return fmt.Sprintf(`{"latitude": %v, "longitude": %v}`, p.Lat, p.Lon)
}

func (e *apiEnv) start(t *testing.T, userID string) string {
	t.Helper()
	status, body := e.do(t, "POST", "/api/games/"+e.game.Game.ID+"/start", userID, "", "")
	if status != fiber.StatusCreated {
		t.Fatalf("start status = %d, want 201 (%v)", status, body)
	}
	id, _ := body["sessionId"].(string)
	if id == "" {
		t.Fatalf("start body has no sessionId: %v", body)
	}
	return id
}

func (e *apiEnv) completePath(session string, task int) string {
	return "/api/games/" + session + "/tasks/" + e.game.Tasks[task].ID + "/complete"
}

func TestHealthzSkipsGateway(t *testing.T) {
	env := setupAPI(t)
	resp, err := env.app.Test(httptest.NewRequest("GET", "/healthz", nil))
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestPlayFlowOverHTTP(t *testing.T) {
	env := setupAPI(t)
	session := env.start(t, "user-1")

	status, body := env.do(t, "POST", "/api/games/"+env.game.Game.ID+"/start", "user-1", "", "")
	if status != fiber.StatusConflict || body["code"] != "GAME_ALREADY_STARTED" {
		t.Errorf("second start = %d %v, want 409 GAME_ALREADY_STARTED", status, body)
	}

	status, body = env.do(t, "POST", env.completePath(session, 1), "user-1", "", coords(1))
	if status != fiber.StatusConflict || body["code"] != "INVALID_TASK_SEQUENCE" {
		t.Errorf("out of order = %d %v, want 409 INVALID_TASK_SEQUENCE", status, body)
	}

	status, body = env.do(t, "POST", env.completePath(session, 0), "user-1", "", coords(0))
	if status != fiber.StatusOK {
		t.Fatalf("complete T1 = %d %v", status, body)
	}
	next, _ := body["nextTask"].(map[string]any)
	if body["completed"] != true || body["gameCompleted"] != false || next["id"] != env.game.Tasks[1].ID {
		t.Errorf("complete T1 body = %v", body)
	}

	status, body = env.do(t, "POST", env.completePath(session, 0), "user-1", "", coords(0))
	if status != fiber.StatusConflict || body["code"] != "TASK_ALREADY_COMPLETED" {
		t.Errorf("replay = %d %v, want 409 TASK_ALREADY_COMPLETED", status, body)
	}

	status, body = env.do(t, "POST", env.completePath(session, 1), "user-1", "", coords(0))
	if status != fiber.StatusConflict || body["code"] != "WRONG_LOCATION" {
		t.Errorf("wrong location = %d %v, want 409 WRONG_LOCATION", status, body)
	}

	status, body = env.do(t, "POST", env.completePath(session, 1), "user-2", "", coords(1))
	if status != fiber.StatusConflict || body["code"] != "OWNERSHIP_MISMATCH" {
		t.Errorf("other user = %d %v, want 409 OWNERSHIP_MISMATCH", status, body)
	}

	for i := 1; i < 3; i++ {
		status, body = env.do(t, "POST", env.completePath(session, i), "user-1", "", coords(i))
		if status != fiber.StatusOK {
			t.Fatalf("complete T%d = %d %v", i+1, status, body)
		}
	}
	if body["gameCompleted"] != true || body["nextTask"] != nil {
		t.Errorf("final body = %v, want gameCompleted and null nextTask", body)
	}

	status, body = env.do(t, "POST", env.completePath(session, 2), "user-1", "", coords(2))
	if status != fiber.StatusBadRequest || body["code"] != "SESSION_ALREADY_COMPLETED" {
		t.Errorf("after completion = %d %v, want 400 SESSION_ALREADY_COMPLETED", status, body)
	}

	status, body = env.do(t, "GET", "/api/games/completed", "user-1", "", "")
	data, _ := body["data"].([]any)
	if status != fiber.StatusOK || len(data) != 1 {
		t.Errorf("completed = %d %v", status, body)
	}
}

func TestCompleteTaskBodyValidation(t *testing.T) {
	env := setupAPI(t)
	session := env.start(t, "user-1")

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"missing body", "", "INVALID_REQUEST"},
		{"malformed", `{"latitude":`, "INVALID_REQUEST"},
		{"missing longitude", `{"latitude": 54.35}`, "INVALID_REQUEST"},
		{"latitude out of range", `{"latitude": 95, "longitude": 18.6}`, "INVALID_COORDINATES"},
		{"longitude out of range", `{"latitude": 54.35, "longitude": -181}`, "INVALID_COORDINATES"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(t, "POST", env.completePath(session, 0), "user-1", "", tt.body)
			if status != fiber.StatusBadRequest || body["code"] != tt.wantCode {
				t.Errorf("got %d %v, want 400 %s", status, body, tt.wantCode)
			}
		})
	}
}

func TestGameReadEndpoints(t *testing.T) {
	env := setupAPI(t)

	status, body := env.do(t, "GET", "/api/games?page=1&limit=5", "user-1", "", "")
	data, _ := body["data"].([]any)
	if status != fiber.StatusOK || len(data) != 1 {
		t.Fatalf("list = %d %v", status, body)
	}

	status, body = env.do(t, "GET", "/api/games?limit=51", "user-1", "", "")
	if status != fiber.StatusBadRequest {
		t.Errorf("limit 51 = %d %v, want 400", status, body)
	}

	status, body = env.do(t, "GET", "/api/games/old-town", "user-1", "", "")
	tasks, _ := body["tasks"].([]any)
	if status != fiber.StatusOK || body["id"] != env.game.Game.ID || len(tasks) != 3 {
		t.Errorf("details by slug = %d %v", status, body)
	}

	status, body = env.do(t, "GET", "/api/games/does-not-exist", "user-1", "", "")
	if status != fiber.StatusNotFound || body["code"] != "NOT_FOUND" {
		t.Errorf("unknown game = %d %v, want 404", status, body)
	}

	session := env.start(t, "user-1")
	status, body = env.do(t, "GET", "/api/games/active", "user-1", "", "")
	data, _ = body["data"].([]any)
	if status != fiber.StatusOK || len(data) != 1 {
		t.Errorf("active = %d %v", status, body)
	}

	status, body = env.do(t, "GET", "/api/games/active/"+session, "user-1", "", "")
	current, _ := body["currentTask"].(map[string]any)
	if status != fiber.StatusOK || current["id"] != env.game.Tasks[0].ID {
		t.Errorf("active details = %d %v", status, body)
	}

	status, _ = env.do(t, "GET", "/api/games/active/"+session, "user-2", "", "")
	if status != fiber.StatusNotFound {
		t.Errorf("foreign active details = %d, want 404", status)
	}
}

func TestAdminDeleteTask(t *testing.T) {
	env := setupAPI(t)
	path := "/api/admin/tasks/" + env.game.Tasks[2].ID

	status, _ := env.do(t, "DELETE", path, "user-1", "player", "")
	if status != fiber.StatusForbidden {
		t.Errorf("player delete = %d, want 403", status)
	}

	status, body := env.do(t, "DELETE", path, "admin-1", "admin", "")
	if status != fiber.StatusOK || body["gameStepsRemoved"] != float64(1) {
		t.Fatalf("admin delete = %d %v", status, body)
	}

	status, _ = env.do(t, "DELETE", path, "admin-1", "admin", "")
	if status != fiber.StatusNotFound {
		t.Errorf("second delete = %d, want 404", status)
	}

	status, body = env.do(t, "GET", "/api/games/"+env.game.Game.ID, "user-1", "", "")
	tasks, _ := body["tasks"].([]any)
	if status != fiber.StatusOK || len(tasks) != 2 {
		t.Errorf("details after delete = %d %v, want 2 tasks", status, body)
	}
}

func TestRespondErrorHidesInternalErrors(t *testing.T) {
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return respondError(c, errors.New("connection refused"))
	})
	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
	if strings.Contains(string(raw), "connection refused") {
		t.Errorf("body leaks cause: %s", raw)
	}
}
