package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"city-game-system/apperrors"
	"city-game-system/repository"

	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

// GameService serves the read side of games and sessions and owns the
// availability audit.
type GameService struct {
	DB    *gorm.DB
	Clock clockwork.Clock
	Log   *slog.Logger
}

func NewGameService(db *gorm.DB, clock clockwork.Clock) *GameService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &GameService{DB: db, Clock: clock, Log: slog.Default()}
}

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 50
)

// ErrInvalidPagination is returned for page < 1 or limit outside 1..50.
var ErrInvalidPagination = apperrors.ErrInvalidRequest.WithMessage("page must be a positive integer and limit must be between 1 and 50")

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

func newPagination(page, limit int, total int64) Pagination {
	return Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: int(math.Ceil(float64(total) / float64(limit))),
	}
}

func validatePage(page, limit int) error {
	if page < 1 || limit < 1 || limit > MaxPageLimit {
		return ErrInvalidPagination
	}
	return nil
}

type GameListItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	IsAvailable bool   `json:"isAvailable"`
	TasksCount  int64  `json:"tasksCount"`
}

type GameListPage struct {
	Data       []GameListItem `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

// ListGames pages through available games by name.
func (s *GameService) ListGames(ctx context.Context, page, limit int) (*GameListPage, error) {
	if err := validatePage(page, limit); err != nil {
		return nil, err
	}
	rows, total, err := repository.New(s.DB).Games.ListAvailable(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	out := &GameListPage{Data: make([]GameListItem, 0, len(rows)), Pagination: newPagination(page, limit, total)}
	for _, r := range rows {
		out.Data = append(out.Data, GameListItem{
			ID:          r.ID,
			Name:        r.Name,
			Slug:        r.Slug,
			Description: r.Description,
			IsAvailable: r.IsAvailable,
			TasksCount:  r.TasksCount,
		})
	}
	return out, nil
}

type GameDetails struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Slug        string        `json:"slug"`
	Description string        `json:"description"`
	Tasks       []TaskSummary `json:"tasks"`
}

// GetGame returns an available game, looked up by id or slug, with its
// steps in order.
func (s *GameService) GetGame(ctx context.Context, idOrSlug string) (*GameDetails, error) {
	repos := repository.New(s.DB)
	game, err := repos.Games.FindAvailable(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	steps, err := repos.GameTasks.ListForGame(ctx, game.ID)
	if err != nil {
		return nil, err
	}
	out := &GameDetails{
		ID:          game.ID,
		Name:        game.Name,
		Slug:        game.Slug,
		Description: game.Description,
		Tasks:       make([]TaskSummary, 0, len(steps)),
	}
	for i := range steps {
		if t := summarize(&steps[i]); t != nil {
			out.Tasks = append(out.Tasks, *t)
		}
	}
	return out, nil
}

type ActiveGame struct {
	UserGameID     string       `json:"userGameId"`
	GameID         string       `json:"gameId"`
	GameName       string       `json:"gameName"`
	Description    string       `json:"description"`
	StartedAt      string       `json:"startedAt"`
	CompletedTasks int64        `json:"completedTasks"`
	TotalTasks     int64        `json:"totalTasks"`
	CurrentTask    *TaskSummary `json:"currentTask"`
}

func (s *GameService) activeGame(ctx context.Context, repos *repository.Repositories, row repository.ActiveSessionRow) (ActiveGame, error) {
	current, err := repos.GameTasks.FindNextUncompleted(ctx, row.GameID, row.UserGameID)
	if err != nil {
		return ActiveGame{}, err
	}
	return ActiveGame{
		UserGameID:     row.UserGameID,
		GameID:         row.GameID,
		GameName:       row.GameName,
		Description:    row.GameDescription,
		StartedAt:      row.StartedAt.UTC().Format(time.RFC3339),
		CompletedTasks: row.CompletedTasks,
		TotalTasks:     row.TotalTasks,
		CurrentTask:    summarize(current),
	}, nil
}

// ListActive returns the user's sessions in progress with the task each one
// is waiting for.
func (s *GameService) ListActive(ctx context.Context, userID string) ([]ActiveGame, error) {
	repos := repository.New(s.DB)
	rows, err := repos.UserGames.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]ActiveGame, 0, len(rows))
	for _, r := range rows {
		ag, err := s.activeGame(ctx, repos, r)
		if err != nil {
			return nil, err
		}
		out = append(out, ag)
	}
	return out, nil
}

// GetActive returns one session in progress owned by userID.
func (s *GameService) GetActive(ctx context.Context, userID, userGameID string) (*ActiveGame, error) {
	repos := repository.New(s.DB)
	row, err := repos.UserGames.FindActiveDetails(ctx, userID, userGameID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, apperrors.ErrNotFound.WithMessage("active game not found")
	}
	ag, err := s.activeGame(ctx, repos, *row)
	if err != nil {
		return nil, err
	}
	return &ag, nil
}

type CompletedGame struct {
	UserGameID     string `json:"userGameId"`
	GameID         string `json:"gameId"`
	GameName       string `json:"gameName"`
	StartedAt      string `json:"startedAt"`
	CompletedAt    string `json:"completedAt"`
	CompletionTime int64  `json:"completionTime"`
	TotalTasks     int64  `json:"totalTasks"`
}

type CompletedGamePage struct {
	Data       []CompletedGame `json:"data"`
	Pagination Pagination      `json:"pagination"`
}

// ListCompleted pages through the user's finished sessions, most recent
// first. CompletionTime is in seconds.
func (s *GameService) ListCompleted(ctx context.Context, userID string, page, limit int) (*CompletedGamePage, error) {
	if err := validatePage(page, limit); err != nil {
		return nil, err
	}
	rows, total, err := repository.New(s.DB).UserGames.ListCompletedByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}
	out := &CompletedGamePage{Data: make([]CompletedGame, 0, len(rows)), Pagination: newPagination(page, limit, total)}
	for _, r := range rows {
		if r.CompletedAt == nil {
			return nil, fmt.Errorf("completed session %s has no completion time", r.ID)
		}
		out.Data = append(out.Data, CompletedGame{
			UserGameID:     r.ID,
			GameID:         r.GameID,
			GameName:       r.GameName,
			StartedAt:      r.StartedAt.UTC().Format(time.RFC3339),
			CompletedAt:    r.CompletedAt.UTC().Format(time.RFC3339),
			CompletionTime: int64(r.CompletedAt.Sub(r.StartedAt).Seconds()),
			TotalTasks:     r.TotalTasks,
		})
	}
	return out, nil
}
