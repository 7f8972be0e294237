package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"city-game-system/apperrors"
	"city-game-system/archive"
	"city-game-system/events"
	"city-game-system/geo"
	"city-game-system/models"
	"city-game-system/repository"

	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

// TaskSummary is the task a player should head to.
type TaskSummary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	SequenceOrder int    `json:"sequenceOrder"`
}

func summarize(gt *models.GameTask) *TaskSummary {
	if gt == nil || gt.Task == nil {
		return nil
	}
	return &TaskSummary{
		ID:            gt.Task.ID,
		Name:          gt.Task.Name,
		Description:   gt.Task.Description,
		SequenceOrder: gt.SequenceOrder,
	}
}

type StartSessionResult struct {
	SessionID   string      `json:"sessionId"`
	GameID      string      `json:"gameId"`
	StartedAt   string      `json:"startedAt"`
	CurrentTask TaskSummary `json:"currentTask"`
}

type TaskCompletionResult struct {
	Completed     bool         `json:"completed"`
	NextTask      *TaskSummary `json:"nextTask"`
	GameCompleted bool         `json:"gameCompleted"`
}

// PlayService runs game sessions: starting a game and completing its tasks
// in order at the right place. Each call is one database transaction.
type PlayService struct {
	DB      *gorm.DB
	Clock   clockwork.Clock
	Events  events.Publisher
	Archive archive.Archiver
	Log     *slog.Logger
}

// NewPlayService wires a PlayService. Nil collaborators fall back to the
// real clock, a noop publisher and a noop archiver.
func NewPlayService(db *gorm.DB, clock clockwork.Clock, pub events.Publisher, arc archive.Archiver) *PlayService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if pub == nil {
		pub = events.NewNoop()
	}
	if arc == nil {
		arc = archive.NewNoop()
	}
	return &PlayService{DB: db, Clock: clock, Events: pub, Archive: arc, Log: slog.Default()}
}

// StartSession opens a session of gameID for userID and returns the first
// task to visit.
func (s *PlayService) StartSession(ctx context.Context, gameID, userID string) (*StartSessionResult, error) {
	var (
		session *models.UserGame
		first   *models.GameTask
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.New(tx)

		game, err := repos.Games.FindByID(ctx, gameID)
		if err != nil {
			return err
		}
		if !game.IsAvailable {
			return apperrors.ErrGameUnavailable
		}

		first, err = repos.GameTasks.FindFirstForGame(ctx, game.ID)
		if err != nil {
			return err
		}
		if first == nil {
			return apperrors.ErrGameHasNoTasks
		}

		active, err := repos.UserGames.FindActive(ctx, userID, game.ID)
		if err != nil {
			return err
		}
		if active != nil {
			return apperrors.ErrGameAlreadyStarted
		}

		session = &models.UserGame{UserID: userID, GameID: game.ID, StartedAt: s.now()}
		return repos.UserGames.Create(ctx, session)
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("game session started", "user_id", userID, "game_id", gameID, "session_id", session.ID)
	s.publish(ctx, events.Event{
		Type:       events.GameStarted,
		UserID:     userID,
		GameID:     session.GameID,
		UserGameID: session.ID,
		OccurredAt: session.StartedAt,
	})

	return &StartSessionResult{
		SessionID:   session.ID,
		GameID:      session.GameID,
		StartedAt:   session.StartedAt.Format(time.RFC3339),
		CurrentTask: *summarize(first),
	}, nil
}

// CompleteTask records that userID reached taskID of the session at the
// reported position.
func (s *PlayService) CompleteTask(ctx context.Context, userID, sessionID, taskID string, lat, lon float64) (*TaskCompletionResult, error) {
	if !geo.ValidCoordinates(lat, lon) {
		return nil, apperrors.ErrInvalidCoordinates
	}

	var (
		session *models.UserGame
		game    *models.Game
		result  = &TaskCompletionResult{Completed: true}
		done    int64
	)
	now := s.now()

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.New(tx)

		var err error
		session, err = repos.UserGames.FindByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if session.IsCompleted() {
			return apperrors.ErrSessionAlreadyCompleted
		}
		if session.UserID != userID {
			return apperrors.ErrOwnershipMismatch
		}

		step, err := repos.GameTasks.FindByGameAndTask(ctx, session.GameID, taskID)
		if err != nil {
			return err
		}
		if step == nil || step.Task == nil {
			return apperrors.ErrTaskNotInGame
		}

		// A replayed step would also fail the sequence check; report it as
		// a duplicate instead.
		exists, err := repos.UserGameTasks.Exists(ctx, session.ID, step.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.ErrTaskAlreadyCompleted
		}

		if err := s.checkSequence(ctx, repos, session, step); err != nil {
			return err
		}

		if !step.Task.IsWithinReach(lat, lon) {
			return apperrors.ErrWrongLocation
		}

		if err := repos.UserGameTasks.Create(ctx, &models.UserGameTask{
			UserGameID:  session.ID,
			GameTaskID:  step.ID,
			CompletedAt: now,
		}); err != nil {
			return err
		}

		total, err := repos.GameTasks.CountForGame(ctx, session.GameID)
		if err != nil {
			return err
		}
		done, err = repos.UserGameTasks.CountForUserGame(ctx, session.ID)
		if err != nil {
			return err
		}

		if total > 0 && done >= total {
			ok, err := repos.UserGames.MarkCompleted(ctx, session, now)
			if err != nil {
				return err
			}
			if !ok {
				return apperrors.ErrSessionAlreadyCompleted
			}
			result.GameCompleted = true
			// Only needed for the receipt; the game may have been removed.
			game, err = repos.Games.FindByID(ctx, session.GameID)
			if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
				return err
			}
			return nil
		}

		next, err := repos.GameTasks.FindNextInSequence(ctx, session.GameID, step.SequenceOrder)
		if err != nil {
			return err
		}
		result.NextTask = summarize(next)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("task completed",
		"user_id", userID, "session_id", session.ID, "task_id", taskID, "game_completed", result.GameCompleted)
	s.publish(ctx, events.Event{
		Type:       events.TaskCompleted,
		UserID:     userID,
		GameID:     session.GameID,
		UserGameID: session.ID,
		TaskID:     taskID,
		OccurredAt: now,
	})
	if result.GameCompleted {
		s.publish(ctx, events.Event{
			Type:       events.GameCompleted,
			UserID:     userID,
			GameID:     session.GameID,
			UserGameID: session.ID,
			OccurredAt: now,
		})
		s.storeReceipt(ctx, session, game, done)
	}
	return result, nil
}

// checkSequence accepts step only if it is the game's first step when
// nothing is completed yet, or else the step right after the last completed
// one.
func (s *PlayService) checkSequence(ctx context.Context, repos *repository.Repositories, session *models.UserGame, step *models.GameTask) error {
	last, err := repos.UserGameTasks.FindLastCompleted(ctx, session.ID)
	if err != nil {
		return err
	}

	var expected *models.GameTask
	if last == nil {
		expected, err = repos.GameTasks.FindFirstForGame(ctx, session.GameID)
		if err != nil {
			return err
		}
		if expected == nil || expected.ID != step.ID {
			return apperrors.ErrInvalidTaskSequence.WithMessage("this is not the first task in the game")
		}
		return nil
	}

	expected, err = repos.GameTasks.FindNextInSequence(ctx, session.GameID, last.GameTask.SequenceOrder)
	if err != nil {
		return err
	}
	if expected == nil || expected.ID != step.ID {
		return apperrors.ErrInvalidTaskSequence
	}
	return nil
}

func (s *PlayService) now() time.Time {
	return s.Clock.Now().UTC().Truncate(time.Second)
}

func (s *PlayService) publish(ctx context.Context, evt events.Event) {
	if err := s.Events.Publish(context.WithoutCancel(ctx), evt); err != nil {
		s.Log.Warn("publish event failed", "type", evt.Type, "session_id", evt.UserGameID, "error", err)
	}
}

func (s *PlayService) storeReceipt(ctx context.Context, session *models.UserGame, game *models.Game, tasks int64) {
	r := archive.Receipt{
		UserGameID:     session.ID,
		UserID:         session.UserID,
		GameID:         session.GameID,
		TasksCompleted: tasks,
		StartedAt:      session.StartedAt,
	}
	if game != nil {
		r.GameName = game.Name
	}
	if session.CompletedAt != nil {
		r.CompletedAt = *session.CompletedAt
		r.DurationSeconds = int64(session.CompletedAt.Sub(session.StartedAt).Seconds())
	}
	url, err := s.Archive.Store(context.WithoutCancel(ctx), r)
	if err != nil {
		s.Log.Warn("store completion receipt failed", "session_id", session.ID, "error", err)
		return
	}
	if url != "" {
		s.Log.Info("completion receipt stored", "session_id", session.ID, "url", url)
	}
}
