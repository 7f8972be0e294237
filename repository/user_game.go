package repository

import (
	"context"
	"fmt"
	"time"

	"city-game-system/apperrors"
	"city-game-system/models"

	"gorm.io/gorm"
)

// UserGameRepository stores play sessions.
type UserGameRepository struct {
	db *gorm.DB
}

// FindActive returns the in-progress session of user for game, or nil.
func (r *UserGameRepository) FindActive(ctx context.Context, userID, gameID string) (*models.UserGame, error) {
	var ug models.UserGame
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND game_id = ? AND completed_at IS NULL", userID, gameID).
		First(&ug).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active user game: %w", err)
	}
	return &ug, nil
}

// FindByID loads a session; apperrors.ErrNotFound when it does not exist.
func (r *UserGameRepository) FindByID(ctx context.Context, id string) (*models.UserGame, error) {
	if !isID(id) {
		return nil, apperrors.ErrNotFound.WithMessage("game session not found")
	}
	var ug models.UserGame
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&ug).Error
	if notFound(err) {
		return nil, apperrors.ErrNotFound.WithMessage("game session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find user game: %w", err)
	}
	return &ug, nil
}

// Create inserts a new session. Losing the race against another active
// session for the same (user, game) is reported as
// apperrors.ErrGameAlreadyStarted.
func (r *UserGameRepository) Create(ctx context.Context, ug *models.UserGame) error {
	err := r.db.WithContext(ctx).Omit("Game").Create(ug).Error
	if isUniqueViolation(err) {
		return apperrors.ErrGameAlreadyStarted
	}
	if err != nil {
		return fmt.Errorf("insert user game: %w", err)
	}
	return nil
}

// MarkCompleted stamps the session as finished. It only touches sessions
// still in progress and reports whether this call made the transition.
func (r *UserGameRepository) MarkCompleted(ctx context.Context, ug *models.UserGame, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.UserGame{}).
		Where("id = ? AND completed_at IS NULL", ug.ID).
		Update("completed_at", at)
	if res.Error != nil {
		return false, fmt.Errorf("complete user game: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	ug.CompletedAt = &at
	return true, nil
}

// ActiveSessionRow is one in-progress session with its progress counters.
type ActiveSessionRow struct {
	UserGameID      string
	GameID          string
	GameName        string
	GameDescription string
	StartedAt       time.Time
	CompletedTasks  int64
	TotalTasks      int64
}

const activeSessionSelect = `user_games.id AS user_game_id,
	games.id AS game_id,
	games.name AS game_name,
	games.description AS game_description,
	user_games.started_at AS started_at,
	(SELECT COUNT(*) FROM user_game_tasks ugt WHERE ugt.user_game_id = user_games.id) AS completed_tasks,
	(SELECT COUNT(*) FROM game_tasks gt WHERE gt.game_id = games.id AND gt.deleted_at IS NULL) AS total_tasks`

// ListActiveByUser returns the user's in-progress sessions, newest first.
func (r *UserGameRepository) ListActiveByUser(ctx context.Context, userID string) ([]ActiveSessionRow, error) {
	var rows []ActiveSessionRow
	err := r.db.WithContext(ctx).Model(&models.UserGame{}).
		Select(activeSessionSelect).
		Joins("JOIN games ON games.id = user_games.game_id").
		Where("user_games.user_id = ? AND user_games.completed_at IS NULL", userID).
		Order("user_games.started_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list active user games: %w", err)
	}
	return rows, nil
}

// FindActiveDetails returns one in-progress session of the user, or nil.
func (r *UserGameRepository) FindActiveDetails(ctx context.Context, userID, userGameID string) (*ActiveSessionRow, error) {
	if !isID(userGameID) {
		return nil, nil
	}
	var rows []ActiveSessionRow
	err := r.db.WithContext(ctx).Model(&models.UserGame{}).
		Select(activeSessionSelect).
		Joins("JOIN games ON games.id = user_games.game_id").
		Where("user_games.id = ? AND user_games.user_id = ? AND user_games.completed_at IS NULL", userGameID, userID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find active user game details: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// CompletedSession is a finished session with the values the history view
// shows.
type CompletedSession struct {
	models.UserGame
	GameName   string
	TotalTasks int64
}

// ListCompletedByUser pages through the user's finished sessions, most
// recently completed first, and returns the total count.
func (r *UserGameRepository) ListCompletedByUser(ctx context.Context, userID string, page, limit int) ([]CompletedSession, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.UserGame{}).
		Where("user_games.user_id = ? AND user_games.completed_at IS NOT NULL", userID)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count completed user games: %w", err)
	}

	var rows []CompletedSession
	err := base.Session(&gorm.Session{}).
		Select(`user_games.*, games.name AS game_name,
			(SELECT COUNT(*) FROM game_tasks gt WHERE gt.game_id = user_games.game_id AND gt.deleted_at IS NULL) AS total_tasks`).
		Joins("JOIN games ON games.id = user_games.game_id").
		Order("user_games.completed_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list completed user games: %w", err)
	}
	return rows, total, nil
}
