package repository

import (
	"context"
	"fmt"

	"city-game-system/apperrors"
	"city-game-system/models"

	"gorm.io/gorm"
)

// UserGameTaskRepository reads and appends the completion log of sessions.
type UserGameTaskRepository struct {
	db *gorm.DB
}

// FindLastCompleted returns the session's completion with the highest linked
// sequence order, with its GameTask loaded, or nil when nothing is completed.
// Steps deleted after completion still count toward the position.
func (r *UserGameTaskRepository) FindLastCompleted(ctx context.Context, userGameID string) (*models.UserGameTask, error) {
	var ugt models.UserGameTask
	err := r.db.WithContext(ctx).
		Preload("GameTask", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Joins("JOIN game_tasks ON game_tasks.id = user_game_tasks.game_task_id").
		Where("user_game_tasks.user_game_id = ?", userGameID).
		Order("game_tasks.sequence_order DESC").
		First(&ugt).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find last completed task: %w", err)
	}
	return &ugt, nil
}

// Exists reports whether the session already completed the step.
func (r *UserGameTaskRepository) Exists(ctx context.Context, userGameID, gameTaskID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.UserGameTask{}).
		Where("user_game_id = ? AND game_task_id = ?", userGameID, gameTaskID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check completed task: %w", err)
	}
	return n > 0, nil
}

// CountForUserGame counts every completion recorded for a session,
// including completions of steps deleted afterwards.
func (r *UserGameTaskRepository) CountForUserGame(ctx context.Context, userGameID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.UserGameTask{}).
		Where("user_game_id = ?", userGameID).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count completed tasks: %w", err)
	}
	return n, nil
}

// Create appends a completion. A second completion of the same step is
// reported as apperrors.ErrTaskAlreadyCompleted.
func (r *UserGameTaskRepository) Create(ctx context.Context, ugt *models.UserGameTask) error {
	err := r.db.WithContext(ctx).Omit("UserGame", "GameTask").Create(ugt).Error
	if isUniqueViolation(err) {
		return apperrors.ErrTaskAlreadyCompleted
	}
	if err != nil {
		return fmt.Errorf("insert completed task: %w", err)
	}
	return nil
}
