package repository

import (
	"context"
	"fmt"

	"city-game-system/models"

	"gorm.io/gorm"
)

// GameTaskRepository answers sequence questions over the non-deleted steps
// of a game. Soft-deleted steps are excluded by GORM's default scope.
type GameTaskRepository struct {
	db *gorm.DB
}

func (r *GameTaskRepository) withTask(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Task")
}

// FindFirstForGame returns the step with the lowest sequence order, or nil
// when the game has no steps.
func (r *GameTaskRepository) FindFirstForGame(ctx context.Context, gameID string) (*models.GameTask, error) {
	var gt models.GameTask
	err := r.withTask(ctx).
		Where("game_id = ?", gameID).
		Order("sequence_order ASC").
		First(&gt).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find first game task: %w", err)
	}
	return &gt, nil
}

// FindNextInSequence returns the step with the smallest sequence order
// strictly greater than after, or nil when there is none.
func (r *GameTaskRepository) FindNextInSequence(ctx context.Context, gameID string, after int) (*models.GameTask, error) {
	var gt models.GameTask
	err := r.withTask(ctx).
		Where("game_id = ? AND sequence_order > ?", gameID, after).
		Order("sequence_order ASC").
		First(&gt).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find next game task: %w", err)
	}
	return &gt, nil
}

// FindByGameAndTask resolves the step linking a game and a task, or nil.
func (r *GameTaskRepository) FindByGameAndTask(ctx context.Context, gameID, taskID string) (*models.GameTask, error) {
	if !isID(taskID) {
		return nil, nil
	}
	var gt models.GameTask
	err := r.withTask(ctx).
		Where("game_id = ? AND task_id = ?", gameID, taskID).
		Order("sequence_order ASC").
		First(&gt).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find game task: %w", err)
	}
	return &gt, nil
}

// CountForGame counts the non-deleted steps of a game.
func (r *GameTaskRepository) CountForGame(ctx context.Context, gameID string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.GameTask{}).Where("game_id = ?", gameID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count game tasks: %w", err)
	}
	return n, nil
}

// ListForGame returns the non-deleted steps of a game in sequence order.
func (r *GameTaskRepository) ListForGame(ctx context.Context, gameID string) ([]models.GameTask, error) {
	var gts []models.GameTask
	if err := r.withTask(ctx).Where("game_id = ?", gameID).Order("sequence_order ASC").Find(&gts).Error; err != nil {
		return nil, fmt.Errorf("list game tasks: %w", err)
	}
	return gts, nil
}

// FindNextUncompleted returns the lowest-ordered step of the game that the
// session has not completed, or nil once every step is done.
func (r *GameTaskRepository) FindNextUncompleted(ctx context.Context, gameID, userGameID string) (*models.GameTask, error) {
	var gt models.GameTask
	err := r.withTask(ctx).
		Where("game_id = ?", gameID).
		Where("id NOT IN (?)", r.db.Model(&models.UserGameTask{}).Select("game_task_id").Where("user_game_id = ?", userGameID)).
		Order("sequence_order ASC").
		First(&gt).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find next uncompleted game task: %w", err)
	}
	return &gt, nil
}

// SoftDeleteByTask marks every step referencing taskID as deleted and returns
// how many were affected.
func (r *GameTaskRepository) SoftDeleteByTask(ctx context.Context, taskID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("task_id = ?", taskID).Delete(&models.GameTask{})
	if res.Error != nil {
		return 0, fmt.Errorf("soft delete game tasks: %w", res.Error)
	}
	return res.RowsAffected, nil
}
