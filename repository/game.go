package repository

import (
	"context"
	"fmt"

	"city-game-system/apperrors"
	"city-game-system/models"

	"gorm.io/gorm"
)

type GameRepository struct {
	db *gorm.DB
}

// FindByID loads a non-deleted game; apperrors.ErrNotFound otherwise.
func (r *GameRepository) FindByID(ctx context.Context, id string) (*models.Game, error) {
	if !isID(id) {
		return nil, apperrors.ErrNotFound.WithMessage("game not found")
	}
	var g models.Game
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&g).Error
	if notFound(err) {
		return nil, apperrors.ErrNotFound.WithMessage("game not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find game: %w", err)
	}
	return &g, nil
}

// FindAvailable loads an available game by id or slug.
func (r *GameRepository) FindAvailable(ctx context.Context, idOrSlug string) (*models.Game, error) {
	var g models.Game
	q := r.db.WithContext(ctx).Where("is_available = ?", true)
	if isID(idOrSlug) {
		q = q.Where("id = ?", idOrSlug)
	} else {
		q = q.Where("slug = ?", idOrSlug)
	}
	err := q.First(&g).Error
	if notFound(err) {
		return nil, apperrors.ErrNotFound.WithMessage("game not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find available game: %w", err)
	}
	return &g, nil
}

// GameListRow is an available game with its number of steps.
type GameListRow struct {
	models.Game
	TasksCount int64
}

// ListAvailable pages through available games ordered by name and returns
// the total count.
func (r *GameRepository) ListAvailable(ctx context.Context, page, limit int) ([]GameListRow, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Game{}).Where("games.is_available = ?", true)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count available games: %w", err)
	}

	var rows []GameListRow
	err := base.Session(&gorm.Session{}).
		Select(`games.*,
			(SELECT COUNT(*) FROM game_tasks gt WHERE gt.game_id = games.id AND gt.deleted_at IS NULL) AS tasks_count`).
		Order("games.name ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list available games: %w", err)
	}
	return rows, total, nil
}

// ListUnderstaffed returns available games with fewer than min non-deleted
// steps.
func (r *GameRepository) ListUnderstaffed(ctx context.Context, min int) ([]models.Game, error) {
	var games []models.Game
	err := r.db.WithContext(ctx).
		Where("is_available = ?", true).
		Where("(SELECT COUNT(*) FROM game_tasks gt WHERE gt.game_id = games.id AND gt.deleted_at IS NULL) < ?", min).
		Find(&games).Error
	if err != nil {
		return nil, fmt.Errorf("list understaffed games: %w", err)
	}
	return games, nil
}

// SetAvailability flips the availability flag without running save hooks.
func (r *GameRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	err := r.db.WithContext(ctx).Model(&models.Game{}).
		Where("id = ?", id).
		UpdateColumn("is_available", available).Error
	if err != nil {
		return fmt.Errorf("set game availability: %w", err)
	}
	return nil
}

type TaskRepository struct {
	db *gorm.DB
}

// FindByID loads a non-deleted task; apperrors.ErrNotFound otherwise.
func (r *TaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	if !isID(id) {
		return nil, apperrors.ErrNotFound.WithMessage("task not found")
	}
	var t models.Task
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if notFound(err) {
		return nil, apperrors.ErrNotFound.WithMessage("task not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find task: %w", err)
	}
	return &t, nil
}

// SoftDelete marks the task deleted.
func (r *TaskRepository) SoftDelete(ctx context.Context, t *models.Task) error {
	if err := r.db.WithContext(ctx).Delete(t).Error; err != nil {
		return fmt.Errorf("soft delete task: %w", err)
	}
	return nil
}
