package services

import (
	"context"
	"log/slog"

	"city-game-system/repository"

	"gorm.io/gorm"
)

type TaskService struct {
	DB  *gorm.DB
	Log *slog.Logger
}

func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{DB: db, Log: slog.Default()}
}

// DeleteTask soft-deletes a task together with every game step that uses
// it. Completion records of played sessions are kept.
func (s *TaskService) DeleteTask(ctx context.Context, taskID string) (int64, error) {
	var steps int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := repository.New(tx)
		task, err := repos.Tasks.FindByID(ctx, taskID)
		if err != nil {
			return err
		}
		steps, err = repos.GameTasks.SoftDeleteByTask(ctx, task.ID)
		if err != nil {
			return err
		}
		return repos.Tasks.SoftDelete(ctx, task)
	})
	if err != nil {
		return 0, err
	}
	s.Log.Info("task deleted", "task_id", taskID, "game_steps", steps)
	return steps, nil
}
