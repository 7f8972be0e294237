package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GameTask places a task at SequenceOrder within a game. Sequence orders are
// unique among the non-deleted steps of one game.
type GameTask struct {
	ID            string `json:"id" gorm:"primaryKey;type:uuid"`
	GameID        string `json:"game_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_game_tasks_game_sequence,where:deleted_at IS NULL"`
	TaskID        string `json:"task_id" gorm:"type:uuid;not null;index"`
	SequenceOrder int    `json:"sequence_order" gorm:"not null;check:sequence_order >= 1;uniqueIndex:idx_game_tasks_game_sequence,where:deleted_at IS NULL"`

	Game *Game `json:"-" gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE"`
	Task *Task `json:"task,omitempty" gorm:"foreignKey:TaskID"`

	Timestamps
}

func (gt *GameTask) BeforeCreate(tx *gorm.DB) error {
	if gt.ID == "" {
		gt.ID = uuid.NewString()
	}
	return nil
}
