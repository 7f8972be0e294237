package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserGame is one player's play session of one game. At most one session per
// (user, game) may be in progress; the partial unique index enforces it.
type UserGame struct {
	ID          string     `json:"id" gorm:"primaryKey;type:uuid"`
	UserID      string     `json:"user_id" gorm:"not null;index;uniqueIndex:idx_user_games_active,where:completed_at IS NULL"` // external identity from the gateway
	GameID      string     `json:"game_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_user_games_active,where:completed_at IS NULL"`
	StartedAt   time.Time  `json:"started_at" gorm:"not null"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Game *Game `json:"-" gorm:"foreignKey:GameID"`
}

func (ug *UserGame) BeforeCreate(tx *gorm.DB) error {
	if ug.ID == "" {
		ug.ID = uuid.NewString()
	}
	return nil
}

func (ug *UserGame) IsCompleted() bool {
	return ug.CompletedAt != nil
}

// UserGameTask records that a session completed a game step. Rows are
// immutable and unique per (session, step).
type UserGameTask struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid"`
	UserGameID  string    `json:"user_game_id" gorm:"type:uuid;not null;uniqueIndex:idx_user_game_tasks_session_step"`
	GameTaskID  string    `json:"game_task_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_user_game_tasks_session_step"`
	CompletedAt time.Time `json:"completed_at" gorm:"not null"`

	UserGame *UserGame `json:"-" gorm:"foreignKey:UserGameID"`
	GameTask *GameTask `json:"-" gorm:"foreignKey:GameTaskID"`
}

func (ugt *UserGameTask) BeforeCreate(tx *gorm.DB) error {
	if ugt.ID == "" {
		ugt.ID = uuid.NewString()
	}
	return nil
}
