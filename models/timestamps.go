package models

import (
	"time"

	"gorm.io/gorm"
)

// Timestamps adds GORM auto-times and soft delete.
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// All lists every model owned by this service, in migration order.
func All() []any {
	return []any{
		&Game{},
		&Task{},
		&GameTask{},
		&UserGame{},
		&UserGameTask{},
	}
}
