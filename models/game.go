// models/game.go
package models

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

// MinTasksForAvailableGame is the number of non-deleted steps a game needs
// before it can be offered to players.
const MinTasksForAvailableGame = 3

var (
	ErrGameNameEmpty = errors.New("game name must not be empty")
	ErrTooFewTasks   = errors.New("an available game needs at least 3 tasks")
)

// Game is a named, ordered collection of tasks. Steps live in game_tasks and
// are reached through the repository, not through a back-reference here.
type Game struct {
	ID          string `json:"id" gorm:"primaryKey;type:uuid"`
	Name        string `json:"name" gorm:"size:255;uniqueIndex;not null"`
	Slug        string `json:"slug" gorm:"size:255;uniqueIndex;not null"`
	Description string `json:"description" gorm:"type:text"`
	IsAvailable bool   `json:"is_available" gorm:"not null;default:false"`

	Timestamps
}

func (g *Game) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

// BeforeSave normalises the name so that visually identical names collide on
// the unique index, and derives the slug when none was set.
func (g *Game) BeforeSave(tx *gorm.DB) error {
	g.Name = norm.NFC.String(strings.TrimSpace(g.Name))
	if g.Name == "" {
		return ErrGameNameEmpty
	}
	if g.Slug == "" {
		g.Slug = slug.Make(g.Name)
	}
	return nil
}

// ValidateAvailability checks the "available games have at least three steps"
// rule against the current number of non-deleted steps.
func (g *Game) ValidateAvailability(activeTasks int64) error {
	if g.IsAvailable && activeTasks < MinTasksForAvailableGame {
		return ErrTooFewTasks
	}
	return nil
}
