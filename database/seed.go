package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"city-game-system/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type seedTask struct {
	name, description string
	lat, lon          string
	radius            int
}

type seedGame struct {
	name, description string
	tasks             []seedTask
}

var demoGames = []seedGame{
	{
		name:        "Old Harbour Adventure",
		description: "Uncover the secrets of a forgotten harbour full of old legends and hidden treasure.",
		tasks: []seedTask{
			{"The Missing Lighthouse Keeper", "Find the traces of the keeper who vanished without a word.", "54.3524", "18.6466", 100},
			{"Siren Whispers", "Decode the melodies drifting up from the sea.", "54.3500", "18.6500", 150},
			{"Pirate Treasure", "Find the treasure a legendary pirate left behind.", "54.3480", "18.6450", 80},
			{"Last Haven", "Reach the place where the shipwrecks rest and learn their stories.", "54.3450", "18.6480", 120},
		},
	},
	{
		name:        "Secrets of the Royal Hill",
		description: "Walk the historic hill and discover forgotten chambers and royal secrets.",
		tasks: []seedTask{
			{"The Ruler's Crown", "Find the hidden crown, a symbol of old power.", "50.0594", "19.9366", 90},
			{"Alchemist's Chamber", "Track down the alchemist's secret laboratory.", "50.0600", "19.9380", 110},
			{"Dragon Egg", "Locate the legendary dragon egg.", "50.0610", "19.9350", 130},
			{"The Lost Sword", "Dig up the king's sword lost in a great battle.", "50.0580", "19.9370", 100},
			{"Royal Throne", "Reach the royal throne and take a seat.", "50.0570", "19.9390", 70},
		},
	},
}

// SeedDemo inserts two playable demo games. Games that already exist by name
// are left alone, so it is safe to run on every start.
func SeedDemo(ctx context.Context, db *gorm.DB) (int, error) {
	created := 0
	for _, sg := range demoGames {
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var existing models.Game
			err := tx.Where("name = ?", sg.name).First(&existing).Error
			if err == nil {
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			game := &models.Game{Name: sg.name, Description: sg.description, IsAvailable: true}
			if err := game.ValidateAvailability(int64(len(sg.tasks))); err != nil {
				return err
			}
			if err := tx.Create(game).Error; err != nil {
				return err
			}
			for i, st := range sg.tasks {
				task := &models.Task{
					Name:            st.name,
					Description:     st.description,
					Latitude:        decimal.RequireFromString(st.lat),
					Longitude:       decimal.RequireFromString(st.lon),
					AllowedDistance: st.radius,
				}
				if err := tx.Create(task).Error; err != nil {
					return err
				}
				step := &models.GameTask{GameID: game.ID, TaskID: task.ID, SequenceOrder: i + 1}
				if err := tx.Omit("Game", "Task").Create(step).Error; err != nil {
					return err
				}
			}
			created++
			return nil
		})
		if err != nil {
			return created, fmt.Errorf("seed %q: %w", sg.name, err)
		}
	}
	if created > 0 {
		slog.Info("demo games seeded", "count", created)
	}
	return created, nil
}
