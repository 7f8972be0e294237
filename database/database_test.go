package database

import (
	"context"
	"testing"

	"city-game-system/models"

	"gorm.io/gorm/logger"
)

func TestOpenInMemoryMigratesSchema(t *testing.T) {
	db, err := Open("file:migrate_test?mode=memory&cache=shared", logger.Silent)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	for _, m := range models.All() {
		if !db.Migrator().HasTable(m) {
			t.Errorf("missing table for %T", m)
		}
	}

	indexes := []struct {
		model any
		name  string
	}{
		{&models.UserGame{}, "idx_user_games_active"},
		{&models.UserGameTask{}, "idx_user_game_tasks_session_step"},
		{&models.GameTask{}, "idx_game_tasks_game_sequence"},
	}
	for _, idx := range indexes {
		if !db.Migrator().HasIndex(idx.model, idx.name) {
			t.Errorf("missing index %s", idx.name)
		}
	}
}

func TestSeedDemoIsIdempotent(t *testing.T) {
	db, err := Open("file:seed_test?mode=memory&cache=shared", logger.Silent)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	ctx := context.Background()
	created, err := SeedDemo(ctx, db)
	if err != nil {
		t.Fatalf("SeedDemo: %v", err)
	}
	if created != 2 {
		t.Fatalf("created = %d, want 2", created)
	}

	created, err = SeedDemo(ctx, db)
	if err != nil {
		t.Fatalf("second SeedDemo: %v", err)
	}
	if created != 0 {
		t.Errorf("second run created = %d, want 0", created)
	}

	var games, steps int64
	db.Model(&models.Game{}).Where("is_available = ?", true).Count(&games)
	db.Model(&models.GameTask{}).Count(&steps)
	if games != 2 {
		t.Errorf("available games = %d, want 2", games)
	}
	if steps != 9 {
		t.Errorf("game steps = %d, want 9", steps)
	}

	var g models.Game
	if err := db.Where("name = ?", "Old Harbour Adventure").First(&g).Error; err != nil {
		t.Fatalf("load seeded game: %v", err)
	}
	if g.Slug != "old-harbour-adventure" {
		t.Errorf("slug = %q, want %q", g.Slug, "old-harbour-adventure")
	}
}
