// Package testkit holds helpers shared by package tests.
package testkit

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"city-game-system/database"
	"city-game-system/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory SQLite database private to the test.
// The pool is limited to one connection so concurrent transactions
// serialise instead of failing on shared-cache table locks.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(uuid.NewString(), "-", "")
	db, err := database.Open("file:"+name+"?mode=memory&cache=shared", logger.Silent)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// NewFileDB returns a migrated SQLite database in a temporary file with an
// unrestricted pool. Transactions begin IMMEDIATE and wait on the busy
// timeout, so concurrent writers contend the way they do on a real server.
func NewFileDB(t testing.TB) *gorm.DB {
	t.Helper()
	path := filepath.ToSlash(filepath.Join(t.TempDir(), "play.db"))
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"
	db, err := database.Open(dsn, logger.Silent)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// Point is a task location used by fixtures.
type Point struct {
	Lat, Lon float64
	Radius   int
}

// Fixture is a seeded game together with its tasks in sequence order.
type Fixture struct {
	Game      *models.Game
	Tasks     []*models.Task
	GameTasks []*models.GameTask
}

// SeedGame creates a game with one task per point, numbered 1..n.
func SeedGame(t testing.TB, db *gorm.DB, name string, available bool, points ...Point) *Fixture {
	t.Helper()
	f := &Fixture{Game: &models.Game{Name: name, Description: name + " description", IsAvailable: available}}
	if err := db.Create(f.Game).Error; err != nil {
		t.Fatalf("create game: %v", err)
	}
	for i, p := range points {
		task := &models.Task{
			Name:            name + " task " + string(rune('A'+i)),
			Description:     "find the spot",
			Latitude:        decimal.NewFromFloat(p.Lat),
			Longitude:       decimal.NewFromFloat(p.Lon),
			AllowedDistance: p.Radius,
		}
		if err := db.Create(task).Error; err != nil {
			t.Fatalf("create task: %v", err)
		}
		gt := &models.GameTask{GameID: f.Game.ID, TaskID: task.ID, SequenceOrder: i + 1}
		if err := db.Omit("Game", "Task").Create(gt).Error; err != nil {
			t.Fatalf("create game task: %v", err)
		}
		f.Tasks = append(f.Tasks, task)
		f.GameTasks = append(f.GameTasks, gt)
	}
	return f
}

// ThreeStops returns three points roughly 300 m apart in Gdańsk, each with a
// 100 m radius.
func ThreeStops() []Point {
	return []Point{
		{Lat: 54.3524, Lon: 18.6466, Radius: 100},
		{Lat: 54.3500, Lon: 18.6500, Radius: 100},
		{Lat: 54.3480, Lon: 18.6450, Radius: 100},
	}
}

// FixedTime is the start time of fake clocks in tests.
var FixedTime = time.Date(2025, 12, 9, 17, 26, 16, 0, time.UTC)
