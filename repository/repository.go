// Package repository holds the GORM queries behind the game-play engine.
// Every repository wraps the *gorm.DB it was built from, so building them
// from a transaction handle scopes all reads and writes to that transaction.
package repository

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repositories groups the repositories sharing one connection or transaction.
type Repositories struct {
	Games         *GameRepository
	Tasks         *TaskRepository
	GameTasks     *GameTaskRepository
	UserGames     *UserGameRepository
	UserGameTasks *UserGameTaskRepository
}

func New(db *gorm.DB) *Repositories {
	return &Repositories{
		Games:         &GameRepository{db: db},
		Tasks:         &TaskRepository{db: db},
		GameTasks:     &GameTaskRepository{db: db},
		UserGames:     &UserGameRepository{db: db},
		UserGameTasks: &UserGameTaskRepository{db: db},
	}
}

// isUniqueViolation reports whether err comes from a unique constraint. With
// TranslateError enabled both drivers report gorm.ErrDuplicatedKey; the
// pgconn and message checks cover connections opened without it.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isID reports whether s can be a primary key. Postgres rejects malformed
// uuids in comparisons, so callers answer not found before querying.
func isID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
