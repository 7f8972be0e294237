package services

import (
	"context"
	"fmt"
	"time"

	"city-game-system/models"
	"city-game-system/repository"

	"github.com/go-co-op/gocron/v2"
)

// AuditAvailability takes games that dropped below the minimum number of
// steps out of the available list and returns how many were changed.
func (s *GameService) AuditAvailability(ctx context.Context) (int, error) {
	repos := repository.New(s.DB)
	games, err := repos.Games.ListUnderstaffed(ctx, models.MinTasksForAvailableGame)
	if err != nil {
		return 0, err
	}
	changed := 0
	for _, g := range games {
		if err := repos.Games.SetAvailability(ctx, g.ID, false); err != nil {
			s.Log.Error("availability audit: update failed", "game_id", g.ID, "error", err)
			continue
		}
		changed++
		s.Log.Warn("availability audit: game made unavailable", "game_id", g.ID, "name", g.Name)
	}
	return changed, nil
}

// StartAvailabilityScheduler runs AuditAvailability every interval until
// the returned scheduler is shut down.
func (s *GameService) StartAvailabilityScheduler(interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler(gocron.WithClock(s.Clock))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			if _, err := s.AuditAvailability(ctx); err != nil {
				s.Log.Error("availability audit failed", "error", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("schedule availability audit: %w", err)
	}
	sched.Start()
	return sched, nil
}
