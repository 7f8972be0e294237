// Package events publishes game-play domain events after their transaction
// commits. Delivery is best effort.
package events

import (
	"context"
	"sync"
	"time"
)

const (
	GameStarted   = "game.started"
	TaskCompleted = "task.completed"
	GameCompleted = "game.completed"
)

// Event is one domain fact about a play session.
type Event struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	GameID     string    `json:"game_id"`
	UserGameID string    `json:"user_game_id"`
	TaskID     string    `json:"task_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

type noop struct{}

// NewNoop returns a publisher that drops every event.
func NewNoop() Publisher { return noop{} }

func (noop) Publish(context.Context, Event) error { return nil }
func (noop) Close() error                         { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, evt Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types returns the recorded event types in publish order.
func (r *Recorder) Types() []string {
	var out []string
	for _, e := range r.Events() {
		out = append(out, e.Type)
	}
	return out
}
