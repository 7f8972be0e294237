package events

import (
	"context"
	"testing"
)

func TestRecorderKeepsOrder(t *testing.T) {
	r := &Recorder{}
	ctx := context.Background()
	for _, typ := range []string{GameStarted, TaskCompleted, GameCompleted} {
		if err := r.Publish(ctx, Event{Type: typ}); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}
	got := r.Types()
	want := []string{GameStarted, TaskCompleted, GameCompleted}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("types[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNoopDropsEvents(t *testing.T) {
	p := NewNoop()
	if err := p.Publish(context.Background(), Event{Type: GameStarted}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestNewRedisRejectsBadURL(t *testing.T) {
	if _, err := NewRedis("not a url", "", 0); err == nil {
		t.Fatal("expected error for invalid url")
	}
}

func TestRedisPublisherDefaultsStream(t *testing.T) {
	p, err := NewRedis("redis://localhost:6379/0", "", 100)
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	defer p.Close()
	rp := p.(*redisPublisher)
	if rp.stream != "city-game:events" {
		t.Errorf("stream = %q, want %q", rp.stream, "city-game:events")
	}
}
