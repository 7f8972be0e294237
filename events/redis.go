package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const publishTimeout = 2 * time.Second

type redisPublisher struct {
	cli    *redis.Client
	stream string
	maxLen int64
}

// NewRedis returns a publisher appending events to a Redis stream. Each entry
// holds the JSON encoded event in a single "data" field.
func NewRedis(url, stream string, maxLen int64) (Publisher, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return newRedisPublisher(redis.NewClient(opt), stream, maxLen), nil
}

func newRedisPublisher(cli *redis.Client, stream string, maxLen int64) *redisPublisher {
	if stream == "" {
		stream = "city-game:events"
	}
	return &redisPublisher{cli: cli, stream: stream, maxLen: maxLen}
}

func (p *redisPublisher) Publish(ctx context.Context, evt Event) error {
	b, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	args := &redis.XAddArgs{Stream: p.stream, Values: map[string]any{"type": evt.Type, "data": string(b)}}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}
	if err := p.cli.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return nil
}

func (p *redisPublisher) Close() error { return p.cli.Close() }
