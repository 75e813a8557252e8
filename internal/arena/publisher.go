package arena

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// GameEventsChannel is the Redis pub/sub channel round summaries go to.
	GameEventsChannel = "game_events"

	EventRoundOver = "round_over"
)

// RoundSummary is published when a round ends in any session.
type RoundSummary struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id"`
	Score     int       `json:"score"`
	Round     int       `json:"round"`
	EndedAt   time.Time `json:"ended_at"`
}

// Publisher fans round results out to other processes.
type Publisher interface {
	PublishRoundOver(ctx context.Context, summary RoundSummary) error
}

// RedisPublisher publishes round summaries as JSON on a Redis channel.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: GameEventsChannel}
}

func (p *RedisPublisher) PublishRoundOver(ctx context.Context, summary RoundSummary) error {
	b, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, p.channel, b).Err()
}
