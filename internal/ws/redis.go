package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/playmatatu/mergeballs/internal/arena"
	"github.com/playmatatu/mergeballs/internal/protocol"
	"github.com/redis/go-redis/v9"
)

// StartGameEventSubscriber subscribes to the game_events channel and relays
// round summaries from every server process to local clients as feed
// messages.
func StartGameEventSubscriber(ctx context.Context, rdb *redis.Client, hub *Hub) {
	if rdb == nil || hub == nil {
		log.Println("[WS] Redis client or hub not set; game event subscriber not started")
		return
	}

	pubsub := rdb.Subscribe(ctx, arena.GameEventsChannel)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Printf("[WS] %s subscriber started", arena.GameEventsChannel)
		for {
			select {
			case <-ctx.Done():
				log.Printf("[WS] %s subscriber stopping", arena.GameEventsChannel)
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if err := relayGameEvent(hub, msg.Payload); err != nil {
					log.Printf("[WS] %v", err)
				}
			}
		}
	}()
}

// relayGameEvent decodes one game_events payload and broadcasts it.
func relayGameEvent(hub *Hub, payload string) error {
	var summary arena.RoundSummary
	if err := json.Unmarshal([]byte(payload), &summary); err != nil {
		return fmt.Errorf("invalid game event payload: %w", err)
	}

	switch summary.Type {
	case arena.EventRoundOver:
		log.Printf("[WS] round_over from session %s (score=%d, round=%d) relayed to %d clients",
			summary.SessionID, summary.Score, summary.Round, hub.Count())
		hub.Broadcast(protocol.MsgFeed, feedFor(summary))
		return nil
	default:
		return fmt.Errorf("unknown game event type: %q", summary.Type)
	}
}
