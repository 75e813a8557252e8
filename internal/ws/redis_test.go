package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/playmatatu/mergeballs/internal/arena"
	"github.com/playmatatu/mergeballs/internal/protocol"
)

func hubWithClient() (*Hub, *Client) {
	hub := NewHub()
	c := &Client{send: make(chan []byte, 4), viewerID: "v1", sessionID: "sess_a"}
	hub.register(c)
	return hub, c
}

func expectFeed(t *testing.T, c *Client, want protocol.Feed) {
	t.Helper()
	select {
	case b := <-c.send:
		env, err := protocol.DecodeEnvelope(b)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if env.T != protocol.MsgFeed {
			t.Fatalf("expected feed, got %s", env.T)
		}
		got, err := protocol.DecodePayload[protocol.Feed](env)
		if err != nil {
			t.Fatalf("decode feed: %v", err)
		}
		if got != want {
			t.Errorf("got %+v, want %+v", got, want)
		}
	default:
		t.Fatal("no message queued")
	}
}

func TestRelayGameEvent(t *testing.T) {
	hub, c := hubWithClient()

	payload, _ := json.Marshal(arena.RoundSummary{
		Type:      arena.EventRoundOver,
		SessionID: "sess_b",
		Score:     9,
		Round:     3,
		EndedAt:   time.Now(),
	})
	if err := relayGameEvent(hub, string(payload)); err != nil {
		t.Fatalf("relay: %v", err)
	}
	expectFeed(t, c, protocol.Feed{SessionID: "sess_b", Score: 9, Round: 3})
}

func TestRelayGameEventRejectsBadPayloads(t *testing.T) {
	hub, c := hubWithClient()

	for _, payload := range []string{`not json`, `{"type":"player_forfeit"}`} {
		if err := relayGameEvent(hub, payload); err == nil {
			t.Errorf("expected error for %q", payload)
		}
	}
	if len(c.send) != 0 {
		t.Errorf("nothing should be broadcast, got %d messages", len(c.send))
	}
}

func TestHubPublishRoundOver(t *testing.T) {
	hub, c := hubWithClient()

	err := hub.PublishRoundOver(context.Background(), arena.RoundSummary{SessionID: "sess_a", Score: 4, Round: 1})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	expectFeed(t, c, protocol.Feed{SessionID: "sess_a", Score: 4, Round: 1})

	hub.unregister(c)
	if hub.Count() != 0 {
		t.Errorf("expected empty hub, got %d", hub.Count())
	}
}
