package ws

import (
	"context"
	"log"
	"sync"

	"github.com/playmatatu/mergeballs/internal/arena"
	"github.com/playmatatu/mergeballs/internal/protocol"
)

// Hub tracks every connected client across all sessions, for messages that
// are not tied to one session such as the round feed.
type Hub struct {
	clients map[*Client]struct{}
	mu      sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends one message to every connected client. Clients whose
// buffer is full miss it.
func (h *Hub) Broadcast(t string, payload any) {
	data, err := protocol.Encode(t, payload)
	if err != nil {
		log.Printf("[WS] Error encoding %s: %v", t, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if err := client.Send(data); err != nil {
			log.Printf("[WS] %s dropped for client %s in session %s: %v", t, client.viewerID, client.sessionID, err)
		}
	}
}

// PublishRoundOver relays a round summary straight to local clients. It lets
// the hub stand in for Redis as the session publisher when Redis is off.
func (h *Hub) PublishRoundOver(ctx context.Context, s arena.RoundSummary) error {
	h.Broadcast(protocol.MsgFeed, feedFor(s))
	return nil
}

func feedFor(s arena.RoundSummary) protocol.Feed {
	return protocol.Feed{SessionID: s.SessionID, Score: s.Score, Round: s.Round}
}
