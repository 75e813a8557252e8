package ws

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/playmatatu/mergeballs/internal/arena"
	"github.com/playmatatu/mergeballs/internal/audio"
	"github.com/playmatatu/mergeballs/internal/game"
	"github.com/playmatatu/mergeballs/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 256
)

var (
	ErrClientClosed   = errors.New("client closed")
	ErrSendBufferFull = errors.New("client send buffer full")
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origins are checked by middleware.WebSocketCORSCheck
	},
}

// Upgrade switches an HTTP request to a websocket connection.
func Upgrade(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return upgrader.Upgrade(w, r, nil)
}

// Client is one browser connection attached to a session. It implements
// arena.Viewer.
type Client struct {
	conn      *websocket.Conn
	session   *arena.Session
	hub       *Hub
	sessionID string
	viewerID  string

	send   chan []byte
	mu     sync.Mutex
	closed bool
}

func newClient(conn *websocket.Conn, s *arena.Session, hub *Hub) *Client {
	return &Client{
		conn:      conn,
		session:   s,
		hub:       hub,
		sessionID: s.ID,
		send:      make(chan []byte, sendBuffer),
	}
}

// Send queues b for the write pump. It never blocks: a slow client gets an
// error and is dropped by its session.
func (c *Client) Send(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.send <- b:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close stops the write pump, which sends a close frame and closes the
// connection. Safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.send)
	return nil
}

// Serve attaches conn to the session and runs its pumps. It returns once the
// client is attached; the pumps keep running in their own goroutines.
func Serve(ctx context.Context, conn *websocket.Conn, s *arena.Session, hub *Hub) error {
	c := newClient(conn, s, hub)

	reply := make(chan arena.AttachResult, 1)
	if err := s.Send(ctx, arena.Attach{Viewer: c, Reply: reply}); err != nil {
		conn.Close()
		return fmt.Errorf("failed to attach to session %s: %w", s.ID, err)
	}
	select {
	case res := <-reply:
		c.viewerID = res.ViewerID
	case <-s.Done():
		conn.Close()
		return arena.ErrSessionStopped
	case <-ctx.Done():
		conn.Close()
		return ctx.Err()
	}

	if hub != nil {
		hub.register(c)
	}
	log.Printf("[WS] client %s connected to session %s", c.viewerID, c.sessionID)

	go c.writePump()
	go c.readPump()
	return nil
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed: the session dropped us or is shutting down.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] write error for client %s in session %s: %v", c.viewerID, c.sessionID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] ping error for client %s in session %s: %v", c.viewerID, c.sessionID, err)
				return
			}
		}
	}
}

// readPump turns client messages into session commands.
func (c *Client) readPump() {
	defer func() {
		if c.hub != nil {
			c.hub.unregister(c)
		}
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		defer cancel()
		if err := c.session.Send(ctx, arena.Detach{ViewerID: c.viewerID}); err != nil {
			// Session is gone; nobody else will close us.
			c.Close()
		}
		c.conn.Close()
		log.Printf("[WS] client %s disconnected from session %s", c.viewerID, c.sessionID)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] unexpected close for client %s: %v", c.viewerID, err)
			}
			return
		}

		env, err := protocol.DecodeEnvelope(message)
		if err != nil {
			c.sendError("invalid message")
			continue
		}

		cmd, err := commandFor(env, c.viewerID)
		if err != nil {
			c.sendError(err.Error())
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		err = c.session.Send(ctx, cmd)
		cancel()
		if err != nil {
			log.Printf("[WS] session %s rejected %s from client %s: %v", c.sessionID, env.T, c.viewerID, err)
			return
		}
	}
}

// commandFor maps a client envelope onto the session command it asks for.
func commandFor(env protocol.Envelope, viewerID string) (any, error) {
	switch env.T {
	case protocol.MsgClick:
		click, err := protocol.DecodePayload[protocol.Click](env)
		if err != nil {
			return nil, errors.New("invalid click data")
		}
		return arena.Spawn{X: click.X, Y: click.Y}, nil

	case protocol.MsgResize:
		r, err := protocol.DecodePayload[protocol.Resize](env)
		if err != nil || r.Width <= 0 || r.Height <= 0 {
			return nil, errors.New("invalid resize data")
		}
		return arena.Resize{Bounds: game.Bounds{Width: r.Width, Height: r.Height}}, nil

	case protocol.MsgRestart:
		return arena.Restart{}, nil

	case protocol.MsgMute:
		m, err := protocol.DecodePayload[protocol.Mute](env)
		if err != nil {
			return nil, errors.New("invalid mute data")
		}
		return arena.SetMute{Muted: m.Muted, Cue: audio.Cue(m.Cue)}, nil

	case protocol.MsgGetState:
		return arena.RequestState{ViewerID: viewerID}, nil

	default:
		return nil, fmt.Errorf("unknown message type %q", env.T)
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	b, err := protocol.Encode(protocol.MsgError, protocol.Error{Message: message})
	if err != nil {
		return
	}
	if err := c.Send(b); err != nil {
		log.Printf("[WS] could not send error to client %s: %v", c.viewerID, err)
	}
}
