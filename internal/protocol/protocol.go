package protocol

import (
	"encoding/json"

	"github.com/playmatatu/mergeballs/internal/game"
)

// Client -> server message types.
const (
	MsgClick    = "click"
	MsgResize   = "resize"
	MsgRestart  = "restart"
	MsgMute     = "mute"
	MsgGetState = "get_state"
)

// Server -> client message types.
const (
	MsgWelcome   = "welcome"
	MsgState     = "state"
	MsgSound     = "sound"
	MsgMuteState = "mute_state"
	MsgGameOver  = "game_over"
	MsgFeed      = "feed"
	MsgError     = "error"
)

type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"` // raw payload bytes
}

// Click is a pointer click in canvas coordinates.
type Click struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Resize reports the client's current canvas size.
type Resize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Mute toggles sound for the session. An empty Cue applies to every cue.
type Mute struct {
	Muted bool   `json:"muted"`
	Cue   string `json:"cue,omitempty"`
}

// Restart is sent by the client after a game over.
type Restart struct{}

type Welcome struct {
	SessionID string      `json:"sessionId"`
	ViewerID  string      `json:"viewerId"`
	TickHz    int         `json:"tickHz"`
	Bounds    game.Bounds `json:"bounds"`
	Sound     MuteState   `json:"sound"`
}

// State is the per-tick render snapshot.
type State = game.Snapshot

type Sound struct {
	Cue string `json:"cue"`
}

// MuteState is the session's current sound settings. Clients apply it to any
// cue already playing, including the music loop.
type MuteState struct {
	Muted     bool     `json:"muted"`
	MutedCues []string `json:"mutedCues"`
}

type GameOver struct {
	Score int `json:"score"`
	Round int `json:"round"`
}

// Feed announces a round that ended in any session.
type Feed struct {
	SessionID string `json:"sessionId"`
	Score     int    `json:"score"`
	Round     int    `json:"round"`
}

type Error struct {
	Message string `json:"message"`
}
