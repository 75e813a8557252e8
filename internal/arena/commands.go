package arena

import (
	"github.com/playmatatu/mergeballs/internal/audio"
	"github.com/playmatatu/mergeballs/internal/game"
)

// Viewer is one attached client. Send must not block.
type Viewer interface {
	Send(b []byte) error
	Close() error
}

// Commands accepted on Session.Inbox. All of them are applied by the session
// goroutine between ticks.

type Attach struct {
	Viewer Viewer
	Reply  chan AttachResult
}

type AttachResult struct {
	ViewerID string
}

type Detach struct {
	ViewerID string
}

// Spawn is a pointer click at (X, Y).
type Spawn struct {
	X, Y float64
}

type Resize struct {
	Bounds game.Bounds
}

// Restart starts a new round after a game over.
type Restart struct{}

// SetMute toggles sound. An empty Cue means every cue.
type SetMute struct {
	Muted bool
	Cue   audio.Cue
}

// RequestState asks for the current snapshot to be sent to one viewer.
type RequestState struct {
	ViewerID string
}

type snapshotRequest struct {
	Reply chan game.Snapshot
}
