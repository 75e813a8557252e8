package audio

import (
	"sort"
	"sync"

	"github.com/playmatatu/mergeballs/internal/game"
)

// Cue names a sound the client knows how to play.
type Cue string

const (
	CueHit     Cue = "hit"     // floor impact
	CueBounce  Cue = "bounce"  // body-body bounce
	CueCollide Cue = "collide" // merge
	CueLoss    Cue = "loss"    // game over
	CueMusic   Cue = "music"   // background loop
)

// Player plays a cue. Implementations should not block; any error they return
// is dropped.
type Player interface {
	Play(cue Cue) error
}

// PlayerFunc adapts a function to Player.
type PlayerFunc func(Cue) error

func (f PlayerFunc) Play(c Cue) error {
	return f(c)
}

// cueFor maps core events to cues.
var cueFor = map[game.EventKind]Cue{
	game.EventFloorImpact:   CueHit,
	game.EventBodyCollision: CueBounce,
	game.EventMerge:         CueCollide,
	game.EventGameOver:      CueLoss,
}

// Mixer turns core events into cues for a Player. It owns the mute state: a
// global mute plus an optional mute per cue. Mixer implements game.EventSink.
type Mixer struct {
	player Player

	mu           sync.RWMutex
	muted        bool
	mutedCues    map[Cue]bool
	musicStarted bool
}

// NewMixer creates an unmuted mixer. A nil player makes every cue a no-op.
func NewMixer(player Player) *Mixer {
	return &Mixer{
		player:    player,
		mutedCues: make(map[Cue]bool),
	}
}

// Emit plays the cue mapped to e, if any and if not muted.
func (m *Mixer) Emit(e game.Event) {
	cue, ok := cueFor[e.Kind]
	if !ok {
		return
	}
	m.play(cue)
}

// StartMusic plays the background loop once per mixer while unmuted. It
// reports whether the cue was sent.
func (m *Mixer) StartMusic() bool {
	m.mu.Lock()
	if m.musicStarted || m.muted || m.mutedCues[CueMusic] {
		m.mu.Unlock()
		return false
	}
	m.musicStarted = true
	m.mu.Unlock()

	m.play(CueMusic)
	return true
}

// SetMuted toggles every cue at once.
func (m *Mixer) SetMuted(muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muted = muted
}

func (m *Mixer) Muted() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.muted
}

// MutedCues returns the individually muted cues in name order.
func (m *Mixer) MutedCues() []Cue {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Cue, 0, len(m.mutedCues))
	for c := range m.mutedCues {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SetCueMuted silences or restores a single cue.
func (m *Mixer) SetCueMuted(cue Cue, muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if muted {
		m.mutedCues[cue] = true
	} else {
		delete(m.mutedCues, cue)
	}
}

func (m *Mixer) play(cue Cue) {
	if m.player == nil {
		return
	}
	m.mu.RLock()
	silenced := m.muted || m.mutedCues[cue]
	m.mu.RUnlock()
	if silenced {
		return
	}

	// Playback failures never reach the simulation.
	defer func() { _ = recover() }()
	_ = m.player.Play(cue)
}
