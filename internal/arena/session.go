package arena

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/playmatatu/mergeballs/internal/audio"
	"github.com/playmatatu/mergeballs/internal/game"
	"github.com/playmatatu/mergeballs/internal/protocol"
)

var ErrSessionStopped = errors.New("session stopped")

const (
	DefaultTickHz = 60
	// MaxTickHz keeps the tick period well above zero.
	MaxTickHz = 1000
)

// Options configures every session a Manager creates.
type Options struct {
	TickHz int
	Tuning game.Tuning
	Bounds game.Bounds
	// MaxBodies caps live bodies per session; clicks beyond it are dropped.
	// Zero means no cap.
	MaxBodies int
	// Rand supplies the spawn RNG. Nil seeds from the clock.
	Rand func() *rand.Rand
}

// Session owns one simulation and is the only goroutine that touches it.
// Input, ticks and viewer changes are serialized through Run.
type Session struct {
	ID    string
	Inbox chan any

	sim       *game.Simulation
	mixer     *audio.Mixer
	bounds    game.Bounds
	tickHz    int
	maxBodies int
	round     int
	publisher Publisher

	viewers    map[string]Viewer
	nextViewer int

	viewerCount atomic.Int32
	lastActive  atomic.Int64 // unix nanos

	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewSession creates a stopped session; call Run to start ticking.
func NewSession(id string, opts Options, pub Publisher) *Session {
	tickHz := opts.TickHz
	if tickHz <= 0 {
		tickHz = DefaultTickHz
	}
	if tickHz > MaxTickHz {
		tickHz = MaxTickHz
	}
	var rng *rand.Rand
	if opts.Rand != nil {
		rng = opts.Rand()
	} else {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	bounds := opts.Bounds
	if bounds.Width <= 0 || bounds.Height <= 0 {
		bounds = game.Bounds{Width: game.DefaultWidth, Height: game.DefaultHeight}
	}

	s := &Session{
		ID:        id,
		Inbox:     make(chan any, 256),
		bounds:    bounds,
		tickHz:    tickHz,
		maxBodies: opts.MaxBodies,
		round:     1,
		publisher: pub,
		viewers:   make(map[string]Viewer),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	s.mixer = audio.NewMixer(audio.PlayerFunc(s.playCue))
	s.sim = game.NewSimulation(opts.Tuning, s.mixer, rng)
	s.touch()
	return s
}

// Run drives the session until ctx is done or Stop is called.
func (s *Session) Run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(time.Second / time.Duration(s.tickHz))
	defer ticker.Stop()
	tickC := ticker.C

	for {
		select {
		case <-ctx.Done():
			s.closeViewers()
			return
		case <-s.quit:
			s.closeViewers()
			return
		case cmd := <-s.Inbox:
			if s.handleCommand(cmd) {
				tickC = ticker.C
			}
		case <-tickC:
			if !s.tick() {
				// Round over: stop the frame loop until a restart.
				tickC = nil
			}
		}
	}
}

// Stop ends Run. Safe to call more than once.
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.quit) })
}

// Done is closed once Run has returned.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Send queues a command without blocking the caller forever.
func (s *Session) Send(ctx context.Context, cmd any) error {
	select {
	case <-s.done:
		return ErrSessionStopped
	default:
	}
	select {
	case s.Inbox <- cmd:
		return nil
	case <-s.done:
		return ErrSessionStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot fetches the current render state from the session goroutine.
func (s *Session) Snapshot(ctx context.Context) (game.Snapshot, error) {
	reply := make(chan game.Snapshot, 1)
	if err := s.Send(ctx, snapshotRequest{Reply: reply}); err != nil {
		return game.Snapshot{}, err
	}
	select {
	case snap := <-reply:
		return snap, nil
	case <-s.done:
		return game.Snapshot{}, ErrSessionStopped
	case <-ctx.Done():
		return game.Snapshot{}, ctx.Err()
	}
}

// NumViewers is safe to call from any goroutine.
func (s *Session) NumViewers() int {
	return int(s.viewerCount.Load())
}

// LastActive is the time of the last input or viewer change.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

func (s *Session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

// tick advances the simulation and broadcasts the result. It returns false
// once the round is over.
func (s *Session) tick() bool {
	res := s.sim.Tick(s.bounds)
	s.broadcastState()
	if res.Collisions.Terminated {
		s.endRound()
		return false
	}
	return res.Status == game.StatusRunning
}

// handleCommand applies one inbox command. It returns true when the frame loop
// should be (re)started.
func (s *Session) handleCommand(cmd any) bool {
	switch c := cmd.(type) {
	case Attach:
		s.touch()
		s.nextViewer++
		viewerID := fmt.Sprintf("v%d", s.nextViewer)
		s.viewers[viewerID] = c.Viewer
		s.viewerCount.Store(int32(len(s.viewers)))
		log.Printf("[ARENA] viewer %s attached to session %s (viewers=%d)", viewerID, s.ID, len(s.viewers))
		s.sendTo(c.Viewer, protocol.MsgWelcome, protocol.Welcome{
			SessionID: s.ID,
			ViewerID:  viewerID,
			TickHz:    s.tickHz,
			Bounds:    s.bounds,
			Sound:     s.muteState(),
		})
		s.sendTo(c.Viewer, protocol.MsgState, s.sim.Snapshot())
		if c.Reply != nil {
			c.Reply <- AttachResult{ViewerID: viewerID}
		}

	case Detach:
		s.touch()
		s.removeViewer(c.ViewerID)

	case Spawn:
		s.touch()
		if s.sim.Status() != game.StatusRunning {
			log.Printf("[ARENA] session %s ignoring click while round is over", s.ID)
			return false
		}
		if s.maxBodies > 0 && len(s.sim.Bodies()) >= s.maxBodies {
			log.Printf("[ARENA] session %s at body cap (%d), dropping click", s.ID, s.maxBodies)
			return false
		}
		s.mixer.StartMusic()
		s.sim.Spawn(c.X, c.Y)

	case Resize:
		s.touch()
		if c.Bounds.Width <= 0 || c.Bounds.Height <= 0 {
			return false
		}
		s.bounds = c.Bounds

	case Restart:
		s.touch()
		if s.sim.Status() != game.StatusGameOver {
			return false
		}
		s.sim.Restart()
		s.round++
		log.Printf("[ARENA] session %s restarted, round %d (score=%d)", s.ID, s.round, s.sim.Score())
		s.broadcastState()
		return true

	case SetMute:
		s.touch()
		if c.Cue == "" {
			s.mixer.SetMuted(c.Muted)
		} else {
			s.mixer.SetCueMuted(c.Cue, c.Muted)
		}
		// Viewers silence or resume whatever is already playing.
		s.broadcast(protocol.MsgMuteState, s.muteState())

	case RequestState:
		if v, ok := s.viewers[c.ViewerID]; ok {
			s.sendTo(v, protocol.MsgState, s.sim.Snapshot())
		}

	case snapshotRequest:
		c.Reply <- s.sim.Snapshot()

	default:
		log.Printf("[ARENA] session %s got unknown command %T", s.ID, cmd)
	}
	return false
}

func (s *Session) endRound() {
	score := s.sim.Score()
	log.Printf("[ARENA] session %s round %d over, score=%d", s.ID, s.round, score)
	s.broadcast(protocol.MsgGameOver, protocol.GameOver{Score: score, Round: s.round})

	if s.publisher == nil {
		return
	}
	summary := RoundSummary{
		Type:      EventRoundOver,
		SessionID: s.ID,
		Score:     score,
		Round:     s.round,
		EndedAt:   time.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.publisher.PublishRoundOver(ctx, summary); err != nil {
			log.Printf("[ARENA] publish round_over failed for session %s: %v", s.ID, err)
		}
	}()
}

func (s *Session) muteState() protocol.MuteState {
	cues := s.mixer.MutedCues()
	names := make([]string, len(cues))
	for i, c := range cues {
		names[i] = string(c)
	}
	return protocol.MuteState{Muted: s.mixer.Muted(), MutedCues: names}
}

// playCue is the audio player: it forwards cues to every viewer.
func (s *Session) playCue(cue audio.Cue) error {
	return s.broadcast(protocol.MsgSound, protocol.Sound{Cue: string(cue)})
}

func (s *Session) broadcastState() {
	s.broadcast(protocol.MsgState, s.sim.Snapshot())
}

func (s *Session) broadcast(t string, payload any) error {
	b, err := protocol.Encode(t, payload)
	if err != nil {
		log.Printf("[ARENA] encode %s failed: %v", t, err)
		return err
	}

	var failed []string
	for id, v := range s.viewers {
		if err := v.Send(b); err != nil {
			failed = append(failed, id)
		}
	}
	for _, id := range failed {
		log.Printf("[ARENA] dropping viewer %s from session %s after send failure", id, s.ID)
		s.removeViewer(id)
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d viewers failed", len(failed))
	}
	return nil
}

func (s *Session) sendTo(v Viewer, t string, payload any) {
	b, err := protocol.Encode(t, payload)
	if err != nil {
		log.Printf("[ARENA] encode %s failed: %v", t, err)
		return
	}
	_ = v.Send(b)
}

func (s *Session) removeViewer(id string) {
	v, ok := s.viewers[id]
	if !ok {
		return
	}
	_ = v.Close()
	delete(s.viewers, id)
	s.viewerCount.Store(int32(len(s.viewers)))
	log.Printf("[ARENA] viewer %s left session %s (viewers=%d)", id, s.ID, len(s.viewers))
}

func (s *Session) closeViewers() {
	for id := range s.viewers {
		s.removeViewer(id)
	}
}
