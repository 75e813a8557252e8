package game

import "math/rand"

// BodyView is what a renderer needs to draw one body.
type BodyView struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
	Color  Color   `json:"color"`
}

// Snapshot is the render hook: the live bodies and the score after a tick.
type Snapshot struct {
	Tick   int        `json:"tick"`
	Score  int        `json:"score"`
	Status GameStatus `json:"status"`
	Bodies []BodyView `json:"bodies"`
}

// TickResult reports what a single Tick did.
type TickResult struct {
	Ran        bool             `json:"ran"` // false when the round is already over
	Collisions CollisionOutcome `json:"collisions"`
	Status     GameStatus       `json:"status"`
}

// Simulation is one merge-balls world. It is not safe for concurrent use; the
// owner serializes Spawn, Tick and Restart.
type Simulation struct {
	tuning Tuning
	store  *BodyStore
	board  Scoreboard
	status GameStatus
	sink   EventSink
	tick   int
}

// NewSimulation creates a running simulation with no bodies. A nil sink
// discards events; a nil rng is seeded from the global source.
func NewSimulation(tuning Tuning, sink EventSink, rng *rand.Rand) *Simulation {
	if sink == nil {
		sink = Discard
	}
	return &Simulation{
		tuning: tuning,
		store:  NewBodyStore(rng),
		status: StatusRunning,
		sink:   sink,
	}
}

// Spawn drops a new random body at (x, y).
func (s *Simulation) Spawn(x, y float64) *Body {
	return s.store.Spawn(NewVec2(x, y), s.tuning.Velocity, s.tuning.Radius, s.tuning.Palette)
}

// Add inserts a prepared body.
func (s *Simulation) Add(b *Body) {
	s.store.Add(b)
}

// Tick advances the world by one step: collisions first, then gravity and
// boundaries for whatever survived. A terminal merge ends the tick before the
// stepper runs. Ticks after the round is over do nothing until Restart.
func (s *Simulation) Tick(bounds Bounds) TickResult {
	if s.status == StatusGameOver {
		return TickResult{Status: s.status}
	}
	s.tick++

	outcome := ResolveCollisions(s.store, &s.board, s.sink)
	if outcome.Terminated {
		s.status = StatusGameOver
		return TickResult{Ran: true, Collisions: outcome, Status: s.status}
	}

	s.store.Step(s.tuning.Gravity, s.tuning.Restitution, bounds, s.sink)
	return TickResult{Ran: true, Collisions: outcome, Status: s.status}
}

// Restart begins a new round with an empty world. The score carries over.
func (s *Simulation) Restart() {
	s.store.Clear()
	s.board.LastMergedColor = ""
	s.status = StatusRunning
}

func (s *Simulation) Score() int {
	return s.board.Score
}

func (s *Simulation) LastMergedColor() Color {
	return s.board.LastMergedColor
}

func (s *Simulation) Status() GameStatus {
	return s.status
}

func (s *Simulation) Tuning() Tuning {
	return s.tuning
}

// Bodies exposes the live bodies. Callers must not keep the slice across ticks.
func (s *Simulation) Bodies() []*Body {
	return s.store.Bodies()
}

// Snapshot copies the renderable state.
func (s *Simulation) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:   s.tick,
		Score:  s.board.Score,
		Status: s.status,
		Bodies: make([]BodyView, 0, s.store.Len()),
	}
	for _, b := range s.store.Bodies() {
		snap.Bodies = append(snap.Bodies, BodyView{
			X:      b.Position.X,
			Y:      b.Position.Y,
			Radius: b.Radius,
			Color:  b.Color,
		})
	}
	return snap
}
