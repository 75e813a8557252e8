package game

import "math/rand"

// BodyStore owns the live bodies in insertion order and advances them one tick
// at a time.
type BodyStore struct {
	bodies []*Body
	rng    *rand.Rand
}

// NewBodyStore creates an empty store drawing spawn parameters from rng.
func NewBodyStore(rng *rand.Rand) *BodyStore {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &BodyStore{rng: rng}
}

// Spawn appends a body at pos with a random velocity, radius and color.
func (s *BodyStore) Spawn(pos Vec2, vel VelocityRange, radius RadiusRange, palette Palette) *Body {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	b := &Body{
		Position: pos,
		Velocity: NewVec2(
			(s.rng.Float64()-0.5)*2*vel.HorizontalSpread,
			s.rng.Float64()*vel.VerticalMax,
		),
		Radius: radius.Min + s.rng.Float64()*(radius.Max-radius.Min),
		Color:  palette[s.rng.Intn(len(palette))],
	}
	s.bodies = append(s.bodies, b)
	return b
}

// Add appends a prepared body.
func (s *BodyStore) Add(b *Body) {
	s.bodies = append(s.bodies, b)
}

// Bodies returns the live bodies. The slice is owned by the store and is only
// valid until the next mutation.
func (s *BodyStore) Bodies() []*Body {
	return s.bodies
}

func (s *BodyStore) Len() int {
	return len(s.bodies)
}

// Clear drops every body.
func (s *BodyStore) Clear() {
	s.bodies = nil
}

// compact removes the bodies flagged in removed, keeping the order of the rest.
func (s *BodyStore) compact(removed []bool) {
	kept := s.bodies[:0]
	for i, b := range s.bodies {
		if !removed[i] {
			kept = append(kept, b)
		}
	}
	for i := len(kept); i < len(s.bodies); i++ {
		s.bodies[i] = nil
	}
	s.bodies = kept
}

// Step applies gravity, integrates position and resolves floor and wall
// contact for every live body. bounds is read fresh on every call.
func (s *BodyStore) Step(gravity, restitution float64, bounds Bounds, sink EventSink) {
	for _, b := range s.bodies {
		b.Velocity.Y += gravity
		b.Position = b.Position.Plus(b.Velocity)

		if b.Position.Y+b.Radius > bounds.Height {
			b.Position.Y = bounds.Height - b.Radius
			b.Velocity.Y = -b.Velocity.Y * restitution
			// The flag is never cleared, so a body only sounds its first landing.
			if !b.HasTouchedFloor {
				b.HasTouchedFloor = true
				sink.Emit(Event{Kind: EventFloorImpact, Color: b.Color})
			}
		}
		if b.Position.X+b.Radius > bounds.Width {
			b.Position.X = bounds.Width - b.Radius
			b.Velocity.X = -b.Velocity.X * restitution
		}
		if b.Position.X-b.Radius < 0 {
			b.Position.X = b.Radius
			b.Velocity.X = -b.Velocity.X * restitution
		}
	}
}
