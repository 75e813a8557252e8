package game

// Scoreboard is the merge bookkeeping the collision pass reads and updates.
// An empty LastMergedColor means no merge has happened since the last round
// ended.
type Scoreboard struct {
	Score           int   `json:"score"`
	LastMergedColor Color `json:"last_merged_color,omitempty"`
}

// CollisionOutcome summarizes one collision pass.
type CollisionOutcome struct {
	Merges     int  `json:"merges"`
	Bounces    int  `json:"bounces"`
	Terminated bool `json:"terminated"` // a repeated-color merge ended the round
}

// ResolveCollisions checks every unordered pair of live bodies in collection
// order. Overlapping same-color pairs merge, overlapping different-color pairs
// that are closing in bounce elastically. A merge of the same color as the
// previous merge ends the round: the store is cleared and the pass stops.
//
// Merged bodies are flagged during the scan and compacted out afterwards, so
// the scan never sees a shifted index.
func ResolveCollisions(store *BodyStore, board *Scoreboard, sink EventSink) CollisionOutcome {
	var out CollisionOutcome
	bodies := store.bodies
	removed := make([]bool, len(bodies))

	for i := 0; i < len(bodies); i++ {
		if removed[i] {
			continue
		}
		a := bodies[i]
		for j := i + 1; j < len(bodies); j++ {
			if removed[j] {
				continue
			}
			b := bodies[j]
			if !a.overlaps(b) {
				continue
			}

			if a.Color == b.Color {
				board.Score++
				out.Merges++
				if board.LastMergedColor == a.Color {
					sink.Emit(Event{Kind: EventGameOver, Color: a.Color, Score: board.Score})
					store.Clear()
					board.LastMergedColor = ""
					out.Terminated = true
					return out
				}
				board.LastMergedColor = a.Color
				sink.Emit(Event{Kind: EventMerge, Color: a.Color, Score: board.Score})
				removed[i] = true
				removed[j] = true
				// a is gone, nothing left to pair it with
				break
			}

			if resolveElastic(a, b) {
				out.Bounces++
				sink.Emit(Event{Kind: EventBodyCollision, Score: board.Score})
			}
		}
	}

	if out.Merges > 0 {
		store.compact(removed)
	}
	return out
}

// resolveElastic applies a velocity-only elastic collision between a and b
// with masses proportional to radius squared. It does nothing and returns
// false when the bodies are not closing in or their centers coincide.
func resolveElastic(a, b *Body) bool {
	delta := b.Position.Minus(a.Position)
	if delta.IsZero() {
		return false
	}
	// Positive when a is moving toward b relative to b.
	if a.Velocity.Minus(b.Velocity).Dot(delta) <= 0 {
		return false
	}

	angle := -findBearing(delta.X, delta.Y)
	m1 := a.Radius * a.Radius
	m2 := b.Radius * b.Radius
	sum := m1 + m2

	// In the rotated frame x runs along the normal and y along the tangent.
	u1 := a.Velocity.Rotate(angle)
	u2 := b.Velocity.Rotate(angle)

	v1 := Vec2{
		X: u1.X*(m1-m2)/sum + u2.X*2*m2/sum,
		Y: u1.Y,
	}
	v2 := Vec2{
		X: u2.X*(m2-m1)/sum + u1.X*2*m1/sum,
		Y: u2.Y,
	}

	a.Velocity = v1.Rotate(-angle)
	b.Velocity = v2.Rotate(-angle)
	return true
}
