package game

// EventKind names a side effect the core asks the outside world to render.
type EventKind string

const (
	EventFloorImpact   EventKind = "floor_impact"
	EventBodyCollision EventKind = "body_collision"
	EventMerge         EventKind = "merge"
	EventGameOver      EventKind = "game_over"
)

// Event records something audible that happened during a tick.
type Event struct {
	Kind  EventKind `json:"kind"`
	Color Color     `json:"color,omitempty"`
	Score int       `json:"score"`
}

// EventSink receives core events. Implementations must not block and must not
// call back into the Simulation that emitted the event.
type EventSink interface {
	Emit(Event)
}

// EventSinkFunc adapts a plain function to EventSink.
type EventSinkFunc func(Event)

func (f EventSinkFunc) Emit(e Event) {
	f(e)
}

// Discard drops every event.
var Discard EventSink = EventSinkFunc(func(Event) {})

// Recorder collects events in order. Handy for tests and replays.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Emit(e Event) {
	r.Events = append(r.Events, e)
}

// Count returns how many recorded events have the given kind.
func (r *Recorder) Count(kind EventKind) int {
	n := 0
	for _, e := range r.Events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
