package game

// Color is a palette entry. Two bodies merge when their colors are equal.
type Color string

// Palette is the fixed set of colors bodies are drawn from.
type Palette []Color

// Body is a circular body. Radius and Color never change after Spawn.
type Body struct {
	Position        Vec2    `json:"position"`
	Velocity        Vec2    `json:"velocity"`
	Radius          float64 `json:"radius"`
	Color           Color   `json:"color"`
	HasTouchedFloor bool    `json:"has_touched_floor"` // gates the one-shot floor impact event
}

// NewBody builds a body with an explicit state, bypassing the random spawn.
func NewBody(x, y, vx, vy, radius float64, color Color) *Body {
	return &Body{
		Position: NewVec2(x, y),
		Velocity: NewVec2(vx, vy),
		Radius:   radius,
		Color:    color,
	}
}

// overlaps reports whether the two circles intersect.
func (b *Body) overlaps(o *Body) bool {
	d := o.Position.Minus(b.Position).Magnitude()
	return d < b.Radius+o.Radius
}

// kineticEnergy is twice the kinetic energy under the equal density model (m = r²).
func (b *Body) kineticEnergy() float64 {
	return b.Radius * b.Radius * b.Velocity.MagnitudeSquared()
}

// VelocityRange bounds the random spawn velocity. Horizontal velocity is
// symmetric around zero; vertical velocity is never negative (never upward).
type VelocityRange struct {
	HorizontalSpread float64
	VerticalMax      float64
}

// RadiusRange bounds the random spawn radius.
type RadiusRange struct {
	Min float64
	Max float64
}

// Bounds is the size of the drawing surface. There is no ceiling.
type Bounds struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
