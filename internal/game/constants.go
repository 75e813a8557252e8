package game

// Physics defaults. Units are canvas pixels and pixels per tick, one tick per
// animation frame.
const (
	Gravity          = 0.6
	Restitution      = 0.75 // applied on floor and wall bounces
	MinRadius        = 20.0
	MaxRadius        = 40.0
	HorizontalSpread = 4.0  // spawn vx is drawn from [-4, 4)
	VerticalMax      = 10.0 // spawn vy is drawn from [0, 10)

	DefaultWidth  = 1280.0
	DefaultHeight = 720.0
)

// DefaultPalette is the set of colors a spawned body can take.
var DefaultPalette = Palette{
	"#0011ffff",
	"#39FF14",
	"#FF69B4",
	"#FFD300",
	"#ff0000ff",
}

// Tuning bundles the knobs a Simulation is created with.
type Tuning struct {
	Gravity     float64
	Restitution float64
	Velocity    VelocityRange
	Radius      RadiusRange
	Palette     Palette
}

// DefaultTuning returns the stock physics parameters.
func DefaultTuning() Tuning {
	return Tuning{
		Gravity:     Gravity,
		Restitution: Restitution,
		Velocity:    VelocityRange{HorizontalSpread: HorizontalSpread, VerticalMax: VerticalMax},
		Radius:      RadiusRange{Min: MinRadius, Max: MaxRadius},
		Palette:     append(Palette(nil), DefaultPalette...),
	}
}
