package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/playmatatu/mergeballs/internal/game"
	"gopkg.in/yaml.v3"
)

// TuningConfig is the on-disk physics tuning.
//
// Example:
//
//	gravity: 0.6
//	restitution: 0.75
//	radius: {min: 20, max: 40}
//	velocity: {horizontal_spread: 4, vertical_max: 10}
//	palette: ["#39FF14", "#FF69B4"]
//	bounds: {width: 1280, height: 720}
type TuningConfig struct {
	Gravity     float64        `yaml:"gravity" json:"gravity"`
	Restitution float64        `yaml:"restitution" json:"restitution"`
	Radius      RadiusConfig   `yaml:"radius" json:"radius"`
	Velocity    VelocityConfig `yaml:"velocity" json:"velocity"`
	Palette     []string       `yaml:"palette" json:"palette"`
	Bounds      BoundsConfig   `yaml:"bounds" json:"bounds"`
}

type RadiusConfig struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

type VelocityConfig struct {
	HorizontalSpread float64 `yaml:"horizontal_spread" json:"horizontal_spread"`
	VerticalMax      float64 `yaml:"vertical_max" json:"vertical_max"`
}

// BoundsConfig is the world size a session starts with before the client
// reports its own.
type BoundsConfig struct {
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

// DefaultTuningConfig mirrors game.DefaultTuning.
func DefaultTuningConfig() *TuningConfig {
	palette := make([]string, len(game.DefaultPalette))
	for i, c := range game.DefaultPalette {
		palette[i] = string(c)
	}
	return &TuningConfig{
		Gravity:     game.Gravity,
		Restitution: game.Restitution,
		Radius:      RadiusConfig{Min: game.MinRadius, Max: game.MaxRadius},
		Velocity:    VelocityConfig{HorizontalSpread: game.HorizontalSpread, VerticalMax: game.VerticalMax},
		Palette:     palette,
		Bounds:      BoundsConfig{Width: game.DefaultWidth, Height: game.DefaultHeight},
	}
}

// LoadTuning reads a YAML tuning file. Keys missing from the file keep their
// default values. An empty path returns the defaults.
func LoadTuning(path string) (*TuningConfig, error) {
	cfg := DefaultTuningConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tuning config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse tuning config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tuning config: %w", err)
	}

	return cfg, nil
}

// Validate checks that the tuning describes a usable world.
func (c *TuningConfig) Validate() error {
	if c.Gravity < 0 {
		return fmt.Errorf("gravity must not be negative, got %v", c.Gravity)
	}
	if c.Restitution < 0 || c.Restitution > 1 {
		return fmt.Errorf("restitution must be within [0,1], got %v", c.Restitution)
	}
	if c.Radius.Min <= 0 || c.Radius.Max < c.Radius.Min {
		return fmt.Errorf("radius range [%v,%v] is invalid", c.Radius.Min, c.Radius.Max)
	}
	if c.Velocity.HorizontalSpread < 0 || c.Velocity.VerticalMax < 0 {
		return errors.New("velocity ranges must not be negative")
	}
	if len(c.Palette) == 0 {
		return errors.New("palette must not be empty")
	}
	for i, color := range c.Palette {
		if color == "" {
			return fmt.Errorf("palette entry %d is empty", i)
		}
	}
	if c.Bounds.Width <= 0 || c.Bounds.Height <= 0 {
		return fmt.Errorf("bounds %vx%v are invalid", c.Bounds.Width, c.Bounds.Height)
	}
	return nil
}

// Game converts the file form into the core's tuning.
func (c *TuningConfig) Game() game.Tuning {
	palette := make(game.Palette, len(c.Palette))
	for i, color := range c.Palette {
		palette[i] = game.Color(color)
	}
	return game.Tuning{
		Gravity:     c.Gravity,
		Restitution: c.Restitution,
		Velocity:    game.VelocityRange{HorizontalSpread: c.Velocity.HorizontalSpread, VerticalMax: c.Velocity.VerticalMax},
		Radius:      game.RadiusRange{Min: c.Radius.Min, Max: c.Radius.Max},
		Palette:     palette,
	}
}

// InitialBounds is the world size before any client resize.
func (c *TuningConfig) InitialBounds() game.Bounds {
	return game.Bounds{Width: c.Bounds.Width, Height: c.Bounds.Height}
}
