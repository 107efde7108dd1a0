// Package config provides configuration loading and access for the game.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all game configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Field     FieldConfig     `yaml:"field"`
	Draw      DrawConfig      `yaml:"draw"`
	Pens      []PenConfig     `yaml:"pens"`
	Ball      BallConfig      `yaml:"ball"`
	Rules     RulesConfig     `yaml:"rules"`
	Ice       IceConfig       `yaml:"ice"`
	Button    ButtonConfig    `yaml:"button"`
	Seesaw    SeesawConfig    `yaml:"seesaw"`
	Conveyor  ConveyorConfig  `yaml:"conveyor"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// PhysicsConfig holds kernel stepping parameters. All lengths are screen
// pixels; the physics package converts at the kernel boundary.
type PhysicsConfig struct {
	DT             float64 `yaml:"dt"`              // fixed step, seconds
	MaxAccumulator float64 `yaml:"max_accumulator"` // catch-up clamp, seconds
	PixelsPerUnit  float64 `yaml:"pixels_per_unit"` // screen px per kernel length unit
	Gravity        float64 `yaml:"gravity"`         // px/s², positive = down
	Iterations     int     `yaml:"iterations"`
	CollisionSlop  float64 `yaml:"collision_slop"` // px
}

// FieldConfig holds the play-field boundary. A ball whose center leaves the
// screen rect grown by Margin is lost.
type FieldConfig struct {
	Margin float64 `yaml:"margin"`
}

// DrawConfig holds draw-path resolver and stroke corner parameters.
type DrawConfig struct {
	RayCount      int     `yaml:"ray_count"`       // parallel rays across the pen width
	TipMargin     float64 `yaml:"tip_margin"`      // extra clearance radius beyond half width, px
	BackStep      float64 `yaml:"back_step"`       // backward scan step, px
	MiterMinAngle float64 `yaml:"miter_min_angle"` // degrees
	MaxMiterRatio float64 `yaml:"max_miter_ratio"` // × half width
}

// RGBA is a plain color for yaml.
type RGBA struct {
	R uint8 `yaml:"r"`
	G uint8 `yaml:"g"`
	B uint8 `yaml:"b"`
	A uint8 `yaml:"a"`
}

// PenConfig defines one selectable pen.
type PenConfig struct {
	Name       string  `yaml:"name"`
	Width      float64 `yaml:"width"`       // px
	MinSpacing float64 `yaml:"min_spacing"` // px between sampled points
	Density    float64 `yaml:"density"`
	Friction   float64 `yaml:"friction"`
	Elasticity float64 `yaml:"elasticity"`
	Color      RGBA    `yaml:"color"`
}

// BallConfig holds the player balls' material.
type BallConfig struct {
	Density    float64 `yaml:"density"`
	Friction   float64 `yaml:"friction"`
	Elasticity float64 `yaml:"elasticity"`
}

// RulesConfig holds round-outcome rules.
type RulesConfig struct {
	// ContinueAfterBallLoss keeps the round alive when a hazard removes one
	// ball while the other remains; false ends the round immediately.
	ContinueAfterBallLoss bool    `yaml:"continue_after_ball_loss"`
	RestartDelay          float64 `yaml:"restart_delay"` // seconds after Won/Lost
}

// IceConfig holds melting block parameters.
type IceConfig struct {
	MeltDuration float64 `yaml:"melt_duration"` // seconds from first touch to despawn
}

// ButtonConfig holds button sink parameters.
type ButtonConfig struct {
	SinkDuration float64 `yaml:"sink_duration"` // seconds from press to despawn
	SinkDepth    float64 `yaml:"sink_depth"`    // px of visual travel
}

// SeesawConfig holds the plank restoring spring.
type SeesawConfig struct {
	Stiffness float64 `yaml:"stiffness"` // rad/s² per rad
	Damping   float64 `yaml:"damping"`   // 1/s
}

// ConveyorConfig holds belt defaults; levels may override per belt.
type ConveyorConfig struct {
	Accel     float64 `yaml:"accel"`      // px/s²
	MaxSpeed  float64 `yaml:"max_speed"`  // px/s
	GearSpeed float64 `yaml:"gear_speed"` // rad/s, render only
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow int `yaml:"perf_window"` // samples kept per driver phase
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	MiterMinAngleRad float64        // Draw.MiterMinAngle in radians
	PenIndex         map[string]int // name -> index for pen lookup
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if
// path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.MiterMinAngleRad = c.Draw.MiterMinAngle * math.Pi / 180

	c.Derived.PenIndex = make(map[string]int, len(c.Pens))
	for i, pen := range c.Pens {
		c.Derived.PenIndex[pen.Name] = i
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
