// Package level loads puzzle layouts from YAML. A layout places the two
// balls, the static and dynamic props, and sets the round's ink budget.
package level

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultLevel []byte

// Point is a screen-space position in pixels, Y down.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// BallDef places one of the two balls the player must bring together.
type BallDef struct {
	Pos    Point   `yaml:"pos"`
	Radius float64 `yaml:"radius"`
}

// ObstacleDef is a static box or disc the draw resolver treats as solid.
// Boxes set half_w/half_h, discs set radius.
type ObstacleDef struct {
	Pos    Point   `yaml:"pos"`
	Angle  float64 `yaml:"angle"`
	HalfW  float64 `yaml:"half_w"`
	HalfH  float64 `yaml:"half_h"`
	Radius float64 `yaml:"radius"`
}

// FallingDef is a loose dynamic box that starts at rest.
type FallingDef struct {
	Pos     Point   `yaml:"pos"`
	Angle   float64 `yaml:"angle"`
	HalfW   float64 `yaml:"half_w"`
	HalfH   float64 `yaml:"half_h"`
	Density float64 `yaml:"density"`
}

// NetDef is a static polyline of thin segments balls can rest in.
type NetDef struct {
	Points    []Point `yaml:"points"`
	Thickness float64 `yaml:"thickness"`
}

// IceDef is a static block that melts away after its first contact.
type IceDef struct {
	Pos   Point   `yaml:"pos"`
	HalfW float64 `yaml:"half_w"`
	HalfH float64 `yaml:"half_h"`
}

// LaserDef is a static beam that destroys balls on contact.
type LaserDef struct {
	Pos       Point   `yaml:"pos"`
	Angle     float64 `yaml:"angle"`
	Length    float64 `yaml:"length"`
	Thickness float64 `yaml:"thickness"`
}

// SeesawDef is a plank pinned at its center with a rotational spring.
type SeesawDef struct {
	Pos        Point   `yaml:"pos"`
	HalfLength float64 `yaml:"half_length"`
	Thickness  float64 `yaml:"thickness"`
	RestAngle  float64 `yaml:"rest_angle"`
}

// ConveyorDef is a static belt that drags resting bodies sideways.
// Direction is +1 or -1 along the belt's local X axis. Zero accel or
// max_speed fall back to the config defaults.
type ConveyorDef struct {
	Pos       Point   `yaml:"pos"`
	Angle     float64 `yaml:"angle"`
	Length    float64 `yaml:"length"`
	Thickness float64 `yaml:"thickness"`
	Direction float64 `yaml:"direction"`
	Accel     float64 `yaml:"accel"`
	MaxSpeed  float64 `yaml:"max_speed"`
}

// ButtonDef is a pressure plate. The first ball contact disables every
// laser in the level and sinks all buttons.
type ButtonDef struct {
	Pos   Point   `yaml:"pos"`
	HalfW float64 `yaml:"half_w"`
	HalfH float64 `yaml:"half_h"`
}

// Level is one puzzle layout.
type Level struct {
	Name      string        `yaml:"name"`
	InkBudget float64       `yaml:"ink_budget"` // pixels of stroke length, 0 = unlimited
	Balls     []BallDef     `yaml:"balls"`
	Obstacles []ObstacleDef `yaml:"obstacles"`
	Falling   []FallingDef  `yaml:"falling"`
	Nets      []NetDef      `yaml:"nets"`
	Ice       []IceDef      `yaml:"ice"`
	Lasers    []LaserDef    `yaml:"lasers"`
	Seesaws   []SeesawDef   `yaml:"seesaws"`
	Conveyors []ConveyorDef `yaml:"conveyors"`
	Buttons   []ButtonDef   `yaml:"buttons"`
}

// Default returns the embedded starter level.
func Default() (*Level, error) {
	return parse(defaultLevel)
}

// Load reads a level from path, or the embedded default when path is empty.
func Load(path string) (*Level, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading level file: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Level, error) {
	var lvl Level
	if err := yaml.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("parsing level: %w", err)
	}
	if err := lvl.validate(); err != nil {
		return nil, err
	}
	return &lvl, nil
}

func (l *Level) validate() error {
	if len(l.Balls) != 2 {
		return fmt.Errorf("level %q: need exactly 2 balls, got %d", l.Name, len(l.Balls))
	}
	for i, b := range l.Balls {
		if b.Radius <= 0 {
			return fmt.Errorf("level %q: ball %d has non-positive radius", l.Name, i)
		}
	}
	for i, n := range l.Nets {
		if len(n.Points) < 2 {
			return fmt.Errorf("level %q: net %d needs at least 2 points", l.Name, i)
		}
	}
	for i, c := range l.Conveyors {
		if c.Direction != 1 && c.Direction != -1 {
			return fmt.Errorf("level %q: conveyor %d direction must be +1 or -1", l.Name, i)
		}
	}
	return nil
}
