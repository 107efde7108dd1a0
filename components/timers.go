package components

// Melt tracks an ice block's irreversible melt. Progress only moves forward;
// the block despawns when Elapsed reaches Duration.
type Melt struct {
	Melting  bool
	Elapsed  float64
	Duration float64
}

// Progress returns melt completion in [0, 1].
func (m *Melt) Progress() float64 {
	if m.Duration <= 0 {
		return 1
	}
	p := m.Elapsed / m.Duration
	if p > 1 {
		return 1
	}
	return p
}

// Sink tracks a button's irreversible sink after a press. The button
// despawns when Elapsed reaches Duration.
type Sink struct {
	Sinking  bool
	Elapsed  float64
	Duration float64
	Depth    float64 // px of visual travel at full sink
}

// Progress returns sink completion in [0, 1].
func (s *Sink) Progress() float64 {
	if s.Duration <= 0 {
		return 1
	}
	p := s.Elapsed / s.Duration
	if p > 1 {
		return 1
	}
	return p
}

// Belt is a conveyor's configuration plus its cosmetic gear state. Direction
// signs the surface tangent: +1 drives along the rotated normal, -1 against.
type Belt struct {
	Direction float64
	Accel     float64 // px/s² imparted to riders
	MaxSpeed  float64 // px/s surface speed cap
	Gear      float64 // current gear angle, render only
	GearSpeed float64 // rad/s, render only
}

// Plank is a seesaw plank's restoring spring parameters.
type Plank struct {
	Stiffness float64 // rad/s² per rad of deflection
	Damping   float64 // 1/s
	RestAngle float64
}

// Beam is a laser's renderable extent.
type Beam struct {
	HalfLength float64
	Thickness  float64
}
