package physics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func testConfig() Config {
	return Config{
		Gravity:       900,
		PixelsPerUnit: 50,
		Iterations:    10,
		CollisionSlop: 0.5,
	}
}

func testMaterial() Material {
	return Material{Density: 1, Friction: 0.7, Elasticity: 0.1}
}

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

// TestPositionRoundtrip verifies the screen/kernel conversion is lossless
// through the unit scale.
func TestPositionRoundtrip(t *testing.T) {
	w := NewWorld(testConfig())
	tests := []struct {
		name string
		pos  r2.Vec
	}{
		{"origin", r2.Vec{}},
		{"positive quadrant", r2.Vec{X: 320, Y: 240}},
		{"negative y", r2.Vec{X: 100, Y: -60}},
		{"fractional", r2.Vec{X: 12.5, Y: 7.25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bh := w.CreateBody(BodyStatic, tt.pos)
			got := w.Position(bh)
			if !approx(got.X, tt.pos.X, 1e-9) || !approx(got.Y, tt.pos.Y, 1e-9) {
				t.Errorf("position = %v, want %v", got, tt.pos)
			}
		})
	}
}

// TestGravityPullsDown verifies a free dynamic body accelerates toward
// larger Y, the screen-down direction.
func TestGravityPullsDown(t *testing.T) {
	w := NewWorld(testConfig())
	bh := w.CreateBody(BodyDynamic, r2.Vec{X: 100, Y: 100})
	if _, err := w.AddCollider(bh, Circle{Radius: 10}, Filter{Categories: CatBall, Mask: CatAll}, false, testMaterial()); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 30; i++ {
		w.Step(1.0 / 60)
	}

	if pos := w.Position(bh); pos.Y <= 100 {
		t.Errorf("body did not fall: y = %f", pos.Y)
	}
	if vel := w.Velocity(bh); vel.Y <= 0 {
		t.Errorf("downward velocity expected, got %v", vel)
	}
}

func TestVelocityRoundtrip(t *testing.T) {
	cfg := testConfig()
	cfg.Gravity = 0
	w := NewWorld(cfg)
	bh := w.CreateBody(BodyDynamic, r2.Vec{X: 0, Y: 0})
	if _, err := w.AddCollider(bh, Circle{Radius: 5}, Filter{Categories: CatBall, Mask: CatAll}, false, testMaterial()); err != nil {
		t.Fatal(err)
	}

	w.SetVelocity(bh, r2.Vec{X: 40, Y: -25})
	got := w.Velocity(bh)
	if !approx(got.X, 40, 1e-9) || !approx(got.Y, -25, 1e-9) {
		t.Errorf("velocity = %v, want (40,-25)", got)
	}
}

func TestAngleRoundtrip(t *testing.T) {
	w := NewWorld(testConfig())
	bh := w.CreateBody(BodyStatic, r2.Vec{X: 50, Y: 50})
	w.SetAngle(bh, math.Pi/4)
	if got := w.Angle(bh); !approx(got, math.Pi/4, 1e-9) {
		t.Errorf("angle = %f, want %f", got, math.Pi/4)
	}
}

// TestCollisionEvents verifies overlap produces a buffered begin event and
// that draining empties the buffer.
func TestCollisionEvents(t *testing.T) {
	cfg := testConfig()
	cfg.Gravity = 0
	w := NewWorld(cfg)

	ground := w.CreateBody(BodyStatic, r2.Vec{X: 100, Y: 110})
	gch, err := w.AddCollider(ground, Box{HalfW: 50, HalfH: 10}, Filter{Categories: CatTerrain, Mask: CatAll}, false, testMaterial())
	if err != nil {
		t.Fatal(err)
	}
	ball := w.CreateBody(BodyDynamic, r2.Vec{X: 100, Y: 95})
	bch, err := w.AddCollider(ball, Circle{Radius: 10}, Filter{Categories: CatBall, Mask: CatAll}, false, testMaterial())
	if err != nil {
		t.Fatal(err)
	}

	w.Step(1.0 / 60)

	events := w.DrainEvents()
	found := false
	for _, ev := range events {
		if !ev.Start {
			continue
		}
		if (ev.A == gch && ev.B == bch) || (ev.A == bch && ev.B == gch) {
			found = true
		}
	}
	if !found {
		t.Errorf("no begin event between ball and ground in %v", events)
	}
	if rest := w.DrainEvents(); len(rest) != 0 {
		t.Errorf("drain left %d events behind", len(rest))
	}
}

// TestRemoveBodyStaleHandles verifies removal invalidates handles and makes
// every accessor a safe no-op.
func TestRemoveBodyStaleHandles(t *testing.T) {
	w := NewWorld(testConfig())
	bh := w.CreateBody(BodyDynamic, r2.Vec{X: 10, Y: 10})
	ch, err := w.AddCollider(bh, Circle{Radius: 4}, Filter{Categories: CatBall, Mask: CatAll}, false, testMaterial())
	if err != nil {
		t.Fatal(err)
	}

	w.RemoveBody(bh)

	if w.BodyAlive(bh) {
		t.Error("body still reported alive")
	}
	if w.ColliderAlive(ch) {
		t.Error("collider still reported alive")
	}
	if _, ok := w.ColliderBody(ch); ok {
		t.Error("stale collider still resolves to a body")
	}
	if got := w.Position(bh); got != (r2.Vec{}) {
		t.Errorf("stale position = %v, want zero", got)
	}

	// Double removal and stale mutators must not panic.
	w.RemoveBody(bh)
	w.SetPosition(bh, r2.Vec{X: 1, Y: 1})
	w.SetVelocity(bh, r2.Vec{X: 1, Y: 1})
	w.ApplyImpulse(bh, r2.Vec{X: 1, Y: 1})
}

// TestPinToWorld verifies a pinned body stays anchored at its pivot under
// gravity while remaining free to rotate.
func TestPinToWorld(t *testing.T) {
	w := NewWorld(testConfig())
	pivot := r2.Vec{X: 200, Y: 150}
	bh := w.CreateBody(BodyDynamic, pivot)
	// Asymmetric plank so gravity produces torque about the pivot.
	if _, err := w.AddCollider(bh, Box{Offset: r2.Vec{X: 30, Y: 0}, HalfW: 60, HalfH: 5}, Filter{Categories: CatDebris, Mask: CatAll}, false, testMaterial()); err != nil {
		t.Fatal(err)
	}
	w.PinToWorld(bh, pivot)

	for i := 0; i < 60; i++ {
		w.Step(1.0 / 60)
	}

	if pos := w.Position(bh); !approx(pos.X, pivot.X, 1.0) || !approx(pos.Y, pivot.Y, 1.0) {
		t.Errorf("pinned body drifted to %v", pos)
	}
	if ang := w.Angle(bh); math.Abs(ang) < 1e-4 {
		t.Error("pinned plank never rotated under gravity")
	}
}

func TestCollidersAndOwner(t *testing.T) {
	w := NewWorld(testConfig())
	bh := w.CreateBody(BodyStatic, r2.Vec{X: 0, Y: 0})
	c1, err := w.AddCollider(bh, Box{HalfW: 10, HalfH: 10}, Filter{Categories: CatTerrain, Mask: CatAll}, false, testMaterial())
	if err != nil {
		t.Fatal(err)
	}
	c2, err := w.AddCollider(bh, Circle{Offset: r2.Vec{X: 20}, Radius: 5}, Filter{Categories: CatTerrain, Mask: CatAll}, false, testMaterial())
	if err != nil {
		t.Fatal(err)
	}

	got := w.Colliders(bh)
	if len(got) != 2 || got[0] != c1 || got[1] != c2 {
		t.Errorf("colliders = %v, want [%d %d]", got, c1, c2)
	}
	for _, ch := range got {
		owner, ok := w.ColliderBody(ch)
		if !ok || owner != bh {
			t.Errorf("collider %d owner = %d, want %d", ch, owner, bh)
		}
	}
}

func TestAddColliderUnknownBody(t *testing.T) {
	w := NewWorld(testConfig())
	if _, err := w.AddCollider(BodyHandle(999), Circle{Radius: 5}, Filter{}, false, testMaterial()); err == nil {
		t.Error("expected error for unknown body")
	}
}
