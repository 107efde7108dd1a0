package physics

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

// staticBox drops a static box into the world and returns its collider.
func staticBox(t *testing.T, w *World, pos r2.Vec, halfW, halfH float64, cat uint) ColliderHandle {
	t.Helper()
	bh := w.CreateBody(BodyStatic, pos)
	ch, err := w.AddCollider(bh, Box{HalfW: halfW, HalfH: halfH}, Filter{Categories: cat, Mask: CatAll}, false, testMaterial())
	if err != nil {
		t.Fatal(err)
	}
	return ch
}

// TestSegmentQueryFirst casts a horizontal ray into a box and checks the
// hit point, normal and travelled fraction in screen convention.
func TestSegmentQueryFirst(t *testing.T) {
	w := NewWorld(testConfig())
	box := staticBox(t, w, r2.Vec{X: 200, Y: 100}, 20, 20, CatTerrain)

	hit, ok := w.SegmentQueryFirst(r2.Vec{X: 100, Y: 100}, r2.Vec{X: 300, Y: 100}, 0, Filter{Categories: CatDrawn, Mask: CatAll})
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.Collider != box {
		t.Errorf("hit collider %d, want %d", hit.Collider, box)
	}
	// Box face at x=180, cast length 200, so 80/200 of the segment.
	if !approx(hit.Point.X, 180, 1.0) || !approx(hit.Point.Y, 100, 1.0) {
		t.Errorf("hit point = %v, want (180,100)", hit.Point)
	}
	if !approx(hit.Alpha, 0.4, 0.01) {
		t.Errorf("alpha = %f, want 0.4", hit.Alpha)
	}
	if !approx(hit.Normal.X, -1, 1e-6) || !approx(hit.Normal.Y, 0, 1e-6) {
		t.Errorf("normal = %v, want (-1,0)", hit.Normal)
	}
}

func TestSegmentQueryMiss(t *testing.T) {
	w := NewWorld(testConfig())
	staticBox(t, w, r2.Vec{X: 200, Y: 100}, 20, 20, CatTerrain)

	if _, ok := w.SegmentQueryFirst(r2.Vec{X: 100, Y: 200}, r2.Vec{X: 300, Y: 200}, 0, Filter{Categories: CatDrawn, Mask: CatAll}); ok {
		t.Error("ray well below the box reported a hit")
	}
}

// TestSegmentQueryFilter verifies the mask excludes categories the caster
// should pass through.
func TestSegmentQueryFilter(t *testing.T) {
	w := NewWorld(testConfig())
	staticBox(t, w, r2.Vec{X: 200, Y: 100}, 20, 20, CatSensor)

	filter := Filter{Categories: CatDrawn, Mask: CatTerrain | CatBall}
	if _, ok := w.SegmentQueryFirst(r2.Vec{X: 100, Y: 100}, r2.Vec{X: 300, Y: 100}, 0, filter); ok {
		t.Error("masked-out category was still hit")
	}
}

func TestCircleOverlaps(t *testing.T) {
	w := NewWorld(testConfig())
	staticBox(t, w, r2.Vec{X: 200, Y: 100}, 20, 20, CatTerrain)

	tests := []struct {
		name   string
		center r2.Vec
		radius float64
		want   bool
	}{
		{"overlapping", r2.Vec{X: 225, Y: 100}, 10, true},
		{"touching edge region", r2.Vec{X: 228, Y: 100}, 10, true},
		{"clear", r2.Vec{X: 260, Y: 100}, 10, false},
		{"far away", r2.Vec{X: 500, Y: 500}, 10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := w.CircleOverlaps(tt.center, tt.radius, Filter{Categories: CatDrawn, Mask: CatAll})
			if got != tt.want {
				t.Errorf("overlap = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPointQuery(t *testing.T) {
	w := NewWorld(testConfig())
	box := staticBox(t, w, r2.Vec{X: 200, Y: 100}, 20, 20, CatDrawn)

	ch, ok := w.PointQuery(r2.Vec{X: 222, Y: 100}, 5, Filter{Categories: CatAll, Mask: CatDrawn})
	if !ok || ch != box {
		t.Errorf("point query = (%d,%v), want (%d,true)", ch, ok, box)
	}

	if _, ok := w.PointQuery(r2.Vec{X: 240, Y: 100}, 5, Filter{Categories: CatAll, Mask: CatDrawn}); ok {
		t.Error("point beyond max distance reported a hit")
	}
}

// TestContactManifold verifies resting contact yields touch points between
// the two colliders with the normal pointing from the reference side.
func TestContactManifold(t *testing.T) {
	w := NewWorld(testConfig())
	ground := staticBox(t, w, r2.Vec{X: 100, Y: 200}, 100, 10, CatTerrain)

	ball := w.CreateBody(BodyDynamic, r2.Vec{X: 100, Y: 170})
	bch, err := w.AddCollider(ball, Circle{Radius: 15}, Filter{Categories: CatBall, Mask: CatAll}, false, testMaterial())
	if err != nil {
		t.Fatal(err)
	}

	// Let it settle onto the ground.
	for i := 0; i < 120; i++ {
		w.Step(1.0 / 60)
	}

	m, ok := w.ContactManifold(ground, bch)
	if !ok {
		t.Fatal("no manifold for resting contact")
	}
	if len(m.Points) == 0 {
		t.Fatal("manifold has no points")
	}
	// Ground top face is y=190; contact point sits near it.
	if !approx(m.Points[0].Point.Y, 190, 3.0) {
		t.Errorf("contact y = %f, want near 190", m.Points[0].Point.Y)
	}
	// Normal points from the ground toward the ball, screen-up.
	if m.Normal.Y > -0.9 {
		t.Errorf("normal = %v, want pointing up", m.Normal)
	}

	if _, ok := w.ContactManifold(ground, ColliderHandle(9999)); ok {
		t.Error("stale handle produced a manifold")
	}
}
