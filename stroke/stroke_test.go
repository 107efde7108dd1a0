package stroke

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestPathSpacing(t *testing.T) {
	p := NewPath(10)

	if !p.Append(r2.Vec{X: 0, Y: 0}) {
		t.Fatal("first point must always be accepted")
	}
	if p.Append(r2.Vec{X: 5, Y: 0}) {
		t.Error("point inside spacing distance was accepted")
	}
	if !p.Append(r2.Vec{X: 12, Y: 0}) {
		t.Error("point beyond spacing distance was rejected")
	}

	if got := len(p.Points()); got != 2 {
		t.Errorf("points = %d, want 2", got)
	}
	if !approx(p.Len(), 12) {
		t.Errorf("length = %f, want 12", p.Len())
	}
	if last := p.Last(); !approx(last.X, 12) || !approx(last.Y, 0) {
		t.Errorf("last = %v, want (12,0)", last)
	}
}

func TestPathEmpty(t *testing.T) {
	p := NewPath(5)
	if !p.Empty() {
		t.Error("new path should be empty")
	}
	p.Append(r2.Vec{X: 1, Y: 1})
	if p.Empty() {
		t.Error("path with a point should not be empty")
	}
}

func TestSegments(t *testing.T) {
	tests := []struct {
		name   string
		points []r2.Vec
		want   int
	}{
		{"empty", nil, 0},
		{"single point", []r2.Vec{{X: 1, Y: 1}}, 0},
		{"two points", []r2.Vec{{X: 0, Y: 0}, {X: 10, Y: 0}}, 1},
		{"duplicate point skipped", []r2.Vec{{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 10, Y: 0}}, 1},
		{"polyline", []r2.Vec{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs := Segments(tt.points)
			if len(segs) != tt.want {
				t.Errorf("got %d segments, want %d", len(segs), tt.want)
			}
		})
	}
}

func TestSegmentGeometry(t *testing.T) {
	segs := Segments([]r2.Vec{{X: 0, Y: 0}, {X: 10, Y: 0}})
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	s := segs[0]
	if !approx(s.Length, 10) {
		t.Errorf("length = %f, want 10", s.Length)
	}
	if !approx(s.Dir.X, 1) || !approx(s.Dir.Y, 0) {
		t.Errorf("dir = %v, want (1,0)", s.Dir)
	}
	// Normal is the direction rotated a quarter turn.
	if !approx(s.Normal.X, 0) || !approx(s.Normal.Y, 1) {
		t.Errorf("normal = %v, want (0,1)", s.Normal)
	}
}

func TestCentroid(t *testing.T) {
	points := []r2.Vec{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	c := Centroid(points)
	if !approx(c.X, 5) || !approx(c.Y, 5) {
		t.Errorf("centroid = %v, want (5,5)", c)
	}
}
