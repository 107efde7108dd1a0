// Package stroke turns a user-drawn polyline into a filled outline and a
// matching set of collider specs.
//
// Both outputs come from one segment-computation pass over the same points,
// so the rendered ink and the physics footprint never disagree about occupied
// space. All geometry is in screen pixels.
package stroke

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/inkfall/physics"
)

// Pen parameterizes both the stroke outline and the resulting colliders.
type Pen struct {
	Name       string
	Width      float64 // full stroke width in px
	MinSpacing float64 // minimum distance between sampled points
	Material   physics.Material
}

// Options tunes corner handling.
type Options struct {
	MiterMinAngle float64 // turn angle below which no miter is emitted
	MaxMiterRatio float64 // miter length cap as a multiple of half width
}

// DefaultOptions matches the shipped pens: miter joins from 30° turns,
// capped at 3 half-widths.
func DefaultOptions() Options {
	return Options{
		MiterMinAngle: math.Pi / 6,
		MaxMiterRatio: 3,
	}
}

// Path is the ephemeral, distance-sampled point sequence of an in-progress
// draw. It becomes a drawn line only on pointer release.
type Path struct {
	points  []r2.Vec
	spacing float64
	length  float64
}

// NewPath starts a path with the pen's sampling distance.
func NewPath(spacing float64) *Path {
	return &Path{spacing: spacing}
}

// Append adds a point if it is at least the sampling distance from the last
// one. The first point is always accepted. Reports whether the point was
// kept.
func (p *Path) Append(pt r2.Vec) bool {
	if len(p.points) == 0 {
		p.points = append(p.points, pt)
		return true
	}
	last := p.points[len(p.points)-1]
	d := r2.Norm(r2.Sub(pt, last))
	if d < p.spacing {
		return false
	}
	p.points = append(p.points, pt)
	p.length += d
	return true
}

// Points returns the sampled points.
func (p *Path) Points() []r2.Vec { return p.points }

// Last returns the most recent sampled point.
func (p *Path) Last() r2.Vec {
	if len(p.points) == 0 {
		return r2.Vec{}
	}
	return p.points[len(p.points)-1]
}

// Len returns the total sampled ink length in px.
func (p *Path) Len() float64 { return p.length }

// Empty reports whether no point was accepted yet.
func (p *Path) Empty() bool { return len(p.points) == 0 }

// Segment is one span of a polyline with its precomputed frame. Normal is
// the left-hand perpendicular of Dir.
type Segment struct {
	A, B   r2.Vec
	Dir    r2.Vec
	Normal r2.Vec
	Length float64
}

// Segments computes the per-span frames for a polyline, skipping zero-length
// spans. This is the single shared pass used by the outline builder and the
// collider decomposition.
func Segments(points []r2.Vec) []Segment {
	segs := make([]Segment, 0, len(points))
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		d := r2.Sub(b, a)
		length := r2.Norm(d)
		if length < 1e-9 {
			continue
		}
		dir := r2.Scale(1/length, d)
		segs = append(segs, Segment{
			A:      a,
			B:      b,
			Dir:    dir,
			Normal: perp(dir),
			Length: length,
		})
	}
	return segs
}

// Centroid returns the mean of the sampled points; it becomes the dynamic
// body's origin so colliders stay local.
func Centroid(points []r2.Vec) r2.Vec {
	if len(points) == 0 {
		return r2.Vec{}
	}
	var sum r2.Vec
	for _, p := range points {
		sum = r2.Add(sum, p)
	}
	return r2.Scale(1/float64(len(points)), sum)
}

func perp(d r2.Vec) r2.Vec {
	return r2.Vec{X: -d.Y, Y: d.X}
}

func cross(a, b r2.Vec) float64 {
	return a.X*b.Y - a.Y*b.X
}
