package physics

import (
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
	"gonum.org/v1/gonum/spatial/r2"
)

// ShapeSpec describes collider geometry in screen pixels, relative to the
// owning body's origin. Specs are plain data so the stroke decomposition and
// the level loader can build them without touching the kernel.
type ShapeSpec interface {
	isShape()
}

// Circle is a disc collider.
type Circle struct {
	Offset r2.Vec
	Radius float64
}

// Box is an oriented rectangle collider. Angle is in screen convention.
type Box struct {
	Offset       r2.Vec
	Angle        float64
	HalfW, HalfH float64
}

// Hull is a convex polygon collider; the kernel computes the convex hull of
// the given points, so winding does not matter.
type Hull struct {
	Points []r2.Vec
}

// Segment is a thick line collider.
type Segment struct {
	A, B   r2.Vec
	Radius float64
}

func (Circle) isShape()  {}
func (Box) isShape()     {}
func (Hull) isShape()    {}
func (Segment) isShape() {}

// offset conversion: relative displacement, so flip Y and scale but do not
// translate.
func (w *World) toKernelOffset(p r2.Vec) cp.Vector {
	return cp.Vector{X: p.X / w.scale, Y: -p.Y / w.scale}
}

func (w *World) buildShape(body *cp.Body, spec ShapeSpec) (*cp.Shape, error) {
	switch s := spec.(type) {
	case Circle:
		if s.Radius <= 0 {
			return nil, fmt.Errorf("physics: circle radius %v", s.Radius)
		}
		return cp.NewCircle(body, s.Radius/w.scale, w.toKernelOffset(s.Offset)), nil

	case Segment:
		return cp.NewSegment(body, w.toKernelOffset(s.A), w.toKernelOffset(s.B), s.Radius/w.scale), nil

	case Box:
		if s.HalfW <= 0 || s.HalfH <= 0 {
			return nil, fmt.Errorf("physics: box half extents %v x %v", s.HalfW, s.HalfH)
		}
		cos, sin := math.Cos(s.Angle), math.Sin(s.Angle)
		corners := [4]r2.Vec{
			{X: -s.HalfW, Y: -s.HalfH},
			{X: s.HalfW, Y: -s.HalfH},
			{X: s.HalfW, Y: s.HalfH},
			{X: -s.HalfW, Y: s.HalfH},
		}
		verts := make([]cp.Vector, 4)
		for i, c := range corners {
			rotated := r2.Vec{X: c.X*cos - c.Y*sin, Y: c.X*sin + c.Y*cos}
			verts[i] = w.toKernelOffset(r2.Add(rotated, s.Offset))
		}
		return newHullShape(body, verts)

	case Hull:
		if len(s.Points) < 3 {
			return nil, fmt.Errorf("physics: hull with %d points", len(s.Points))
		}
		verts := make([]cp.Vector, len(s.Points))
		for i, p := range s.Points {
			verts[i] = w.toKernelOffset(p)
		}
		return newHullShape(body, verts)

	default:
		return nil, fmt.Errorf("physics: unknown shape spec %T", spec)
	}
}

// newHullShape normalizes winding via the kernel's convex hull and builds a
// polygon shape. Degenerate (collinear) point sets produce a hull with fewer
// than 3 vertices and are rejected.
func newHullShape(body *cp.Body, verts []cp.Vector) (*cp.Shape, error) {
	count := cp.ConvexHull(len(verts), verts, nil, 0)
	if count < 3 {
		return nil, fmt.Errorf("physics: degenerate hull (%d vertices)", count)
	}
	return cp.NewPolyShapeRaw(body, count, verts, 0), nil
}
