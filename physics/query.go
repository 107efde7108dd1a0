package physics

import (
	"github.com/jakecoffman/cp"
	"gonum.org/v1/gonum/spatial/r2"
)

// RayHit is the first obstruction along a cast segment.
type RayHit struct {
	Collider ColliderHandle
	Point    r2.Vec
	Normal   r2.Vec
	Alpha    float64 // fraction of the segment travelled before impact
}

// SegmentQueryFirst casts a thick segment from a to b (screen pixels) and
// returns the first hit among colliders matching the filter.
func (w *World) SegmentQueryFirst(a, b r2.Vec, radius float64, f Filter) (RayHit, bool) {
	info := w.space.SegmentQueryFirst(w.toKernel(a), w.toKernel(b), radius/w.scale, f.cp())
	if info.Shape == nil {
		return RayHit{}, false
	}
	h, _ := info.Shape.UserData.(ColliderHandle)
	return RayHit{
		Collider: h,
		Point:    w.toScreen(info.Point),
		Normal:   w.toScreenDir(info.Normal),
		Alpha:    info.Alpha,
	}, true
}

// CircleOverlaps reports whether a disc at center (screen pixels) overlaps
// any collider matching the filter.
func (w *World) CircleOverlaps(center r2.Vec, radius float64, f Filter) bool {
	body := cp.NewKinematicBody()
	body.SetPosition(w.toKernel(center))
	probe := cp.NewCircle(body, radius/w.scale, cp.Vector{})
	probe.SetFilter(f.cp())
	return w.space.ShapeQuery(probe, func(_ *cp.Shape, _ *cp.ContactPointSet) {})
}

// PointQuery returns the collider nearest to p within maxDist, if any.
func (w *World) PointQuery(p r2.Vec, maxDist float64, f Filter) (ColliderHandle, bool) {
	info := w.space.PointQueryNearest(w.toKernel(p), maxDist/w.scale, f.cp())
	if info.Shape == nil {
		return 0, false
	}
	h, ok := info.Shape.UserData.(ColliderHandle)
	return h, ok
}

// ContactPoint is one touching point of a manifold, in screen pixels.
type ContactPoint struct {
	Point r2.Vec
	Depth float64 // overlap depth in px, negative when separated by slop
}

// Manifold describes where two colliders currently touch. The normal points
// from the reference collider toward the other one, in screen convention.
type Manifold struct {
	Normal r2.Vec
	Points []ContactPoint
}

// ContactManifold returns the current contact manifold between two colliders,
// with ref as the reference side, or false if they are not touching or either
// handle is stale.
func (w *World) ContactManifold(ref, other ColliderHandle) (Manifold, bool) {
	sa, okA := w.shapes[ref]
	sb, okB := w.shapes[other]
	if !okA || !okB {
		return Manifold{}, false
	}

	var set cp.ContactPointSet
	found := false
	swapped := false
	sa.Body().EachArbiter(func(arb *cp.Arbiter) {
		if found {
			return
		}
		x, y := arb.Shapes()
		switch {
		case x == sa && y == sb:
			set = arb.ContactPointSet()
			found = true
		case x == sb && y == sa:
			set = arb.ContactPointSet()
			found = true
			swapped = true
		}
	})
	if !found || set.Count == 0 {
		return Manifold{}, false
	}

	normal := w.toScreenDir(set.Normal)
	if swapped {
		normal = r2.Scale(-1, normal)
	}
	m := Manifold{Normal: normal, Points: make([]ContactPoint, 0, set.Count)}
	for i := 0; i < set.Count; i++ {
		pt := set.Points[i].PointA
		if swapped {
			pt = set.Points[i].PointB
		}
		m.Points = append(m.Points, ContactPoint{
			Point: w.toScreen(pt),
			Depth: -set.Points[i].Distance * w.scale,
		})
	}
	return m, true
}
