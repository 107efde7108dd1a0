package stroke

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/inkfall/physics"
)

// Quad is a filled screen-space quadrilateral.
type Quad [4]r2.Vec

// Disc is a filled screen-space circle.
type Disc struct {
	Center r2.Vec
	Radius float64
}

// Outline is the renderable fill of a stroke: one plank quad per segment,
// round caps at the two ends, and a miter kite per sharp interior turn.
type Outline struct {
	Planks []Quad
	Caps   []Disc
	Kites  []Quad
}

// Decomposition pairs the outline with its coincident collider specs. Specs
// are relative to Centroid, ready for one dynamic body.
type Decomposition struct {
	Centroid r2.Vec
	Outline  Outline
	Shapes   []physics.ShapeSpec
}

// Decompose builds the outline and collider set for a sampled polyline.
// Returns false for an empty point list; a single point yields a disc.
func Decompose(points []r2.Vec, pen Pen, opts Options) (Decomposition, bool) {
	if len(points) == 0 {
		return Decomposition{}, false
	}
	half := pen.Width / 2
	centroid := Centroid(points)
	d := Decomposition{Centroid: centroid}

	segs := Segments(points)
	if len(segs) == 0 {
		// Degenerate stroke: a single dab of ink.
		d.Outline.Caps = append(d.Outline.Caps, Disc{Center: points[0], Radius: half})
		d.Shapes = append(d.Shapes, physics.Circle{
			Offset: r2.Sub(points[0], centroid),
			Radius: half,
		})
		return d, true
	}

	// Plank per segment: quad for the fill, box collider of the same extent.
	for _, s := range segs {
		off := r2.Scale(half, s.Normal)
		d.Outline.Planks = append(d.Outline.Planks, Quad{
			r2.Add(s.A, off), r2.Add(s.B, off), r2.Sub(s.B, off), r2.Sub(s.A, off),
		})
		mid := r2.Scale(0.5, r2.Add(s.A, s.B))
		d.Shapes = append(d.Shapes, physics.Box{
			Offset: r2.Sub(mid, centroid),
			Angle:  math.Atan2(s.Dir.Y, s.Dir.X),
			HalfW:  s.Length / 2,
			HalfH:  half,
		})
	}

	// Round caps at the first and last point only. Interior vertices get no
	// cap: a disc there would fill the concave notch of a sharp turn.
	for _, end := range []r2.Vec{segs[0].A, segs[len(segs)-1].B} {
		d.Outline.Caps = append(d.Outline.Caps, Disc{Center: end, Radius: half})
		d.Shapes = append(d.Shapes, physics.Circle{
			Offset: r2.Sub(end, centroid),
			Radius: half,
		})
	}

	// Miter kite on the convex side of each sharp interior turn.
	for i := 1; i < len(segs); i++ {
		if kite, ok := miterKite(segs[i-1], segs[i], half, opts); ok {
			d.Outline.Kites = append(d.Outline.Kites, kite)
			d.Shapes = append(d.Shapes, physics.Hull{
				Points: []r2.Vec{
					r2.Sub(kite[0], centroid),
					r2.Sub(kite[1], centroid),
					r2.Sub(kite[2], centroid),
					r2.Sub(kite[3], centroid),
				},
			})
		}
	}
	return d, true
}

// Offset returns a translated copy of the outline. Spawning code uses it to
// re-anchor outlines at the body origin so they can follow a moving body.
func (o Outline) Offset(delta r2.Vec) Outline {
	out := Outline{
		Planks: make([]Quad, len(o.Planks)),
		Caps:   make([]Disc, len(o.Caps)),
		Kites:  make([]Quad, len(o.Kites)),
	}
	for i, q := range o.Planks {
		for j, p := range q {
			out.Planks[i][j] = r2.Add(p, delta)
		}
	}
	for i, c := range o.Caps {
		out.Caps[i] = Disc{Center: r2.Add(c.Center, delta), Radius: c.Radius}
	}
	for i, q := range o.Kites {
		for j, p := range q {
			out.Kites[i][j] = r2.Add(p, delta)
		}
	}
	return out
}

// miterKite builds the convex filler quad where two thick segments meet, or
// reports false when the turn is too shallow, degenerate, or would spike past
// the miter cap.
func miterKite(in, out Segment, half float64, opts Options) (Quad, bool) {
	sin := cross(in.Dir, out.Dir)
	dot := in.Dir.X*out.Dir.X + in.Dir.Y*out.Dir.Y
	turn := math.Atan2(math.Abs(sin), dot)
	if turn < opts.MiterMinAngle {
		return Quad{}, false
	}
	// Near-reversal or collinear: the edge intersection is unbounded or
	// undefined, fall back to no patch rather than a degenerate sliver.
	if math.Abs(sin) < 1e-9 {
		return Quad{}, false
	}

	v := in.B // shared vertex
	side := -1.0
	if sin < 0 {
		side = 1.0
	}
	outerIn := r2.Scale(side*half, in.Normal)
	outerOut := r2.Scale(side*half, out.Normal)

	// Extend both segments' outer edges along their own directions until
	// they intersect.
	e1 := r2.Add(v, outerIn)
	e2 := r2.Add(v, outerOut)
	t := cross(r2.Sub(e2, e1), out.Dir) / sin
	m := r2.Add(e1, r2.Scale(t, in.Dir))

	if r2.Norm(r2.Sub(m, v)) > opts.MaxMiterRatio*half {
		return Quad{}, false
	}
	return Quad{e1, m, e2, v}, true
}
