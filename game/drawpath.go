package game

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/inkfall/config"
	"github.com/pthm-cable/inkfall/physics"
)

// drawQueryFilter matches everything a pen stroke must not pass through.
// Sensors (lasers) are excluded: ink may cross a beam, the beam only acts
// on balls.
var drawQueryFilter = physics.Filter{
	Categories: physics.CatDrawn,
	Mask:       physics.CatTerrain | physics.CatBall | physics.CatDrawn | physics.CatDebris,
}

// resolveSegmentEnd finds the furthest point along p1→p2 the pen tip may
// reach without the stroke crossing solid geometry. A fan of parallel rays
// spread across the pen width finds the earliest obstruction; the candidate
// endpoint is then pulled back until a tip-sized disc fits.
func (g *Game) resolveSegmentEnd(p1, p2 r2.Vec, width float64) (r2.Vec, bool) {
	cfg := config.Cfg()

	d := r2.Sub(p2, p1)
	length := r2.Norm(d)
	if length < 1e-9 {
		return p1, true
	}
	dir := r2.Scale(1/length, d)
	normal := r2.Vec{X: -dir.Y, Y: dir.X}

	rays := cfg.Draw.RayCount
	if rays < 1 {
		rays = 1
	}
	minAlpha := 1.0
	hit := false
	for i := 0; i < rays; i++ {
		frac := 0.0
		if rays > 1 {
			frac = float64(i)/float64(rays-1) - 0.5
		}
		off := r2.Scale(frac*width, normal)
		if h, ok := g.phys.SegmentQueryFirst(r2.Add(p1, off), r2.Add(p2, off), 0, drawQueryFilter); ok {
			hit = true
			if h.Alpha < minAlpha {
				minAlpha = h.Alpha
			}
		}
	}
	if !hit {
		return p2, true
	}

	tipRadius := width/2 + cfg.Draw.TipMargin
	limit := minAlpha * length
	end := r2.Add(p1, r2.Scale(limit, dir))
	if !g.phys.CircleOverlaps(end, tipRadius, drawQueryFilter) {
		return end, false
	}

	// Walk backward in fixed steps. Validity is not monotonic along the
	// segment: a pocket short of the obstruction can be clear while
	// points before and after it are not, so a binary search could land
	// on the wrong side. Linear scan from the far end returns the
	// furthest clear point.
	step := cfg.Draw.BackStep
	if step <= 0 {
		step = 2
	}
	for dist := limit - step; dist > 0; dist -= step {
		p := r2.Add(p1, r2.Scale(dist, dir))
		if !g.phys.CircleOverlaps(p, tipRadius, drawQueryFilter) {
			return p, false
		}
	}
	return p1, false
}

// tipBlocked reports whether a fresh stroke may start at the point.
func (g *Game) tipBlocked(p r2.Vec, width float64) bool {
	cfg := config.Cfg()
	return g.phys.CircleOverlaps(p, width/2+cfg.Draw.TipMargin, drawQueryFilter)
}
