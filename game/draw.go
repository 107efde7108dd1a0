package game

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/inkfall/components"
	"github.com/pthm-cable/inkfall/config"
	"github.com/pthm-cable/inkfall/physics"
	"github.com/pthm-cable/inkfall/stroke"
)

// inkRemaining returns the ink left this round, or -1 when unlimited.
func (g *Game) inkRemaining() float64 {
	if g.lvl.InkBudget <= 0 {
		return -1
	}
	left := g.lvl.InkBudget - g.inkUsed
	if left < 0 {
		left = 0
	}
	return left
}

// beginStroke starts a new stroke at the cursor. Starting a stroke during
// the post-round pause cancels the pending auto-restart so the player can
// study the outcome.
func (g *Game) beginStroke(at r2.Vec) {
	if g.state.terminal() {
		g.restartIn = -1
		return
	}
	if !g.state.stepping() || g.drawing {
		return
	}
	if left := g.inkRemaining(); left == 0 {
		return
	}
	pen := g.pen()
	if g.tipBlocked(at, pen.Width) {
		g.drawBlocked = true
		return
	}
	g.path = stroke.NewPath(pen.MinSpacing)
	g.path.Append(at)
	g.drawing = true
	g.drawBlocked = false
}

// extendStroke advances the in-progress stroke toward the cursor, clipped
// by solid geometry and the remaining ink.
func (g *Game) extendStroke(to r2.Vec) {
	if !g.drawing || g.path == nil || g.path.Empty() {
		return
	}
	pen := g.pen()
	last := g.path.Last()

	end, clear := g.resolveSegmentEnd(last, to, pen.Width)
	g.drawBlocked = !clear

	if left := g.inkRemaining(); left >= 0 {
		d := r2.Sub(end, last)
		dist := r2.Norm(d)
		if dist > left {
			if left <= 0 {
				return
			}
			end = r2.Add(last, r2.Scale(left/dist, d))
			g.drawBlocked = true
		}
	}

	g.path.Append(end)
}

// endStroke commits the stroke as a dynamic body. The first committed
// stroke releases the round into play.
func (g *Game) endStroke() {
	if !g.drawing {
		return
	}
	g.drawing = false
	path := g.path
	g.path = nil
	g.drawBlocked = false
	if path == nil || path.Empty() {
		return
	}

	pen := g.pen()
	dec, ok := stroke.Decompose(path.Points(), pen, strokeOptions())
	if !ok {
		return
	}

	// Spend the ink even for a single dab.
	length := path.Len()
	cfgPen := config.Cfg().Pens[g.penIdx]
	tint := components.Tint{
		R: cfgPen.Color.R, G: cfgPen.Color.G, B: cfgPen.Color.B, A: cfgPen.Color.A,
	}
	if !g.spawnStroke(dec, pen, tint, length) {
		return
	}
	g.inkUsed += length
	g.strokes++
	g.collector.RecordStroke(length)

	if g.state == StateReady {
		g.state = StatePlaying
		slog.Info("first stroke committed, round live", "round", g.round)
	}
}

// spawnStroke wraps spawnDrawnLine with the path length bookkeeping.
func (g *Game) spawnStroke(dec stroke.Decomposition, pen stroke.Pen, tint components.Tint, length float64) bool {
	bh := g.phys.CreateBody(physics.BodyDynamic, dec.Centroid)
	added := 0
	for _, spec := range dec.Shapes {
		_, err := g.phys.AddCollider(bh, spec,
			physics.Filter{Categories: physics.CatDrawn, Mask: physics.CatAll},
			false, pen.Material)
		if err != nil {
			slog.Warn("stroke collider rejected", "error", err)
			continue
		}
		added++
	}
	if added == 0 {
		g.phys.RemoveBody(bh)
		return false
	}

	trans := components.Transform{X: dec.Centroid.X, Y: dec.Centroid.Y}
	rb := components.RigidBody{Body: bh}
	drawn := components.DrawnLine{
		Outline: dec.Outline.Offset(r2.Vec{X: -dec.Centroid.X, Y: -dec.Centroid.Y}),
		Width:   pen.Width,
		Length:  length,
	}
	e := g.drawnMapper.NewEntity(&trans, &rb, &tint, &drawn)
	g.register(bh, entityRef{kind: components.KindDrawnLine, entity: e})
	return true
}

// cancelStroke abandons the in-progress stroke without committing.
func (g *Game) cancelStroke() {
	g.drawing = false
	g.drawBlocked = false
	g.path = nil
}

// eraseAt removes the drawn line under the cursor and refunds its ink.
// Only allowed while the round is still undecided.
func (g *Game) eraseAt(at r2.Vec) {
	if !g.state.stepping() {
		return
	}
	ch, ok := g.phys.PointQuery(at, 4, physics.Filter{
		Categories: physics.CatAll, Mask: physics.CatDrawn,
	})
	if !ok {
		return
	}
	ref, ok := g.registry[ch]
	if !ok || ref.kind != components.KindDrawnLine {
		return
	}
	if drawn := g.drawnMap.Get(ref.entity); drawn != nil {
		g.inkUsed -= drawn.Length
		if g.inkUsed < 0 {
			g.inkUsed = 0
		}
		g.strokes--
	}
	g.despawn(ref)
}

// selectPen switches the active pen. In-progress strokes keep their pen.
func (g *Game) selectPen(idx int) {
	if idx < 0 || idx >= len(g.pens) || g.drawing {
		return
	}
	g.penIdx = idx
}
