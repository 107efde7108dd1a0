package game

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/inkfall/components"
	"github.com/pthm-cable/inkfall/config"
	"github.com/pthm-cable/inkfall/physics"
	"github.com/pthm-cable/inkfall/stroke"
	"github.com/pthm-cable/inkfall/ui"
)

var backgroundColor = rl.NewColor(244, 240, 232, 255)

// Draw renders the frame: props, drawn ink, the in-progress stroke, and the
// HUD, in that order.
func (g *Game) Draw() {
	g.syncTransforms()

	rl.BeginDrawing()
	rl.ClearBackground(backgroundColor)

	g.drawSilhouettes()
	g.drawBeams()
	g.drawInk()
	g.drawPathPreview()
	g.drawHUD()

	switch g.state {
	case StateMenu:
		g.drawMenuOverlay()
	case StateEdit:
		g.drawEditOverlay()
	}

	if g.debugMode {
		g.drawInspector()
	}

	rl.EndDrawing()
}

// drawInspector shows the entity under the cursor while debug mode is on.
func (g *Game) drawInspector() {
	cfg := config.Cfg()
	mouse := rl.GetMousePosition()
	cursor := r2.Vec{X: float64(mouse.X), Y: float64(mouse.Y)}

	ch, ok := g.phys.PointQuery(cursor, 6, physics.Filter{
		Categories: physics.CatAll, Mask: physics.CatAll,
	})
	if !ok {
		return
	}
	ref, ok := g.registry[ch]
	if !ok {
		return
	}
	bh, ok := g.phys.ColliderBody(ch)
	if !ok {
		return
	}

	pos := g.phys.Position(bh)
	vel := g.phys.Velocity(bh)
	g.inspector.Draw(ui.EntityInfo{
		Kind:      ref.kind.String(),
		X:         pos.X,
		Y:         pos.Y,
		Angle:     g.phys.Angle(bh),
		VelX:      vel.X,
		VelY:      vel.Y,
		Mass:      g.phys.Mass(bh),
		Colliders: len(g.phys.Colliders(bh)),
	}, mouse, int32(cfg.Screen.Width), int32(cfg.Screen.Height))
}

func tintColor(t *components.Tint) rl.Color {
	return rl.NewColor(t.R, t.G, t.B, t.A)
}

// drawSilhouettes renders every box, disc and segment prop. Melt fades ice
// out; sink slides buttons down.
func (g *Game) drawSilhouettes() {
	query := g.shapeFilter.Query()
	for query.Next() {
		trans, sil, tint := query.Get()
		entity := query.Entity()
		color := tintColor(tint)

		x := trans.X
		y := trans.Y
		if s := g.sinkMap.Get(entity); s != nil && s.Sinking {
			y += s.Progress() * s.Depth
		}
		if m := g.meltMap.Get(entity); m != nil && m.Melting {
			fade := 1 - m.Progress()
			color.A = uint8(float64(color.A) * fade)
		}

		switch sil.Form {
		case components.FormBox:
			rl.DrawRectanglePro(
				rl.NewRectangle(float32(x), float32(y),
					float32(2*sil.HalfW), float32(2*sil.HalfH)),
				rl.NewVector2(float32(sil.HalfW), float32(sil.HalfH)),
				float32(trans.Angle*180/math.Pi),
				color,
			)
			if belt := g.beltMap.Get(entity); belt != nil {
				drawBeltGears(trans, sil, belt)
			}
		case components.FormDisc:
			rl.DrawCircleV(rl.NewVector2(float32(x), float32(y)), float32(sil.Radius), color)
		case components.FormSegment:
			rl.DrawLineEx(
				rl.NewVector2(float32(x), float32(y)),
				rl.NewVector2(float32(x+sil.X2), float32(y+sil.Y2)),
				float32(2*sil.Radius),
				color,
			)
		}
	}
}

// drawBeltGears spins spoked rollers along the belt so its direction reads
// at a glance. Gear is a render-only phase advanced on the wall clock.
func drawBeltGears(trans *components.Transform, sil *components.Silhouette, belt *components.Belt) {
	sin, cos := math.Sincos(trans.Angle)
	r := sil.HalfH * 0.7
	spacing := 4 * sil.HalfH
	count := int(2*sil.HalfW/spacing) + 1

	for i := 0; i < count; i++ {
		lx := -sil.HalfW + spacing/2 + float64(i)*spacing
		if lx > sil.HalfW {
			break
		}
		cx := trans.X + lx*cos
		cy := trans.Y + lx*sin
		rl.DrawCircleV(rl.NewVector2(float32(cx), float32(cy)), float32(r), rl.NewColor(120, 120, 126, 255))
		for s := 0; s < 3; s++ {
			a := belt.Gear + float64(s)*math.Pi/3
			dx := r * math.Cos(a+trans.Angle)
			dy := r * math.Sin(a+trans.Angle)
			rl.DrawLineV(
				rl.NewVector2(float32(cx-dx), float32(cy-dy)),
				rl.NewVector2(float32(cx+dx), float32(cy+dy)),
				rl.NewColor(40, 40, 44, 255),
			)
		}
	}
}

func (g *Game) drawBeams() {
	query := g.beamFilter.Query()
	for query.Next() {
		trans, beam, tint := query.Get()
		color := tintColor(tint)
		rl.DrawRectanglePro(
			rl.NewRectangle(float32(trans.X), float32(trans.Y),
				float32(2*beam.HalfLength), float32(beam.Thickness)),
			rl.NewVector2(float32(beam.HalfLength), float32(beam.Thickness/2)),
			float32(trans.Angle*180/math.Pi),
			color,
		)
	}
}

// drawInk renders committed strokes from their body-local outlines so they
// follow the body as it falls and rotates.
func (g *Game) drawInk() {
	query := g.drawnFilter.Query()
	for query.Next() {
		trans, drawn, tint := query.Get()
		color := tintColor(tint)
		sin, cos := math.Sincos(trans.Angle)
		origin := r2.Vec{X: trans.X, Y: trans.Y}

		world := func(p r2.Vec) rl.Vector2 {
			return rl.NewVector2(
				float32(origin.X+p.X*cos-p.Y*sin),
				float32(origin.Y+p.X*sin+p.Y*cos),
			)
		}

		for _, q := range drawn.Outline.Planks {
			drawQuad(q, world, color)
		}
		for _, q := range drawn.Outline.Kites {
			drawQuad(q, world, color)
		}
		for _, c := range drawn.Outline.Caps {
			center := world(c.Center)
			rl.DrawCircleV(center, float32(c.Radius), color)
		}
	}
}

// drawQuad fills a convex quad as two triangles. raylib culls clockwise
// triangles, so both windings are issued.
func drawQuad(q stroke.Quad, world func(r2.Vec) rl.Vector2, color rl.Color) {
	a, b, c, d := world(q[0]), world(q[1]), world(q[2]), world(q[3])
	rl.DrawTriangle(a, b, c, color)
	rl.DrawTriangle(a, c, b, color)
	rl.DrawTriangle(a, c, d, color)
	rl.DrawTriangle(a, d, c, color)
}

// drawPathPreview renders the stroke being drawn. It turns red at the tip
// when the resolver is clipping against geometry or the ink ran out.
func (g *Game) drawPathPreview() {
	if !g.drawing || g.path == nil || g.path.Empty() {
		return
	}
	pen := g.pen()
	cfgPen := config.Cfg().Pens[g.penIdx]
	color := rl.NewColor(cfgPen.Color.R, cfgPen.Color.G, cfgPen.Color.B, 170)

	pts := g.path.Points()
	for i := 1; i < len(pts); i++ {
		rl.DrawLineEx(
			rl.NewVector2(float32(pts[i-1].X), float32(pts[i-1].Y)),
			rl.NewVector2(float32(pts[i].X), float32(pts[i].Y)),
			float32(pen.Width),
			color,
		)
	}
	for _, p := range pts {
		rl.DrawCircleV(rl.NewVector2(float32(p.X), float32(p.Y)), float32(pen.Width/2), color)
	}

	tip := pts[len(pts)-1]
	tipColor := rl.NewColor(90, 180, 90, 220)
	if g.drawBlocked {
		tipColor = rl.NewColor(220, 60, 60, 220)
	}
	rl.DrawCircleLines(int32(tip.X), int32(tip.Y), float32(pen.Width/2+2), tipColor)
}

func (g *Game) drawHUD() {
	cfg := config.Cfg()
	r := g.uiRenderer

	r.DrawPanel(8, 8, 270, 92)
	y := r.DrawSectionHeader(16, 14, g.lvl.Name)
	y = r.DrawLabelValue(16, y, "round", fmt.Sprintf("%d  (%s)", g.round, g.state))
	if left := g.inkRemaining(); left >= 0 {
		frac := 0.0
		if g.lvl.InkBudget > 0 {
			frac = left / g.lvl.InkBudget
		}
		r.DrawBar(16, y, fmt.Sprintf("ink (%s)", g.pen().Name), frac, 246)
	} else {
		r.DrawLabelValue(16, y, "pen", g.pen().Name)
	}

	switch g.state {
	case StateWon:
		label := "solved!"
		w := rl.MeasureText(label, 40)
		rl.DrawText(label, int32(cfg.Screen.Width/2)-w/2, int32(cfg.Screen.Height/2)-60, 40, rl.NewColor(60, 150, 60, 255))
		rl.DrawCircleLines(int32(g.winPoint.X), int32(g.winPoint.Y), 26, rl.Gold)
	case StateLost:
		label := "ball lost"
		w := rl.MeasureText(label, 40)
		rl.DrawText(label, int32(cfg.Screen.Width/2)-w/2, int32(cfg.Screen.Height/2)-60, 40, rl.NewColor(190, 60, 60, 255))
	}
	if g.state.terminal() && g.restartIn >= 0 {
		rl.DrawText(fmt.Sprintf("restarting in %.1f  (draw to cancel, R now)", g.restartIn),
			int32(cfg.Screen.Width/2)-150, int32(cfg.Screen.Height/2)-10, 20, rl.DarkGray)
	}
}

func (g *Game) drawMenuOverlay() {
	cfg := config.Cfg()
	rl.DrawRectangle(0, 0, int32(cfg.Screen.Width), int32(cfg.Screen.Height), rl.NewColor(20, 20, 24, 180))
	lines := []string{
		"inkfall",
		"",
		"draw lines to bring the two balls together",
		"left drag: draw   right click: erase (before play)",
		"1-3: pens   R: restart   Tab: edit   M: close menu",
	}
	y := int32(cfg.Screen.Height/2) - int32(len(lines)*16)
	for _, line := range lines {
		w := rl.MeasureText(line, 24)
		rl.DrawText(line, int32(cfg.Screen.Width/2)-w/2, y, 24, rl.RayWhite)
		y += 32
	}
}

func (g *Game) drawEditOverlay() {
	cfg := config.Cfg()
	rl.DrawRectangle(0, 0, int32(cfg.Screen.Width), 30, rl.NewColor(200, 160, 40, 200))
	rl.DrawText("edit: click to move the nearest ball, Tab to resume", 12, 6, 20, rl.Black)
}
