// Stroke geometry workbench: click to build a polyline and watch how the
// plank/cap/miter decomposition reacts as the pen tuning changes. Useful
// when adjusting corner thresholds without launching the full game.
package main

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/inkfall/stroke"
)

const (
	screenWidth  = 1280
	screenHeight = 720
	panelWidth   = 320
)

var (
	plankColor = rl.NewColor(60, 90, 200, 120)
	capColor   = rl.NewColor(60, 170, 90, 120)
	kiteColor  = rl.NewColor(220, 120, 40, 170)
	lineColor  = rl.NewColor(40, 40, 44, 255)
)

func main() {
	rl.InitWindow(screenWidth, screenHeight, "Stroke Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	var points []r2.Vec
	width := float32(16)
	minAngleDeg := float32(30)
	maxRatio := float32(3)
	spacing := float32(8)

	for !rl.WindowShouldClose() {
		mouse := rl.GetMousePosition()
		inCanvas := mouse.X < screenWidth-panelWidth

		if inCanvas && rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
			p := r2.Vec{X: float64(mouse.X), Y: float64(mouse.Y)}
			if len(points) == 0 || dist(points[len(points)-1], p) >= float64(spacing) {
				points = append(points, p)
			}
		}
		if rl.IsMouseButtonPressed(rl.MouseButtonRight) && len(points) > 0 {
			points = points[:len(points)-1]
		}
		if rl.IsKeyPressed(rl.KeyC) {
			points = nil
		}

		pen := stroke.Pen{Width: float64(width), MinSpacing: float64(spacing)}
		opts := stroke.Options{
			MiterMinAngle: float64(minAngleDeg) * rl.Deg2rad,
			MaxMiterRatio: float64(maxRatio),
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.NewColor(244, 240, 232, 255))

		if dec, ok := stroke.Decompose(points, pen, opts); ok {
			for _, q := range dec.Outline.Planks {
				drawQuad(q, plankColor)
			}
			for _, c := range dec.Outline.Caps {
				rl.DrawCircleV(vec(c.Center), float32(c.Radius), capColor)
			}
			for _, q := range dec.Outline.Kites {
				drawQuad(q, kiteColor)
			}
		}

		for i, p := range points {
			rl.DrawCircleV(vec(p), 3, lineColor)
			if i > 0 {
				rl.DrawLineV(vec(points[i-1]), vec(p), lineColor)
			}
		}

		drawPanel(&width, &minAngleDeg, &maxRatio, &spacing, &points)

		rl.EndDrawing()
	}
}

func drawPanel(width, minAngleDeg, maxRatio, spacing *float32, points *[]r2.Vec) {
	panelX := float32(screenWidth - panelWidth + 15)
	panelY := float32(10)
	sliderW := float32(panelWidth - 110)

	rl.DrawRectangle(screenWidth-panelWidth, 0, panelWidth, screenHeight, rl.NewColor(230, 226, 218, 255))
	rl.DrawText("Pen Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
	panelY += 35

	rl.DrawText("Width (px)", int32(panelX), int32(panelY), 14, rl.Gray)
	panelY += 18
	*width = gui.SliderBar(
		rl.Rectangle{X: panelX, Y: panelY, Width: sliderW, Height: 20},
		"2", "60",
		*width, 2, 60,
	)
	rl.DrawText(fmt.Sprintf("%.0f", *width), int32(panelX+sliderW+10), int32(panelY+2), 16, rl.DarkGray)
	panelY += 35

	rl.DrawText("Miter min angle (deg)", int32(panelX), int32(panelY), 14, rl.Gray)
	panelY += 18
	*minAngleDeg = gui.SliderBar(
		rl.Rectangle{X: panelX, Y: panelY, Width: sliderW, Height: 20},
		"0", "90",
		*minAngleDeg, 0, 90,
	)
	rl.DrawText(fmt.Sprintf("%.0f", *minAngleDeg), int32(panelX+sliderW+10), int32(panelY+2), 16, rl.DarkGray)
	panelY += 35

	rl.DrawText("Max miter ratio (x half width)", int32(panelX), int32(panelY), 14, rl.Gray)
	panelY += 18
	*maxRatio = gui.SliderBar(
		rl.Rectangle{X: panelX, Y: panelY, Width: sliderW, Height: 20},
		"1", "8",
		*maxRatio, 1, 8,
	)
	rl.DrawText(fmt.Sprintf("%.1f", *maxRatio), int32(panelX+sliderW+10), int32(panelY+2), 16, rl.DarkGray)
	panelY += 35

	rl.DrawText("Point spacing (px)", int32(panelX), int32(panelY), 14, rl.Gray)
	panelY += 18
	*spacing = gui.SliderBar(
		rl.Rectangle{X: panelX, Y: panelY, Width: sliderW, Height: 20},
		"2", "40",
		*spacing, 2, 40,
	)
	rl.DrawText(fmt.Sprintf("%.0f", *spacing), int32(panelX+sliderW+10), int32(panelY+2), 16, rl.DarkGray)
	panelY += 45

	if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Clear") {
		*points = nil
	}
	panelY += 45

	rl.DrawText(fmt.Sprintf("points: %d", len(*points)), int32(panelX), int32(panelY), 16, rl.DarkGray)
	panelY += 22
	rl.DrawText("left click: add point", int32(panelX), int32(panelY), 14, rl.Gray)
	panelY += 18
	rl.DrawText("right click: undo   C: clear", int32(panelX), int32(panelY), 14, rl.Gray)
}

func drawQuad(q stroke.Quad, color rl.Color) {
	a, b, c, d := vec(q[0]), vec(q[1]), vec(q[2]), vec(q[3])
	rl.DrawTriangle(a, b, c, color)
	rl.DrawTriangle(a, c, b, color)
	rl.DrawTriangle(a, c, d, color)
	rl.DrawTriangle(a, d, c, color)
}

func vec(p r2.Vec) rl.Vector2 {
	return rl.NewVector2(float32(p.X), float32(p.Y))
}

func dist(a, b r2.Vec) float64 {
	return r2.Norm(r2.Sub(b, a))
}
