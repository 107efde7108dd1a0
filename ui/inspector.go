package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// EntityInfo is the snapshot of one entity the inspector displays. The game
// fills it from its registry and physics world; the inspector stays free of
// those dependencies.
type EntityInfo struct {
	Kind      string
	X, Y      float64
	Angle     float64
	VelX      float64
	VelY      float64
	Mass      float64 // 0 for static bodies
	Colliders int
}

// Inspector draws a floating panel describing the entity under the cursor
// while debug mode is on.
type Inspector struct {
	renderer *Renderer
	width    int32
}

// NewInspector creates an inspector panel.
func NewInspector() *Inspector {
	return &Inspector{renderer: NewRenderer(), width: 240}
}

// Draw renders the info panel near the cursor, flipping sides when it would
// leave the screen.
func (ins *Inspector) Draw(info EntityInfo, cursor rl.Vector2, screenW, screenH int32) {
	const height = 160

	x := int32(cursor.X) + 16
	y := int32(cursor.Y) + 16
	if x+ins.width > screenW {
		x = int32(cursor.X) - 16 - ins.width
	}
	if y+height > screenH {
		y = int32(cursor.Y) - 16 - height
	}

	r := ins.renderer
	r.DrawPanel(x, y, ins.width, height)

	cx := x + 10
	cy := y + 8
	cy = r.DrawSectionHeader(cx, cy, info.Kind)
	cy = r.DrawLabelValue(cx, cy, "pos", fmt.Sprintf("%.0f, %.0f", info.X, info.Y))
	cy = r.DrawLabelValue(cx, cy, "angle", fmt.Sprintf("%.2f rad", info.Angle))
	cy = r.DrawLabelValue(cx, cy, "vel", fmt.Sprintf("%.0f, %.0f", info.VelX, info.VelY))
	if info.Mass > 0 {
		cy = r.DrawLabelValue(cx, cy, "mass", fmt.Sprintf("%.2f", info.Mass))
	} else {
		cy = r.DrawLabelValue(cx, cy, "mass", "static")
	}
	r.DrawLabelValue(cx, cy, "colliders", fmt.Sprintf("%d", info.Colliders))
}
