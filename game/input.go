package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/inkfall/physics"
)

// handleInput processes mouse and keyboard input for one frame.
func (g *Game) handleInput() {
	mouse := rl.GetMousePosition()
	cursor := r2.Vec{X: float64(mouse.X), Y: float64(mouse.Y)}

	// Menu and edit toggles work from any state.
	if rl.IsKeyPressed(rl.KeyM) {
		g.toggleOverlay(StateMenu)
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		g.toggleOverlay(StateEdit)
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.resetRound()
		return
	}
	if rl.IsKeyPressed(rl.KeyF1) {
		g.debugMode = !g.debugMode
	}

	switch g.state {
	case StateMenu:
		return
	case StateEdit:
		g.handleEditInput(cursor)
		return
	}

	// Pen selection, number keys in pen-table order.
	for i := range g.pens {
		if rl.IsKeyPressed(int32(rl.KeyOne) + int32(i)) {
			g.selectPen(i)
		}
	}

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		g.beginStroke(cursor)
	}
	if rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		g.extendStroke(cursor)
	}
	if rl.IsMouseButtonReleased(rl.MouseButtonLeft) {
		g.endStroke()
	}
	if rl.IsMouseButtonPressed(rl.MouseButtonRight) {
		g.eraseAt(cursor)
	}
}

// toggleOverlay enters or leaves a pause overlay, remembering the state to
// resume. The simulation clock freezes while an overlay is up.
func (g *Game) toggleOverlay(overlay State) {
	if g.state == overlay {
		g.state = g.prevState
		return
	}
	if g.state == StateMenu || g.state == StateEdit {
		// Switching between overlays keeps the original resume state.
		g.state = overlay
		return
	}
	g.prevState = g.state
	g.state = overlay
	g.cancelStroke()
}

// handleEditInput lets the player reposition balls while paused. Clicking
// teleports the nearest ball to the cursor with its velocity cleared.
func (g *Game) handleEditInput(cursor r2.Vec) {
	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return
	}

	best := -1.0
	var bestBody physics.BodyHandle
	found := false

	query := g.ballFilter.Query()
	for query.Next() {
		_, rb := query.Get()
		pos := g.phys.Position(rb.Body)
		d := r2.Norm(r2.Sub(pos, cursor))
		if !found || d < best {
			best = d
			bestBody = rb.Body
			found = true
		}
	}
	if !found {
		return
	}
	g.phys.SetPosition(bestBody, cursor)
	g.phys.SetVelocity(bestBody, r2.Vec{})
	g.phys.SetAngularVelocity(bestBody, 0)
}
