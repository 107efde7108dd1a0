package game

import (
	"testing"

	"github.com/pthm-cable/inkfall/components"
	"github.com/pthm-cable/inkfall/config"
	"github.com/pthm-cable/inkfall/level"
	"github.com/pthm-cable/inkfall/physics"
)

// TestIceMeltsAfterContact verifies first contact arms the melt timer and
// the block despawns when it runs out.
func TestIceMeltsAfterContact(t *testing.T) {
	lvl := twoBallLevel()
	lvl.Ice = []level.IceDef{{Pos: level.Point{X: 400, Y: 318}, HalfW: 40, HalfH: 20}}
	lvl.Balls[0].Pos = level.Point{X: 400, Y: 282} // resting into the block top
	g := newTestGame(t, lvl)

	g.Advance(config.Cfg().Physics.DT)

	melting := false
	query := g.meltFilter.Query()
	for query.Next() {
		m, _ := query.Get()
		melting = melting || m.Melting
	}
	if !melting {
		t.Fatal("contact did not start the melt")
	}

	g.TickCosmetics(config.Cfg().Ice.MeltDuration + 0.1)

	if got := countKind(g, components.KindIce); got != 0 {
		t.Errorf("ice blocks = %d, want 0", got)
	}
}

// TestMeltTimerWaitsForContact verifies untouched ice never melts.
func TestMeltTimerWaitsForContact(t *testing.T) {
	lvl := twoBallLevel()
	lvl.Ice = []level.IceDef{{Pos: level.Point{X: 700, Y: 300}, HalfW: 40, HalfH: 20}}
	g := newTestGame(t, lvl)

	g.TickCosmetics(60)

	if got := countKind(g, components.KindIce); got != 1 {
		t.Errorf("ice blocks = %d, want 1", got)
	}
}

// TestLaserDestroysBall verifies a ball entering a beam is removed and the
// round is lost under the default rules.
func TestLaserDestroysBall(t *testing.T) {
	lvl := twoBallLevel()
	lvl.Lasers = []level.LaserDef{{Pos: level.Point{X: 400, Y: 300}, Length: 100, Thickness: 10}}
	lvl.Balls[0].Pos = level.Point{X: 400, Y: 300} // inside the beam
	g := newTestGame(t, lvl)
	g.state = StatePlaying

	g.Advance(config.Cfg().Physics.DT)

	if g.State() != StateLost {
		t.Fatalf("state = %v, want %v", g.State(), StateLost)
	}
	if got := countKind(g, components.KindBall); got != 1 {
		t.Errorf("live balls = %d, want 1", got)
	}
	// The beam itself survives.
	if got := countKind(g, components.KindLaser); got != 1 {
		t.Errorf("lasers = %d, want 1", got)
	}
}

// TestButtonDisablesLasers verifies the one-shot button action: lasers
// despawn immediately, buttons sink and despawn after their travel.
func TestButtonDisablesLasers(t *testing.T) {
	lvl := twoBallLevel()
	lvl.Buttons = []level.ButtonDef{{Pos: level.Point{X: 400, Y: 320}, HalfW: 30, HalfH: 10}}
	lvl.Lasers = []level.LaserDef{
		{Pos: level.Point{X: 800, Y: 300}, Length: 200, Thickness: 8},
		{Pos: level.Point{X: 900, Y: 500}, Length: 150, Thickness: 8},
	}
	lvl.Balls[0].Pos = level.Point{X: 400, Y: 294} // pressing the button
	g := newTestGame(t, lvl)

	g.Advance(config.Cfg().Physics.DT)

	if !g.buttonsFired {
		t.Fatal("button contact did not fire")
	}
	if got := countKind(g, components.KindLaser); got != 0 {
		t.Errorf("lasers = %d, want 0", got)
	}

	sinking := false
	query := g.sinkFilter.Query()
	for query.Next() {
		s, _ := query.Get()
		sinking = sinking || s.Sinking
	}
	if !sinking {
		t.Fatal("button did not start sinking")
	}

	g.TickCosmetics(config.Cfg().Button.SinkDuration + 0.1)
	if got := countKind(g, components.KindButton); got != 0 {
		t.Errorf("buttons = %d, want 0", got)
	}
}

// TestBeltContactSet verifies begin/separate bookkeeping never
// double-counts a pair and purges on despawn.
func TestBeltContactSet(t *testing.T) {
	lvl := twoBallLevel()
	lvl.Conveyors = []level.ConveyorDef{
		{Pos: level.Point{X: 600, Y: 400}, Length: 300, Thickness: 20, Direction: 1},
	}
	g := newTestGame(t, lvl)

	var beltRef, ballRef entityRef
	var beltCh, ballCh physics.ColliderHandle
	for ch, ref := range g.registry {
		switch ref.kind {
		case components.KindConveyor:
			beltRef, beltCh = ref, ch
		case components.KindBall:
			ballRef, ballCh = ref, ch
		}
	}
	if beltCh == 0 || ballCh == 0 {
		t.Fatal("belt or ball collider not found")
	}

	g.addBeltContact(beltCh, ballCh, beltRef.entity)
	g.addBeltContact(beltCh, ballCh, beltRef.entity)
	if len(g.contacts) != 1 {
		t.Fatalf("contacts = %d, want 1 after duplicate begins", len(g.contacts))
	}

	g.removeBeltContact(beltCh, ballCh)
	if len(g.contacts) != 0 {
		t.Fatalf("contacts = %d, want 0 after separate", len(g.contacts))
	}

	// Removing an unknown pair is a no-op.
	g.removeBeltContact(beltCh, ballCh)

	// A despawned rider takes its contacts with it.
	g.addBeltContact(beltCh, ballCh, beltRef.entity)
	g.despawn(ballRef)
	if len(g.contacts) != 0 {
		t.Fatalf("contacts = %d, want 0 after despawn", len(g.contacts))
	}
}

// TestConveyorDragsRestingBall verifies belt drag accelerates a resting
// ball along the surface. The speed cap is measured at the contact point,
// not the center of mass: a rolling ball's surface speed stays below the
// belt speed even as its center moves faster.
func TestConveyorDragsRestingBall(t *testing.T) {
	lvl := twoBallLevel()
	lvl.Conveyors = []level.ConveyorDef{
		{Pos: level.Point{X: 600, Y: 400}, Length: 600, Thickness: 20, Direction: 1},
	}
	lvl.Obstacles = []level.ObstacleDef{
		{Pos: level.Point{X: 150, Y: 430}, HalfW: 60, HalfH: 10},
	}
	lvl.Balls[0].Pos = level.Point{X: 600, Y: 370} // just above the belt
	lvl.Balls[1].Pos = level.Point{X: 150, Y: 402} // parked on its own platform
	g := newTestGame(t, lvl)

	dt := config.Cfg().Physics.DT
	for i := 0; i < 60; i++ {
		g.fixedStep(dt)
	}

	if len(g.contacts) == 0 {
		t.Fatal("no belt contact registered")
	}
	body := ballBody(t, g, 0)
	vel := g.phys.Velocity(body)
	if vel.X < 30 {
		t.Errorf("ball velocity = %v, want dragged along +X", vel)
	}
	// Tangential speed at the belt contact respects the configured cap.
	contact := g.phys.Position(body)
	contact.Y += lvl.Balls[0].Radius
	surface := g.phys.VelocityAtPoint(body, contact)
	if surface.X > config.Cfg().Conveyor.MaxSpeed*1.1 {
		t.Errorf("surface speed %v exceeds the belt speed cap", surface)
	}
}

// TestConveyorDirectionReverses verifies a negative belt drags the other
// way.
func TestConveyorDirectionReverses(t *testing.T) {
	lvl := twoBallLevel()
	lvl.Conveyors = []level.ConveyorDef{
		{Pos: level.Point{X: 600, Y: 400}, Length: 600, Thickness: 20, Direction: -1},
	}
	lvl.Obstacles = []level.ObstacleDef{
		{Pos: level.Point{X: 150, Y: 430}, HalfW: 60, HalfH: 10},
	}
	lvl.Balls[0].Pos = level.Point{X: 600, Y: 370}
	lvl.Balls[1].Pos = level.Point{X: 150, Y: 402}
	g := newTestGame(t, lvl)

	dt := config.Cfg().Physics.DT
	for i := 0; i < 60; i++ {
		g.fixedStep(dt)
	}

	vel := g.phys.Velocity(ballBody(t, g, 0))
	if vel.X > -30 {
		t.Errorf("ball velocity = %v, want dragged along -X", vel)
	}
}
