package game

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/inkfall/components"
	"github.com/pthm-cable/inkfall/config"
	"github.com/pthm-cable/inkfall/level"
	"github.com/pthm-cable/inkfall/physics"
)

// Prop palette. Drawn lines use the pen's configured color instead.
var (
	tintBalls = [2]components.Tint{
		{R: 235, G: 106, B: 68, A: 255}, // coral
		{R: 72, G: 180, B: 170, A: 255}, // teal
	}
	tintObstacle = components.Tint{R: 84, G: 91, B: 102, A: 255}
	tintFalling  = components.Tint{R: 173, G: 139, B: 97, A: 255}
	tintNet      = components.Tint{R: 120, G: 128, B: 140, A: 255}
	tintIce      = components.Tint{R: 158, G: 216, B: 240, A: 220}
	tintLaser    = components.Tint{R: 244, G: 67, B: 54, A: 200}
	tintSeesaw   = components.Tint{R: 142, G: 110, B: 170, A: 255}
	tintBelt     = components.Tint{R: 70, G: 70, B: 74, A: 255}
	tintButton   = components.Tint{R: 255, G: 193, B: 7, A: 255}
)

// resetRound tears down the current round and respawns the level. The
// physics world is rebuilt from scratch so no kernel state leaks between
// rounds.
func (g *Game) resetRound() {
	cfg := config.Cfg()

	// Despawn every live entity. Collect first: despawn mutates the
	// registry while we iterate it.
	seen := make(map[entityRef]bool)
	for _, ref := range g.registry {
		seen[ref] = true
	}
	for ref := range seen {
		g.despawn(ref)
	}

	g.phys = physics.NewWorld(physics.Config{
		Gravity:       cfg.Physics.Gravity,
		PixelsPerUnit: cfg.Physics.PixelsPerUnit,
		Iterations:    cfg.Physics.Iterations,
		CollisionSlop: cfg.Physics.CollisionSlop,
	})
	g.registry = make(map[physics.ColliderHandle]entityRef)
	g.contacts = make(map[contactKey]beltContact)
	g.pending = g.pending[:0]

	g.state = StateReady
	g.accumulator = 0
	g.roundTime = 0
	g.ballsAlive = 0
	g.buttonsFired = false
	g.restartIn = -1
	g.drawing = false
	g.drawBlocked = false
	g.path = nil
	g.inkUsed = 0
	g.strokes = 0
	g.round++

	g.spawnLevel()
	g.collector.BeginRound(g.round)
	g.flushRounds()
	slog.Info("round started", "round", g.round, "level", g.lvl.Name)
}

func (g *Game) spawnLevel() {
	for i, def := range g.lvl.Balls {
		g.spawnBall(def, i)
	}
	for _, def := range g.lvl.Obstacles {
		g.spawnObstacle(def)
	}
	for _, def := range g.lvl.Falling {
		g.spawnFalling(def)
	}
	for _, def := range g.lvl.Nets {
		g.spawnNet(def)
	}
	for _, def := range g.lvl.Ice {
		g.spawnIce(def)
	}
	for _, def := range g.lvl.Lasers {
		g.spawnLaser(def)
	}
	for _, def := range g.lvl.Seesaws {
		g.spawnSeesaw(def)
	}
	for _, def := range g.lvl.Conveyors {
		g.spawnConveyor(def)
	}
	for _, def := range g.lvl.Buttons {
		g.spawnButton(def)
	}
}

// register maps every collider of a body back to its owning entity.
func (g *Game) register(bh physics.BodyHandle, ref entityRef) {
	for _, ch := range g.phys.Colliders(bh) {
		g.registry[ch] = ref
	}
}

func (g *Game) spawnBall(def level.BallDef, idx int) {
	cfg := config.Cfg()
	pos := r2.Vec{X: def.Pos.X, Y: def.Pos.Y}
	bh := g.phys.CreateBody(physics.BodyDynamic, pos)
	_, err := g.phys.AddCollider(bh,
		physics.Circle{Radius: def.Radius},
		physics.Filter{Categories: physics.CatBall, Mask: physics.CatAll},
		false,
		physics.Material{
			Density:    cfg.Ball.Density,
			Friction:   cfg.Ball.Friction,
			Elasticity: cfg.Ball.Elasticity,
		})
	if err != nil {
		slog.Error("ball collider", "error", err)
		return
	}

	trans := components.Transform{X: pos.X, Y: pos.Y}
	rb := components.RigidBody{Body: bh}
	tint := tintBalls[idx%len(tintBalls)]
	ball := components.Ball{Index: idx}
	sil := components.Silhouette{Form: components.FormDisc, Radius: def.Radius}
	e := g.ballMapper.NewEntity(&trans, &rb, &tint, &ball, &sil)
	g.register(bh, entityRef{kind: components.KindBall, entity: e})
	g.ballsAlive++
}

// spawnProp is the shared path for plain static or dynamic silhouette props.
func (g *Game) spawnProp(kind components.Kind, bodyKind physics.BodyKind,
	pos r2.Vec, angle float64, spec physics.ShapeSpec, m physics.Material,
	tint components.Tint, sil components.Silhouette,
) (physics.BodyHandle, bool) {
	bh := g.phys.CreateBody(bodyKind, pos)
	if angle != 0 {
		g.phys.SetAngle(bh, angle)
	}
	cat := physics.CatTerrain
	if bodyKind == physics.BodyDynamic {
		cat = physics.CatDebris
	}
	_, err := g.phys.AddCollider(bh, spec,
		physics.Filter{Categories: cat, Mask: physics.CatAll}, false, m)
	if err != nil {
		slog.Error("prop collider", "kind", kind.String(), "error", err)
		g.phys.RemoveBody(bh)
		return 0, false
	}

	trans := components.Transform{X: pos.X, Y: pos.Y, Angle: angle}
	rb := components.RigidBody{Body: bh}
	e := g.propMapper.NewEntity(&trans, &rb, &tint, &sil)
	g.register(bh, entityRef{kind: kind, entity: e})
	return bh, true
}

func (g *Game) spawnObstacle(def level.ObstacleDef) {
	pos := r2.Vec{X: def.Pos.X, Y: def.Pos.Y}
	var spec physics.ShapeSpec
	var sil components.Silhouette
	if def.Radius > 0 {
		spec = physics.Circle{Radius: def.Radius}
		sil = components.Silhouette{Form: components.FormDisc, Radius: def.Radius}
	} else {
		spec = physics.Box{HalfW: def.HalfW, HalfH: def.HalfH}
		sil = components.Silhouette{Form: components.FormBox, HalfW: def.HalfW, HalfH: def.HalfH}
	}
	g.spawnProp(components.KindObstacle, physics.BodyStatic, pos, def.Angle,
		spec, physics.Material{Friction: 0.8, Elasticity: 0.1}, tintObstacle, sil)
}

func (g *Game) spawnFalling(def level.FallingDef) {
	pos := r2.Vec{X: def.Pos.X, Y: def.Pos.Y}
	density := def.Density
	if density <= 0 {
		density = 1
	}
	g.spawnProp(components.KindFalling, physics.BodyDynamic, pos, def.Angle,
		physics.Box{HalfW: def.HalfW, HalfH: def.HalfH},
		physics.Material{Density: density, Friction: 0.6, Elasticity: 0.1},
		tintFalling,
		components.Silhouette{Form: components.FormBox, HalfW: def.HalfW, HalfH: def.HalfH})
}

// spawnNet creates one static segment entity per polyline span so the
// existing silhouette renderer covers it.
func (g *Game) spawnNet(def level.NetDef) {
	half := def.Thickness / 2
	if half <= 0 {
		half = 2
	}
	for i := 1; i < len(def.Points); i++ {
		a := r2.Vec{X: def.Points[i-1].X, Y: def.Points[i-1].Y}
		b := r2.Vec{X: def.Points[i].X, Y: def.Points[i].Y}
		g.spawnProp(components.KindNet, physics.BodyStatic, a, 0,
			physics.Segment{B: r2.Sub(b, a), Radius: half},
			physics.Material{Friction: 0.9, Elasticity: 0.05},
			tintNet,
			components.Silhouette{
				Form:   components.FormSegment,
				Radius: half,
				X2:     b.X - a.X,
				Y2:     b.Y - a.Y,
			})
	}
}

func (g *Game) spawnIce(def level.IceDef) {
	cfg := config.Cfg()
	pos := r2.Vec{X: def.Pos.X, Y: def.Pos.Y}
	bh := g.phys.CreateBody(physics.BodyStatic, pos)
	_, err := g.phys.AddCollider(bh,
		physics.Box{HalfW: def.HalfW, HalfH: def.HalfH},
		physics.Filter{Categories: physics.CatTerrain, Mask: physics.CatAll},
		false,
		physics.Material{Friction: 0.05, Elasticity: 0.05})
	if err != nil {
		slog.Error("ice collider", "error", err)
		g.phys.RemoveBody(bh)
		return
	}

	trans := components.Transform{X: pos.X, Y: pos.Y}
	rb := components.RigidBody{Body: bh}
	tint := tintIce
	sil := components.Silhouette{Form: components.FormBox, HalfW: def.HalfW, HalfH: def.HalfH}
	melt := components.Melt{Duration: cfg.Ice.MeltDuration}
	e := g.iceMapper.NewEntity(&trans, &rb, &tint, &sil, &melt)
	g.register(bh, entityRef{kind: components.KindIce, entity: e})
}

func (g *Game) spawnLaser(def level.LaserDef) {
	pos := r2.Vec{X: def.Pos.X, Y: def.Pos.Y}
	bh := g.phys.CreateBody(physics.BodyStatic, pos)
	if def.Angle != 0 {
		g.phys.SetAngle(bh, def.Angle)
	}
	_, err := g.phys.AddCollider(bh,
		physics.Box{HalfW: def.Length / 2, HalfH: def.Thickness / 2},
		physics.Filter{Categories: physics.CatSensor, Mask: physics.CatBall},
		true,
		physics.Material{})
	if err != nil {
		slog.Error("laser collider", "error", err)
		g.phys.RemoveBody(bh)
		return
	}

	trans := components.Transform{X: pos.X, Y: pos.Y, Angle: def.Angle}
	rb := components.RigidBody{Body: bh}
	tint := tintLaser
	beam := components.Beam{HalfLength: def.Length / 2, Thickness: def.Thickness}
	e := g.beamMapper.NewEntity(&trans, &rb, &tint, &beam)
	g.register(bh, entityRef{kind: components.KindLaser, entity: e})
}

func (g *Game) spawnSeesaw(def level.SeesawDef) {
	cfg := config.Cfg()
	pos := r2.Vec{X: def.Pos.X, Y: def.Pos.Y}
	half := def.Thickness / 2
	if half <= 0 {
		half = 6
	}
	bh := g.phys.CreateBody(physics.BodyDynamic, pos)
	_, err := g.phys.AddCollider(bh,
		physics.Box{HalfW: def.HalfLength, HalfH: half},
		physics.Filter{Categories: physics.CatTerrain, Mask: physics.CatAll},
		false,
		physics.Material{Density: 1, Friction: 0.7, Elasticity: 0.1})
	if err != nil {
		slog.Error("seesaw collider", "error", err)
		g.phys.RemoveBody(bh)
		return
	}
	g.phys.PinToWorld(bh, pos)

	trans := components.Transform{X: pos.X, Y: pos.Y}
	rb := components.RigidBody{Body: bh}
	tint := tintSeesaw
	sil := components.Silhouette{Form: components.FormBox, HalfW: def.HalfLength, HalfH: half}
	plank := components.Plank{
		Stiffness: cfg.Seesaw.Stiffness,
		Damping:   cfg.Seesaw.Damping,
		RestAngle: def.RestAngle,
	}
	e := g.seesawMapper.NewEntity(&trans, &rb, &tint, &sil, &plank)
	g.register(bh, entityRef{kind: components.KindSeesaw, entity: e})
}

func (g *Game) spawnConveyor(def level.ConveyorDef) {
	cfg := config.Cfg()
	pos := r2.Vec{X: def.Pos.X, Y: def.Pos.Y}
	half := def.Thickness / 2
	if half <= 0 {
		half = 8
	}
	accel := def.Accel
	if accel <= 0 {
		accel = cfg.Conveyor.Accel
	}
	maxSpeed := def.MaxSpeed
	if maxSpeed <= 0 {
		maxSpeed = cfg.Conveyor.MaxSpeed
	}

	bh := g.phys.CreateBody(physics.BodyStatic, pos)
	if def.Angle != 0 {
		g.phys.SetAngle(bh, def.Angle)
	}
	_, err := g.phys.AddCollider(bh,
		physics.Box{HalfW: def.Length / 2, HalfH: half},
		physics.Filter{Categories: physics.CatTerrain, Mask: physics.CatAll},
		false,
		physics.Material{Friction: 0.9, Elasticity: 0})
	if err != nil {
		slog.Error("conveyor collider", "error", err)
		g.phys.RemoveBody(bh)
		return
	}

	trans := components.Transform{X: pos.X, Y: pos.Y, Angle: def.Angle}
	rb := components.RigidBody{Body: bh}
	tint := tintBelt
	sil := components.Silhouette{Form: components.FormBox, HalfW: def.Length / 2, HalfH: half}
	belt := components.Belt{
		Direction: def.Direction,
		Accel:     accel,
		MaxSpeed:  maxSpeed,
		Gear:      g.rng.Float64() * 2 * math.Pi, // desync roller phases
		GearSpeed: cfg.Conveyor.GearSpeed,
	}
	e := g.beltMapper.NewEntity(&trans, &rb, &tint, &sil, &belt)
	g.register(bh, entityRef{kind: components.KindConveyor, entity: e})
}

func (g *Game) spawnButton(def level.ButtonDef) {
	cfg := config.Cfg()
	pos := r2.Vec{X: def.Pos.X, Y: def.Pos.Y}
	bh := g.phys.CreateBody(physics.BodyStatic, pos)
	_, err := g.phys.AddCollider(bh,
		physics.Box{HalfW: def.HalfW, HalfH: def.HalfH},
		physics.Filter{Categories: physics.CatTerrain, Mask: physics.CatAll},
		false,
		physics.Material{Friction: 0.8, Elasticity: 0})
	if err != nil {
		slog.Error("button collider", "error", err)
		g.phys.RemoveBody(bh)
		return
	}

	trans := components.Transform{X: pos.X, Y: pos.Y}
	rb := components.RigidBody{Body: bh}
	tint := tintButton
	sil := components.Silhouette{Form: components.FormBox, HalfW: def.HalfW, HalfH: def.HalfH}
	sink := components.Sink{
		Duration: cfg.Button.SinkDuration,
		Depth:    cfg.Button.SinkDepth,
	}
	e := g.buttonMapper.NewEntity(&trans, &rb, &tint, &sil, &sink)
	g.register(bh, entityRef{kind: components.KindButton, entity: e})
}

// despawn removes an entity, its physics body, its registry entries, and any
// belt contacts that referenced it. Safe to call twice for the same ref.
func (g *Game) despawn(ref entityRef) {
	if !g.world.Alive(ref.entity) {
		return
	}
	rb := g.rbMap.Get(ref.entity)
	if rb != nil {
		for _, ch := range g.phys.Colliders(rb.Body) {
			delete(g.registry, ch)
		}
		g.dropContactsFor(rb.Body)
		g.phys.RemoveBody(rb.Body)
	}

	switch ref.kind {
	case components.KindBall:
		g.ballMapper.Remove(ref.entity)
	case components.KindObstacle, components.KindFalling, components.KindNet:
		g.propMapper.Remove(ref.entity)
	case components.KindDrawnLine:
		g.drawnMapper.Remove(ref.entity)
	case components.KindIce:
		g.iceMapper.Remove(ref.entity)
	case components.KindLaser:
		g.beamMapper.Remove(ref.entity)
	case components.KindSeesaw:
		g.seesawMapper.Remove(ref.entity)
	case components.KindConveyor:
		g.beltMapper.Remove(ref.entity)
	case components.KindButton:
		g.buttonMapper.Remove(ref.entity)
	}
}
