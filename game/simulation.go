package game

import (
	"log/slog"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/inkfall/components"
	"github.com/pthm-cable/inkfall/config"
	"github.com/pthm-cable/inkfall/telemetry"
)

// Advance accrues wall time and runs fixed steps. The accumulator is clamped
// so a long frame (debugger pause, window drag) causes a slow-motion burst
// instead of a catch-up avalanche. A mid-frame win or loss zeroes the
// accumulator: once the outcome latches no further steps may run this frame.
func (g *Game) Advance(wallDelta float64) {
	if !g.state.stepping() {
		g.accumulator = 0
		return
	}

	cfg := config.Cfg()
	g.accumulator += wallDelta
	if g.accumulator > cfg.Physics.MaxAccumulator {
		g.accumulator = cfg.Physics.MaxAccumulator
	}
	for g.accumulator >= cfg.Physics.DT {
		g.accumulator -= cfg.Physics.DT
		g.fixedStep(cfg.Physics.DT)
		if g.state.terminal() {
			g.accumulator = 0
			break
		}
	}
}

// fixedStep runs one simulation tick. Order matters: forces are applied
// against the previous tick's contact set, then the kernel integrates, then
// the new collision events are classified before the bounds check so a ball
// that wins and exits on the same tick still wins.
func (g *Game) fixedStep(dt float64) {
	start := time.Now()
	g.applyForces(dt)
	g.perf.Record("forces", time.Since(start))

	start = time.Now()
	g.phys.Step(dt)
	g.perf.Record("kernel", time.Since(start))

	start = time.Now()
	g.classifyCollisions()
	g.perf.Record("classify", time.Since(start))

	start = time.Now()
	g.checkBounds()
	g.perf.Record("bounds", time.Since(start))

	if g.state == StatePlaying {
		g.roundTime += dt
	}
	g.tick++
}

// applyForces runs the seesaw restoring springs and the belt drag.
func (g *Game) applyForces(dt float64) {
	query := g.plankFilter.Query()
	for query.Next() {
		plank, rb := query.Get()
		angle := g.phys.Angle(rb.Body)
		omega := g.phys.AngularVelocity(rb.Body)
		omega += (-plank.Stiffness*(angle-plank.RestAngle) - plank.Damping*omega) * dt
		g.phys.SetAngularVelocity(rb.Body, omega)
	}

	g.applyBeltForces(dt)
}

// checkBounds removes balls whose center left the field rectangle. Collect
// first: despawning mutates the tables the query iterates.
func (g *Game) checkBounds() {
	cfg := config.Cfg()
	minX := -cfg.Field.Margin
	minY := -cfg.Field.Margin
	maxX := float64(cfg.Screen.Width) + cfg.Field.Margin
	maxY := float64(cfg.Screen.Height) + cfg.Field.Margin

	type lost struct {
		ref entityRef
		pos r2.Vec
	}
	var out []lost

	query := g.ballFilter.Query()
	for query.Next() {
		_, rb := query.Get()
		pos := g.phys.Position(rb.Body)
		if pos.X < minX || pos.X > maxX || pos.Y < minY || pos.Y > maxY {
			out = append(out, lost{
				ref: entityRef{kind: components.KindBall, entity: query.Entity()},
				pos: pos,
			})
		}
	}

	for _, l := range out {
		slog.Info("ball out of bounds", "x", l.pos.X, "y", l.pos.Y)
		g.loseBall(l.ref)
	}
}

// loseBall removes one ball and ends the round unless the rules allow
// playing on with the survivor. No-op when the ball is already gone.
func (g *Game) loseBall(ref entityRef) {
	if !g.world.Alive(ref.entity) {
		return
	}
	g.despawn(ref)
	g.ballsAlive--
	g.collector.RecordBallLost()

	if g.state.terminal() {
		return
	}
	if !config.Cfg().Rules.ContinueAfterBallLoss || g.ballsAlive == 0 {
		g.setLost()
	}
}

func (g *Game) setWon(at r2.Vec) {
	if g.state.terminal() {
		return
	}
	g.state = StateWon
	g.winPoint = at
	g.accumulator = 0
	g.restartIn = config.Cfg().Rules.RestartDelay
	g.cancelStroke()
	g.collector.EndRound(telemetry.OutcomeWon, g.roundTime, g.strokes, g.inkUsed)
	g.flushRounds()
	slog.Info("round won",
		"round", g.round,
		"time", g.roundTime,
		"strokes", g.strokes,
		"ink", g.inkUsed,
	)
}

func (g *Game) setLost() {
	if g.state.terminal() {
		return
	}
	g.state = StateLost
	g.accumulator = 0
	g.restartIn = config.Cfg().Rules.RestartDelay
	g.cancelStroke()
	g.collector.EndRound(telemetry.OutcomeLost, g.roundTime, g.strokes, g.inkUsed)
	g.flushRounds()
	slog.Info("round lost",
		"round", g.round,
		"time", g.roundTime,
		"strokes", g.strokes,
	)
}

// TickCosmetics advances the render-rate timers: ice melting, button
// sinking, belt gear spin, and the auto-restart countdown. These run on the
// raw frame delta, not the clamped simulation clock, so they finish in real
// time even while the simulation is in a slow-motion burst. Menus freeze
// them along with everything else.
func (g *Game) TickCosmetics(wallDelta float64) {
	if g.state == StateMenu || g.state == StateEdit {
		return
	}

	var done []entityRef

	melt := g.meltFilter.Query()
	for melt.Next() {
		m, _ := melt.Get()
		if !m.Melting {
			continue
		}
		m.Elapsed += wallDelta
		if m.Elapsed >= m.Duration {
			done = append(done, entityRef{kind: components.KindIce, entity: melt.Entity()})
		}
	}

	sink := g.sinkFilter.Query()
	for sink.Next() {
		s, _ := sink.Get()
		if !s.Sinking {
			continue
		}
		s.Elapsed += wallDelta
		if s.Elapsed >= s.Duration {
			done = append(done, entityRef{kind: components.KindButton, entity: sink.Entity()})
		}
	}

	belts := g.beltFilter.Query()
	for belts.Next() {
		b := belts.Get()
		b.Gear += b.Direction * b.GearSpeed * wallDelta
	}

	for _, ref := range done {
		g.despawn(ref)
	}

	g.updateRestart(wallDelta)
}

// updateRestart counts down the post-round pause and resets the level.
// Starting a new stroke cancels it; see beginStroke.
func (g *Game) updateRestart(wallDelta float64) {
	if !g.state.terminal() || g.restartIn < 0 {
		return
	}
	g.restartIn -= wallDelta
	if g.restartIn <= 0 {
		g.resetRound()
	}
}

// syncTransforms copies body poses into render transforms, once per frame.
func (g *Game) syncTransforms() {
	query := g.poseFilter.Query()
	for query.Next() {
		trans, rb := query.Get()
		if !g.phys.BodyAlive(rb.Body) {
			continue
		}
		pos := g.phys.Position(rb.Body)
		trans.X = pos.X
		trans.Y = pos.Y
		trans.Angle = g.phys.Angle(rb.Body)
	}
}
