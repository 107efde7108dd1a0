package game

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/inkfall/components"
	"github.com/pthm-cable/inkfall/config"
	"github.com/pthm-cable/inkfall/level"
)

// TestAdvanceClampsAccumulator verifies a huge frame delta produces at most
// the clamp's worth of fixed steps instead of a catch-up avalanche.
func TestAdvanceClampsAccumulator(t *testing.T) {
	g := newTestGame(t, twoBallLevel())
	cfg := config.Cfg()

	g.Advance(10.0)

	want := int32(math.Floor(cfg.Physics.MaxAccumulator/cfg.Physics.DT + 1e-9))
	if g.Tick() != want {
		t.Errorf("ticks = %d, want %d", g.Tick(), want)
	}
}

func TestAdvanceAccruesAcrossFrames(t *testing.T) {
	g := newTestGame(t, twoBallLevel())
	dt := config.Cfg().Physics.DT

	// Half a step per frame: every second frame runs one tick.
	for i := 0; i < 4; i++ {
		g.Advance(dt / 2)
	}
	if g.Tick() != 2 {
		t.Errorf("ticks = %d, want 2", g.Tick())
	}
}

// TestAdvanceFrozenInMenu verifies overlay states run no simulation and
// drop accrued time instead of banking it.
func TestAdvanceFrozenInMenu(t *testing.T) {
	g := newTestGame(t, twoBallLevel())
	g.state = StateMenu

	g.Advance(1.0)

	if g.Tick() != 0 {
		t.Errorf("ticks = %d, want 0", g.Tick())
	}
	if g.accumulator != 0 {
		t.Errorf("accumulator = %f, want 0", g.accumulator)
	}
}

// TestBallOutOfBounds verifies a ball leaving the field loses the round
// under the default rules and arms the auto-restart.
func TestBallOutOfBounds(t *testing.T) {
	lvl := twoBallLevel()
	lvl.Balls[0].Pos = level.Point{X: 400, Y: 850} // below the field margin
	g := newTestGame(t, lvl)
	cfg := config.Cfg()

	g.Advance(1.0)

	if g.State() != StateLost {
		t.Fatalf("state = %v, want %v", g.State(), StateLost)
	}
	if g.ballsAlive != 1 {
		t.Errorf("ballsAlive = %d, want 1", g.ballsAlive)
	}
	if got := countKind(g, components.KindBall); got != 1 {
		t.Errorf("live balls = %d, want 1", got)
	}
	// The loss latched mid-frame: no further steps may run.
	if g.accumulator != 0 {
		t.Errorf("accumulator = %f, want 0", g.accumulator)
	}
	if !approxF(g.restartIn, cfg.Rules.RestartDelay, 1e-9) {
		t.Errorf("restartIn = %f, want %f", g.restartIn, cfg.Rules.RestartDelay)
	}
}

// TestContinueAfterBallLoss verifies the rule that keeps the round alive
// after losing one ball, ending it only when the last ball is gone.
func TestContinueAfterBallLoss(t *testing.T) {
	cfg := config.Cfg()
	prev := cfg.Rules.ContinueAfterBallLoss
	cfg.Rules.ContinueAfterBallLoss = true
	defer func() { cfg.Rules.ContinueAfterBallLoss = prev }()

	lvl := twoBallLevel()
	lvl.Balls[0].Pos = level.Point{X: 400, Y: 850} // below the field margin
	g := newTestGame(t, lvl)
	g.state = StatePlaying

	g.Advance(cfg.Physics.DT)

	if g.State() != StatePlaying {
		t.Fatalf("state after first loss = %v, want %v", g.State(), StatePlaying)
	}
	if g.ballsAlive != 1 {
		t.Fatalf("ballsAlive = %d, want 1", g.ballsAlive)
	}
	if got := countKind(g, components.KindBall); got != 1 {
		t.Errorf("live balls = %d, want 1", got)
	}

	survivor := ballBody(t, g, 1)
	g.phys.SetPosition(survivor, r2.Vec{X: 400, Y: 850})
	g.Advance(cfg.Physics.DT)

	if g.State() != StateLost {
		t.Fatalf("state after last loss = %v, want %v", g.State(), StateLost)
	}
	if g.ballsAlive != 0 {
		t.Errorf("ballsAlive = %d, want 0", g.ballsAlive)
	}
}

// TestBallsTouchingWins verifies two balls meeting during play latches the
// win with the contact point recorded.
func TestBallsTouchingWins(t *testing.T) {
	lvl := twoBallLevel()
	lvl.Balls[0].Pos = level.Point{X: 400, Y: 300}
	lvl.Balls[1].Pos = level.Point{X: 430, Y: 300} // overlapping at radius 18
	g := newTestGame(t, lvl)
	g.state = StatePlaying

	g.Advance(config.Cfg().Physics.DT)

	if g.State() != StateWon {
		t.Fatalf("state = %v, want %v", g.State(), StateWon)
	}
	if g.winPoint.X < 400 || g.winPoint.X > 430 {
		t.Errorf("win point = %v, want between the balls", g.winPoint)
	}
	if len(g.collector.Rounds()) != 1 {
		t.Errorf("rounds recorded = %d, want 1", len(g.collector.Rounds()))
	}
}

// TestNoWinBeforePlaying verifies touching balls do not end a round that
// has not gone live yet.
func TestNoWinBeforePlaying(t *testing.T) {
	lvl := twoBallLevel()
	lvl.Balls[0].Pos = level.Point{X: 400, Y: 300}
	lvl.Balls[1].Pos = level.Point{X: 430, Y: 300}
	g := newTestGame(t, lvl)

	g.Advance(config.Cfg().Physics.DT)

	if g.State() != StateReady {
		t.Errorf("state = %v, want %v", g.State(), StateReady)
	}
}

// TestRestartCountdown verifies the post-round pause ends in a fresh round.
func TestRestartCountdown(t *testing.T) {
	lvl := twoBallLevel()
	lvl.Balls[0].Pos = level.Point{X: 400, Y: 850}
	g := newTestGame(t, lvl)

	g.Advance(1.0)
	if g.State() != StateLost {
		t.Fatalf("state = %v, want %v", g.State(), StateLost)
	}

	g.TickCosmetics(config.Cfg().Rules.RestartDelay + 0.1)

	if g.State() != StateReady {
		t.Errorf("state = %v, want %v", g.State(), StateReady)
	}
	if g.Round() != 2 {
		t.Errorf("round = %d, want 2", g.Round())
	}
	if got := countKind(g, components.KindBall); got != 2 {
		t.Errorf("balls = %d, want 2", got)
	}
}

// TestCosmeticsFrozenInMenu verifies overlay states freeze the melt and
// restart timers.
func TestCosmeticsFrozenInMenu(t *testing.T) {
	lvl := twoBallLevel()
	lvl.Balls[0].Pos = level.Point{X: 400, Y: 850}
	g := newTestGame(t, lvl)
	g.Advance(1.0)
	if g.State() != StateLost {
		t.Fatalf("state = %v, want %v", g.State(), StateLost)
	}

	before := g.restartIn
	saved := g.state
	g.state = StateMenu
	g.TickCosmetics(5.0)
	g.state = saved

	if g.restartIn != before {
		t.Errorf("restartIn moved in menu: %f -> %f", before, g.restartIn)
	}
}

func TestRoundTimeOnlyWhilePlaying(t *testing.T) {
	g := newTestGame(t, twoBallLevel())
	dt := config.Cfg().Physics.DT

	g.Advance(dt) // Ready: steps, but the round clock holds
	if g.roundTime != 0 {
		t.Errorf("roundTime in ready = %f, want 0", g.roundTime)
	}

	g.state = StatePlaying
	g.Advance(dt)
	if !approxF(g.roundTime, dt, 1e-9) {
		t.Errorf("roundTime = %f, want %f", g.roundTime, dt)
	}
}

func approxF(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}
