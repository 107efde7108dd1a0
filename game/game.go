// Package game drives the puzzle rounds: it owns the ECS world, the physics
// world, the collision registry, and the fixed-timestep loop that ties them
// together.
package game

import (
	"log/slog"
	"math/rand"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/inkfall/components"
	"github.com/pthm-cable/inkfall/config"
	"github.com/pthm-cable/inkfall/level"
	"github.com/pthm-cable/inkfall/physics"
	"github.com/pthm-cable/inkfall/stroke"
	"github.com/pthm-cable/inkfall/telemetry"
	"github.com/pthm-cable/inkfall/ui"
)

// Options configures a new game instance.
type Options struct {
	Seed      int64
	Level     *level.Level
	LogStats  bool
	OutputDir string
}

// entityRef tags a collider's owner with its entity kind so collision
// classification is a single registry lookup.
type entityRef struct {
	kind   components.Kind
	entity ecs.Entity
}

// Game holds the complete round state.
type Game struct {
	world *ecs.World
	phys  *physics.World
	lvl   *level.Level
	rng   *rand.Rand

	// Entity mappers, one per archetype
	ballMapper *ecs.Map5[
		components.Transform, components.RigidBody, components.Tint,
		components.Ball, components.Silhouette,
	]
	propMapper *ecs.Map4[
		components.Transform, components.RigidBody, components.Tint,
		components.Silhouette,
	]
	drawnMapper *ecs.Map4[
		components.Transform, components.RigidBody, components.Tint,
		components.DrawnLine,
	]
	iceMapper *ecs.Map5[
		components.Transform, components.RigidBody, components.Tint,
		components.Silhouette, components.Melt,
	]
	beamMapper *ecs.Map4[
		components.Transform, components.RigidBody, components.Tint,
		components.Beam,
	]
	seesawMapper *ecs.Map5[
		components.Transform, components.RigidBody, components.Tint,
		components.Silhouette, components.Plank,
	]
	beltMapper *ecs.Map5[
		components.Transform, components.RigidBody, components.Tint,
		components.Silhouette, components.Belt,
	]
	buttonMapper *ecs.Map5[
		components.Transform, components.RigidBody, components.Tint,
		components.Silhouette, components.Sink,
	]

	// Individual component mappers for lookups
	rbMap    *ecs.Map1[components.RigidBody]
	meltMap  *ecs.Map1[components.Melt]
	sinkMap  *ecs.Map1[components.Sink]
	beltMap  *ecs.Map1[components.Belt]
	drawnMap *ecs.Map1[components.DrawnLine]

	// Iteration filters
	poseFilter  *ecs.Filter2[components.Transform, components.RigidBody]
	ballFilter  *ecs.Filter2[components.Ball, components.RigidBody]
	meltFilter  *ecs.Filter2[components.Melt, components.RigidBody]
	sinkFilter  *ecs.Filter2[components.Sink, components.RigidBody]
	plankFilter *ecs.Filter2[components.Plank, components.RigidBody]
	beltFilter  *ecs.Filter1[components.Belt]
	shapeFilter *ecs.Filter3[components.Transform, components.Silhouette, components.Tint]
	drawnFilter *ecs.Filter3[components.Transform, components.DrawnLine, components.Tint]
	beamFilter  *ecs.Filter3[components.Transform, components.Beam, components.Tint]

	// Collider ownership and active belt contacts
	registry map[physics.ColliderHandle]entityRef
	contacts map[contactKey]beltContact

	// Round state
	state        State
	prevState    State // state to resume after menu/edit
	tick         int32
	accumulator  float64
	roundTime    float64
	round        int
	ballsAlive   int
	buttonsFired bool
	winPoint     r2.Vec
	restartIn    float64 // seconds until auto-restart, <0 when inactive

	// Drawing
	pens        []stroke.Pen
	penIdx      int
	path        *stroke.Path
	drawing     bool
	drawBlocked bool
	inkUsed     float64
	strokes     int

	// Despawns deferred to the end of the current event batch
	pending []entityRef

	// Debug overlay
	uiRenderer *ui.Renderer
	inspector  *ui.Inspector
	debugMode  bool

	collector *telemetry.Collector
	output    *telemetry.OutputManager
	perf      *PerfStats
	logStats  bool
}

// NewGame creates a game running the given level.
func NewGame(opts Options) (*Game, error) {
	cfg := config.Cfg()

	lvl := opts.Level
	if lvl == nil {
		var err error
		lvl, err = level.Default()
		if err != nil {
			return nil, err
		}
	}

	world := ecs.NewWorld()

	g := &Game{
		world:    world,
		lvl:      lvl,
		rng:      rand.New(rand.NewSource(opts.Seed)),
		registry: make(map[physics.ColliderHandle]entityRef),
		contacts: make(map[contactKey]beltContact),

		ballMapper: ecs.NewMap5[
			components.Transform, components.RigidBody, components.Tint,
			components.Ball, components.Silhouette,
		](world),
		propMapper: ecs.NewMap4[
			components.Transform, components.RigidBody, components.Tint,
			components.Silhouette,
		](world),
		drawnMapper: ecs.NewMap4[
			components.Transform, components.RigidBody, components.Tint,
			components.DrawnLine,
		](world),
		iceMapper: ecs.NewMap5[
			components.Transform, components.RigidBody, components.Tint,
			components.Silhouette, components.Melt,
		](world),
		beamMapper: ecs.NewMap4[
			components.Transform, components.RigidBody, components.Tint,
			components.Beam,
		](world),
		seesawMapper: ecs.NewMap5[
			components.Transform, components.RigidBody, components.Tint,
			components.Silhouette, components.Plank,
		](world),
		beltMapper: ecs.NewMap5[
			components.Transform, components.RigidBody, components.Tint,
			components.Silhouette, components.Belt,
		](world),
		buttonMapper: ecs.NewMap5[
			components.Transform, components.RigidBody, components.Tint,
			components.Silhouette, components.Sink,
		](world),

		rbMap:    ecs.NewMap1[components.RigidBody](world),
		meltMap:  ecs.NewMap1[components.Melt](world),
		sinkMap:  ecs.NewMap1[components.Sink](world),
		beltMap:  ecs.NewMap1[components.Belt](world),
		drawnMap: ecs.NewMap1[components.DrawnLine](world),

		poseFilter:  ecs.NewFilter2[components.Transform, components.RigidBody](world),
		ballFilter:  ecs.NewFilter2[components.Ball, components.RigidBody](world),
		meltFilter:  ecs.NewFilter2[components.Melt, components.RigidBody](world),
		sinkFilter:  ecs.NewFilter2[components.Sink, components.RigidBody](world),
		plankFilter: ecs.NewFilter2[components.Plank, components.RigidBody](world),
		beltFilter:  ecs.NewFilter1[components.Belt](world),
		shapeFilter: ecs.NewFilter3[components.Transform, components.Silhouette, components.Tint](world),
		drawnFilter: ecs.NewFilter3[components.Transform, components.DrawnLine, components.Tint](world),
		beamFilter:  ecs.NewFilter3[components.Transform, components.Beam, components.Tint](world),

		restartIn:  -1,
		uiRenderer: ui.NewRenderer(),
		inspector:  ui.NewInspector(),
		perf:       NewPerfStats(cfg.Telemetry.PerfWindow),
		logStats:   opts.LogStats,
	}

	g.pens = pensFromConfig(cfg)

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	g.output = output
	if err := g.output.WriteConfig(cfg); err != nil {
		slog.Warn("could not snapshot config", "error", err)
	}
	g.collector = telemetry.NewCollector(lvl.Name)

	g.resetRound()
	return g, nil
}

// pensFromConfig builds the stroke pens from the config pen table.
func pensFromConfig(cfg *config.Config) []stroke.Pen {
	pens := make([]stroke.Pen, len(cfg.Pens))
	for i, p := range cfg.Pens {
		pens[i] = stroke.Pen{
			Name:       p.Name,
			Width:      p.Width,
			MinSpacing: p.MinSpacing,
			Material: physics.Material{
				Density:    p.Density,
				Friction:   p.Friction,
				Elasticity: p.Elasticity,
			},
		}
	}
	return pens
}

// strokeOptions returns the corner-handling tuning for the current config.
func strokeOptions() stroke.Options {
	cfg := config.Cfg()
	return stroke.Options{
		MiterMinAngle: cfg.Derived.MiterMinAngleRad,
		MaxMiterRatio: cfg.Draw.MaxMiterRatio,
	}
}

// pen returns the active pen.
func (g *Game) pen() stroke.Pen {
	return g.pens[g.penIdx]
}

// State returns the current round state.
func (g *Game) State() State { return g.state }

// Tick returns the number of fixed steps simulated.
func (g *Game) Tick() int32 { return g.tick }

// Round returns the number of rounds started, counting from 1.
func (g *Game) Round() int { return g.round }

// Update advances one render tick: input, simulation, and cosmetic timers.
func (g *Game) Update() {
	frame := float64(rl.GetFrameTime())
	g.handleInput()
	g.Advance(frame)
	g.TickCosmetics(frame)
}

// UpdateHeadless advances one render-rate tick without input or rendering.
// With no player to commit a stroke, fresh rounds are released into play
// immediately.
func (g *Game) UpdateHeadless() {
	dt := config.Cfg().Physics.DT
	if g.state == StateReady {
		g.state = StatePlaying
	}
	g.Advance(dt)
	g.TickCosmetics(dt)
	if g.logStats && g.tick > 0 && g.tick%600 == 0 {
		g.logPerf()
	}
}

// logPerf emits the rolling phase timings.
func (g *Game) logPerf() {
	attrs := []any{"tick", g.tick, "total", g.perf.Total()}
	for _, name := range g.perf.SortedNames() {
		attrs = append(attrs, name, g.perf.Avg(name))
	}
	slog.Info("perf", attrs...)
}

// flushRounds writes finished round records to the output CSV.
func (g *Game) flushRounds() {
	for _, rec := range g.collector.Drain() {
		if err := g.output.WriteRound(rec); err != nil {
			slog.Warn("could not write round record", "error", err)
		}
	}
}

// Unload flushes telemetry and releases output files.
func (g *Game) Unload() {
	start := time.Now()
	g.flushRounds()
	if g.logStats {
		g.collector.LogStats()
	}
	if err := g.output.WriteStats(g.collector.Stats()); err != nil {
		slog.Warn("could not write round stats", "error", err)
	}
	g.output.Close()
	slog.Info("game unloaded", "rounds", g.round, "elapsed", time.Since(start))
}
