package game

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/inkfall/components"
	"github.com/pthm-cable/inkfall/physics"
)

// classifyCollisions drains the kernel's event batch and applies the game
// rules. Despawns are deferred until the whole batch is processed: an event
// later in the batch may still reference an entity an earlier event doomed,
// and must see it as a live registry entry with a pending flag rather than a
// dangling handle.
func (g *Game) classifyCollisions() {
	events := g.phys.DrainEvents()
	for _, ev := range events {
		refA, okA := g.registry[ev.A]
		refB, okB := g.registry[ev.B]
		if !okA || !okB {
			// Stale handle: the collider's owner was removed earlier
			// this tick. Nothing to classify.
			continue
		}

		g.classifyPair(ev, refA, refB)
		g.classifyPair(physics.CollisionEvent{A: ev.B, B: ev.A, Start: ev.Start}, refB, refA)

		// Symmetric rules, checked once per event.
		if refA.kind == components.KindBall && refB.kind == components.KindBall &&
			ev.Start && g.state == StatePlaying {
			g.winAt(ev.A, ev.B)
		}
	}
	g.flushPending()
}

// classifyPair applies the rules that care which side is which. Called twice
// per event, once per ordering.
func (g *Game) classifyPair(ev physics.CollisionEvent, ref, other entityRef) {
	switch ref.kind {
	case components.KindIce:
		if ev.Start {
			g.startMelt(ref)
		}

	case components.KindLaser:
		if ev.Start && other.kind == components.KindBall && !g.isPending(other) {
			slog.Info("ball hit laser")
			g.pendLoss(other)
		}

	case components.KindButton:
		if ev.Start && other.kind == components.KindBall {
			g.pressButtons()
		}

	case components.KindConveyor:
		if !beltDraggable(other.kind) {
			return
		}
		if ev.Start {
			g.addBeltContact(ev.A, ev.B, ref.entity)
		} else {
			g.removeBeltContact(ev.A, ev.B)
		}
	}
}

// beltDraggable reports whether a belt imparts drag on this entity kind.
func beltDraggable(k components.Kind) bool {
	switch k {
	case components.KindBall, components.KindDrawnLine, components.KindFalling, components.KindSeesaw:
		return true
	}
	return false
}

// winAt latches the win at the contact midpoint of the two balls.
func (g *Game) winAt(a, b physics.ColliderHandle) {
	at := g.contactMidpoint(a, b)
	g.setWon(at)
}

// contactMidpoint finds where the two colliders touch, falling back to the
// midpoint of their body positions when the manifold is already gone.
func (g *Game) contactMidpoint(a, b physics.ColliderHandle) r2.Vec {
	if m, ok := g.phys.ContactManifold(a, b); ok && len(m.Points) > 0 {
		var sum r2.Vec
		for _, p := range m.Points {
			sum = r2.Add(sum, p.Point)
		}
		return r2.Scale(1/float64(len(m.Points)), sum)
	}
	ba, okA := g.phys.ColliderBody(a)
	bb, okB := g.phys.ColliderBody(b)
	if okA && okB {
		return r2.Scale(0.5, r2.Add(g.phys.Position(ba), g.phys.Position(bb)))
	}
	return r2.Vec{}
}

// startMelt arms an ice block's melt timer. Repeat contacts are no-ops.
func (g *Game) startMelt(ref entityRef) {
	melt := g.meltMap.Get(ref.entity)
	if melt == nil || melt.Melting {
		return
	}
	melt.Melting = true
	slog.Info("ice melting")
}

// pressButtons fires the level's one-shot button action: every laser is
// scheduled for removal and every button starts sinking.
func (g *Game) pressButtons() {
	if g.buttonsFired {
		return
	}
	g.buttonsFired = true
	slog.Info("button pressed, lasers disabled")

	for _, ref := range g.registry {
		if ref.kind == components.KindLaser {
			g.pend(ref)
		}
	}

	query := g.sinkFilter.Query()
	for query.Next() {
		sink, _ := query.Get()
		sink.Sinking = true
	}
}

// pend schedules a despawn for after the current event batch.
func (g *Game) pend(ref entityRef) {
	if g.isPending(ref) {
		return
	}
	g.pending = append(g.pending, ref)
}

// pendLoss schedules a ball loss, which also settles the round outcome when
// the batch flushes.
func (g *Game) pendLoss(ref entityRef) {
	g.pend(ref)
}

func (g *Game) isPending(ref entityRef) bool {
	for _, p := range g.pending {
		if p.entity == ref.entity {
			return true
		}
	}
	return false
}

// flushPending runs the deferred despawns. Ball despawns route through
// loseBall so the round outcome settles exactly once.
func (g *Game) flushPending() {
	if len(g.pending) == 0 {
		return
	}
	batch := g.pending
	g.pending = g.pending[:0]
	for _, ref := range batch {
		if ref.kind == components.KindBall {
			g.loseBall(ref)
		} else {
			g.despawn(ref)
		}
	}
}
