package game

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/inkfall/physics"
)

// contactKey identifies one belt/body contact pair. Keyed by both collider
// handles so a body resting across two belts gets dragged by each.
type contactKey struct {
	belt  physics.ColliderHandle
	other physics.ColliderHandle
}

// beltContact is one live contact the belt force pass walks every tick.
type beltContact struct {
	beltEntity ecs.Entity
	body       physics.BodyHandle
}

// addBeltContact records a begin event. Duplicate begins for the same pair
// overwrite in place, so the set never double-counts a contact.
func (g *Game) addBeltContact(belt, other physics.ColliderHandle, beltEntity ecs.Entity) {
	body, ok := g.phys.ColliderBody(other)
	if !ok {
		return
	}
	g.contacts[contactKey{belt: belt, other: other}] = beltContact{
		beltEntity: beltEntity,
		body:       body,
	}
}

// removeBeltContact drops a pair on its separate event. Unknown pairs are
// ignored: the contact may have been purged already when its owner despawned.
func (g *Game) removeBeltContact(belt, other physics.ColliderHandle) {
	delete(g.contacts, contactKey{belt: belt, other: other})
}

// dropContactsFor purges every contact touching any collider of the body.
// Called on despawn so a removed entity can never leave a contact behind;
// the kernel will not emit separate events for shapes that no longer exist.
func (g *Game) dropContactsFor(bh physics.BodyHandle) {
	owned := make(map[physics.ColliderHandle]bool)
	for _, ch := range g.phys.Colliders(bh) {
		owned[ch] = true
	}
	for key := range g.contacts {
		if owned[key.belt] || owned[key.other] {
			delete(g.contacts, key)
		}
	}
}

// applyBeltForces drags every body resting on a belt toward the belt's
// surface speed. Forces act along the contact tangent, per manifold point,
// so a body straddling a belt edge is pulled in proportion to how much of
// it actually touches.
func (g *Game) applyBeltForces(dt float64) {
	if len(g.contacts) == 0 {
		return
	}

	var stale []contactKey
	for key, c := range g.contacts {
		if !g.phys.ColliderAlive(key.belt) || !g.phys.ColliderAlive(key.other) ||
			!g.phys.BodyAlive(c.body) {
			stale = append(stale, key)
			continue
		}
		belt := g.beltMap.Get(c.beltEntity)
		if belt == nil {
			stale = append(stale, key)
			continue
		}

		manifold, ok := g.phys.ContactManifold(key.belt, key.other)
		if !ok || len(manifold.Points) == 0 {
			// Pair still registered but not touching this tick
			// (bounce, kernel jitter). Keep it; the separate event
			// decides when it really ends.
			continue
		}

		// Tangent runs along the belt surface: the manifold normal
		// points from belt to body, its perpendicular is the drag
		// direction, signed by the belt's configured direction.
		tangent := r2.Vec{X: -manifold.Normal.Y, Y: manifold.Normal.X}
		tangent = r2.Scale(belt.Direction, tangent)

		mass := g.phys.Mass(c.body)
		if mass <= 0 {
			continue
		}
		n := float64(len(manifold.Points))

		for _, pt := range manifold.Points {
			vel := g.phys.VelocityAtPoint(c.body, pt.Point)
			along := vel.X*tangent.X + vel.Y*tangent.Y

			// Already at or beyond the belt speed in the drag
			// direction: nothing to add.
			if along >= belt.MaxSpeed {
				continue
			}
			accel := belt.Accel
			// Do not overshoot the cap in a single step.
			if deficit := (belt.MaxSpeed - along) / dt; deficit < accel {
				accel = deficit
			}
			imp := r2.Scale(accel*mass/n*dt, tangent)
			g.phys.ApplyImpulse(c.body, imp)
		}
	}

	for _, key := range stale {
		delete(g.contacts, key)
	}
}
