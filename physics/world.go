// Package physics is the boundary to the 2D rigid-body kernel.
//
// The kernel (jakecoffman/cp) works in its own unit scale with a Y-up axis;
// everything above this package works in screen pixels with Y-down. All
// conversion — positions, velocities, impulses, angles — happens here and
// nowhere else. Bodies and colliders are referred to by opaque numeric
// handles; game code never holds kernel pointers.
package physics

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"gonum.org/v1/gonum/spatial/r2"
)

// BodyHandle identifies a kernel-owned rigid body.
type BodyHandle uint64

// ColliderHandle identifies a kernel-owned collider. Registry lookups and
// collision events use collider handles, never kernel references.
type ColliderHandle uint64

// BodyKind selects how the kernel integrates a body.
type BodyKind uint8

const (
	BodyStatic BodyKind = iota
	BodyDynamic
	BodyKinematic
)

// Collision category bits. A collider's Categories say what it is, its Mask
// says what it is tested against.
const (
	CatTerrain uint = 1 << iota // obstacles, nets, ice, conveyor frames
	CatBall
	CatDrawn
	CatDebris // falling objects, seesaw planks
	CatSensor // lasers, button pads
)

// CatAll matches every category.
const CatAll = ^uint(0)

// Filter is a collision-group bitmask pair.
type Filter struct {
	Categories uint
	Mask       uint
}

func (f Filter) cp() cp.ShapeFilter {
	return cp.NewShapeFilter(cp.NO_GROUP, f.Categories, f.Mask)
}

// Material holds the physical surface parameters of a collider.
type Material struct {
	Density    float64
	Friction   float64
	Elasticity float64
}

// CollisionEvent is one buffered begin/separate pair event, keyed by the two
// collider handles involved.
type CollisionEvent struct {
	A, B  ColliderHandle
	Start bool
}

// all colliders share one kernel collision type; classification is done by
// the game registry, not by the kernel.
const colliderType cp.CollisionType = 1

// Config holds kernel tuning, in screen units where applicable.
type Config struct {
	Gravity       float64 // px/s², positive = down
	PixelsPerUnit float64 // screen pixels per kernel length unit
	Iterations    int
	CollisionSlop float64 // px
}

type bodySlot struct {
	body        *cp.Body
	kind        BodyKind
	colliders   []ColliderHandle
	constraints []*cp.Constraint
}

// World owns the kernel space and the handle tables. It is single-threaded:
// creation, removal, stepping and queries must all happen from the driver
// context (see the ordering contract in the game package).
type World struct {
	space *cp.Space
	scale float64

	bodies map[BodyHandle]*bodySlot
	shapes map[ColliderHandle]*cp.Shape
	owner  map[ColliderHandle]BodyHandle

	next   uint64
	events []CollisionEvent
}

// NewWorld creates a kernel space with the given tuning.
func NewWorld(cfg Config) *World {
	if cfg.PixelsPerUnit <= 0 {
		cfg.PixelsPerUnit = 1
	}
	space := cp.NewSpace()
	if cfg.Iterations > 0 {
		space.Iterations = uint(cfg.Iterations)
	}
	space.SetGravity(cp.Vector{X: 0, Y: -cfg.Gravity / cfg.PixelsPerUnit})
	if cfg.CollisionSlop > 0 {
		space.SetCollisionSlop(cfg.CollisionSlop / cfg.PixelsPerUnit)
	}

	w := &World{
		space:  space,
		scale:  cfg.PixelsPerUnit,
		bodies: make(map[BodyHandle]*bodySlot),
		shapes: make(map[ColliderHandle]*cp.Shape),
		owner:  make(map[ColliderHandle]BodyHandle),
	}

	handler := space.NewCollisionHandler(colliderType, colliderType)
	handler.BeginFunc = w.onBegin
	handler.SeparateFunc = w.onSeparate
	return w
}

func (w *World) onBegin(arb *cp.Arbiter, _ *cp.Space, _ interface{}) bool {
	a, b := arb.Shapes()
	ha, okA := a.UserData.(ColliderHandle)
	hb, okB := b.UserData.(ColliderHandle)
	if okA && okB {
		w.events = append(w.events, CollisionEvent{A: ha, B: hb, Start: true})
	}
	return true
}

func (w *World) onSeparate(arb *cp.Arbiter, _ *cp.Space, _ interface{}) {
	a, b := arb.Shapes()
	ha, okA := a.UserData.(ColliderHandle)
	hb, okB := b.UserData.(ColliderHandle)
	if okA && okB {
		w.events = append(w.events, CollisionEvent{A: ha, B: hb, Start: false})
	}
}

// Step advances the kernel by exactly dt seconds.
func (w *World) Step(dt float64) {
	w.space.Step(dt)
}

// DrainEvents returns all collision events buffered since the last drain and
// clears the buffer. The caller owns the returned slice.
func (w *World) DrainEvents() []CollisionEvent {
	ev := w.events
	w.events = nil
	return ev
}

// CreateBody adds a body at the given screen position and returns its handle.
func (w *World) CreateBody(kind BodyKind, pos r2.Vec) BodyHandle {
	var body *cp.Body
	switch kind {
	case BodyStatic:
		body = cp.NewStaticBody()
	case BodyKinematic:
		body = cp.NewKinematicBody()
	default:
		// mass and moment accumulate from collider densities
		body = cp.NewBody(0, 0)
	}
	body.SetPosition(w.toKernel(pos))
	w.space.AddBody(body)

	w.next++
	h := BodyHandle(w.next)
	w.bodies[h] = &bodySlot{body: body, kind: kind}
	return h
}

// AddCollider attaches a collider to a body. The shape spec is given in
// screen pixels relative to the body origin.
func (w *World) AddCollider(bh BodyHandle, spec ShapeSpec, f Filter, sensor bool, m Material) (ColliderHandle, error) {
	slot, ok := w.bodies[bh]
	if !ok {
		return 0, fmt.Errorf("physics: adding collider to unknown body %d", bh)
	}
	shape, err := w.buildShape(slot.body, spec)
	if err != nil {
		return 0, err
	}

	shape.SetFriction(m.Friction)
	shape.SetElasticity(m.Elasticity)
	shape.SetSensor(sensor)
	shape.SetFilter(f.cp())
	shape.SetCollisionType(colliderType)
	w.space.AddShape(shape)
	if slot.kind == BodyDynamic && m.Density > 0 {
		shape.SetDensity(m.Density)
	}

	w.next++
	h := ColliderHandle(w.next)
	shape.UserData = h
	w.shapes[h] = shape
	w.owner[h] = bh
	slot.colliders = append(slot.colliders, h)
	return h, nil
}

// RemoveBody removes a body and all of its colliders from the kernel. Their
// handles become stale; every accessor treats stale handles as a no-op.
// Removing an unknown handle is itself a no-op.
func (w *World) RemoveBody(bh BodyHandle) {
	slot, ok := w.bodies[bh]
	if !ok {
		return
	}
	for _, ch := range slot.colliders {
		if shape, ok := w.shapes[ch]; ok {
			w.space.RemoveShape(shape)
			delete(w.shapes, ch)
			delete(w.owner, ch)
		}
	}
	for _, c := range slot.constraints {
		w.space.RemoveConstraint(c)
	}
	w.space.RemoveBody(slot.body)
	delete(w.bodies, bh)
}

// SetAngle sets the body's rotation from a screen-space angle. Call before
// attaching colliders: static shapes are not reindexed afterwards.
func (w *World) SetAngle(bh BodyHandle, angle float64) {
	if slot, ok := w.bodies[bh]; ok {
		slot.body.SetAngle(-angle)
	}
}

// PinToWorld anchors a body to the static background at a screen-space
// point, leaving rotation free. Used for pivoting planks.
func (w *World) PinToWorld(bh BodyHandle, at r2.Vec) {
	slot, ok := w.bodies[bh]
	if !ok {
		return
	}
	joint := cp.NewPivotJoint(w.space.StaticBody, slot.body, w.toKernel(at))
	w.space.AddConstraint(joint)
	slot.constraints = append(slot.constraints, joint)
}

// Colliders returns the live collider handles attached to a body.
func (w *World) Colliders(bh BodyHandle) []ColliderHandle {
	slot, ok := w.bodies[bh]
	if !ok {
		return nil
	}
	return slot.colliders
}

// ColliderBody resolves a collider handle to its owning body.
func (w *World) ColliderBody(ch ColliderHandle) (BodyHandle, bool) {
	bh, ok := w.owner[ch]
	return bh, ok
}

// ColliderAlive reports whether a collider handle still refers to a live
// kernel shape.
func (w *World) ColliderAlive(ch ColliderHandle) bool {
	_, ok := w.shapes[ch]
	return ok
}

// BodyAlive reports whether a body handle is still live.
func (w *World) BodyAlive(bh BodyHandle) bool {
	_, ok := w.bodies[bh]
	return ok
}

// Position returns a body's position in screen pixels.
func (w *World) Position(bh BodyHandle) r2.Vec {
	slot, ok := w.bodies[bh]
	if !ok {
		return r2.Vec{}
	}
	return w.toScreen(slot.body.Position())
}

// SetPosition teleports a body to a screen position.
func (w *World) SetPosition(bh BodyHandle, pos r2.Vec) {
	if slot, ok := w.bodies[bh]; ok {
		slot.body.SetPosition(w.toKernel(pos))
	}
}

// Angle returns a body's rotation in screen convention (Y-down, clockwise
// positive).
func (w *World) Angle(bh BodyHandle) float64 {
	slot, ok := w.bodies[bh]
	if !ok {
		return 0
	}
	return -slot.body.Angle()
}

// Velocity returns a body's linear velocity in px/s.
func (w *World) Velocity(bh BodyHandle) r2.Vec {
	slot, ok := w.bodies[bh]
	if !ok {
		return r2.Vec{}
	}
	return w.toScreenDir(slot.body.Velocity().Mult(w.scale))
}

// SetVelocity sets a body's linear velocity in px/s.
func (w *World) SetVelocity(bh BodyHandle, v r2.Vec) {
	if slot, ok := w.bodies[bh]; ok {
		slot.body.SetVelocityVector(w.toKernelDir(v).Mult(1 / w.scale))
	}
}

// AngularVelocity returns a body's angular velocity in screen convention.
func (w *World) AngularVelocity(bh BodyHandle) float64 {
	slot, ok := w.bodies[bh]
	if !ok {
		return 0
	}
	return -slot.body.AngularVelocity()
}

// SetAngularVelocity sets a body's angular velocity in screen convention.
func (w *World) SetAngularVelocity(bh BodyHandle, av float64) {
	if slot, ok := w.bodies[bh]; ok {
		slot.body.SetAngularVelocity(-av)
	}
}

// Mass returns a body's mass.
func (w *World) Mass(bh BodyHandle) float64 {
	slot, ok := w.bodies[bh]
	if !ok {
		return 0
	}
	return slot.body.Mass()
}

// VelocityAtPoint returns the body's instantaneous velocity at a world point
// (linear plus angular-cross-radius), in px/s.
func (w *World) VelocityAtPoint(bh BodyHandle, pt r2.Vec) r2.Vec {
	slot, ok := w.bodies[bh]
	if !ok {
		return r2.Vec{}
	}
	v := slot.body.VelocityAtWorldPoint(w.toKernel(pt))
	return r2.Scale(w.scale, w.toScreenDir(v))
}

// ApplyImpulse applies an impulse (px/s × mass) at the body's center of mass,
// imparting pure translation.
func (w *World) ApplyImpulse(bh BodyHandle, imp r2.Vec) {
	slot, ok := w.bodies[bh]
	if !ok {
		return
	}
	body := slot.body
	com := body.LocalToWorld(body.CenterOfGravity())
	body.ApplyImpulseAtWorldPoint(w.toKernelDir(imp).Mult(1/w.scale), com)
}

// toKernel converts an absolute screen position into kernel space.
func (w *World) toKernel(p r2.Vec) cp.Vector {
	return cp.Vector{X: p.X / w.scale, Y: -p.Y / w.scale}
}

// toScreen converts an absolute kernel position into screen space.
func (w *World) toScreen(v cp.Vector) r2.Vec {
	return r2.Vec{X: v.X * w.scale, Y: -v.Y * w.scale}
}

// toKernelDir flips a direction-like quantity (no scaling).
func (w *World) toKernelDir(p r2.Vec) cp.Vector {
	return cp.Vector{X: p.X, Y: -p.Y}
}

// toScreenDir flips a direction-like kernel quantity (no scaling).
func (w *World) toScreenDir(v cp.Vector) r2.Vec {
	return r2.Vec{X: v.X, Y: -v.Y}
}
