// Package components holds the ECS component structs shared by the game
// driver, the renderer, and the spawn code.
package components

import (
	"github.com/pthm-cable/inkfall/physics"
)

// Kind tags which entity variant owns a collider handle in the registry.
type Kind uint8

const (
	KindNone Kind = iota
	KindBall
	KindObstacle
	KindFalling
	KindDrawnLine
	KindNet
	KindIce
	KindLaser
	KindSeesaw
	KindConveyor
	KindButton
)

var kindNames = [...]string{
	"none", "ball", "obstacle", "falling", "drawn_line", "net",
	"ice", "laser", "seesaw", "conveyor", "button",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Transform is the entity's render pose in screen pixels, copied from the
// physics body once per render tick.
type Transform struct {
	X, Y  float64
	Angle float64
}

// RigidBody links an entity to its kernel body. Every entity owns exactly
// one body.
type RigidBody struct {
	Body physics.BodyHandle
}

// Tint is the entity's render color.
type Tint struct {
	R, G, B, A uint8
}

// Ball marks one of the two player balls.
type Ball struct {
	Index int // 0 or 1
}

// Form selects how a Silhouette is drawn.
type Form uint8

const (
	FormBox Form = iota
	FormDisc
	FormSegment
)

// Silhouette is the renderable footprint of a simple entity, in pixels
// relative to the body origin.
type Silhouette struct {
	Form         Form
	HalfW, HalfH float64 // box extents
	Radius       float64 // disc radius / segment half thickness
	X2, Y2       float64 // segment endpoint offset
}
