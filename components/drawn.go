package components

import (
	"github.com/pthm-cable/inkfall/stroke"
)

// DrawnLine carries the render outline of a player stroke, in body-local
// pixels. Length is the sampled ink length spent on the stroke and is
// refunded if the line is erased before the round starts.
type DrawnLine struct {
	Outline stroke.Outline
	Width   float64
	Length  float64
}
