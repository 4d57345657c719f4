package dynamo

import (
	"math"

	"github.com/golang/geo/r3"
)

// Epsilon is the tolerance used for every near-zero comparison.
const Epsilon = 1e-6

// CmpFloatEq reports whether a and b are equal within a tolerance scaled by
// their magnitude.
func CmpFloatEq(a, b float64) bool {
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return a == b
	}
	return math.Abs(a-b) <= Epsilon*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

// VecEq compares two vectors component-wise with CmpFloatEq.
func VecEq(a, b r3.Vector) bool {
	return CmpFloatEq(a.X, b.X) && CmpFloatEq(a.Y, b.Y) && CmpFloatEq(a.Z, b.Z)
}

// IsFinite reports whether every component of v is a finite number.
func IsFinite(v r3.Vector) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Link is an index pair used for debug line rendering.
type Link struct {
	A, B int
}

// Frame is a read-only view of a simulation at one instant.
type Frame struct {
	Step       int
	Time       float64
	Positions  []r3.Vector
	Velocities []r3.Vector
	Masses     []float64
	Links      []Link
}

// Clone deep-copies the per-particle arrays so the frame outlives the next step.
func (f Frame) Clone() Frame {
	c := f
	c.Positions = append([]r3.Vector(nil), f.Positions...)
	c.Velocities = append([]r3.Vector(nil), f.Velocities...)
	c.Masses = append([]float64(nil), f.Masses...)
	c.Links = append([]Link(nil), f.Links...)
	return c
}

// Simulation is anything the runner can advance.
type Simulation interface {
	Step(dt float64) error
	Frame() Frame
}

// Metric observes frames and reduces them to one number.
type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

// Observer receives every frame, for example a live renderer.
type Observer interface {
	OnStep(f Frame)
}
