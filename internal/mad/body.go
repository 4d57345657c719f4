package mad

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/san-kum/massim/internal/dynamo"
)

// clearChunk is the smallest slice of masses handed to one worker.
const clearChunk = 1024

// Body stores per-mass state as parallel arrays indexed by mass id.
type Body struct {
	masses        []float64
	inverseMasses []float64
	damping       []float64
	positions     []r3.Vector
	velocities    []r3.Vector
	accelerations []r3.Vector
	forces        []r3.Vector
	fixed         []bool
	valid         []bool
}

// NewBody returns n valid masses at the origin, each with the given mass and damping.
func NewBody(n int, mass, damping float64) (*Body, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: body size %d is negative", dynamo.ErrInvalidArgument, n)
	}
	if mass <= dynamo.Epsilon {
		return nil, fmt.Errorf("%w: mass %g must be positive", dynamo.ErrInvalidArgument, mass)
	}
	if damping <= 0 || damping > 1 {
		return nil, fmt.Errorf("%w: damping %g outside (0, 1]", dynamo.ErrInvalidArgument, damping)
	}

	b := &Body{
		masses:        make([]float64, n),
		inverseMasses: make([]float64, n),
		damping:       make([]float64, n),
		positions:     make([]r3.Vector, n),
		velocities:    make([]r3.Vector, n),
		accelerations: make([]r3.Vector, n),
		forces:        make([]r3.Vector, n),
		fixed:         make([]bool, n),
		valid:         make([]bool, n),
	}
	for i := 0; i < n; i++ {
		b.masses[i] = mass
		b.inverseMasses[i] = 1 / mass
		b.damping[i] = damping
		b.valid[i] = true
	}
	return b, nil
}

func (b *Body) Len() int { return len(b.masses) }

func (b *Body) Position(i int) r3.Vector { return b.positions[i] }

func (b *Body) SetPosition(i int, p r3.Vector) { b.positions[i] = p }

// Positions returns a copy of every position.
func (b *Body) Positions() []r3.Vector { return append([]r3.Vector(nil), b.positions...) }

func (b *Body) Velocity(i int) r3.Vector { return b.velocities[i] }

func (b *Body) SetVelocity(i int, v r3.Vector) { b.velocities[i] = v }

func (b *Body) Acceleration(i int) r3.Vector { return b.accelerations[i] }

func (b *Body) SetAcceleration(i int, a r3.Vector) { b.accelerations[i] = a }

func (b *Body) Mass(i int) float64 { return b.masses[i] }

func (b *Body) InverseMass(i int) float64 { return b.inverseMasses[i] }

// SetMass sets one mass and recomputes its inverse.
func (b *Body) SetMass(i int, mass float64) error {
	if mass <= dynamo.Epsilon {
		return fmt.Errorf("%w: mass %g must be positive", dynamo.ErrInvalidArgument, mass)
	}
	b.masses[i] = mass
	b.inverseMasses[i] = 1 / mass
	return nil
}

func (b *Body) Damping(i int) float64 { return b.damping[i] }

func (b *Body) SetDamping(i int, damping float64) error {
	if damping <= 0 || damping > 1 {
		return fmt.Errorf("%w: damping %g outside (0, 1]", dynamo.ErrInvalidArgument, damping)
	}
	b.damping[i] = damping
	return nil
}

// SetFixed pins a mass in place; pinned masses keep their mass for force
// computations but are skipped by integration.
func (b *Body) SetFixed(i int, fixed bool) { b.fixed[i] = fixed }

func (b *Body) IsFixed(i int) bool { return b.fixed[i] }

func (b *Body) IsValid(i int) bool { return b.valid[i] }

// SetValid marks a mass as part of the body. Invalid masses carry no mass.
func (b *Body) SetValid(i int, valid bool) {
	b.valid[i] = valid
	if !valid {
		b.masses[i] = 0
		b.inverseMasses[i] = 0
		b.velocities[i] = r3.Vector{}
	}
}

// ValidCount returns the number of valid masses.
func (b *Body) ValidCount() int {
	n := 0
	for _, v := range b.valid {
		if v {
			n++
		}
	}
	return n
}

// Movable reports whether integration moves mass i.
func (b *Body) Movable(i int) bool {
	return b.valid[i] && !b.fixed[i] && b.inverseMasses[i] > dynamo.Epsilon*dynamo.Epsilon
}

func (b *Body) AddForce(i int, f r3.Vector) { b.forces[i] = b.forces[i].Add(f) }

func (b *Body) Force(i int) r3.Vector { return b.forces[i] }

// ClearAccumulatedForces zeroes every force accumulator. Slots are disjoint,
// so large bodies are cleared in parallel.
func (b *Body) ClearAccumulatedForces() {
	dynamo.ParallelFor(len(b.forces), clearChunk, func(start, end int) {
		for i := start; i < end; i++ {
			b.forces[i] = r3.Vector{}
		}
	})
}

// Integrate advances every movable mass by dt with semi-implicit Euler and
// scales its velocity by damping^dt. Accumulated forces are left in place.
func (b *Body) Integrate(dt float64) {
	for i := range b.masses {
		if !b.Movable(i) {
			continue
		}
		b.positions[i] = b.positions[i].Add(b.velocities[i].Mul(dt))

		acc := b.accelerations[i].Add(b.forces[i].Mul(b.inverseMasses[i]))
		v := b.velocities[i].Add(acc.Mul(dt))
		b.velocities[i] = v.Mul(math.Pow(b.damping[i], dt))
	}
}

// KineticEnergy sums 0.5 m v² over movable masses.
func (b *Body) KineticEnergy() float64 {
	e := 0.0
	for i := range b.masses {
		if b.Movable(i) {
			e += 0.5 * b.masses[i] * b.velocities[i].Norm2()
		}
	}
	return e
}

// TotalMass sums the mass of every valid element.
func (b *Body) TotalMass() float64 {
	m := 0.0
	for i, v := range b.valid {
		if v {
			m += b.masses[i]
		}
	}
	return m
}
