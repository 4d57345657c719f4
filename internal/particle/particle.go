package particle

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/san-kum/massim/internal/dynamo"
)

// Particle is a point mass integrated with semi-implicit Euler.
type Particle struct {
	Position     r3.Vector
	Velocity     r3.Vector
	Acceleration r3.Vector

	// Damping is the fraction of velocity kept per second, in (0, 1].
	Damping float64

	inverseMass float64
	forceAccum  r3.Vector
}

// New returns a particle with the given mass and damping.
func New(position r3.Vector, mass, damping float64) (Particle, error) {
	p := Particle{Position: position, Damping: damping}
	if err := p.SetMass(mass); err != nil {
		return Particle{}, err
	}
	if damping <= 0 || damping > 1 {
		return Particle{}, fmt.Errorf("%w: damping %g outside (0, 1]", dynamo.ErrInvalidArgument, damping)
	}
	return p, nil
}

// NewImmovable returns a particle with infinite mass.
func NewImmovable(position r3.Vector) Particle {
	return Particle{Position: position, Damping: 1}
}

// SetMass sets the mass and recomputes the inverse mass.
func (p *Particle) SetMass(mass float64) error {
	if mass <= dynamo.Epsilon {
		return fmt.Errorf("%w: mass %g must be positive", dynamo.ErrInvalidArgument, mass)
	}
	p.inverseMass = 1.0 / mass
	return nil
}

// Mass returns +Inf for immovable particles.
func (p *Particle) Mass() float64 {
	if p.inverseMass == 0 {
		return math.Inf(1)
	}
	return 1.0 / p.inverseMass
}

// SetInverseMass sets the inverse mass directly; zero means immovable.
func (p *Particle) SetInverseMass(inverseMass float64) error {
	if inverseMass < 0 {
		return fmt.Errorf("%w: inverse mass %g is negative", dynamo.ErrInvalidArgument, inverseMass)
	}
	p.inverseMass = inverseMass
	return nil
}

func (p *Particle) InverseMass() float64 { return p.inverseMass }

// HasFiniteMass reports whether forces can move the particle.
func (p *Particle) HasFiniteMass() bool { return p.inverseMass > dynamo.Epsilon*dynamo.Epsilon }

func (p *Particle) AddForce(f r3.Vector) { p.forceAccum = p.forceAccum.Add(f) }

func (p *Particle) AccumulatedForce() r3.Vector { return p.forceAccum }

func (p *Particle) ClearAccumulator() { p.forceAccum = r3.Vector{} }

// Integrate advances the particle by dt. The force accumulator contributes to
// the acceleration but is left untouched; the owner clears it each frame.
// Velocity is scaled by Damping^dt after the update.
func (p *Particle) Integrate(dt float64) {
	if !p.HasFiniteMass() {
		return
	}

	p.Position = p.Position.Add(p.Velocity.Mul(dt))

	p.Velocity = p.Velocity.Add(p.effectiveAcceleration().Mul(dt))
	p.Velocity = p.Velocity.Mul(math.Pow(p.Damping, dt))
}

// effectiveAcceleration is the constant acceleration plus the accumulated
// force divided by mass.
func (p *Particle) effectiveAcceleration() r3.Vector {
	return p.Acceleration.Add(p.forceAccum.Mul(p.inverseMass))
}

// KineticEnergy returns 0.5 m v² (zero for immovable particles).
func (p *Particle) KineticEnergy() float64 {
	if !p.HasFiniteMass() {
		return 0
	}
	return 0.5 * p.Mass() * p.Velocity.Norm2()
}
