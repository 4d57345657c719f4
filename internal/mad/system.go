package mad

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/san-kum/massim/internal/dynamo"
)

// Ground is a horizontal plane that bodies cannot sink below.
type Ground struct {
	Height      float64
	Restitution float64
}

type binding struct {
	body      int
	generator ForceGenerator
}

// System steps a set of bodies: clear forces, apply generators in
// registration order, integrate, then clamp to the ground if one is set.
type System struct {
	bodies   []*Body
	bindings []binding
	ground   *Ground

	step int
	time float64
}

func NewSystem() *System {
	return &System{}
}

// AddBody registers b and returns its index.
func (s *System) AddBody(b *Body) int {
	s.bodies = append(s.bodies, b)
	return len(s.bodies) - 1
}

func (s *System) Bodies() []*Body { return s.bodies }

// AddForceGenerator binds g to a body previously added with AddBody.
func (s *System) AddForceGenerator(b *Body, g ForceGenerator) error {
	for i, known := range s.bodies {
		if known == b {
			s.bindings = append(s.bindings, binding{body: i, generator: g})
			return nil
		}
	}
	return fmt.Errorf("%w: force generator bound to an unregistered body", dynamo.ErrPreconditionViolated)
}

// SetGround enables the ground plane; nil disables it.
func (s *System) SetGround(g *Ground) { s.ground = g }

func (s *System) StartFrame() {
	for _, b := range s.bodies {
		b.ClearAccumulatedForces()
	}
}

// RunPhysics advances every body by dt. Forces must have been cleared by
// StartFrame.
func (s *System) RunPhysics(dt float64) {
	for _, bd := range s.bindings {
		bd.generator.UpdateForces(s.bodies[bd.body])
	}
	for _, b := range s.bodies {
		b.Integrate(dt)
	}
	if s.ground != nil {
		for _, b := range s.bodies {
			s.clampToGround(b)
		}
	}
}

func (s *System) clampToGround(b *Body) {
	for i := range b.positions {
		if !b.Movable(i) || b.positions[i].Y >= s.ground.Height {
			continue
		}
		b.positions[i].Y = s.ground.Height
		if v := b.velocities[i]; v.Y < 0 {
			b.velocities[i] = r3.Vector{X: v.X, Y: -v.Y * s.ground.Restitution, Z: v.Z}
		}
	}
}

// Step runs one frame and fails with ErrUnstable once any mass diverges.
func (s *System) Step(dt float64) error {
	s.StartFrame()
	s.RunPhysics(dt)
	s.step++
	s.time += dt

	for bi, b := range s.bodies {
		for i := range b.positions {
			if !dynamo.IsFinite(b.positions[i]) || !dynamo.IsFinite(b.velocities[i]) {
				return &dynamo.SimulationError{
					Step:    s.step,
					Time:    s.time,
					Wrapped: fmt.Errorf("%w: body %d mass %d is not finite", dynamo.ErrUnstable, bi, i),
				}
			}
		}
	}
	return nil
}

// Frame concatenates every body's valid masses. Spring links are remapped to
// frame indices.
func (s *System) Frame() dynamo.Frame {
	f := dynamo.Frame{Step: s.step, Time: s.time}
	for bi, b := range s.bodies {
		remap := make([]int, b.Len())
		for i := range remap {
			remap[i] = -1
			if !b.valid[i] {
				continue
			}
			remap[i] = len(f.Positions)
			f.Positions = append(f.Positions, b.positions[i])
			f.Velocities = append(f.Velocities, b.velocities[i])
			f.Masses = append(f.Masses, b.masses[i])
		}
		for _, bd := range s.bindings {
			sg, ok := bd.generator.(*SpringForceGenerator)
			if !ok || bd.body != bi {
				continue
			}
			for _, sp := range sg.springs {
				if remap[sp.A] >= 0 && remap[sp.B] >= 0 {
					f.Links = append(f.Links, dynamo.Link{A: remap[sp.A], B: remap[sp.B]})
				}
			}
		}
	}
	return f
}

// SpringEnergy sums the potential energy of every bound spring generator.
func (s *System) SpringEnergy() float64 {
	e := 0.0
	for _, bd := range s.bindings {
		if sg, ok := bd.generator.(*SpringForceGenerator); ok {
			e += sg.PotentialEnergy(s.bodies[bd.body])
		}
	}
	return e
}

// MaxStrain is the worst spring strain across every bound spring generator.
func (s *System) MaxStrain() float64 {
	worst := 0.0
	for _, bd := range s.bindings {
		if sg, ok := bd.generator.(*SpringForceGenerator); ok {
			worst = max(worst, sg.MaxStrain(s.bodies[bd.body]))
		}
	}
	return worst
}
