package particle

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/san-kum/massim/internal/dynamo"
)

// Handle is a stable index into an Arena.
type Handle int

// None marks an absent second particle, for example in a ground contact.
const None Handle = -1

// Arena owns particles. Handles stay valid for the arena's lifetime.
type Arena struct {
	particles []Particle
}

func NewArena() *Arena {
	return &Arena{particles: make([]Particle, 0)}
}

// Add stores p and returns its handle.
func (a *Arena) Add(p Particle) Handle {
	a.particles = append(a.particles, p)
	return Handle(len(a.particles) - 1)
}

// Get returns the particle for h. It panics on a foreign or None handle just
// like an out-of-range slice index.
func (a *Arena) Get(h Handle) *Particle {
	return &a.particles[h]
}

// Valid reports whether h refers to a particle in this arena.
func (a *Arena) Valid(h Handle) bool {
	return h >= 0 && int(h) < len(a.particles)
}

func (a *Arena) Len() int { return len(a.particles) }

// Each calls fn for every particle in handle order.
func (a *Arena) Each(fn func(h Handle, p *Particle)) {
	for i := range a.particles {
		fn(Handle(i), &a.particles[i])
	}
}

// Positions copies every particle position in handle order.
func (a *Arena) Positions() []r3.Vector {
	out := make([]r3.Vector, len(a.particles))
	for i := range a.particles {
		out[i] = a.particles[i].Position
	}
	return out
}

func (a *Arena) check(handles ...Handle) error {
	for _, h := range handles {
		if !a.Valid(h) {
			return fmt.Errorf("%w: unknown particle handle %d", dynamo.ErrInvalidArgument, h)
		}
	}
	return nil
}
