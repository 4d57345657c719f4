package particle

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/san-kum/massim/internal/dynamo"
)

// World owns an arena, its force registry and contact generators, and runs
// the per-frame pipeline over them.
type World struct {
	arena      *Arena
	registry   *ForceRegistry
	generators []ContactGenerator
	resolver   *ContactResolver

	contacts       []Contact
	lastContacts   int
	overflowed     bool
	spare          []Contact
	autoIterations bool

	step int
	time float64
}

// NewWorld sizes the contact buffer to maxContacts. An iterations value of
// zero selects auto iterations: twice the number of contacts each frame.
func NewWorld(maxContacts, iterations int) (*World, error) {
	if maxContacts <= 0 {
		return nil, fmt.Errorf("%w: max contacts %d must be positive", dynamo.ErrInvalidArgument, maxContacts)
	}
	if iterations < 0 {
		return nil, fmt.Errorf("%w: iterations %d is negative", dynamo.ErrInvalidArgument, iterations)
	}
	return &World{
		arena:          NewArena(),
		registry:       NewForceRegistry(),
		resolver:       NewContactResolver(iterations),
		contacts:       make([]Contact, maxContacts),
		autoIterations: iterations == 0,
	}, nil
}

func (w *World) Arena() *Arena { return w.arena }

func (w *World) Registry() *ForceRegistry { return w.registry }

func (w *World) Resolver() *ContactResolver { return w.resolver }

// AddContactGenerator appends g; generators run in registration order.
func (w *World) AddContactGenerator(g ContactGenerator) {
	w.generators = append(w.generators, g)
}

func (w *World) AutoIterations() bool { return w.autoIterations }

func (w *World) MaxContacts() int { return len(w.contacts) }

// StartFrame clears every particle's force accumulator.
func (w *World) StartFrame() {
	w.arena.Each(func(_ Handle, p *Particle) { p.ClearAccumulator() })
}

// Integrate advances every particle by dt.
func (w *World) Integrate(dt float64) {
	w.arena.Each(func(_ Handle, p *Particle) { p.Integrate(dt) })
}

// GenerateContacts fills the contact buffer from every generator and returns
// how many contacts were written. Once the buffer is full, generators are only
// asked into a scratch buffer to learn whether a contact had to be dropped.
func (w *World) GenerateContacts() int {
	used := 0
	w.overflowed = false
	for _, g := range w.generators {
		free := len(w.contacts) - used
		if free == 0 {
			if g.AddContact(w.arena, w.scratch(1)) > 0 {
				w.overflowed = true
				break
			}
			continue
		}
		n := g.AddContact(w.arena, w.contacts[used:])
		used += n
		if n == free && g.AddContact(w.arena, w.scratch(free+1)) > free {
			w.overflowed = true
			break
		}
	}
	w.lastContacts = used
	return used
}

func (w *World) scratch(n int) []Contact {
	if cap(w.spare) < n {
		w.spare = make([]Contact, n)
	}
	return w.spare[:n]
}

// Contacts returns the contacts generated by the last frame.
func (w *World) Contacts() []Contact { return w.contacts[:w.lastContacts] }

// CapacityExceeded reports whether the last frame dropped at least one
// contact because the buffer was full. A buffer filled exactly does not count.
func (w *World) CapacityExceeded() bool { return w.overflowed }

// RunPhysics applies forces, integrates, and resolves contacts. It returns the
// number of contacts generated this frame.
func (w *World) RunPhysics(dt float64) int {
	w.registry.UpdateForces(w.arena, dt)
	w.Integrate(dt)

	used := w.GenerateContacts()
	if used > 0 {
		if w.autoIterations {
			w.resolver.SetIterations(2 * used)
		}
		w.resolver.ResolveContacts(w.arena, w.contacts[:used], dt)
	}
	return used
}

// Step runs one full frame and checks the result for blow-up.
func (w *World) Step(dt float64) error {
	w.StartFrame()
	w.RunPhysics(dt)
	w.step++
	w.time += dt

	var err error
	w.arena.Each(func(h Handle, p *Particle) {
		if err == nil && (!dynamo.IsFinite(p.Position) || !dynamo.IsFinite(p.Velocity)) {
			err = &dynamo.SimulationError{
				Step:    w.step,
				Time:    w.time,
				Wrapped: fmt.Errorf("%w: particle %d is not finite", dynamo.ErrUnstable, h),
			}
		}
	})
	return err
}

// Links collects the particle pairs joined by cables and rods.
func (w *World) Links() []dynamo.Link {
	var links []dynamo.Link
	for _, g := range w.generators {
		switch l := g.(type) {
		case *Cable:
			links = append(links, dynamo.Link{A: int(l.A), B: int(l.B)})
		case *Rod:
			links = append(links, dynamo.Link{A: int(l.A), B: int(l.B)})
		}
	}
	return links
}

// Frame snapshots the world for metrics and rendering.
func (w *World) Frame() dynamo.Frame {
	f := dynamo.Frame{
		Step:       w.step,
		Time:       w.time,
		Positions:  make([]r3.Vector, 0, w.arena.Len()),
		Velocities: make([]r3.Vector, 0, w.arena.Len()),
		Masses:     make([]float64, 0, w.arena.Len()),
		Links:      w.Links(),
	}
	w.arena.Each(func(_ Handle, p *Particle) {
		f.Positions = append(f.Positions, p.Position)
		f.Velocities = append(f.Velocities, p.Velocity)
		f.Masses = append(f.Masses, p.Mass())
	})
	return f
}
