package particle

import (
	"fmt"

	"github.com/san-kum/massim/internal/dynamo"
)

// registration pairs a particle with a force generator.
type registration struct {
	particle  Handle
	generator ForceGenerator
}

// ForceRegistry holds particle/generator pairs and evaluates them in the order
// they were added.
type ForceRegistry struct {
	registrations []registration
}

func NewForceRegistry() *ForceRegistry {
	return &ForceRegistry{registrations: make([]registration, 0)}
}

// Add registers fg to act on h, a particle of a. Duplicate pairs are allowed
// and act twice.
func (r *ForceRegistry) Add(a *Arena, h Handle, fg ForceGenerator) error {
	if err := a.check(h); err != nil {
		return err
	}
	if fg == nil {
		return fmt.Errorf("%w: nil force generator", dynamo.ErrInvalidArgument)
	}
	r.registrations = append(r.registrations, registration{particle: h, generator: fg})
	return nil
}

// Remove drops the first registration of the pair and reports whether one existed.
func (r *ForceRegistry) Remove(h Handle, fg ForceGenerator) bool {
	for i, reg := range r.registrations {
		if reg.particle == h && reg.generator == fg {
			r.registrations = append(r.registrations[:i], r.registrations[i+1:]...)
			return true
		}
	}
	return false
}

// Clear removes every registration; generators and particles are untouched.
func (r *ForceRegistry) Clear() { r.registrations = r.registrations[:0] }

func (r *ForceRegistry) Len() int { return len(r.registrations) }

// UpdateForces calls every generator on its particle.
func (r *ForceRegistry) UpdateForces(a *Arena, dt float64) {
	for _, reg := range r.registrations {
		reg.generator.UpdateForce(a, reg.particle, dt)
	}
}
