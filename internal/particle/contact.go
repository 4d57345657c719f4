package particle

import (
	"github.com/golang/geo/r3"
)

// Contact is a constraint violation between A and B, or between A and the
// scenery when B is None. Normal is the unit direction A must move to fix it
// and Penetration is positive while the constraint is violated.
type Contact struct {
	A, B        Handle
	Normal      r3.Vector
	Penetration float64
	Restitution float64
	// Rigid marks a two-sided constraint such as a rod. When a neighbouring
	// correction overshoots it, the contact flips its Normal instead of
	// going slack.
	Rigid bool

	// Movement records how far each particle was pushed by the last
	// interpenetration pass.
	Movement [2]r3.Vector
}

// ContactGenerator writes up to len(dst) contacts and returns how many it wrote.
// It must only read the arena: the world may ask it twice in one frame.
type ContactGenerator interface {
	AddContact(a *Arena, dst []Contact) int
}

func (c *Contact) hasB() bool { return c.B != None }

// SeparatingVelocity is positive when the particles move apart along Normal.
func (c *Contact) SeparatingVelocity(a *Arena) float64 {
	rel := a.Get(c.A).Velocity
	if c.hasB() {
		rel = rel.Sub(a.Get(c.B).Velocity)
	}
	return rel.Dot(c.Normal)
}

func (c *Contact) totalInverseMass(a *Arena) float64 {
	total := a.Get(c.A).InverseMass()
	if c.hasB() {
		total += a.Get(c.B).InverseMass()
	}
	return total
}

func (c *Contact) resolve(a *Arena, dt float64) {
	c.resolveVelocity(a, dt)
	c.resolveInterpenetration(a)
}

// resolveVelocity applies the impulse that turns the closing velocity into
// -Restitution times itself. Closing velocity built up by this frame's
// acceleration alone does not bounce, which keeps resting contacts still.
// That acceleration includes the accumulated force, so gravity applied
// through the registry counts too.
func (c *Contact) resolveVelocity(a *Arena, dt float64) {
	sepVel := c.SeparatingVelocity(a)
	if sepVel > 0 {
		return
	}

	newSepVel := -sepVel * c.Restitution

	accVel := a.Get(c.A).effectiveAcceleration()
	if c.hasB() {
		accVel = accVel.Sub(a.Get(c.B).effectiveAcceleration())
	}
	if accSepVel := accVel.Dot(c.Normal) * dt; accSepVel < 0 {
		newSepVel += c.Restitution * accSepVel
		if newSepVel < 0 {
			newSepVel = 0
		}
	}

	totalInverseMass := c.totalInverseMass(a)
	if totalInverseMass <= 0 {
		return
	}

	impulsePerIMass := c.Normal.Mul((newSepVel - sepVel) / totalInverseMass)

	pa := a.Get(c.A)
	pa.Velocity = pa.Velocity.Add(impulsePerIMass.Mul(pa.InverseMass()))
	if c.hasB() {
		pb := a.Get(c.B)
		pb.Velocity = pb.Velocity.Sub(impulsePerIMass.Mul(pb.InverseMass()))
	}
}

// resolveInterpenetration moves both particles along Normal in proportion to
// their inverse mass until Penetration is zero.
func (c *Contact) resolveInterpenetration(a *Arena) {
	c.Movement = [2]r3.Vector{}
	if c.Penetration <= 0 {
		return
	}

	totalInverseMass := c.totalInverseMass(a)
	if totalInverseMass <= 0 {
		return
	}

	movePerIMass := c.Normal.Mul(c.Penetration / totalInverseMass)

	pa := a.Get(c.A)
	c.Movement[0] = movePerIMass.Mul(pa.InverseMass())
	pa.Position = pa.Position.Add(c.Movement[0])

	if c.hasB() {
		pb := a.Get(c.B)
		c.Movement[1] = movePerIMass.Mul(-pb.InverseMass())
		pb.Position = pb.Position.Add(c.Movement[1])
	}
}
