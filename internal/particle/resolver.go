package particle

import "math"

// ContactResolver resolves contacts greedily, worst first.
type ContactResolver struct {
	iterations     int
	iterationsUsed int
}

func NewContactResolver(iterations int) *ContactResolver {
	return &ContactResolver{iterations: iterations}
}

func (r *ContactResolver) SetIterations(iterations int) { r.iterations = iterations }

func (r *ContactResolver) Iterations() int { return r.iterations }

// IterationsUsed reports how many contacts the last call resolved.
func (r *ContactResolver) IterationsUsed() int { return r.iterationsUsed }

// ResolveContacts runs at most Iterations passes. Each pass picks the contact
// with the lowest separating velocity among those that are closing or
// interpenetrating (ties go to the deeper one), resolves it, and corrects the
// cached penetration of every contact sharing a particle with it. It stops
// early once nothing is closing or interpenetrating.
func (r *ContactResolver) ResolveContacts(a *Arena, contacts []Contact, dt float64) {
	r.iterationsUsed = 0
	for r.iterationsUsed < r.iterations {
		best := -1
		bestSepVel := math.MaxFloat64
		for i := range contacts {
			c := &contacts[i]
			sepVel := c.SeparatingVelocity(a)
			if sepVel >= 0 && c.Penetration <= 0 {
				continue
			}
			if c.totalInverseMass(a) <= 0 {
				continue
			}
			if sepVel < bestSepVel || (sepVel == bestSepVel && best >= 0 && c.Penetration > contacts[best].Penetration) {
				bestSepVel = sepVel
				best = i
			}
		}
		if best < 0 {
			break
		}

		resolved := &contacts[best]
		resolved.resolve(a, dt)
		propagateMovement(contacts, best)

		r.iterationsUsed++
	}
}

// propagateMovement updates penetrations after contacts[resolved] moved its
// particles. A rigid contact pushed past zero now violates its constraint the
// other way, so it is turned around and stays eligible.
func propagateMovement(contacts []Contact, resolved int) {
	src := contacts[resolved]
	if src.Penetration > 0 {
		contacts[resolved].Penetration = 0
	}
	for i := range contacts {
		if i == resolved {
			continue
		}
		c := &contacts[i]
		for k, moved := range [2]Handle{src.A, src.B} {
			if moved == None {
				continue
			}
			if c.A == moved {
				c.Penetration -= src.Movement[k].Dot(c.Normal)
			}
			if c.B == moved {
				c.Penetration += src.Movement[k].Dot(c.Normal)
			}
		}
		if c.Rigid && c.Penetration < 0 {
			c.Normal = c.Normal.Mul(-1)
			c.Penetration = -c.Penetration
		}
	}
}
