package mad

import (
	"github.com/golang/geo/r3"
	"github.com/san-kum/massim/internal/dynamo"
)

// ForceGenerator adds forces to every mass of a body at once.
type ForceGenerator interface {
	UpdateForces(b *Body)
}

// Gravity pulls every movable mass with acceleration G.
type Gravity struct {
	G r3.Vector
}

func (g Gravity) UpdateForces(b *Body) {
	for i := range b.masses {
		if b.Movable(i) {
			b.forces[i] = b.forces[i].Add(g.G.Mul(b.masses[i]))
		}
	}
}

// Drag opposes each mass's velocity with K1|v| + K2|v|².
type Drag struct {
	K1, K2 float64
}

func (d Drag) UpdateForces(b *Body) {
	for i, v := range b.velocities {
		speed := v.Norm()
		if speed < dynamo.Epsilon || !b.valid[i] {
			continue
		}
		b.forces[i] = b.forces[i].Sub(v.Mul((d.K1*speed + d.K2*speed*speed) / speed))
	}
}
