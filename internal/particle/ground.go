package particle

import (
	"github.com/golang/geo/r3"
	"github.com/san-kum/massim/internal/dynamo"
)

// DefaultGroundRestitution is used when the configuration does not name one.
const DefaultGroundRestitution = 0.2

// GroundContactGenerator keeps registered particles above the plane y == Height.
type GroundContactGenerator struct {
	particles   []Handle
	Height      float64
	Restitution float64
}

func NewGroundContactGenerator(restitution float64) *GroundContactGenerator {
	return &GroundContactGenerator{Restitution: restitution}
}

// Track adds particles to the set checked against the ground.
func (g *GroundContactGenerator) Track(a *Arena, handles ...Handle) error {
	if err := a.check(handles...); err != nil {
		return err
	}
	g.particles = append(g.particles, handles...)
	return nil
}

func (g *GroundContactGenerator) Tracked() []Handle { return g.particles }

func (g *GroundContactGenerator) AddContact(a *Arena, dst []Contact) int {
	used := 0
	for _, h := range g.particles {
		if used >= len(dst) {
			break
		}
		y := a.Get(h).Position.Y
		if y >= g.Height+dynamo.Epsilon {
			continue
		}
		dst[used] = Contact{
			A:           h,
			B:           None,
			Normal:      r3.Vector{Y: 1},
			Penetration: g.Height - y,
			Restitution: g.Restitution,
		}
		used++
	}
	return used
}
