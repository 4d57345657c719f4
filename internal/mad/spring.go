package mad

import (
	"math"

	"github.com/san-kum/massim/internal/dynamo"
)

// Stretch clamp bounds, as fractions of the rest length.
const (
	MinStretch = 0.8
	MaxStretch = 1.5
)

// SpringCoefficients holds the stiffness and damping shared by one spring family.
type SpringCoefficients struct {
	Stiffness float64
	Damping   float64
}

// Spring joins masses A and B of a body. The pair is unordered.
type Spring struct {
	A, B       int
	RestLength float64
	Stiffness  float64
	Damping    float64
}

type springKey struct{ lo, hi int }

func keyOf(a, b int) springKey {
	if a > b {
		a, b = b, a
	}
	return springKey{a, b}
}

// SpringForceGenerator applies every stored spring to both of its ends.
type SpringForceGenerator struct {
	springs []Spring
	index   map[springKey]int

	// ClampStretch limits the length fed to Hooke's law to
	// [MinStretch, MaxStretch] times the rest length.
	ClampStretch bool
}

func NewSpringForceGenerator(clampStretch bool) *SpringForceGenerator {
	return &SpringForceGenerator{
		index:        make(map[springKey]int),
		ClampStretch: clampStretch,
	}
}

// AddSpring stores s unless it joins a mass to itself or the pair already has
// a spring in either order. It reports whether s was stored.
func (g *SpringForceGenerator) AddSpring(s Spring) bool {
	if s.A == s.B {
		return false
	}
	k := keyOf(s.A, s.B)
	if _, ok := g.index[k]; ok {
		return false
	}
	g.index[k] = len(g.springs)
	g.springs = append(g.springs, s)
	return true
}

// Has reports whether a spring joins a and b.
func (g *SpringForceGenerator) Has(a, b int) bool {
	_, ok := g.index[keyOf(a, b)]
	return ok
}

func (g *SpringForceGenerator) Len() int { return len(g.springs) }

// Springs returns the stored springs in insertion order.
func (g *SpringForceGenerator) Springs() []Spring { return g.springs }

// Links returns every spring as an index pair.
func (g *SpringForceGenerator) Links() []dynamo.Link {
	links := make([]dynamo.Link, len(g.springs))
	for i, s := range g.springs {
		links[i] = dynamo.Link{A: s.A, B: s.B}
	}
	return links
}

func (g *SpringForceGenerator) effectiveLength(length, rest float64) float64 {
	if !g.ClampStretch {
		return length
	}
	return math.Min(math.Max(length, MinStretch*rest), MaxStretch*rest)
}

// UpdateForces accumulates spring and damping forces into b.
func (g *SpringForceGenerator) UpdateForces(b *Body) {
	for _, s := range g.springs {
		d := b.positions[s.A].Sub(b.positions[s.B])
		length := d.Norm()
		if length < dynamo.Epsilon {
			continue
		}
		dir := d.Mul(1 / length)

		stretch := g.effectiveLength(length, s.RestLength) - s.RestLength
		f := dir.Mul(-s.Stiffness * stretch)

		relVel := b.velocities[s.A].Sub(b.velocities[s.B])
		f = f.Sub(dir.Mul(s.Damping * relVel.Dot(dir)))

		b.forces[s.A] = b.forces[s.A].Add(f)
		b.forces[s.B] = b.forces[s.B].Sub(f)
	}
}

// PotentialEnergy sums 0.5 k x² over every spring.
func (g *SpringForceGenerator) PotentialEnergy(b *Body) float64 {
	e := 0.0
	for _, s := range g.springs {
		x := b.positions[s.A].Distance(b.positions[s.B]) - s.RestLength
		e += 0.5 * s.Stiffness * x * x
	}
	return e
}

// MaxStrain returns the largest |length - rest| / rest over every spring.
func (g *SpringForceGenerator) MaxStrain(b *Body) float64 {
	worst := 0.0
	for _, s := range g.springs {
		if s.RestLength < dynamo.Epsilon {
			continue
		}
		strain := math.Abs(b.positions[s.A].Distance(b.positions[s.B])-s.RestLength) / s.RestLength
		worst = math.Max(worst, strain)
	}
	return worst
}

// connect adds a spring between a and b with its rest length taken from
// their current positions.
func (g *SpringForceGenerator) connect(b *Body, i, j int, c SpringCoefficients) bool {
	return g.AddSpring(Spring{
		A:          i,
		B:          j,
		RestLength: b.positions[i].Distance(b.positions[j]),
		Stiffness:  c.Stiffness,
		Damping:    c.Damping,
	})
}
