package particle

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/san-kum/massim/internal/dynamo"
)

func mustParticle(t *testing.T, pos r3.Vector, mass float64) Particle {
	t.Helper()
	p, err := New(pos, mass, 1)
	if err != nil {
		t.Fatalf("new particle: %v", err)
	}
	return p
}

func TestIntegrateDamping(t *testing.T) {
	tests := []struct {
		damping float64
		steps   int
		dt      float64
	}{
		{0.9, 10, 0.1},
		{0.5, 4, 0.25},
		{0.99, 100, 1.0 / 60},
		{1.0, 7, 0.3},
	}

	for _, tt := range tests {
		p, err := New(r3.Vector{}, 1, tt.damping)
		if err != nil {
			t.Fatalf("new particle: %v", err)
		}
		p.Velocity = r3.Vector{X: 2, Y: -1}
		for i := 0; i < tt.steps; i++ {
			p.Integrate(tt.dt)
		}

		scale := math.Pow(tt.damping, float64(tt.steps)*tt.dt)
		want := r3.Vector{X: 2, Y: -1}.Mul(scale)
		if p.Velocity.Sub(want).Norm() > 1e-9 {
			t.Errorf("damping %g: velocity %v, want %v", tt.damping, p.Velocity, want)
		}
	}
}

func TestIntegrateUsesForceAndKeepsAccumulator(t *testing.T) {
	p := mustParticle(t, r3.Vector{}, 2)
	p.AddForce(r3.Vector{X: 4})
	p.Integrate(0.5)

	if !dynamo.VecEq(p.Velocity, r3.Vector{X: 1}) {
		t.Errorf("velocity %v, want (1,0,0)", p.Velocity)
	}
	if !dynamo.VecEq(p.Position, r3.Vector{}) {
		t.Errorf("position should move with the old velocity, got %v", p.Position)
	}
	if !dynamo.VecEq(p.AccumulatedForce(), r3.Vector{X: 4}) {
		t.Errorf("integrate must not clear the accumulator, got %v", p.AccumulatedForce())
	}
}

func TestIntegrateZeroDt(t *testing.T) {
	p := mustParticle(t, r3.Vector{X: 1, Y: 2, Z: 3}, 1)
	p.Velocity = r3.Vector{X: 5}
	p.Acceleration = r3.Vector{Y: -10}
	p.Integrate(0)

	if p.Position != (r3.Vector{X: 1, Y: 2, Z: 3}) {
		t.Errorf("position changed at dt=0: %v", p.Position)
	}
	if p.Velocity != (r3.Vector{X: 5}) {
		t.Errorf("velocity changed at dt=0: %v", p.Velocity)
	}
}

func TestImmovableParticle(t *testing.T) {
	p := NewImmovable(r3.Vector{Y: 3})
	p.Velocity = r3.Vector{X: 1}
	p.Acceleration = r3.Vector{Y: -10}
	p.Integrate(1)

	if p.Position != (r3.Vector{Y: 3}) {
		t.Errorf("immovable particle moved to %v", p.Position)
	}
	if !math.IsInf(p.Mass(), 1) {
		t.Errorf("expected infinite mass, got %g", p.Mass())
	}
	if p.KineticEnergy() != 0 {
		t.Errorf("immovable particle should report no kinetic energy")
	}
}

func TestMassPreconditions(t *testing.T) {
	for _, mass := range []float64{0, -1, 1e-9} {
		if _, err := New(r3.Vector{}, mass, 1); !errors.Is(err, dynamo.ErrInvalidArgument) {
			t.Errorf("mass %g: expected ErrInvalidArgument, got %v", mass, err)
		}
	}
	for _, damping := range []float64{0, -0.5, 1.5} {
		if _, err := New(r3.Vector{}, 1, damping); !errors.Is(err, dynamo.ErrInvalidArgument) {
			t.Errorf("damping %g: expected ErrInvalidArgument, got %v", damping, err)
		}
	}

	p := mustParticle(t, r3.Vector{}, 4)
	if err := p.SetMass(0); err == nil {
		t.Error("SetMass(0) should fail")
	}
	if p.InverseMass() != 0.25 {
		t.Errorf("failed SetMass must not change inverse mass, got %g", p.InverseMass())
	}
	if err := p.SetInverseMass(-1); err == nil {
		t.Error("negative inverse mass should fail")
	}
}

func TestForceGenerators(t *testing.T) {
	a := NewArena()
	origin := a.Add(NewImmovable(r3.Vector{}))
	spring := func(k, rest float64) ForceGenerator {
		s, err := NewSpring(a, origin, k, rest)
		if err != nil {
			t.Fatal(err)
		}
		return s
	}
	bungee := func(k, rest float64) ForceGenerator {
		b, err := NewBungee(a, origin, k, rest)
		if err != nil {
			t.Fatal(err)
		}
		return b
	}

	tests := []struct {
		name string
		pos  r3.Vector
		vel  r3.Vector
		mass float64
		gen  ForceGenerator
		want r3.Vector
	}{
		{"gravity", r3.Vector{}, r3.Vector{}, 2, NewGravity(r3.Vector{Y: -10}), r3.Vector{Y: -20}},
		{"drag", r3.Vector{}, r3.Vector{X: 2}, 1, NewDrag(1, 0.5), r3.Vector{X: -4}},
		{"drag at rest", r3.Vector{}, r3.Vector{}, 1, NewDrag(1, 0.5), r3.Vector{}},
		{"spring stretched", r3.Vector{X: 2}, r3.Vector{}, 1, spring(10, 1), r3.Vector{X: -10}},
		{"spring compressed", r3.Vector{X: 0.5}, r3.Vector{}, 1, spring(10, 1), r3.Vector{X: 5}},
		{"spring degenerate", r3.Vector{}, r3.Vector{}, 1, spring(10, 1), r3.Vector{}},
		{"bungee stretched", r3.Vector{Y: 3}, r3.Vector{}, 1, bungee(2, 1), r3.Vector{Y: -4}},
		{"bungee slack", r3.Vector{Y: 0.5}, r3.Vector{}, 1, bungee(2, 1), r3.Vector{}},
	}

	for _, tt := range tests {
		p := mustParticle(t, tt.pos, tt.mass)
		p.Velocity = tt.vel
		h := a.Add(p)
		tt.gen.UpdateForce(a, h, 0.01)
		if got := a.Get(h).AccumulatedForce(); !dynamo.VecEq(got, tt.want) {
			t.Errorf("%s: force %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestForceConstructorsRejectUnknownHandles(t *testing.T) {
	a := NewArena()
	h := a.Add(mustParticle(t, r3.Vector{}, 1))

	if _, err := NewSpring(a, None, 1, 1); !errors.Is(err, dynamo.ErrInvalidArgument) {
		t.Errorf("spring to None: got %v", err)
	}
	if _, err := NewBungee(a, Handle(7), 1, 1); !errors.Is(err, dynamo.ErrInvalidArgument) {
		t.Errorf("bungee to stale handle: got %v", err)
	}

	r := NewForceRegistry()
	if err := r.Add(a, Handle(3), NewGravity(r3.Vector{Y: -1})); !errors.Is(err, dynamo.ErrInvalidArgument) {
		t.Errorf("register unknown particle: got %v", err)
	}
	if err := r.Add(a, h, nil); !errors.Is(err, dynamo.ErrInvalidArgument) {
		t.Errorf("register nil generator: got %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("failed registrations were stored: %d", r.Len())
	}
}

func TestGravitySkipsImmovable(t *testing.T) {
	a := NewArena()
	h := a.Add(NewImmovable(r3.Vector{}))
	NewGravity(r3.Vector{Y: -10}).UpdateForce(a, h, 0.1)
	if f := a.Get(h).AccumulatedForce(); f != (r3.Vector{}) {
		t.Errorf("immovable particle received %v", f)
	}
}

func TestAnchoredGenerators(t *testing.T) {
	if _, err := NewAnchoredSpring(nil, 1, 1); !errors.Is(err, dynamo.ErrInvalidArgument) {
		t.Errorf("nil anchor spring: got %v", err)
	}
	if _, err := NewAnchoredBungee(nil, 1, 1); !errors.Is(err, dynamo.ErrInvalidArgument) {
		t.Errorf("nil anchor bungee: got %v", err)
	}

	anchor := r3.Vector{Y: 5}
	s, err := NewAnchoredSpring(&anchor, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	a := NewArena()
	h := a.Add(mustParticle(t, r3.Vector{}, 1))

	s.UpdateForce(a, h, 0.01)
	if got := a.Get(h).AccumulatedForce(); !dynamo.VecEq(got, r3.Vector{Y: 9}) {
		t.Errorf("anchored spring force %v, want (0,9,0)", got)
	}

	a.Get(h).ClearAccumulator()
	s.SetAnchor(r3.Vector{Y: 1})
	if anchor != (r3.Vector{Y: 1}) {
		t.Errorf("SetAnchor should move the shared anchor, got %v", anchor)
	}
	s.UpdateForce(a, h, 0.01)
	if got := a.Get(h).AccumulatedForce(); !dynamo.VecEq(got, r3.Vector{Y: -3}) {
		t.Errorf("compressed anchored spring force %v, want (0,-3,0)", got)
	}

	b, err := NewAnchoredBungee(&anchor, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	a.Get(h).ClearAccumulator()
	b.UpdateForce(a, h, 0.01)
	if got := a.Get(h).AccumulatedForce(); got != (r3.Vector{}) {
		t.Errorf("slack anchored bungee force %v, want zero", got)
	}
}

func TestBuoyancy(t *testing.T) {
	if _, err := NewBuoyancy(0, 1, 0, 1000); !errors.Is(err, dynamo.ErrInvalidArgument) {
		t.Errorf("zero max depth: got %v", err)
	}

	b, err := NewBuoyancy(1, 2, 0, 1000)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		y    float64
		want float64
	}{
		{2, 0},
		{1, 0},
		{0.5, 500},
		{0, 1000},
		{-1, 2000},
		{-3, 2000},
	}
	for _, tt := range tests {
		if got := b.Force(tt.y).Y; math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("y=%g: force %g, want %g", tt.y, got, tt.want)
		}
	}
}

func TestForceRegistryOrder(t *testing.T) {
	a := NewArena()
	h := a.Add(mustParticle(t, r3.Vector{}, 1))
	r := NewForceRegistry()
	g := NewGravity(r3.Vector{Y: -1})

	for i := 0; i < 2; i++ {
		if err := r.Add(a, h, g); err != nil {
			t.Fatal(err)
		}
	}
	if r.Len() != 2 {
		t.Fatalf("expected 2 registrations, got %d", r.Len())
	}
	r.UpdateForces(a, 0.1)
	if got := a.Get(h).AccumulatedForce(); !dynamo.VecEq(got, r3.Vector{Y: -2}) {
		t.Errorf("force %v, want (0,-2,0)", got)
	}

	if !r.Remove(h, g) {
		t.Error("remove should find the pair")
	}
	if r.Len() != 1 {
		t.Errorf("expected 1 registration after remove, got %d", r.Len())
	}
	r.Clear()
	if r.Len() != 0 {
		t.Errorf("expected empty registry, got %d", r.Len())
	}
}

func BenchmarkWorldChainStep(b *testing.B) {
	w, err := NewWorld(256, 0)
	if err != nil {
		b.Fatal(err)
	}
	gravity := NewGravity(r3.Vector{Y: -9.81})
	ground := NewGroundContactGenerator(0.2)

	var prev Handle
	for i := 0; i < 32; i++ {
		p, err := New(r3.Vector{X: float64(i), Y: 5}, 1, 0.99)
		if err != nil {
			b.Fatal(err)
		}
		h := w.Arena().Add(p)
		if err := w.Registry().Add(w.Arena(), h, gravity); err != nil {
			b.Fatal(err)
		}
		if err := ground.Track(w.Arena(), h); err != nil {
			b.Fatal(err)
		}
		if i > 0 {
			rod, err := NewRod(w.Arena(), prev, h, 1)
			if err != nil {
				b.Fatal(err)
			}
			w.AddContactGenerator(rod)
		}
		prev = h
	}
	w.AddContactGenerator(ground)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := w.Step(0.01); err != nil {
			b.Fatal(err)
		}
	}
}
