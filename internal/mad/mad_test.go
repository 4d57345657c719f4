package mad

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/san-kum/massim/internal/dynamo"
	"github.com/san-kum/massim/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitVolumeSpec() VolumeSpec {
	return VolumeSpec{
		Mass:       1,
		Scale:      1,
		Resolution: Resolution{Cols: 3, Rows: 3, Slices: 3},
		Damping:    0.99,
		Structural: SpringCoefficients{Stiffness: 100, Damping: 1},
		Shear:      SpringCoefficients{Stiffness: 50, Damping: 1},
		Flexion:    SpringCoefficients{Stiffness: 25, Damping: 1},
	}
}

func TestIndexRoundTrip(t *testing.T) {
	for _, res := range []Resolution{{3, 3, 3}, {4, 2, 5}, {1, 1, 7}, {6, 1, 1}} {
		spec := unitVolumeSpec()
		spec.Resolution = res
		v, err := NewVolume(spec)
		require.NoError(t, err)

		seen := make(map[int]bool)
		for slice := 0; slice < res.Slices; slice++ {
			for row := 0; row < res.Rows; row++ {
				for col := 0; col < res.Cols; col++ {
					idx := v.Index(row, col, slice)
					assert.Equal(t, col+res.Cols*(row+res.Rows*slice), idx)
					r, c, s, ok := v.LocalCoordinates(idx)
					require.True(t, ok)
					assert.Equal(t, [3]int{row, col, slice}, [3]int{r, c, s})
					seen[idx] = true
				}
			}
		}
		assert.Len(t, seen, res.Count())
	}
}

func TestIndexOutOfRange(t *testing.T) {
	v, err := NewVolume(unitVolumeSpec())
	require.NoError(t, err)

	assert.Equal(t, -1, v.Index(3, 0, 0))
	assert.Equal(t, -1, v.Index(0, -1, 0))
	_, _, _, ok := v.LocalCoordinates(27)
	assert.False(t, ok)
	_, err = v.PositionAt(0, 0, 5)
	assert.ErrorIs(t, err, dynamo.ErrInvalidArgument)
}

func TestVolumeEndToEnd(t *testing.T) {
	v, err := NewVolume(unitVolumeSpec())
	require.NoError(t, err)

	center, err := v.PositionAt(1, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, r3.Vector{}, center)

	corner, err := v.PositionAt(0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, r3.Vector{X: -1, Y: -1, Z: -1}, corner)

	assert.Len(t, v.StructuralSprings(), 54)
	assert.Len(t, v.FlexionSprings(), 27)
	assert.Len(t, v.ShearSprings(), 72)
	assert.Equal(t, 153, v.Springs.Len())

	sys := NewSystem()
	sys.AddBody(v.Body)
	require.NoError(t, sys.AddForceGenerator(v.Body, v.Springs))
	require.NoError(t, sys.AddForceGenerator(v.Body, Gravity{G: r3.Vector{Y: -9.81}}))

	before := v.Positions()
	require.NoError(t, sys.Step(0))
	assert.Equal(t, before, v.Positions())
}

func TestRestLengthsMatchLayout(t *testing.T) {
	spec := unitVolumeSpec()
	spec.Scale = 0.5
	spec.Center = r3.Vector{X: 3, Y: -2, Z: 1}
	v, err := NewVolume(spec)
	require.NoError(t, err)

	for _, s := range v.Springs.Springs() {
		assert.InDelta(t, v.Position(s.A).Distance(v.Position(s.B)), s.RestLength, 1e-12)
	}

	v.Springs.UpdateForces(v.Body)
	for i := 0; i < v.Len(); i++ {
		assert.InDelta(t, 0, v.Force(i).Norm(), 1e-9, "mass %d", i)
	}
}

func TestVolumePreconditions(t *testing.T) {
	spec := unitVolumeSpec()
	spec.Resolution.Rows = 0
	_, err := NewVolume(spec)
	assert.ErrorIs(t, err, dynamo.ErrInvalidArgument)

	spec = unitVolumeSpec()
	spec.Mass = 0
	_, err = NewVolume(spec)
	assert.ErrorIs(t, err, dynamo.ErrInvalidArgument)

	spec = unitVolumeSpec()
	spec.Scale = -1
	_, err = NewVolume(spec)
	assert.ErrorIs(t, err, dynamo.ErrInvalidArgument)
}

func TestSpringSymmetry(t *testing.T) {
	g := NewSpringForceGenerator(true)

	assert.True(t, g.AddSpring(Spring{A: 0, B: 1, RestLength: 1, Stiffness: 10}))
	assert.False(t, g.AddSpring(Spring{A: 1, B: 0, RestLength: 2, Stiffness: 5}))
	assert.False(t, g.AddSpring(Spring{A: 2, B: 2}))
	assert.Equal(t, 1, g.Len())
	assert.True(t, g.Has(1, 0))
	assert.Equal(t, 1.0, g.Springs()[0].RestLength)
}

func twoMasses(t *testing.T, distance float64) *Body {
	t.Helper()
	b, err := NewBody(2, 1, 1)
	require.NoError(t, err)
	b.SetPosition(1, r3.Vector{X: distance})
	return b
}

func TestSpringForces(t *testing.T) {
	tests := []struct {
		name   string
		dist   float64
		clamp  bool
		wantFx float64
	}{
		{"stretched", 3, false, 20},
		{"stretched clamped", 3, true, 5},
		{"compressed", 0.5, false, -5},
		{"compressed clamped", 0.5, true, -2},
		{"at rest", 1, true, 0},
	}

	for _, tt := range tests {
		b := twoMasses(t, tt.dist)
		g := NewSpringForceGenerator(tt.clamp)
		g.AddSpring(Spring{A: 0, B: 1, RestLength: 1, Stiffness: 10})
		g.UpdateForces(b)

		assert.InDelta(t, tt.wantFx, b.Force(0).X, 1e-9, tt.name)
		assert.Equal(t, b.Force(0).Mul(-1), b.Force(1), tt.name)
	}
}

func TestSpringDamping(t *testing.T) {
	b := twoMasses(t, 1)
	b.SetVelocity(1, r3.Vector{X: 2})
	g := NewSpringForceGenerator(false)
	g.AddSpring(Spring{A: 0, B: 1, RestLength: 1, Stiffness: 10, Damping: 0.5})
	g.UpdateForces(b)

	// Separating ends are pulled back together.
	assert.InDelta(t, 1, b.Force(0).X, 1e-9)
	assert.InDelta(t, -1, b.Force(1).X, 1e-9)
}

func TestBodyIntegrate(t *testing.T) {
	b, err := NewBody(3, 2, 0.5)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		b.SetVelocity(i, r3.Vector{Y: 1})
	}
	b.SetFixed(1, true)
	b.SetValid(2, false)
	b.SetVelocity(2, r3.Vector{Y: 1})

	b.AddForce(0, r3.Vector{X: 4})
	b.Integrate(1)

	assert.Equal(t, r3.Vector{Y: 1}, b.Position(0))
	assert.InDelta(t, 1, b.Velocity(0).X, 1e-12)
	assert.InDelta(t, 0.5, b.Velocity(0).Y, 1e-12)
	assert.Equal(t, r3.Vector{X: 4}, b.Force(0), "integrate keeps the accumulator")

	assert.Equal(t, r3.Vector{}, b.Position(1), "fixed mass must not move")
	assert.Equal(t, r3.Vector{}, b.Position(2), "invalid mass must not move")
	assert.Equal(t, 2, b.ValidCount())
	assert.Equal(t, 0.0, b.Mass(2))
}

func TestClearAccumulatedForcesLargeBody(t *testing.T) {
	b, err := NewBody(5000, 1, 1)
	require.NoError(t, err)
	for i := 0; i < b.Len(); i++ {
		b.AddForce(i, r3.Vector{X: float64(i), Z: 1})
	}
	b.ClearAccumulatedForces()
	for i := 0; i < b.Len(); i++ {
		require.Equal(t, r3.Vector{}, b.Force(i), "mass %d", i)
	}
}

func TestBodyGenerators(t *testing.T) {
	b, err := NewBody(2, 2, 1)
	require.NoError(t, err)
	b.SetFixed(1, true)
	b.SetVelocity(0, r3.Vector{Z: -2})

	Gravity{G: r3.Vector{Y: -10}}.UpdateForces(b)
	Drag{K1: 1, K2: 1}.UpdateForces(b)

	assert.Equal(t, r3.Vector{Y: -20, Z: 6}, b.Force(0))
	assert.Equal(t, r3.Vector{}, b.Force(1))
}

func TestCurve(t *testing.T) {
	spec := CurveSpec{
		Mass:       0.1,
		Damping:    0.9,
		Structural: SpringCoefficients{Stiffness: 50, Damping: 0.5},
		Flexion:    SpringCoefficients{Stiffness: 5},
	}
	c, err := NewLineCurve(r3.Vector{}, r3.Vector{X: 4}, 4, spec)
	require.NoError(t, err)
	assert.Equal(t, 5, c.Len())
	assert.Len(t, c.StructuralSprings(), 4)
	assert.Len(t, c.FlexionSprings(), 3)
	assert.InDelta(t, 2, c.Springs.Springs()[1].RestLength, 1e-12)

	c.PinEnds()
	sys := NewSystem()
	sys.AddBody(c.Body)
	require.NoError(t, sys.AddForceGenerator(c.Body, c.Springs))
	require.NoError(t, sys.AddForceGenerator(c.Body, Gravity{G: r3.Vector{Y: -9.81}}))
	for i := 0; i < 120; i++ {
		require.NoError(t, sys.Step(1.0/120))
	}

	assert.Equal(t, r3.Vector{}, c.Position(0))
	assert.Equal(t, r3.Vector{X: 4}, c.Position(4))
	assert.Less(t, c.Position(2).Y, 0.0, "the middle sags")

	_, err = NewCurve([]r3.Vector{{}}, spec)
	assert.ErrorIs(t, err, dynamo.ErrInvalidArgument)
	_, err = NewLineCurve(r3.Vector{}, r3.Vector{X: 1}, 0, spec)
	assert.ErrorIs(t, err, dynamo.ErrInvalidArgument)
}

func boxCookSpec() CookSpec {
	return CookSpec{
		TotalMass:  72,
		Step:       0.5,
		Damping:    0.99,
		Structural: SpringCoefficients{Stiffness: 100, Damping: 1},
		Shear:      SpringCoefficients{Stiffness: 50, Damping: 1},
		Flexion:    SpringCoefficients{Stiffness: 25, Damping: 1},
		Surface:    SpringCoefficients{Stiffness: 100, Damping: 1},
		Internal:   SpringCoefficients{Stiffness: 100, Damping: 1},
		Seed:       7,
	}
}

func TestCookBox(t *testing.T) {
	mesh := geometry.NewBox(r3.Vector{}, r3.Vector{X: 2, Y: 2, Z: 2})
	v, err := Cook(mesh, boxCookSpec(), nil)
	require.NoError(t, err)

	assert.Equal(t, Resolution{Cols: 4, Rows: 4, Slices: 4}, v.Resolution())
	assert.Equal(t, 64, v.ValidCount())
	assert.InDelta(t, 72.0/64, v.Mass(0), 1e-12)
	assert.Len(t, v.StructuralSprings(), 144)
	assert.Len(t, v.FlexionSprings(), 96)
	assert.Len(t, v.ShearSprings(), 216)

	p, err := v.PositionAt(0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, r3.Vector{X: -0.75, Y: -0.75, Z: -0.75}, p)
}

func TestCookBoxSurfaceAndInternalSprings(t *testing.T) {
	spec := boxCookSpec()
	spec.SurfaceSprings = true
	spec.InternalSprings = true
	spec.Neighbours = 2

	mesh := geometry.NewBox(r3.Vector{}, r3.Vector{X: 2, Y: 2, Z: 2})
	v, err := Cook(mesh, spec, nil)
	require.NoError(t, err)

	assert.Equal(t, 64, v.LatticeCount())
	assert.Equal(t, 72, v.ParticleCount())
	assert.Equal(t, 72, v.ValidCount())
	assert.InDelta(t, spec.TotalMass, v.TotalMass(), 1e-9)

	// 12 box edges plus one diagonal per face.
	assert.Len(t, v.SurfaceSprings(), 18)
	assert.Len(t, v.InternalSprings(), 16)

	for _, l := range v.InternalSprings() {
		assert.GreaterOrEqual(t, l.A, 64)
		assert.Less(t, l.B, 64)
		assert.InDelta(t, math.Sqrt(3)*0.25, v.Position(l.A).Distance(v.Position(l.B)), 0.5)
	}
}

func TestCookSphere(t *testing.T) {
	mesh, err := geometry.NewUVSphere(r3.Vector{}, 1, 16, 24)
	require.NoError(t, err)
	spec := boxCookSpec()
	spec.Step = 0.25

	v, err := Cook(mesh, spec, nil)
	require.NoError(t, err)

	valid := 0
	for i := 0; i < v.LatticeCount(); i++ {
		if !v.IsValid(i) {
			continue
		}
		valid++
		assert.Less(t, v.Position(i).Norm(), 1.0+dynamo.Epsilon, "mass %d outside sphere", i)
	}
	assert.Greater(t, valid, 0)
	assert.Less(t, valid, v.LatticeCount())

	for _, l := range v.Springs.Links() {
		assert.True(t, v.IsValid(l.A) && v.IsValid(l.B), "spring %v touches an invalid cell", l)
	}
}

func TestCookFixedRayDirection(t *testing.T) {
	spec := boxCookSpec()
	spec.RayDirection = r3.Vector{X: 0.3, Y: 0.5, Z: 0.8}
	v, err := Cook(geometry.NewBox(r3.Vector{}, r3.Vector{X: 2, Y: 2, Z: 2}), spec, nil)
	require.NoError(t, err)
	assert.Equal(t, 64, v.ValidCount())
}

func TestCookPreconditions(t *testing.T) {
	box := func() *geometry.TriangleMesh { return geometry.NewBox(r3.Vector{}, r3.Vector{X: 1, Y: 1, Z: 1}) }

	spec := boxCookSpec()
	spec.Step = 0
	_, err := Cook(box(), spec, nil)
	assert.ErrorIs(t, err, dynamo.ErrInvalidArgument)

	spec = boxCookSpec()
	spec.TotalMass = 0
	_, err = Cook(box(), spec, nil)
	assert.ErrorIs(t, err, dynamo.ErrInvalidArgument)

	spec = boxCookSpec()
	spec.InternalSprings = true
	_, err = Cook(box(), spec, nil)
	assert.ErrorIs(t, err, dynamo.ErrInvalidArgument)

	_, err = Cook(geometry.NewTriangleMesh(), boxCookSpec(), nil)
	assert.ErrorIs(t, err, dynamo.ErrInvalidArgument)
}

func TestSystemGroundAndStability(t *testing.T) {
	spec := unitVolumeSpec()
	spec.Center = r3.Vector{Y: 2}
	v, err := NewVolume(spec)
	require.NoError(t, err)

	sys := NewSystem()
	sys.AddBody(v.Body)
	sys.SetGround(&Ground{Height: 0, Restitution: 0.2})
	require.NoError(t, sys.AddForceGenerator(v.Body, v.Springs))
	require.NoError(t, sys.AddForceGenerator(v.Body, Gravity{G: r3.Vector{Y: -9.81}}))

	for i := 0; i < 600; i++ {
		require.NoError(t, sys.Step(1.0/60))
	}
	for i := 0; i < v.Len(); i++ {
		assert.GreaterOrEqual(t, v.Position(i).Y, 0.0)
	}

	f := sys.Frame()
	assert.Len(t, f.Positions, 27)
	assert.Len(t, f.Links, 153)
	assert.Equal(t, 600, f.Step)
}

func TestSystemRejectsUnknownBody(t *testing.T) {
	b, err := NewBody(1, 1, 1)
	require.NoError(t, err)
	err = NewSystem().AddForceGenerator(b, Gravity{})
	assert.True(t, errors.Is(err, dynamo.ErrPreconditionViolated))
}

func TestSystemReportsDivergence(t *testing.T) {
	b, err := NewBody(1, 1, 1)
	require.NoError(t, err)
	b.SetVelocity(0, r3.Vector{X: math.NaN()})

	sys := NewSystem()
	sys.AddBody(b)
	err = sys.Step(0.1)
	assert.ErrorIs(t, err, dynamo.ErrUnstable)
}

func BenchmarkVolumeStep(b *testing.B) {
	spec := unitVolumeSpec()
	spec.Resolution = Resolution{Cols: 10, Rows: 10, Slices: 10}
	v, err := NewVolume(spec)
	require.NoError(b, err)
	sys := NewSystem()
	sys.AddBody(v.Body)
	require.NoError(b, sys.AddForceGenerator(v.Body, v.Springs))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = sys.Step(1.0 / 60)
	}
}
