package mad

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/san-kum/massim/internal/dynamo"
)

// Family names a group of springs that play the same structural role.
type Family int

const (
	Structural Family = iota
	Shear
	Flexion
	Surface
	Internal
	numFamilies
)

func (f Family) String() string {
	switch f {
	case Structural:
		return "structural"
	case Shear:
		return "shear"
	case Flexion:
		return "flexion"
	case Surface:
		return "surface"
	case Internal:
		return "internal"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

// Resolution is the lattice size: Cols along x, Rows along y, Slices along z.
type Resolution struct {
	Cols   int
	Rows   int
	Slices int
}

func (r Resolution) Count() int { return r.Cols * r.Rows * r.Slices }

func (r Resolution) validate() error {
	if r.Cols < 1 || r.Rows < 1 || r.Slices < 1 {
		return fmt.Errorf("%w: resolution %dx%dx%d must be at least 1 on every axis",
			dynamo.ErrInvalidArgument, r.Cols, r.Rows, r.Slices)
	}
	return nil
}

// VolumeSpec describes a regular lattice body.
type VolumeSpec struct {
	// Mass is the mass of each lattice point.
	Mass float64
	// Scale is the spacing between neighbouring points.
	Scale      float64
	Resolution Resolution
	Damping    float64
	Center     r3.Vector

	Structural SpringCoefficients
	Shear      SpringCoefficients
	Flexion    SpringCoefficients

	DisableStretchClamp bool
}

// Lattice neighbour offsets as (col, row, slice) deltas. Only forward offsets
// are listed; the backward ones are the same springs seen from the other end.
var (
	structuralOffsets = [][3]int{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	flexionOffsets    = [][3]int{{2, 0, 0}, {0, 2, 0}, {0, 0, 2}}
	shearOffsets      = [][3]int{
		{1, 1, 0}, {1, -1, 0},
		{1, 0, 1}, {1, 0, -1},
		{0, 1, 1}, {0, 1, -1},
	}
)

// Volume is a body whose first Resolution.Count() masses form a lattice.
// Cooked volumes append surface masses after the lattice.
type Volume struct {
	*Body
	Springs *SpringForceGenerator

	res      Resolution
	families [numFamilies][]dynamo.Link
}

// NewVolume lays out a full lattice centred on spec.Center and connects it with
// structural, shear and flexion springs.
func NewVolume(spec VolumeSpec) (*Volume, error) {
	if err := spec.Resolution.validate(); err != nil {
		return nil, err
	}
	if spec.Scale <= dynamo.Epsilon {
		return nil, fmt.Errorf("%w: scale %g must be positive", dynamo.ErrInvalidArgument, spec.Scale)
	}

	v, err := newLattice(spec.Resolution, 0, spec.Mass, spec.Damping, !spec.DisableStretchClamp)
	if err != nil {
		return nil, err
	}
	v.placeLattice(spec.Center, spec.Scale)
	v.connectLattice(spec.Structural, spec.Shear, spec.Flexion)
	return v, nil
}

func newLattice(res Resolution, extra int, mass, damping float64, clamp bool) (*Volume, error) {
	body, err := NewBody(res.Count()+extra, mass, damping)
	if err != nil {
		return nil, err
	}
	return &Volume{
		Body:    body,
		Springs: NewSpringForceGenerator(clamp),
		res:     res,
	}, nil
}

// placeLattice positions every lattice point so the grid is centred on center.
func (v *Volume) placeLattice(center r3.Vector, scale float64) {
	half := r3.Vector{
		X: float64(v.res.Cols-1) / 2,
		Y: float64(v.res.Rows-1) / 2,
		Z: float64(v.res.Slices-1) / 2,
	}
	for slice := 0; slice < v.res.Slices; slice++ {
		for row := 0; row < v.res.Rows; row++ {
			for col := 0; col < v.res.Cols; col++ {
				local := r3.Vector{X: float64(col) - half.X, Y: float64(row) - half.Y, Z: float64(slice) - half.Z}
				v.positions[v.Index(row, col, slice)] = center.Add(local.Mul(scale))
			}
		}
	}
}

// connectLattice adds springs between valid lattice neighbours.
func (v *Volume) connectLattice(structural, shear, flexion SpringCoefficients) {
	for idx := 0; idx < v.res.Count(); idx++ {
		if !v.valid[idx] {
			continue
		}
		v.connectOffsets(idx, structuralOffsets, Structural, structural)
		v.connectOffsets(idx, shearOffsets, Shear, shear)
		v.connectOffsets(idx, flexionOffsets, Flexion, flexion)
	}
}

func (v *Volume) connectOffsets(idx int, offsets [][3]int, family Family, c SpringCoefficients) {
	row, col, slice, _ := v.LocalCoordinates(idx)
	for _, o := range offsets {
		j := v.Index(row+o[1], col+o[0], slice+o[2])
		if j < 0 || !v.valid[j] {
			continue
		}
		v.addSpring(idx, j, family, c)
	}
}

func (v *Volume) addSpring(i, j int, family Family, c SpringCoefficients) {
	if v.Springs.connect(v.Body, i, j, c) {
		v.families[family] = append(v.families[family], dynamo.Link{A: i, B: j})
	}
}

func (v *Volume) Resolution() Resolution { return v.res }

// LatticeCount is the number of lattice masses; surface masses follow them.
func (v *Volume) LatticeCount() int { return v.res.Count() }

// ParticleCount is the total number of masses, lattice and surface.
func (v *Volume) ParticleCount() int { return v.Len() }

// Index maps lattice coordinates to a mass id, or -1 outside the lattice.
func (v *Volume) Index(row, col, slice int) int {
	if row < 0 || row >= v.res.Rows || col < 0 || col >= v.res.Cols || slice < 0 || slice >= v.res.Slices {
		return -1
	}
	return col + v.res.Cols*(row+v.res.Rows*slice)
}

// LocalCoordinates inverts Index. It reports false for surface masses and
// out-of-range ids.
func (v *Volume) LocalCoordinates(idx int) (row, col, slice int, ok bool) {
	if idx < 0 || idx >= v.res.Count() {
		return 0, 0, 0, false
	}
	col = idx % v.res.Cols
	rest := idx / v.res.Cols
	row = rest % v.res.Rows
	slice = rest / v.res.Rows
	return row, col, slice, true
}

// PositionAt returns the position of a lattice point.
func (v *Volume) PositionAt(row, col, slice int) (r3.Vector, error) {
	idx := v.Index(row, col, slice)
	if idx < 0 {
		return r3.Vector{}, fmt.Errorf("%w: lattice point (%d,%d,%d) outside %dx%dx%d",
			dynamo.ErrInvalidArgument, row, col, slice, v.res.Rows, v.res.Cols, v.res.Slices)
	}
	return v.positions[idx], nil
}

// SpringsOf returns the index pairs of one spring family.
func (v *Volume) SpringsOf(f Family) []dynamo.Link { return v.families[f] }

func (v *Volume) StructuralSprings() []dynamo.Link { return v.families[Structural] }

func (v *Volume) ShearSprings() []dynamo.Link { return v.families[Shear] }

func (v *Volume) FlexionSprings() []dynamo.Link { return v.families[Flexion] }

func (v *Volume) SurfaceSprings() []dynamo.Link { return v.families[Surface] }

func (v *Volume) InternalSprings() []dynamo.Link { return v.families[Internal] }
