package mad

import (
	"container/heap"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/golang/geo/r3"
	"github.com/san-kum/massim/internal/dynamo"
	"github.com/san-kum/massim/internal/geometry"
)

// weldTolerance merges mesh vertices closer than this into one surface mass.
const weldTolerance = 1e-6

// CookSpec controls how a mesh is sampled into a volume.
type CookSpec struct {
	// TotalMass is split evenly over every valid mass.
	TotalMass float64
	// Step is the lattice spacing.
	Step    float64
	Damping float64

	Structural SpringCoefficients
	Shear      SpringCoefficients
	Flexion    SpringCoefficients
	Surface    SpringCoefficients
	Internal   SpringCoefficients

	// RayDirection is used for every containment test. The zero vector draws
	// a fresh random direction per sample from Seed.
	RayDirection r3.Vector
	Seed         int64

	// SurfaceSprings adds a mass per mesh vertex joined along triangle edges.
	SurfaceSprings bool
	// InternalSprings joins each surface mass to its Neighbours nearest
	// unoccluded lattice masses. It implies surface masses.
	InternalSprings bool
	Neighbours      int

	DisableStretchClamp bool
}

func (s CookSpec) validate() error {
	if s.TotalMass <= dynamo.Epsilon {
		return fmt.Errorf("%w: total mass %g must be positive", dynamo.ErrInvalidArgument, s.TotalMass)
	}
	if s.Step <= dynamo.Epsilon {
		return fmt.Errorf("%w: sample step %g must be positive", dynamo.ErrInvalidArgument, s.Step)
	}
	if s.InternalSprings && s.Neighbours < 1 {
		return fmt.Errorf("%w: internal springs need at least 1 neighbour, got %d", dynamo.ErrInvalidArgument, s.Neighbours)
	}
	return nil
}

// Cook samples a closed mesh on a regular lattice over its bounding box.
// Lattice points inside the mesh become masses; the rest are marked invalid
// and take no part in springs. The mesh is built first if needed.
func Cook(mesh *geometry.TriangleMesh, spec CookSpec, logger *slog.Logger) (*Volume, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := spec.validate(); err != nil {
		return nil, err
	}
	if mesh.Len() == 0 {
		return nil, fmt.Errorf("%w: cannot cook an empty mesh", dynamo.ErrInvalidArgument)
	}
	if !mesh.Built() {
		if err := mesh.BuildAccelerationStructure(); err != nil {
			return nil, err
		}
	}
	bounds, err := mesh.Bounds()
	if err != nil {
		return nil, err
	}

	res := sampleResolution(bounds.Extent(), spec.Step)

	var surface *weldedSurface
	if spec.SurfaceSprings || spec.InternalSprings {
		surface = weld(mesh.Triangles())
	}
	extra := 0
	if surface != nil {
		extra = len(surface.vertices)
	}

	v, err := newLattice(res, extra, spec.TotalMass, spec.Damping, !spec.DisableStretchClamp)
	if err != nil {
		return nil, err
	}
	v.placeLattice(bounds.Center(), spec.Step)

	rng := rand.New(rand.NewSource(spec.Seed))
	for idx := 0; idx < res.Count(); idx++ {
		dir := spec.RayDirection
		if dir.Norm2() < dynamo.Epsilon*dynamo.Epsilon {
			dir = randomDirection(rng)
		}
		inside, err := mesh.ContainsPoint(v.positions[idx], dir)
		if err != nil {
			return nil, err
		}
		if !inside {
			v.SetValid(idx, false)
		}
	}

	interior := v.ValidCount() - extra
	if interior == 0 {
		return nil, fmt.Errorf("%w: no sample point at step %g falls inside the mesh", dynamo.ErrInvalidArgument, spec.Step)
	}

	mass := spec.TotalMass / float64(v.ValidCount())
	for i := 0; i < v.Len(); i++ {
		if v.valid[i] {
			if err := v.SetMass(i, mass); err != nil {
				return nil, err
			}
		}
	}

	v.connectLattice(spec.Structural, spec.Shear, spec.Flexion)

	if surface != nil {
		base := res.Count()
		for k, p := range surface.vertices {
			v.positions[base+k] = p
		}
		if spec.SurfaceSprings {
			for _, e := range surface.edges {
				v.addSpring(base+e[0], base+e[1], Surface, spec.Surface)
			}
		}
		if spec.InternalSprings {
			if err := v.connectInternal(mesh, base, spec.Neighbours, spec.Internal, logger); err != nil {
				return nil, err
			}
		}
	}

	logger.Debug("cooked mesh",
		"cols", res.Cols, "rows", res.Rows, "slices", res.Slices,
		"interior", interior, "surface", extra, "mass", mass,
		"structural", len(v.families[Structural]),
		"shear", len(v.families[Shear]),
		"flexion", len(v.families[Flexion]),
		"surface_springs", len(v.families[Surface]),
		"internal_springs", len(v.families[Internal]))
	return v, nil
}

// sampleResolution fits whole cells of size step into extent. Samples sit at
// cell centres so none lands on the box faces.
func sampleResolution(extent r3.Vector, step float64) Resolution {
	n := func(e float64) int {
		return max(1, int(math.Floor(e/step+dynamo.Epsilon)))
	}
	return Resolution{Cols: n(extent.X), Rows: n(extent.Y), Slices: n(extent.Z)}
}

func randomDirection(rng *rand.Rand) r3.Vector {
	for {
		d := r3.Vector{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}
		if n := d.Norm(); n > dynamo.Epsilon {
			return d.Mul(1 / n)
		}
	}
}

// weldedSurface is a mesh with shared vertices merged and its unique edges.
type weldedSurface struct {
	vertices []r3.Vector
	edges    [][2]int
}

func weld(triangles []geometry.Triangle) *weldedSurface {
	s := &weldedSurface{}
	ids := make(map[[3]int64]int)
	seen := make(map[[2]int]bool)

	vertexID := func(p r3.Vector) int {
		key := [3]int64{
			int64(math.Round(p.X / weldTolerance)),
			int64(math.Round(p.Y / weldTolerance)),
			int64(math.Round(p.Z / weldTolerance)),
		}
		if id, ok := ids[key]; ok {
			return id
		}
		ids[key] = len(s.vertices)
		s.vertices = append(s.vertices, p)
		return ids[key]
	}

	for _, t := range triangles {
		tri := [3]int{vertexID(t.V0), vertexID(t.V1), vertexID(t.V2)}
		for k := 0; k < 3; k++ {
			a, b := tri[k], tri[(k+1)%3]
			if a == b {
				continue
			}
			if a > b {
				a, b = b, a
			}
			if !seen[[2]int{a, b}] {
				seen[[2]int{a, b}] = true
				s.edges = append(s.edges, [2]int{a, b})
			}
		}
	}
	return s
}

// connectInternal joins every surface mass to its k nearest lattice masses
// that it can see without the ray leaving through the mesh.
func (v *Volume) connectInternal(mesh *geometry.TriangleMesh, base, k int, c SpringCoefficients, logger *slog.Logger) error {
	isolated := 0
	for s := base; s < v.Len(); s++ {
		from := v.positions[s]

		h := make(candidateHeap, 0, base)
		for idx := 0; idx < base; idx++ {
			if v.valid[idx] {
				h = append(h, candidate{idx: idx, dist: from.Distance(v.positions[idx])})
			}
		}
		heap.Init(&h)

		linked := 0
		for linked < k && h.Len() > 0 {
			cand := heap.Pop(&h).(candidate)
			if cand.dist < dynamo.Epsilon {
				continue
			}
			blocked, err := occluded(mesh, from, v.positions[cand.idx], cand.dist)
			if err != nil {
				return err
			}
			if blocked {
				continue
			}
			v.addSpring(s, cand.idx, Internal, c)
			linked++
		}
		if linked == 0 {
			isolated++
			logger.Debug("surface vertex has no visible interior mass", "vertex", s-base, "position", from)
		}
	}
	if isolated > 0 {
		logger.Debug("isolated surface vertices", "count", isolated)
	}
	return nil
}

// occluded reports whether the segment from..to crosses the mesh before to.
func occluded(mesh *geometry.TriangleMesh, from, to r3.Vector, dist float64) (bool, error) {
	hits, err := mesh.Raycast(geometry.NewRay(from, to.Sub(from)), geometry.ClosestHit)
	if err != nil {
		return false, err
	}
	return len(hits) > 0 && hits[0].T < dist-dynamo.Epsilon, nil
}

type candidate struct {
	idx  int
	dist float64
}

// candidateHeap is a min-heap on distance; ties go to the lower index so
// results do not depend on heap layout.
type candidateHeap []candidate

func (h candidateHeap) Len() int { return len(h) }

func (h candidateHeap) Less(i, j int) bool {
	if h[i].dist != h[j].dist {
		return h[i].dist < h[j].dist
	}
	return h[i].idx < h[j].idx
}

func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *candidateHeap) Push(x any) { *h = append(*h, x.(candidate)) }

func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	*h = old[:n-1]
	return c
}
