package geometry

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/san-kum/massim/internal/dynamo"
)

// RaycastMode selects how many intersections a mesh query collects.
type RaycastMode int

const (
	ClosestHit RaycastMode = iota
	AnyHit
	AllHits
)

func (m RaycastMode) String() string {
	switch m {
	case ClosestHit:
		return "closest"
	case AnyHit:
		return "any"
	case AllHits:
		return "all"
	default:
		return fmt.Sprintf("RaycastMode(%d)", int(m))
	}
}

// TriangleMesh is an append-only triangle list frozen by BuildAccelerationStructure.
type TriangleMesh struct {
	triangles []Triangle
	bvh       *BVH
}

// NewTriangleMesh returns an empty mesh.
func NewTriangleMesh() *TriangleMesh {
	return &TriangleMesh{}
}

// NewIndexedMesh builds a mesh from a flat position array and a triangle index
// array, the layout produced by model loaders. The mesh is not yet built.
func NewIndexedMesh(positions []r3.Vector, indices []int) (*TriangleMesh, error) {
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("%w: index count %d is not a multiple of 3", dynamo.ErrInvalidArgument, len(indices))
	}
	m := NewTriangleMesh()
	for i := 0; i < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		for _, idx := range [3]int{a, b, c} {
			if idx < 0 || idx >= len(positions) {
				return nil, fmt.Errorf("%w: index %d out of range [0,%d)", dynamo.ErrInvalidArgument, idx, len(positions))
			}
		}
		if err := m.AddTriangle(Triangle{V0: positions[a], V1: positions[b], V2: positions[c]}); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// AddTriangle appends t. It fails once the acceleration structure exists.
func (m *TriangleMesh) AddTriangle(t Triangle) error {
	if m.bvh != nil {
		return fmt.Errorf("%w: triangle added after BuildAccelerationStructure", dynamo.ErrPreconditionViolated)
	}
	m.triangles = append(m.triangles, t)
	return nil
}

// BuildAccelerationStructure computes centroids and builds the BVH. It may be
// called exactly once.
func (m *TriangleMesh) BuildAccelerationStructure() error {
	if m.bvh != nil {
		return fmt.Errorf("%w: acceleration structure already built", dynamo.ErrPreconditionViolated)
	}
	m.bvh = buildBVH(m.triangles)
	return nil
}

// Built reports whether BuildAccelerationStructure has run.
func (m *TriangleMesh) Built() bool { return m.bvh != nil }

// Triangles returns the stored triangles.
func (m *TriangleMesh) Triangles() []Triangle { return m.triangles }

// Len returns the triangle count.
func (m *TriangleMesh) Len() int { return len(m.triangles) }

// BVH returns the acceleration structure, nil before it is built.
func (m *TriangleMesh) BVH() *BVH { return m.bvh }

// Bounds returns the BVH root box.
func (m *TriangleMesh) Bounds() (AABB, error) {
	if m.bvh == nil {
		return AABB{}, fmt.Errorf("%w: mesh bounds queried before build", dynamo.ErrPreconditionViolated)
	}
	return m.bvh.Root().Bounds, nil
}

// Raycast walks the BVH with an explicit stack and collects hits according to mode.
// AllHits returns every unique intersection in traversal order.
func (m *TriangleMesh) Raycast(r Ray, mode RaycastMode) ([]Hit, error) {
	if m.bvh == nil {
		return nil, fmt.Errorf("%w: raycast before BuildAccelerationStructure", dynamo.ErrPreconditionViolated)
	}
	if len(m.triangles) == 0 {
		return nil, nil
	}

	var hits []Hit
	closest := Hit{T: math.Inf(1)}
	found := false

	stack := make([]int, 0, 64)
	stack = append(stack, 0)

	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := m.bvh.nodes[idx]
		tEnter, _, _, ok := RaycastAABB(r, node.Bounds)
		if !ok {
			continue
		}
		if mode == ClosestHit && found && tEnter > closest.T {
			continue
		}

		if !node.IsLeaf() {
			stack = append(stack, node.Idx+1, node.Idx)
			continue
		}

		for i := node.Idx; i < node.Idx+node.NumPrimitives; i++ {
			prim := m.bvh.primitives[i]
			hit, ok := RaycastTriangle(r, m.triangles[prim])
			if !ok {
				continue
			}
			hit.Triangle = prim

			switch mode {
			case AnyHit:
				return []Hit{hit}, nil
			case ClosestHit:
				if hit.T < closest.T {
					closest = hit
					found = true
				}
			case AllHits:
				if !containsHit(hits, hit) {
					hits = append(hits, hit)
				}
			}
		}
	}

	if mode == ClosestHit {
		if !found {
			return nil, nil
		}
		return []Hit{closest}, nil
	}
	return hits, nil
}

// ContainsPoint reports whether p is inside a closed mesh by casting a ray
// along dir and counting unique crossings: an odd count means inside.
func (m *TriangleMesh) ContainsPoint(p, dir r3.Vector) (bool, error) {
	hits, err := m.Raycast(NewRay(p, dir), AllHits)
	if err != nil {
		return false, err
	}
	return len(hits)%2 == 1, nil
}

func containsHit(hits []Hit, h Hit) bool {
	for _, o := range hits {
		if o.sameAs(h) {
			return true
		}
	}
	return false
}
