package geometry

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/san-kum/massim/internal/dynamo"
)

// NewBox returns an unbuilt closed box mesh centred at center with outward
// facing triangles.
func NewBox(center, size r3.Vector) *TriangleMesh {
	h := size.Mul(0.5)
	corner := func(sx, sy, sz float64) r3.Vector {
		return center.Add(r3.Vector{X: sx * h.X, Y: sy * h.Y, Z: sz * h.Z})
	}

	positions := []r3.Vector{
		corner(-1, -1, -1), corner(1, -1, -1), corner(1, 1, -1), corner(-1, 1, -1),
		corner(-1, -1, 1), corner(1, -1, 1), corner(1, 1, 1), corner(-1, 1, 1),
	}
	indices := []int{
		0, 2, 1, 0, 3, 2, // -z
		4, 5, 6, 4, 6, 7, // +z
		0, 1, 5, 0, 5, 4, // -y
		3, 7, 6, 3, 6, 2, // +y
		0, 4, 7, 0, 7, 3, // -x
		1, 2, 6, 1, 6, 5, // +x
	}

	m, _ := NewIndexedMesh(positions, indices)
	return m
}

// NewUVSphere returns an unbuilt closed sphere tessellated into stacks and sectors.
func NewUVSphere(center r3.Vector, radius float64, stacks, sectors int) (*TriangleMesh, error) {
	if stacks < 2 || sectors < 3 {
		return nil, fmt.Errorf("%w: sphere needs at least 2 stacks and 3 sectors, got %d/%d",
			dynamo.ErrInvalidArgument, stacks, sectors)
	}
	if radius <= dynamo.Epsilon {
		return nil, fmt.Errorf("%w: sphere radius %g must be positive", dynamo.ErrInvalidArgument, radius)
	}

	positions := make([]r3.Vector, 0, (stacks+1)*(sectors+1))
	for i := 0; i <= stacks; i++ {
		phi := math.Pi/2 - float64(i)*math.Pi/float64(stacks)
		xy := radius * math.Cos(phi)
		y := radius * math.Sin(phi)
		for j := 0; j <= sectors; j++ {
			theta := float64(j) * 2 * math.Pi / float64(sectors)
			positions = append(positions, center.Add(r3.Vector{X: xy * math.Cos(theta), Y: y, Z: xy * math.Sin(theta)}))
		}
	}

	var indices []int
	for i := 0; i < stacks; i++ {
		k1 := i * (sectors + 1)
		k2 := k1 + sectors + 1
		for j := 0; j < sectors; j++ {
			if i != 0 {
				indices = append(indices, k1+j, k1+j+1, k2+j)
			}
			if i != stacks-1 {
				indices = append(indices, k1+j+1, k2+j+1, k2+j)
			}
		}
	}

	return NewIndexedMesh(positions, indices)
}
