package geometry

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/san-kum/massim/internal/dynamo"
)

// Triangle is a single mesh face.
type Triangle struct {
	V0, V1, V2 r3.Vector
}

// Centroid returns the average of the three vertices.
func (t Triangle) Centroid() r3.Vector {
	return t.V0.Add(t.V1).Add(t.V2).Mul(1.0 / 3.0)
}

// Normal returns the unit face normal following the V0, V1, V2 winding.
// Degenerate triangles return the zero vector.
func (t Triangle) Normal() r3.Vector {
	return t.V1.Sub(t.V0).Cross(t.V2.Sub(t.V0)).Normalize()
}

// Bounds returns the axis-aligned box of the triangle.
func (t Triangle) Bounds() AABB {
	b := EmptyAABB()
	b = b.Grow(t.V0)
	b = b.Grow(t.V1)
	return b.Grow(t.V2)
}

// Ray is a half line starting at Origin.
type Ray struct {
	Origin    r3.Vector
	Direction r3.Vector
}

// NewRay returns a ray with a normalized direction.
func NewRay(origin, direction r3.Vector) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize()}
}

// At returns the point at parameter t.
func (r Ray) At(t float64) r3.Vector {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Hit describes a ray intersection.
type Hit struct {
	T        float64
	Point    r3.Vector
	Normal   r3.Vector
	Triangle int
}

func (h Hit) sameAs(o Hit) bool {
	return dynamo.CmpFloatEq(h.T, o.T) && dynamo.VecEq(h.Point, o.Point) && dynamo.VecEq(h.Normal, o.Normal)
}

// RaycastTriangle intersects r with t using the Möller–Trumbore algorithm.
// Rays parallel to the triangle plane and hits behind the origin report false.
func RaycastTriangle(r Ray, t Triangle) (Hit, bool) {
	edge1 := t.V1.Sub(t.V0)
	edge2 := t.V2.Sub(t.V0)

	h := r.Direction.Cross(edge2)
	det := edge1.Dot(h)
	if math.Abs(det) < dynamo.Epsilon*dynamo.Epsilon {
		return Hit{}, false
	}

	invDet := 1.0 / det
	s := r.Origin.Sub(t.V0)
	u := invDet * s.Dot(h)
	if u < 0 || u > 1 {
		return Hit{}, false
	}

	q := s.Cross(edge1)
	v := invDet * r.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return Hit{}, false
	}

	dist := invDet * edge2.Dot(q)
	if dist <= dynamo.Epsilon {
		return Hit{}, false
	}

	return Hit{T: dist, Point: r.At(dist), Normal: t.Normal()}, true
}
