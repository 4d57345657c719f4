package geometry

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/san-kum/massim/internal/dynamo"
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max r3.Vector
}

// EmptyAABB returns an inverted box that any Grow call will replace.
func EmptyAABB() AABB {
	return AABB{
		Min: r3.Vector{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)},
		Max: r3.Vector{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)},
	}
}

// Grow returns the box extended to contain p.
func (b AABB) Grow(p r3.Vector) AABB {
	return AABB{
		Min: r3.Vector{X: math.Min(b.Min.X, p.X), Y: math.Min(b.Min.Y, p.Y), Z: math.Min(b.Min.Z, p.Z)},
		Max: r3.Vector{X: math.Max(b.Max.X, p.X), Y: math.Max(b.Max.Y, p.Y), Z: math.Max(b.Max.Z, p.Z)},
	}
}

// Union returns the smallest box containing both boxes.
func (b AABB) Union(o AABB) AABB {
	return b.Grow(o.Min).Grow(o.Max)
}

// Extent returns Max - Min.
func (b AABB) Extent() r3.Vector {
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint of the box.
func (b AABB) Center() r3.Vector {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Contains reports whether p lies inside the box, borders included.
func (b AABB) Contains(p r3.Vector) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// LongestAxis returns 0, 1 or 2 for X, Y or Z.
func (b AABB) LongestAxis() int {
	e := b.Extent()
	axis := 0
	if e.Y > e.X && e.Y >= e.Z {
		axis = 1
	} else if e.Z > e.X && e.Z > e.Y {
		axis = 2
	}
	return axis
}

func component(v r3.Vector, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// RaycastAABB intersects r with b using the slab method. It returns the entry
// and exit parameters and the outward normal of the entry face. A ray that
// starts inside the box enters at a negative t.
func RaycastAABB(r Ray, b AABB) (tEnter, tExit float64, normal r3.Vector, ok bool) {
	t1 := (b.Min.X - r.Origin.X) / r.Direction.X
	t2 := (b.Max.X - r.Origin.X) / r.Direction.X
	t3 := (b.Min.Y - r.Origin.Y) / r.Direction.Y
	t4 := (b.Max.Y - r.Origin.Y) / r.Direction.Y
	t5 := (b.Min.Z - r.Origin.Z) / r.Direction.Z
	t6 := (b.Max.Z - r.Origin.Z) / r.Direction.Z

	tEnter = math.Max(math.Max(nanMin(t1, t2), nanMin(t3, t4)), nanMin(t5, t6))
	tExit = math.Min(math.Min(nanMax(t1, t2), nanMax(t3, t4)), nanMax(t5, t6))

	if tExit < 0 || tEnter > tExit || math.IsNaN(tEnter) || math.IsNaN(tExit) {
		return 0, 0, r3.Vector{}, false
	}

	switch {
	case dynamo.CmpFloatEq(tEnter, t1):
		normal = r3.Vector{X: -1}
	case dynamo.CmpFloatEq(tEnter, t2):
		normal = r3.Vector{X: 1}
	case dynamo.CmpFloatEq(tEnter, t3):
		normal = r3.Vector{Y: -1}
	case dynamo.CmpFloatEq(tEnter, t4):
		normal = r3.Vector{Y: 1}
	case dynamo.CmpFloatEq(tEnter, t5):
		normal = r3.Vector{Z: -1}
	case dynamo.CmpFloatEq(tEnter, t6):
		normal = r3.Vector{Z: 1}
	}

	return tEnter, tExit, normal, true
}

// nanMin and nanMax treat NaN slabs (zero direction component with the origin
// on a slab plane) as unbounded.
func nanMin(a, b float64) float64 {
	if math.IsNaN(a) {
		a = math.Inf(-1)
	}
	if math.IsNaN(b) {
		b = math.Inf(-1)
	}
	return math.Min(a, b)
}

func nanMax(a, b float64) float64 {
	if math.IsNaN(a) {
		a = math.Inf(1)
	}
	if math.IsNaN(b) {
		b = math.Inf(1)
	}
	return math.Max(a, b)
}
