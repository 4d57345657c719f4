package geometry

import "github.com/golang/geo/r3"

// Node is one entry of the flat BVH node array. A leaf references
// NumPrimitives entries of the permutation starting at Idx. An internal node
// has NumPrimitives == 0, its left child at Idx and its right child at Idx+1.
type Node struct {
	Bounds        AABB
	Idx           int
	NumPrimitives int
}

// IsLeaf reports whether the node stores primitives.
func (n Node) IsLeaf() bool { return n.NumPrimitives > 0 }

// maxLeafPrimitives stops subdivision once a node holds this many primitives or fewer.
const maxLeafPrimitives = 2

// BVH is a bounding volume hierarchy over a fixed set of triangles.
// It is built once and never refit.
type BVH struct {
	nodes      []Node
	primitives []int
	centroids  []r3.Vector
	triangles  []Triangle
	used       int
}

// Nodes returns the nodes in use. The root is at index 0.
func (b *BVH) Nodes() []Node { return b.nodes[:b.used] }

// Primitives returns the triangle permutation referenced by leaf nodes.
func (b *BVH) Primitives() []int { return b.primitives }

// Root returns the root node.
func (b *BVH) Root() Node { return b.nodes[0] }

// buildBVH splits top-down at the midpoint of each node's longest axis.
// The node array is sized for the worst case of 2n-1 nodes.
func buildBVH(triangles []Triangle) *BVH {
	n := len(triangles)
	b := &BVH{
		nodes:      make([]Node, max(2*n-1, 1)),
		primitives: make([]int, n),
		centroids:  make([]r3.Vector, n),
		triangles:  triangles,
	}
	for i, t := range triangles {
		b.primitives[i] = i
		b.centroids[i] = t.Centroid()
	}

	b.nodes[0] = Node{Idx: 0, NumPrimitives: n}
	b.used = 1
	if n == 0 {
		b.nodes[0].Bounds = AABB{}
		return b
	}
	b.updateBounds(0)
	b.subdivide(0)
	return b
}

func (b *BVH) updateBounds(idx int) {
	node := &b.nodes[idx]
	bounds := EmptyAABB()
	for i := node.Idx; i < node.Idx+node.NumPrimitives; i++ {
		bounds = bounds.Union(b.triangles[b.primitives[i]].Bounds())
	}
	node.Bounds = bounds
}

func (b *BVH) subdivide(idx int) {
	node := &b.nodes[idx]
	if node.NumPrimitives <= maxLeafPrimitives {
		return
	}

	first, count := node.Idx, node.NumPrimitives

	axis := node.Bounds.LongestAxis()
	split := component(node.Bounds.Min, axis) + component(node.Bounds.Extent(), axis)*0.5
	leftCount := b.partition(first, count, axis, split)

	if leftCount == 0 || leftCount == count {
		// The spatial midpoint left one side empty. Retry once at the midpoint
		// of the centroid bounds; if that fails too the node stays a leaf.
		cb := b.centroidBounds(first, count)
		axis = cb.LongestAxis()
		split = component(cb.Min, axis) + component(cb.Extent(), axis)*0.5
		leftCount = b.partition(first, count, axis, split)
		if leftCount == 0 || leftCount == count {
			return
		}
	}

	left := b.used
	b.used += 2
	b.nodes[left] = Node{Idx: first, NumPrimitives: leftCount}
	b.nodes[left+1] = Node{Idx: first + leftCount, NumPrimitives: count - leftCount}

	node.Idx = left
	node.NumPrimitives = 0

	b.updateBounds(left)
	b.updateBounds(left + 1)
	b.subdivide(left)
	b.subdivide(left + 1)
}

// partition reorders primitives[first:first+count] so every centroid below split
// comes first, and returns how many there are.
func (b *BVH) partition(first, count, axis int, split float64) int {
	i, j := first, first+count-1
	for i <= j {
		if component(b.centroids[b.primitives[i]], axis) < split {
			i++
		} else {
			b.primitives[i], b.primitives[j] = b.primitives[j], b.primitives[i]
			j--
		}
	}
	return i - first
}

func (b *BVH) centroidBounds(first, count int) AABB {
	cb := EmptyAABB()
	for i := first; i < first+count; i++ {
		cb = cb.Grow(b.centroids[b.primitives[i]])
	}
	return cb
}
