package scene

import (
	"sort"

	"github.com/df07/glimmer/pkg/core"
	"github.com/df07/glimmer/pkg/geometry"
)

// Leaf threshold: if we have this many or fewer objects, store them in a leaf node
const leafThreshold = 8

// bvhNode is a node in the object-level bounding volume hierarchy
type bvhNode struct {
	bounds  core.AABB
	left    *bvhNode
	right   *bvhNode
	objects []int // Object indices for leaf nodes (nil for internal nodes)
}

// bvh indexes scene objects by world bounds. Query results match a linear scan
// in insertion order, including the rule that the earlier object wins an exact tie.
type bvh struct {
	root       *bvhNode
	generation uint64
	count      int
}

// buildBVH constructs the hierarchy over objects; objects with empty bounds are never hit and are left out
func buildBVH(objects []*Object, generation uint64) *bvh {
	indices := make([]int, 0, len(objects))
	for i, o := range objects {
		if !o.BoundingBox().IsEmpty() {
			indices = append(indices, i)
		}
	}

	tree := &bvh{generation: generation, count: len(objects)}
	if len(indices) > 0 {
		tree.root = buildNode(objects, indices)
	}
	return tree
}

// buildNode uses a median split along the longest axis of the node bounds
func buildNode(objects []*Object, indices []int) *bvhNode {
	bounds := core.EmptyAABB()
	for _, i := range indices {
		bounds = bounds.Union(objects[i].BoundingBox())
	}

	if len(indices) <= leafThreshold {
		leaf := make([]int, len(indices))
		copy(leaf, indices)
		sort.Ints(leaf)
		return &bvhNode{bounds: bounds, objects: leaf}
	}

	axis := longestAxis(bounds)
	sort.SliceStable(indices, func(a, b int) bool {
		return objects[indices[a]].BoundingBox().Center().Component(axis) <
			objects[indices[b]].BoundingBox().Center().Component(axis)
	})

	mid := len(indices) / 2
	return &bvhNode{
		bounds: bounds,
		left:   buildNode(objects, indices[:mid]),
		right:  buildNode(objects, indices[mid:]),
	}
}

func longestAxis(box core.AABB) int {
	extent := box.Extent()
	switch {
	case extent.X >= extent.Y && extent.X >= extent.Z:
		return 0
	case extent.Y >= extent.Z:
		return 1
	default:
		return 2
	}
}

// nearestHit tracks the best hit during a traversal
type nearestHit struct {
	query  core.Ray
	hit    geometry.Hit
	object int // -1 until something is hit
}

func (n *nearestHit) consider(objects []*Object, i int) {
	hit, ok := objects[i].Hit(n.query)
	if !ok {
		return
	}
	if n.object < 0 || hit.T < n.hit.T || (hit.T == n.hit.T && i < n.object) {
		n.hit = hit
		n.object = i
		n.query.TMax = hit.T
	}
}

// hit returns the nearest hit and the index of its object, or -1
func (b *bvh) hit(objects []*Object, ray core.Ray) (geometry.Hit, int) {
	best := nearestHit{query: ray, object: -1}
	if b.root != nil {
		b.hitNode(b.root, objects, &best)
	}
	return best.hit, best.object
}

func (b *bvh) hitNode(node *bvhNode, objects []*Object, best *nearestHit) {
	if _, ok := node.bounds.Intersect(best.query); !ok {
		return
	}
	if node.objects != nil {
		for _, i := range node.objects {
			best.consider(objects, i)
		}
		return
	}
	b.hitNode(node.left, objects, best)
	b.hitNode(node.right, objects, best)
}
