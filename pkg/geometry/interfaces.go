package geometry

import (
	"github.com/df07/glimmer/pkg/core"
)

// Hit is the result of a ray-primitive intersection in the primitive's own space
type Hit struct {
	T      float64   // Ray parameter of the nearest intersection
	Normal core.Vec3 // Outward unit normal, never flipped toward the ray
	UV     core.Vec2 // Surface parameterization at the hit point
}

// Primitive is any shape that can report a local bounding box and intersect rays.
// Primitives are immutable once built and may be shared by many scene objects.
type Primitive interface {
	BoundingBox() core.AABB
	Hit(ray core.Ray) (Hit, bool)
}

// parallelEpsilon rejects rays that are (nearly) parallel to a planar surface
const parallelEpsilon = 1e-8
