package geometry

import (
	"math"

	"github.com/df07/glimmer/pkg/core"
)

// planeExtent is the half-size of the cube that stands in for a plane's unbounded extent.
// It stays small enough that transforming the box corners cannot overflow.
const planeExtent = 1e6

// Plane represents an infinite plane defined by a point and normal
type Plane struct {
	Point  core.Vec3 // A point on the plane
	Normal core.Vec3 // Unit normal
	u, v   core.Vec3 // In-plane axes used for UV mapping
}

// NewPlane creates a new plane
func NewPlane(point, normal core.Vec3) *Plane {
	n := normal.Normalize()
	u, v := core.OrthonormalBasis(n)
	return &Plane{
		Point:  point,
		Normal: n,
		u:      u,
		v:      v,
	}
}

// Hit tests if a ray intersects with the plane
func (p *Plane) Hit(ray core.Ray) (Hit, bool) {
	denominator := ray.Direction.Dot(p.Normal)

	// Ray is parallel to the plane
	if math.Abs(denominator) < parallelEpsilon {
		return Hit{}, false
	}

	// t = (point_on_plane - ray_origin) · normal / (ray_direction · normal)
	t := p.Point.Subtract(ray.Origin).Dot(p.Normal) / denominator
	if !ray.InRange(t) {
		return Hit{}, false
	}

	offset := ray.At(t).Subtract(p.Point)
	return Hit{
		T:      t,
		Normal: p.Normal,
		UV:     core.NewVec2(offset.Dot(p.u), offset.Dot(p.v)),
	}, true
}

// BoundingBox returns a large finite cube centered on the plane point
func (p *Plane) BoundingBox() core.AABB {
	extent := core.NewVec3(planeExtent, planeExtent, planeExtent)
	return core.NewAABB(p.Point.Subtract(extent), p.Point.Add(extent))
}
