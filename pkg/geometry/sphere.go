package geometry

import (
	"math"

	"github.com/df07/glimmer/pkg/core"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center core.Vec3
	Radius float64
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64) *Sphere {
	return &Sphere{
		Center: center,
		Radius: radius,
	}
}

// Hit tests if a ray intersects with the sphere
func (s *Sphere) Hit(ray core.Ray) (Hit, bool) {
	// Vector from sphere center to ray origin
	oc := ray.Origin.Subtract(s.Center)

	// Quadratic equation coefficients: at² + 2bt + c = 0
	a := ray.Direction.Dot(ray.Direction)
	if a == 0 {
		return Hit{}, false
	}
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return Hit{}, false
	}

	sqrtD := math.Sqrt(discriminant)

	// Try the closer intersection point first
	root := (-halfB - sqrtD) / a
	if !ray.InRange(root) {
		root = (-halfB + sqrtD) / a
		if !ray.InRange(root) {
			return Hit{}, false
		}
	}

	outwardNormal := ray.At(root).Subtract(s.Center).Divide(s.Radius)
	return Hit{
		T:      root,
		Normal: outwardNormal,
		UV:     sphereUV(outwardNormal),
	}, true
}

// BoundingBox returns the axis-aligned bounding box for this sphere
func (s *Sphere) BoundingBox() core.AABB {
	radius := core.NewVec3(s.Radius, s.Radius, s.Radius)
	return core.NewAABB(
		s.Center.Subtract(radius),
		s.Center.Add(radius),
	)
}

// sphereUV maps a unit normal to longitude/latitude coordinates in [0,1]
func sphereUV(n core.Vec3) core.Vec2 {
	theta := math.Acos(max(-1, min(1, -n.Y)))
	phi := math.Atan2(-n.Z, n.X) + math.Pi
	return core.NewVec2(phi/(2*math.Pi), theta/math.Pi)
}
