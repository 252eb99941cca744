package geometry

import (
	"github.com/df07/glimmer/pkg/core"
)

// TriangleHit is the result of a single ray-triangle test
type TriangleHit struct {
	T      float64   // Ray parameter
	U, V   float64   // Barycentric coordinates of p1 and p2
	Normal core.Vec3 // Unit normal from the winding (p1-p0) x (p2-p0)
}

// IntersectTriangle tests a ray against the triangle (p0, p1, p2) using the
// two-sided Möller-Trumbore algorithm
func IntersectTriangle(p0, p1, p2 core.Vec3, ray core.Ray) (TriangleHit, bool) {
	edge1 := p1.Subtract(p0)
	edge2 := p2.Subtract(p0)

	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	// If determinant is near zero, ray lies in plane of triangle
	if a > -parallelEpsilon && a < parallelEpsilon {
		return TriangleHit{}, false
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(p0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return TriangleHit{}, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return TriangleHit{}, false
	}

	t := f * edge2.Dot(q)
	if !ray.InRange(t) {
		return TriangleHit{}, false
	}

	return TriangleHit{
		T:      t,
		U:      u,
		V:      v,
		Normal: edge1.Cross(edge2).Normalize(),
	}, true
}
