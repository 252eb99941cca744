package core

import "math"

// Ray represents a ray with an origin, a direction and a valid parameter interval
type Ray struct {
	Origin    Vec3
	Direction Vec3
	TMin      float64
	TMax      float64
}

// NewRay creates a ray valid over [0, +Inf)
func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction, TMin: 0, TMax: math.Inf(1)}
}

// NewRayRange creates a ray valid over [tMin, tMax].
// tMin > tMax is allowed and marks a ray with no valid range.
func NewRayRange(origin, direction Vec3, tMin, tMax float64) Ray {
	return Ray{Origin: origin, Direction: direction, TMin: tMin, TMax: tMax}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}

// IsValid reports whether the ray has a usable parameter interval
func (r Ray) IsValid() bool {
	return r.TMin <= r.TMax
}

// Normalized returns a copy of the ray with a unit-length direction
func (r Ray) Normalized() Ray {
	r.Direction = r.Direction.Normalize()
	return r
}

// InRange reports whether t lies inside [TMin, TMax]
func (r Ray) InRange(t float64) bool {
	return t >= r.TMin && t <= r.TMax
}
