package core

import "math"

// AABB represents an axis-aligned bounding box.
// An empty box has Min greater than Max on every axis.
type AABB struct {
	Min Vec3 // Minimum corner
	Max Vec3 // Maximum corner
}

// AABBHit is the parameter interval over which a ray is inside a box
type AABBHit struct {
	TNear float64
	TFar  float64
}

// NewAABB creates a new AABB from min and max points
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// EmptyAABB returns the empty box sentinel
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: NewVec3(inf, inf, inf),
		Max: NewVec3(-inf, -inf, -inf),
	}
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...Vec3) AABB {
	box := EmptyAABB()
	for _, p := range points {
		box.Expand(p)
	}
	return box
}

// IsEmpty reports whether the box contains no points
func (aabb AABB) IsEmpty() bool {
	return aabb.Min.X > aabb.Max.X || aabb.Min.Y > aabb.Max.Y || aabb.Min.Z > aabb.Max.Z
}

// Expand grows the box in place to include the point
func (aabb *AABB) Expand(point Vec3) {
	aabb.Min = aabb.Min.Min(point)
	aabb.Max = aabb.Max.Max(point)
}

// Union returns an AABB that bounds both this AABB and another
func (aabb AABB) Union(other AABB) AABB {
	return AABB{Min: aabb.Min.Min(other.Min), Max: aabb.Max.Max(other.Max)}
}

// Contains reports whether the point lies inside the box (boundary inclusive)
func (aabb AABB) Contains(p Vec3) bool {
	return p.X >= aabb.Min.X && p.X <= aabb.Max.X &&
		p.Y >= aabb.Min.Y && p.Y <= aabb.Max.Y &&
		p.Z >= aabb.Min.Z && p.Z <= aabb.Max.Z
}

// ContainsBox reports whether other lies entirely inside the box
func (aabb AABB) ContainsBox(other AABB) bool {
	if other.IsEmpty() {
		return true
	}
	return aabb.Contains(other.Min) && aabb.Contains(other.Max)
}

// Overlaps reports whether the two boxes share at least one point
func (aabb AABB) Overlaps(other AABB) bool {
	if aabb.IsEmpty() || other.IsEmpty() {
		return false
	}
	return aabb.Min.X <= other.Max.X && aabb.Max.X >= other.Min.X &&
		aabb.Min.Y <= other.Max.Y && aabb.Max.Y >= other.Min.Y &&
		aabb.Min.Z <= other.Max.Z && aabb.Max.Z >= other.Min.Z
}

// Center returns the center point of the AABB
func (aabb AABB) Center() Vec3 {
	return aabb.Min.Add(aabb.Max).Multiply(0.5)
}

// Extent returns the size of the AABB along each axis
func (aabb AABB) Extent() Vec3 {
	return aabb.Max.Subtract(aabb.Min)
}

// Corners returns the eight corner points of the box
func (aabb AABB) Corners() [8]Vec3 {
	lo, hi := aabb.Min, aabb.Max
	return [8]Vec3{
		{lo.X, lo.Y, lo.Z},
		{hi.X, lo.Y, lo.Z},
		{lo.X, hi.Y, lo.Z},
		{hi.X, hi.Y, lo.Z},
		{lo.X, lo.Y, hi.Z},
		{hi.X, lo.Y, hi.Z},
		{lo.X, hi.Y, hi.Z},
		{hi.X, hi.Y, hi.Z},
	}
}

// Intersect clips the ray's [TMin, TMax] interval against the box using the slab method.
// It reports false when the clipped interval is empty.
func (aabb AABB) Intersect(ray Ray) (AABBHit, bool) {
	if aabb.IsEmpty() {
		return AABBHit{}, false
	}

	tNear, tFar := ray.TMin, ray.TMax
	for axis := 0; axis < 3; axis++ {
		lo := aabb.Min.Component(axis)
		hi := aabb.Max.Component(axis)
		origin := ray.Origin.Component(axis)
		direction := ray.Direction.Component(axis)

		// Parallel to this slab: the origin must already be inside it
		if direction == 0 {
			if origin < lo || origin > hi {
				return AABBHit{}, false
			}
			continue
		}

		invDirection := 1.0 / direction
		t1 := (lo - origin) * invDirection
		t2 := (hi - origin) * invDirection
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		tNear = max(tNear, t1)
		tFar = min(tFar, t2)
		if tNear > tFar {
			return AABBHit{}, false
		}
	}

	return AABBHit{TNear: tNear, TFar: tFar}, true
}
