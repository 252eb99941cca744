package scene

import (
	"sync/atomic"

	"github.com/df07/glimmer/pkg/core"
	"github.com/df07/glimmer/pkg/geometry"
	"github.com/df07/glimmer/pkg/material"
	"github.com/df07/glimmer/pkg/transform"
	"github.com/go-gl/mathgl/mgl64"
)

// Object places a shared primitive in the world with a material and transform.
// The primitive is never copied; many objects may reference the same one.
type Object struct {
	primitive geometry.Primitive
	material  material.Material
	transform transform.Transform

	// Derived from transform by recompute; never updated piecemeal
	world        mgl64.Mat4
	inverseWorld mgl64.Mat4
	normalMatrix mgl64.Mat3
	worldBounds  core.AABB

	// Generation counters of the scenes holding this object
	owners []*atomic.Uint64
}

// NewObject creates a scene object
func NewObject(primitive geometry.Primitive, mat material.Material, xf transform.Transform) *Object {
	o := &Object{primitive: primitive, material: mat, transform: xf}
	o.recompute()
	return o
}

func (o *Object) recompute() {
	o.world = o.transform.Matrix()
	o.inverseWorld = o.transform.InverseMatrix()
	o.normalMatrix = transform.NormalMatrix(o.inverseWorld)

	local := o.primitive.BoundingBox()
	if local.IsEmpty() {
		o.worldBounds = core.EmptyAABB()
		return
	}
	bounds := core.EmptyAABB()
	for _, corner := range local.Corners() {
		bounds.Expand(transform.MulPoint(o.world, corner))
	}
	o.worldBounds = bounds
}

// SetTransform replaces the transform and refreshes all cached world data
func (o *Object) SetTransform(xf transform.Transform) {
	o.transform = xf
	o.recompute()
	for _, g := range o.owners {
		g.Add(1)
	}
}

// SetMaterial replaces the material
func (o *Object) SetMaterial(mat material.Material) {
	o.material = mat
	o.recompute()
}

// Primitive returns the shared local-space primitive
func (o *Object) Primitive() geometry.Primitive { return o.primitive }

// Material returns the surface material
func (o *Object) Material() material.Material { return o.material }

// Transform returns the object-to-world transform
func (o *Object) Transform() transform.Transform { return o.transform }

// WorldMatrix returns the cached object-to-world matrix
func (o *Object) WorldMatrix() mgl64.Mat4 { return o.world }

// InverseWorldMatrix returns the cached world-to-object matrix
func (o *Object) InverseWorldMatrix() mgl64.Mat4 { return o.inverseWorld }

// NormalMatrix returns the inverse-transpose of the world matrix's upper 3x3
func (o *Object) NormalMatrix() mgl64.Mat3 { return o.normalMatrix }

// BoundingBox returns the world bounds: the union of the 8 transformed local corners.
// Under rotation this is larger than the tight bound.
func (o *Object) BoundingBox() core.AABB {
	return o.worldBounds
}

// Hit intersects a world-space ray with the object.
// The returned t is measured along worldRay and the normal is the world-space outward unit normal.
func (o *Object) Hit(worldRay core.Ray) (geometry.Hit, bool) {
	if _, ok := o.worldBounds.Intersect(worldRay); !ok {
		return geometry.Hit{}, false
	}

	// Map into object space, keeping t comparable to world distances
	localRay := core.Ray{
		Origin:    transform.MulPoint(o.inverseWorld, worldRay.Origin),
		Direction: transform.MulDirection(o.inverseWorld, worldRay.Direction),
		TMin:      worldRay.TMin,
		TMax:      worldRay.TMax,
	}
	if length := localRay.Direction.Length(); length > 0 {
		localRay.Direction = localRay.Direction.Divide(length)
		localRay.TMin *= length
		localRay.TMax *= length
	}

	hit, ok := o.primitive.Hit(localRay)
	if !ok {
		return geometry.Hit{}, false
	}

	worldPoint := transform.MulPoint(o.world, localRay.At(hit.T))
	t := worldRay.TMax
	if d2 := worldRay.Direction.LengthSquared(); d2 > 0 {
		t = worldPoint.Subtract(worldRay.Origin).Dot(worldRay.Direction) / d2
	}
	if !worldRay.InRange(t) {
		return geometry.Hit{}, false
	}

	return geometry.Hit{
		T:      t,
		Normal: transform.MulMat3(o.normalMatrix, hit.Normal).Normalize(),
		UV:     hit.UV,
	}, true
}
