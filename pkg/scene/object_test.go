package scene

import (
	"math"
	"testing"

	"github.com/df07/glimmer/pkg/core"
	"github.com/df07/glimmer/pkg/geometry"
	"github.com/df07/glimmer/pkg/material"
	"github.com/df07/glimmer/pkg/transform"
	"github.com/go-gl/mathgl/mgl64"
)

func trs(t core.Vec3, s core.Vec3) transform.Transform {
	return transform.FromTRS(t, mgl64.QuatIdent(), s)
}

func TestObject_IdentityMatchesPrimitive(t *testing.T) {
	sphere := geometry.NewSphere(core.Vec3{}, 1)
	obj := NewObject(sphere, material.Lambertian(core.NewVec3(1, 1, 1)), transform.Identity())

	ray := core.NewRayRange(core.NewVec3(0, 0, 3), core.NewVec3(0, 0, -1), 0, 100)
	hObj, ok1 := obj.Hit(ray)
	hDir, ok2 := sphere.Hit(ray)
	if !ok1 || !ok2 {
		t.Fatal("Expected both to hit")
	}
	if math.Abs(hObj.T-hDir.T) > 1e-12 {
		t.Errorf("Expected t=%f, got %f", hDir.T, hObj.T)
	}
	if math.Abs(hObj.Normal.Z-hDir.Normal.Z) > 1e-12 {
		t.Errorf("Expected normal %v, got %v", hDir.Normal, hObj.Normal)
	}
}

func TestObject_TranslatedHit(t *testing.T) {
	obj := NewObject(geometry.NewSphere(core.Vec3{}, 1), material.Lambertian(core.NewVec3(0.8, 0.2, 0.1)),
		trs(core.NewVec3(0, 0, 5), core.NewVec3(1, 1, 1)))

	ray := core.NewRayRange(core.Vec3{}, core.NewVec3(0, 0, 1), 0, 100)
	hit, ok := obj.Hit(ray)
	if !ok {
		t.Fatal("Expected hit")
	}
	if p := ray.At(hit.T); math.Abs(p.Z-4) > 1e-9 {
		t.Errorf("Expected first hit at z=4, got %v", p)
	}
	if math.Abs(hit.Normal.Z+1) > 1e-9 {
		t.Errorf("Expected normal -Z, got %v", hit.Normal)
	}
}

func TestObject_BoundingBoxWithScale(t *testing.T) {
	offset := core.NewVec3(1, -2, 3)
	obj := NewObject(geometry.NewSphere(core.Vec3{}, 1), material.Lambertian(core.NewVec3(0.5, 0.5, 0.5)),
		trs(offset, core.NewVec3(2, 3, 0.5)))

	box := obj.BoundingBox()
	expectedMin := offset.Subtract(core.NewVec3(2, 3, 0.5))
	expectedMax := offset.Add(core.NewVec3(2, 3, 0.5))
	if box.Min.Subtract(expectedMin).Length() > 1e-9 || box.Max.Subtract(expectedMax).Length() > 1e-9 {
		t.Errorf("Expected box [%v, %v], got %v", expectedMin, expectedMax, box)
	}
}

func TestObject_RotatedBoundingBoxIsConservative(t *testing.T) {
	rot := mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 0, 1})
	obj := NewObject(geometry.NewSphere(core.Vec3{}, 1), material.Material{},
		transform.FromTRS(core.Vec3{}, rot, core.NewVec3(1, 1, 1)))

	// Rotated corners of [-1,1]^3 reach sqrt(2) in X and Y
	box := obj.BoundingBox()
	if math.Abs(box.Max.X-math.Sqrt2) > 1e-9 || math.Abs(box.Max.Z-1) > 1e-9 {
		t.Errorf("Expected corner-union bounds, got %v", box)
	}
}

func TestObject_ScalingAdjustsRayParams(t *testing.T) {
	obj := NewObject(geometry.NewSphere(core.Vec3{}, 1), material.Lambertian(core.NewVec3(1, 1, 1)),
		trs(core.Vec3{}, core.NewVec3(0.5, 0.5, 0.5)))

	// Sphere appears with radius 0.5; first hit is 1.5 world units away
	ray := core.NewRayRange(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1), 0, 2)
	hit, ok := obj.Hit(ray)
	if !ok {
		t.Fatal("Expected hit")
	}
	if math.Abs(hit.T-1.5) > 1e-9 {
		t.Errorf("Expected world t=1.5, got %f", hit.T)
	}
	if hit.Normal.Z <= 0 {
		t.Errorf("Expected outward +Z normal, got %v", hit.Normal)
	}

	short := core.NewRayRange(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1), 0, 1.4)
	if _, ok := obj.Hit(short); ok {
		t.Error("Expected hit beyond TMax to be discarded")
	}
}

func TestObject_NonUnitRayDirection(t *testing.T) {
	obj := NewObject(geometry.NewSphere(core.Vec3{}, 1), material.Material{}, trs(core.Vec3{}, core.NewVec3(2, 2, 2)))

	// World t is measured in units of the ray's own direction length
	ray := core.NewRayRange(core.NewVec3(0, 0, 10), core.NewVec3(0, 0, -4), 0, 100)
	hit, ok := obj.Hit(ray)
	if !ok {
		t.Fatal("Expected hit")
	}
	if math.Abs(hit.T-2) > 1e-9 {
		t.Errorf("Expected t=2, got %f", hit.T)
	}
}

func TestObject_NormalUnderNonUniformScale(t *testing.T) {
	obj := NewObject(geometry.NewSphere(core.Vec3{}, 1), material.Material{}, trs(core.Vec3{}, core.NewVec3(2, 1, 1)))

	// Point on the ellipsoid x^2/4 + y^2 = 1 at 45 degrees in object space
	s := 1 / math.Sqrt2
	point := core.NewVec3(2*s, s, 0)
	expected := core.NewVec3(point.X/4, point.Y, 0).Normalize() // Gradient direction

	ray := core.NewRayRange(point.Add(expected.Multiply(3)), expected.Negate(), 0, 100)
	hit, ok := obj.Hit(ray)
	if !ok {
		t.Fatal("Expected hit")
	}
	if math.Abs(hit.T-3) > 1e-9 {
		t.Errorf("Expected t=3, got %f", hit.T)
	}
	if hit.Normal.Subtract(expected).Length() > 1e-9 {
		t.Errorf("Expected normal %v, got %v", expected, hit.Normal)
	}

	// Axis-aligned case: (1,0,0) maps to (1/sx,0,0), not (sx,0,0)
	n := transform.MulMat3(obj.NormalMatrix(), core.NewVec3(1, 0, 0))
	if math.Abs(n.X-0.5) > 1e-12 {
		t.Errorf("Expected unnormalized normal x=0.5, got %v", n)
	}
}

func TestObject_SetTransformRefreshesCache(t *testing.T) {
	obj := NewObject(geometry.NewSphere(core.Vec3{}, 1), material.Material{}, transform.Identity())
	obj.SetTransform(trs(core.NewVec3(10, 0, 0), core.NewVec3(1, 1, 1)))

	if math.Abs(obj.BoundingBox().Min.X-9) > 1e-9 {
		t.Errorf("Expected refreshed bounds, got %v", obj.BoundingBox())
	}
	if !obj.InverseWorldMatrix().Mul4(obj.WorldMatrix()).ApproxEqualThreshold(mgl64.Ident4(), 1e-12) {
		t.Error("Expected cached inverse to match cached world matrix")
	}

	ray := core.NewRayRange(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1), 0, 100)
	if _, ok := obj.Hit(ray); ok {
		t.Error("Expected ray at the old position to miss")
	}

	lit := material.Emissive(core.NewVec3(1, 1, 1))
	obj.SetMaterial(lit)
	if obj.Material() != lit {
		t.Error("Expected material to be replaced")
	}
}

func TestObject_EmptyMeshNeverHits(t *testing.T) {
	obj := NewObject(geometry.NewEmptyTriangleMesh(), material.Material{}, transform.Identity())
	if !obj.BoundingBox().IsEmpty() {
		t.Error("Expected empty bounds")
	}
	if _, ok := obj.Hit(core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))); ok {
		t.Error("Expected miss")
	}
}

func TestObject_MeshBuilderChangesDoNotReachObject(t *testing.T) {
	b := geometry.NewMeshBuilder()
	b.AddVertex(core.NewVec3(0, 0, 0))
	b.AddVertex(core.NewVec3(1, 0, 0))
	b.AddVertex(core.NewVec3(1, 1, 0))
	if err := b.AddTriangle(0, 1, 2); err != nil {
		t.Fatal(err)
	}
	mesh := b.Build()
	obj := NewObject(mesh, material.Material{}, transform.Identity())

	i := b.AddVertex(core.NewVec3(10, 10, 0))
	j := b.AddVertex(core.NewVec3(11, 10, 0))
	k := b.AddVertex(core.NewVec3(10, 11, 0))
	if err := b.AddTriangle(i, j, k); err != nil {
		t.Fatal(err)
	}

	// The object and its primitive must agree everywhere, including at the later geometry
	for _, origin := range []core.Vec3{core.NewVec3(0.8, 0.2, 1), core.NewVec3(10.2, 10.2, 1)} {
		ray := core.NewRayRange(origin, core.NewVec3(0, 0, -1), 0, 100)
		_, primHit := mesh.Hit(ray)
		_, objHit := obj.Hit(ray)
		if primHit != objHit {
			t.Errorf("Ray from %v: primitive hit=%v, object hit=%v", origin, primHit, objHit)
		}
	}
	if obj.BoundingBox() != mesh.BoundingBox() {
		t.Errorf("Expected object bounds %v to match mesh bounds %v", obj.BoundingBox(), mesh.BoundingBox())
	}
}
