package scene

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/glimmer/pkg/core"
	"github.com/df07/glimmer/pkg/geometry"
	"github.com/df07/glimmer/pkg/material"
	"github.com/df07/glimmer/pkg/transform"
)

func testCamera(t *testing.T, aspect float64) *geometry.Camera {
	t.Helper()
	cam, err := geometry.NewCameraLookAt(core.Vec3{}, core.NewVec3(0, 0, -1), core.NewVec3(0, 1, 0), math.Pi/3, aspect, 0.1, 100)
	if err != nil {
		t.Fatal(err)
	}
	return cam
}

func TestScene_ConstructAndProps(t *testing.T) {
	s := New(testCamera(t, 16.0/9.0), core.NewVec3(0.1, 0.2, 0.3))

	if s.Background().X != 0.1 {
		t.Errorf("Expected background red 0.1, got %v", s.Background())
	}
	if s.Camera().Aspect() != 16.0/9.0 {
		t.Errorf("Expected aspect 16/9, got %f", s.Camera().Aspect())
	}
	if !s.Empty() || s.Len() != 0 {
		t.Error("Expected empty scene")
	}
	if !s.BoundingBox().IsEmpty() {
		t.Error("Expected empty bounds for empty scene")
	}
	if _, ok := s.FindNearestHit(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1))); ok {
		t.Error("Expected miss in empty scene")
	}
}

func TestScene_AddObjectsAndBoundingBox(t *testing.T) {
	s := New(testCamera(t, 1), core.Vec3{})
	mat := material.Lambertian(core.NewVec3(1, 1, 1))

	o1 := NewObject(geometry.NewSphere(core.Vec3{}, 1.0), mat, trs(core.Vec3{}, core.NewVec3(1, 1, 1)))
	o2 := NewObject(geometry.NewSphere(core.Vec3{}, 0.5), mat, trs(core.NewVec3(5, 0, 0), core.NewVec3(2, 1, 1)))
	s.Add(o1, o2)

	if s.Len() != 2 {
		t.Fatalf("Expected 2 objects, got %d", s.Len())
	}
	box := s.BoundingBox()
	if box.IsEmpty() {
		t.Fatal("Expected non-empty bounds")
	}
	if math.Abs(box.Min.X+1) > 1e-9 || math.Abs(box.Max.X-6) > 1e-9 {
		t.Errorf("Expected X extent [-1, 6], got [%f, %f]", box.Min.X, box.Max.X)
	}
}

func TestScene_FindNearestHit(t *testing.T) {
	s := New(testCamera(t, 1), core.Vec3{})
	sphere := geometry.NewSphere(core.Vec3{}, 1)
	far := material.Lambertian(core.NewVec3(0, 0, 1))
	near := material.Lambertian(core.NewVec3(1, 0, 0))

	// Far object inserted first to check ordering does not decide distance
	s.Add(
		NewObject(sphere, far, transform.Translate(core.NewVec3(0, 0, -10))),
		NewObject(sphere, near, transform.Translate(core.NewVec3(0, 0, -4))),
	)

	tests := []struct {
		name      string
		ray       core.Ray
		expectHit bool
		expectedT float64
		expected  material.Material
	}{
		{"nearest wins", core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), true, 3, near},
		{"TMin skips near object", core.NewRayRange(core.Vec3{}, core.NewVec3(0, 0, -1), 6, 100), true, 9, far},
		{"TMax excludes everything", core.NewRayRange(core.Vec3{}, core.NewVec3(0, 0, -1), 0, 2), false, 0, material.Material{}},
		{"escapes", core.NewRay(core.Vec3{}, core.NewVec3(0, 1, 0)), false, 0, material.Material{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isect, ok := s.FindNearestHit(tt.ray)
			if ok != tt.expectHit {
				t.Fatalf("Expected hit=%t, got %t", tt.expectHit, ok)
			}
			if !ok {
				return
			}
			if math.Abs(isect.T-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got %f", tt.expectedT, isect.T)
			}
			if isect.Material != tt.expected {
				t.Error("Unexpected material")
			}
			if isect.Point.Subtract(tt.ray.At(isect.T)).Length() > 1e-12 {
				t.Errorf("Expected point on ray, got %v", isect.Point)
			}
			if isect.Object == nil {
				t.Error("Expected object reference")
			}
		})
	}
}

func TestScene_TieGoesToFirstInserted(t *testing.T) {
	s := New(testCamera(t, 1), core.Vec3{})
	sphere := geometry.NewSphere(core.NewVec3(0, 0, -5), 1)
	first := material.Lambertian(core.NewVec3(1, 0, 0))
	second := material.Lambertian(core.NewVec3(0, 1, 0))

	o1 := NewObject(sphere, first, transform.Identity())
	o2 := NewObject(sphere, second, transform.Identity())
	s.Add(o1, o2)

	isect, ok := s.FindNearestHit(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)))
	if !ok {
		t.Fatal("Expected hit")
	}
	if isect.Object != o1 || isect.Material != first {
		t.Error("Expected first inserted object to win the tie")
	}
}

func TestBuiltinScenes(t *testing.T) {
	cfg := DefaultSamplingConfig()
	cfg.Width, cfg.Height = 32, 18

	names := Names()
	if len(names) == 0 {
		t.Fatal("Expected built-in scenes")
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			s, err := Create(name, cfg)
			if err != nil {
				t.Fatalf("Create(%q): %v", name, err)
			}
			if s.Empty() {
				t.Error("Expected objects")
			}
			if math.Abs(s.Camera().Aspect()-32.0/18.0) > 1e-12 {
				t.Errorf("Expected aspect from config, got %f", s.Camera().Aspect())
			}
			if s.SamplingConfig != cfg {
				t.Errorf("Expected sampling config to be carried, got %+v", s.SamplingConfig)
			}
		})
	}

	if _, err := Create("no-such-scene", cfg); err == nil {
		t.Error("Expected error for unknown scene")
	}
}

func TestMeshSceneSharesPrimitive(t *testing.T) {
	s, err := NewMeshScene(DefaultSamplingConfig())
	if err != nil {
		t.Fatal(err)
	}
	objs := s.Objects()
	if objs[0].Primitive() != objs[1].Primitive() || objs[1].Primitive() != objs[2].Primitive() {
		t.Error("Expected instances to share one mesh")
	}
}

func TestListAllScenes(t *testing.T) {
	dir := t.TempDir()
	config := `{"name": "Lonely Sphere", "description": "one sphere"}`
	if err := os.WriteFile(filepath.Join(dir, "lonely.json"), []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}

	scenes, err := ListAllScenes(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(scenes) != len(Names())+1 {
		t.Fatalf("Expected built-ins plus one config, got %d", len(scenes))
	}
	last := scenes[len(scenes)-1]
	if last.ID != "config:lonely" || last.Name != "Lonely Sphere" || last.Type != "config" {
		t.Errorf("Unexpected config scene %+v", last)
	}

	missing, err := ListConfigScenes(filepath.Join(dir, "missing"))
	if err != nil || len(missing) != 0 {
		t.Errorf("Expected empty list for missing dir, got %v, %v", missing, err)
	}
}
