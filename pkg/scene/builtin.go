package scene

import (
	"fmt"
	"math"
	"sort"

	"github.com/df07/glimmer/pkg/core"
	"github.com/df07/glimmer/pkg/geometry"
	"github.com/df07/glimmer/pkg/material"
	"github.com/df07/glimmer/pkg/transform"
	"github.com/go-gl/mathgl/mgl64"
)

// Builder constructs a scene sized for the given sampling configuration
type Builder func(cfg SamplingConfig) (*Scene, error)

type builtin struct {
	info  SceneInfo
	build Builder
}

var builtins = map[string]builtin{
	"default": {
		info:  SceneInfo{ID: "default", Name: "Default Scene", Description: "Red diffuse and green metal spheres under a blue sky"},
		build: NewDefaultScene,
	},
	"emissive": {
		info:  SceneInfo{ID: "emissive", Name: "Emissive Sphere", Description: "Single red emitter on black"},
		build: NewEmissiveScene,
	},
	"diffuse": {
		info:  SceneInfo{ID: "diffuse", Name: "Diffuse Sphere", Description: "Gray Lambertian sphere lit by the background"},
		build: NewDiffuseScene,
	},
	"glass": {
		info:  SceneInfo{ID: "glass", Name: "Glass Sphere", Description: "Dielectric sphere over a checkerboard ground"},
		build: NewGlassScene,
	},
	"mesh": {
		info:  SceneInfo{ID: "mesh", Name: "Instanced Mesh", Description: "One octahedron mesh shared by several transformed objects"},
		build: NewMeshScene,
	},
	"cornell": {
		info:  SceneInfo{ID: "cornell", Name: "Cornell Box", Description: "Cornell box with an area light and two spheres"},
		build: NewCornellScene,
	},
}

// Names returns the built-in scene names in sorted order
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create builds the named built-in scene
func Create(name string, cfg SamplingConfig) (*Scene, error) {
	b, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene %q (available: %v)", name, Names())
	}
	return b.build(cfg)
}

func aspect(cfg SamplingConfig) float64 {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 1
	}
	return float64(cfg.Width) / float64(cfg.Height)
}

func translate(x, y, z float64) transform.Transform {
	return transform.Translate(core.NewVec3(x, y, z))
}

func frontCamera(cfg SamplingConfig) (*geometry.Camera, error) {
	return geometry.NewCameraLookAt(core.NewVec3(0, 0, 5), core.Vec3{}, core.NewVec3(0, 1, 0), math.Pi/3, aspect(cfg), 0.1, 100)
}

// NewDefaultScene creates two unit spheres sharing one primitive
func NewDefaultScene(cfg SamplingConfig) (*Scene, error) {
	camera, err := frontCamera(cfg)
	if err != nil {
		return nil, err
	}

	s := New(camera, core.NewVec3(0.1, 0.2, 0.4))
	s.SamplingConfig = cfg

	sphere := geometry.NewSphere(core.Vec3{}, 1.0)
	redDiffuse := material.Lambertian(core.NewVec3(0.9, 0.1, 0.1))
	greenMetal := material.Metal(core.NewVec3(0.1, 0.9, 0.1), 0.1)

	s.Add(
		NewObject(sphere, redDiffuse, translate(-1.25, 0, 0)),
		NewObject(sphere, greenMetal, translate(1.25, 0, 0)),
	)
	return s, nil
}

// NewEmissiveScene creates a red emissive sphere of power 2 on a black background
func NewEmissiveScene(cfg SamplingConfig) (*Scene, error) {
	camera, err := frontCamera(cfg)
	if err != nil {
		return nil, err
	}

	s := New(camera, core.Vec3{})
	s.SamplingConfig = cfg
	s.Add(NewObject(geometry.NewSphere(core.Vec3{}, 1.0), material.Emissive(core.NewVec3(1, 0, 0), 2), transform.Identity()))
	return s, nil
}

// NewDiffuseScene creates a gray Lambertian sphere lit only by a uniform sky
func NewDiffuseScene(cfg SamplingConfig) (*Scene, error) {
	camera, err := frontCamera(cfg)
	if err != nil {
		return nil, err
	}

	s := New(camera, core.NewVec3(0.7, 0.8, 1.0))
	s.SamplingConfig = cfg
	s.Add(NewObject(geometry.NewSphere(core.Vec3{}, 1.0), material.Lambertian(core.NewVec3(0.5, 0.5, 0.5)), transform.Identity()))
	return s, nil
}

// NewGlassScene creates a glass sphere resting on a checkerboard plane
func NewGlassScene(cfg SamplingConfig) (*Scene, error) {
	camera, err := geometry.NewCameraLookAt(core.NewVec3(0, 1.5, 5), core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), math.Pi/4, aspect(cfg), 0.1, 100)
	if err != nil {
		return nil, err
	}

	s := New(camera, core.NewVec3(0.6, 0.7, 0.9))
	s.SamplingConfig = cfg

	checker := material.NewCheckerboard(core.NewVec3(0.9, 0.9, 0.9), core.NewVec3(0.2, 0.2, 0.25), 0.5)
	ground := material.Lambertian(core.Vec3{}).WithAlbedo(checker)

	s.Add(
		NewObject(geometry.NewPlane(core.NewVec3(0, -1, 0), core.NewVec3(0, 1, 0)), ground, transform.Identity()),
		NewObject(geometry.NewSphere(core.Vec3{}, 1.0), material.Glass(core.NewVec3(1, 1, 1), 0, 1), transform.Identity()),
	)
	return s, nil
}

// NewOctahedron builds a closed octahedron mesh with vertices on the unit axes
func NewOctahedron() *geometry.TriangleMesh {
	vertices := []core.Vec3{
		core.NewVec3(1, 0, 0), core.NewVec3(-1, 0, 0),
		core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0),
		core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1),
	}
	faces := []int{
		0, 2, 4, 2, 1, 4, 1, 3, 4, 3, 0, 4,
		2, 0, 5, 1, 2, 5, 3, 1, 5, 0, 3, 5,
	}
	mesh, err := geometry.NewTriangleMesh(vertices, faces)
	if err != nil {
		panic(err)
	}
	return mesh
}

// NewMeshScene instances one octahedron three times with different transforms
func NewMeshScene(cfg SamplingConfig) (*Scene, error) {
	camera, err := geometry.NewCameraLookAt(core.NewVec3(0, 1, 6), core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), math.Pi/3, aspect(cfg), 0.1, 100)
	if err != nil {
		return nil, err
	}

	s := New(camera, core.NewVec3(0.05, 0.05, 0.08))
	s.SamplingConfig = cfg

	mesh := NewOctahedron()
	spin := mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 1, 0})

	s.Add(
		NewObject(mesh, material.Lambertian(core.NewVec3(0.8, 0.3, 0.3)),
			transform.FromTRS(core.NewVec3(-2, 0, 0), spin, core.NewVec3(0.8, 0.8, 0.8))),
		NewObject(mesh, material.Metal(core.NewVec3(0.9, 0.9, 0.9), 0.2),
			transform.FromTRS(core.NewVec3(0, 0, 0), mgl64.QuatIdent(), core.NewVec3(1, 1.5, 1))),
		NewObject(mesh, material.Glass(core.NewVec3(1, 1, 1), 0, 1),
			transform.FromTRS(core.NewVec3(2, 0, 0), spin, core.NewVec3(0.8, 0.8, 0.8))),
		NewObject(geometry.NewSphere(core.Vec3{}, 1.0), material.Emissive(core.NewVec3(1, 0.95, 0.9), 4),
			transform.FromTRS(core.NewVec3(0, 4, 2), mgl64.QuatIdent(), core.NewVec3(1, 1, 1))),
		NewObject(geometry.NewPlane(core.NewVec3(0, -1.5, 0), core.NewVec3(0, 1, 0)), material.Lambertian(core.NewVec3(0.5, 0.5, 0.5)), transform.Identity()),
	)
	return s, nil
}

// newQuad creates a two-triangle mesh spanning corner, corner+u, corner+u+v, corner+v
func newQuad(corner, u, v core.Vec3) *geometry.TriangleMesh {
	mesh := geometry.NewMeshBuilder()
	i0 := mesh.AddVertex(corner)
	i1 := mesh.AddVertex(corner.Add(u))
	i2 := mesh.AddVertex(corner.Add(u).Add(v))
	i3 := mesh.AddVertex(corner.Add(v))
	// Indices come from AddVertex, so these cannot fail
	_ = mesh.AddTriangle(i0, i1, i2)
	_ = mesh.AddTriangle(i0, i2, i3)
	return mesh.Build()
}

// NewCornellScene creates a classic Cornell box with quad walls and an area light
func NewCornellScene(cfg SamplingConfig) (*Scene, error) {
	camera, err := geometry.NewCameraLookAt(
		core.NewVec3(278, 278, -800), // Outside the box looking in
		core.NewVec3(278, 278, 0),
		core.NewVec3(0, 1, 0),
		40*math.Pi/180, aspect(cfg), 1, 5000)
	if err != nil {
		return nil, err
	}

	s := New(camera, core.Vec3{})
	s.SamplingConfig = cfg

	white := material.Lambertian(core.NewVec3(0.73, 0.73, 0.73))
	red := material.Lambertian(core.NewVec3(0.65, 0.05, 0.05))
	green := material.Lambertian(core.NewVec3(0.12, 0.45, 0.15))
	light := material.Emissive(core.NewVec3(1, 1, 1), 15)

	// Standard 555 unit box
	const size = 555.0
	x := core.NewVec3(size, 0, 0)
	y := core.NewVec3(0, size, 0)
	z := core.NewVec3(0, 0, size)

	floor := newQuad(core.Vec3{}, x, z)
	ceiling := newQuad(core.NewVec3(0, size, 0), x, z)
	back := newQuad(core.NewVec3(0, 0, size), x, y)
	left := newQuad(core.Vec3{}, z, y)
	right := newQuad(core.NewVec3(size, 0, 0), z, y)
	lamp := newQuad(core.NewVec3(213, size-1, 227), core.NewVec3(130, 0, 0), core.NewVec3(0, 0, 105))

	id := transform.Identity()
	s.Add(
		NewObject(floor, white, id),
		NewObject(ceiling, white, id),
		NewObject(back, white, id),
		NewObject(left, red, id),
		NewObject(right, green, id),
		NewObject(lamp, light, id),
	)

	// Both spheres share one primitive
	sphere := geometry.NewSphere(core.Vec3{}, 1.0)
	s.Add(
		NewObject(sphere, material.Glass(core.NewVec3(1, 1, 1), 0, 1),
			transform.FromTRS(core.NewVec3(185, 90, 170), mgl64.QuatIdent(), core.NewVec3(90, 90, 90))),
		NewObject(sphere, material.Metal(core.NewVec3(0.8, 0.85, 0.88), 0.05),
			transform.FromTRS(core.NewVec3(370, 90, 370), mgl64.QuatIdent(), core.NewVec3(90, 90, 90))),
	)
	return s, nil
}
