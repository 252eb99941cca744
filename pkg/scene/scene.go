package scene

import (
	"sync/atomic"

	"github.com/df07/glimmer/pkg/core"
	"github.com/df07/glimmer/pkg/geometry"
	"github.com/df07/glimmer/pkg/material"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	camera         *geometry.Camera
	background     core.Vec3 // Radiance returned by rays that escape
	objects        []*Object // Insertion order; earlier objects win exact ties
	index          atomic.Pointer[bvh]
	generation     atomic.Uint64 // Advanced when a member object moves
	SamplingConfig SamplingConfig
}

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width                     int // Image width
	Height                    int // Image height
	SamplesPerPixel           int // Number of rays per pixel
	MaxDepth                  int // Maximum ray bounce depth
	RussianRouletteMinBounces int // Minimum bounces before Russian Roulette can activate
}

// DefaultSamplingConfig returns the configuration used when a scene does not specify one
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:                     400,
		Height:                    225,
		SamplesPerPixel:           16,
		MaxDepth:                  8,
		RussianRouletteMinBounces: 3,
	}
}

// Intersection is the nearest surface found along a ray
type Intersection struct {
	T        float64
	Point    core.Vec3
	Normal   core.Vec3 // World-space outward unit normal
	UV       core.Vec2
	Material material.Material
	Object   *Object
}

// New creates an empty scene
func New(camera *geometry.Camera, background core.Vec3) *Scene {
	return &Scene{
		camera:         camera,
		background:     background,
		SamplingConfig: DefaultSamplingConfig(),
	}
}

// Add appends objects in order
func (s *Scene) Add(objects ...*Object) {
	for _, o := range objects {
		o.owners = append(o.owners, &s.generation)
	}
	s.objects = append(s.objects, objects...)
}

// Objects returns the objects in insertion order
func (s *Scene) Objects() []*Object { return s.objects }

// Len returns the number of objects
func (s *Scene) Len() int { return len(s.objects) }

// Empty reports whether the scene has no objects
func (s *Scene) Empty() bool { return len(s.objects) == 0 }

// Camera returns the scene camera, which may be nil for geometry-only scenes
func (s *Scene) Camera() *geometry.Camera { return s.camera }

// Background returns the radiance of escaping rays
func (s *Scene) Background() core.Vec3 { return s.background }

// BoundingBox returns the union of all object bounds
func (s *Scene) BoundingBox() core.AABB {
	box := core.EmptyAABB()
	for _, o := range s.objects {
		box = box.Union(o.BoundingBox())
	}
	return box
}

// BuildIndex brings the object index up to date. Renderers call it before
// starting workers so queries during a render only read the index.
func (s *Scene) BuildIndex() {
	s.accel()
}

// accel returns the object index, rebuilding it after objects were added or moved.
// Add must not run concurrently with FindNearestHit.
func (s *Scene) accel() *bvh {
	generation := s.generation.Load()
	if tree := s.index.Load(); tree != nil && tree.count == len(s.objects) && tree.generation == generation {
		return tree
	}
	tree := buildBVH(s.objects, generation)
	s.index.Store(tree)
	return tree
}

// FindNearestHit returns the closest intersection within [ray.TMin, ray.TMax].
// The result equals a scan in insertion order where each object is queried with
// TMax shrunk to the best t so far, so an earlier object wins an exact tie.
func (s *Scene) FindNearestHit(ray core.Ray) (Intersection, bool) {
	best, index := s.accel().hit(s.objects, ray)
	if index < 0 {
		return Intersection{}, false
	}
	bestObject := s.objects[index]
	return Intersection{
		T:        best.T,
		Point:    ray.At(best.T),
		Normal:   best.Normal,
		UV:       best.UV,
		Material: bestObject.material,
		Object:   bestObject,
	}, true
}
