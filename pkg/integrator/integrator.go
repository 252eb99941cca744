package integrator

import (
	"github.com/df07/glimmer/pkg/core"
	"github.com/df07/glimmer/pkg/scene"
)

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor estimates the radiance arriving along ray.
	// The scene is only read; sampler must not be shared between goroutines.
	RayColor(ray core.Ray, sc *scene.Scene, sampler core.Sampler) core.Vec3
}
