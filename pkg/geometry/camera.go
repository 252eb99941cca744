package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/glimmer/pkg/core"
	"github.com/df07/glimmer/pkg/transform"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidCamera is returned for a non-positive aspect ratio or a bad near/far range
var ErrInvalidCamera = errors.New("invalid camera parameters")

// Camera is a pinhole camera generating primary rays.
// It looks down its local -Z axis; cameraToWorld places it in the scene.
type Camera struct {
	cameraToWorld transform.Transform
	vfov          float64 // Vertical field of view in radians
	aspect        float64 // Width / height
	near          float64
	far           float64
	tanHalfFov    float64
}

// NewCamera creates a camera from a camera-to-world transform and projection parameters.
// It fails if aspect <= 0 or the range 0 < near < far does not hold.
func NewCamera(cameraToWorld transform.Transform, vfov, aspect, near, far float64) (*Camera, error) {
	if !(aspect > 0) {
		return nil, fmt.Errorf("aspect ratio %g: %w", aspect, ErrInvalidCamera)
	}
	if !(near > 0 && near < far) {
		return nil, fmt.Errorf("near %g, far %g: %w", near, far, ErrInvalidCamera)
	}
	if !(vfov > 0 && vfov < math.Pi) {
		return nil, fmt.Errorf("vertical fov %g: %w", vfov, ErrInvalidCamera)
	}

	return &Camera{
		cameraToWorld: cameraToWorld,
		vfov:          vfov,
		aspect:        aspect,
		near:          near,
		far:           far,
		tanHalfFov:    math.Tan(vfov / 2),
	}, nil
}

// NewCameraLookAt creates a camera at eye looking at target
func NewCameraLookAt(eye, target, up core.Vec3, vfov, aspect, near, far float64) (*Camera, error) {
	return NewCamera(transform.LookAt(eye, target, up), vfov, aspect, near, far)
}

// GenerateRay returns the primary ray through pixel coordinates (px, py) of a width x height image.
// Pixel centers sit at +0.5 and row 0 is the top of the image.
func (c *Camera) GenerateRay(px, py float64, width, height int) core.Ray {
	ndcX := 2*(px+0.5)/float64(width) - 1
	ndcY := 1 - 2*(py+0.5)/float64(height)

	dirCamera := core.NewVec3(
		ndcX*c.aspect*c.tanHalfFov,
		ndcY*c.tanHalfFov,
		-1,
	)

	origin := c.cameraToWorld.Point(core.Vec3{})
	direction := c.cameraToWorld.Direction(dirCamera).Normalize()
	return core.NewRayRange(origin, direction, c.near, c.far)
}

// ViewProjection returns projection * view for rasterizing world points into clip space
func (c *Camera) ViewProjection() mgl64.Mat4 {
	projection := transform.Perspective(c.vfov, c.aspect, c.near, c.far)
	return projection.Mul4(c.cameraToWorld.InverseMatrix())
}

// Aspect returns the aspect ratio
func (c *Camera) Aspect() float64 { return c.aspect }

// VFov returns the vertical field of view in radians
func (c *Camera) VFov() float64 { return c.vfov }

// Near returns the near distance
func (c *Camera) Near() float64 { return c.near }

// Far returns the far distance
func (c *Camera) Far() float64 { return c.far }

// Transform returns the camera-to-world transform
func (c *Camera) Transform() transform.Transform { return c.cameraToWorld }
