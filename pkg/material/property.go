package material

import (
	"math"

	"github.com/df07/glimmer/pkg/core"
)

// Property is a material channel that varies over a surface's UV parameterization
type Property[T any] interface {
	Sample(uv core.Vec2) T
}

// Uniform returns the same value everywhere.
// It is a plain value so materials built from it stay comparable with ==.
type Uniform[T any] struct {
	Value T
}

// NewUniform creates a uniform property
func NewUniform[T any](value T) Uniform[T] {
	return Uniform[T]{Value: value}
}

// Sample returns the stored value regardless of uv
func (u Uniform[T]) Sample(uv core.Vec2) T {
	return u.Value
}

// Checkerboard alternates between two values on a Frequency x Frequency grid in UV space
type Checkerboard[T any] struct {
	Even, Odd T
	Frequency float64
}

// NewCheckerboard creates a checkerboard property
func NewCheckerboard[T any](even, odd T, frequency float64) Checkerboard[T] {
	return Checkerboard[T]{Even: even, Odd: odd, Frequency: frequency}
}

// Sample picks Even or Odd depending on the cell uv falls into
func (c Checkerboard[T]) Sample(uv core.Vec2) T {
	cx := int(math.Floor(uv.X * c.Frequency))
	cy := int(math.Floor(uv.Y * c.Frequency))
	if (cx+cy)%2 == 0 {
		return c.Even
	}
	return c.Odd
}

// ImageTexture provides color from a 2D image
type ImageTexture struct {
	Width  int
	Height int
	Pixels []core.Vec3 // Row-major: Pixels[y*Width + x]
}

// NewImageTexture creates a new image texture
func NewImageTexture(width, height int, pixels []core.Vec3) *ImageTexture {
	return &ImageTexture{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}
}

// Sample looks up the texel at uv using nearest-neighbor filtering.
// UVs wrap; V=0 is the bottom row of the image.
func (t *ImageTexture) Sample(uv core.Vec2) core.Vec3 {
	if t.Width == 0 || t.Height == 0 {
		return core.Vec3{}
	}
	x, y := t.texel(uv)
	return t.Pixels[y*t.Width+x]
}

func (t *ImageTexture) texel(uv core.Vec2) (int, int) {
	u := uv.X - math.Floor(uv.X)
	v := uv.Y - math.Floor(uv.Y)

	x := int(u * float64(t.Width))
	y := int((1.0 - v) * float64(t.Height))

	x = min(max(x, 0), t.Width-1)
	y = min(max(y, 0), t.Height-1)
	return x, y
}

// ImageScalar reads a scalar channel (roughness, transparency) from an image by luminance
type ImageScalar struct {
	Image *ImageTexture
}

// Sample returns the luminance of the texel at uv
func (s ImageScalar) Sample(uv core.Vec2) float64 {
	if s.Image == nil {
		return 0
	}
	return s.Image.Sample(uv).Luminance()
}
