// Package film holds the floating-point image buffer renders are written into.
package film

import (
	"errors"
	"fmt"

	"github.com/df07/glimmer/pkg/core"
)

// ErrOutOfBounds is returned by Get for coordinates outside the image
var ErrOutOfBounds = errors.New("pixel out of bounds")

// Image is a row-major buffer of linear RGB pixels
type Image struct {
	width  int
	height int
	pixels []core.Vec3
}

// NewImage creates a black image
func NewImage(width, height int) *Image {
	width, height = max(width, 0), max(height, 0)
	return &Image{
		width:  width,
		height: height,
		pixels: make([]core.Vec3, width*height),
	}
}

func (img *Image) Width() int  { return img.width }
func (img *Image) Height() int { return img.height }

// At returns the pixel at (x, y). Coordinates must be in range.
func (img *Image) At(x, y int) core.Vec3 {
	return img.pixels[y*img.width+x]
}

// Set writes the pixel at (x, y). Coordinates must be in range.
func (img *Image) Set(x, y int, c core.Vec3) {
	img.pixels[y*img.width+x] = c
}

// Get is the bounds-checked form of At
func (img *Image) Get(x, y int) (core.Vec3, error) {
	if x < 0 || y < 0 || x >= img.width || y >= img.height {
		return core.Vec3{}, fmt.Errorf("(%d, %d) in %dx%d image: %w", x, y, img.width, img.height, ErrOutOfBounds)
	}
	return img.At(x, y), nil
}

// Clear sets every pixel to fill
func (img *Image) Clear(fill core.Vec3) {
	for i := range img.pixels {
		img.pixels[i] = fill
	}
}

// Resize changes the dimensions and sets every pixel to fill
func (img *Image) Resize(width, height int, fill core.Vec3) {
	width, height = max(width, 0), max(height, 0)
	if cap(img.pixels) >= width*height {
		img.pixels = img.pixels[:width*height]
	} else {
		img.pixels = make([]core.Vec3, width*height)
	}
	img.width = width
	img.height = height
	img.Clear(fill)
}

// Pixels returns the underlying row-major slice
func (img *Image) Pixels() []core.Vec3 {
	return img.pixels
}
