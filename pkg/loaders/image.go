package loaders

import (
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"io"
	"os"

	"github.com/df07/glimmer/pkg/core"
	"github.com/df07/glimmer/pkg/film"
	"github.com/df07/glimmer/pkg/material"
)

// LoadImage decodes a PNG or JPEG file into an image with channels in [0,1].
// Values are the stored 8/16-bit codes scaled, with no transfer curve applied.
func LoadImage(filename string) (*film.Image, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()
	return DecodeImage(file)
}

// DecodeImage decodes PNG or JPEG data (format detected from the header)
func DecodeImage(r io.Reader) (*film.Image, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := src.Bounds()
	img := film.NewImage(bounds.Dx(), bounds.Dy())
	for y := 0; y < img.Height(); y++ {
		for x := 0; x < img.Width(); x++ {
			// RGBA returns uint32 in [0, 65535]
			r, g, b, _ := src.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			img.Set(x, y, core.NewVec3(
				float64(r)/65535.0,
				float64(g)/65535.0,
				float64(b)/65535.0,
			))
		}
	}
	return img, nil
}

// LoadImageTexture loads a PNG or JPEG file as a material texture.
// Color maps are stored sRGB-encoded, so srgb should be true for albedo and false
// for data maps such as roughness.
func LoadImageTexture(filename string, srgb bool) (*material.ImageTexture, error) {
	img, err := LoadImage(filename)
	if err != nil {
		return nil, err
	}
	return TextureFromImage(img, srgb), nil
}

// TextureFromImage copies img into a texture, optionally decoding sRGB to linear
func TextureFromImage(img *film.Image, srgb bool) *material.ImageTexture {
	pixels := make([]core.Vec3, 0, img.Width()*img.Height())
	for _, p := range img.Pixels() {
		if srgb {
			p = film.SRGBToLinear(p)
		}
		pixels = append(pixels, p)
	}
	return material.NewImageTexture(img.Width(), img.Height(), pixels)
}
