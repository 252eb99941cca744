package film

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"github.com/df07/glimmer/pkg/core"
)

// Encoding selects how linear radiance is mapped to 8-bit output
type Encoding int

const (
	// EncodingSRGB applies the sRGB transfer curve
	EncodingSRGB Encoding = iota
	// EncodingGamma2 applies a plain gamma of 2
	EncodingGamma2
	// EncodingLinear writes clamped values unchanged
	EncodingLinear
)

// vec3ToColor converts a linear color to RGBA with clamping and the chosen transfer curve
func vec3ToColor(c core.Vec3, enc Encoding) color.RGBA {
	switch enc {
	case EncodingSRGB:
		c = LinearToSRGB(Saturate(c))
	case EncodingGamma2:
		c = c.GammaCorrect(2.0)
	}
	c = Saturate(c)

	return color.RGBA{
		R: uint8(255*c.X + 0.5),
		G: uint8(255*c.Y + 0.5),
		B: uint8(255*c.Z + 0.5),
		A: 255,
	}
}

// ToRGBA converts the image to an 8-bit RGBA image
func ToRGBA(img *Image, enc Encoding) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, img.Width(), img.Height()))
	for y := 0; y < img.Height(); y++ {
		for x := 0; x < img.Width(); x++ {
			out.SetRGBA(x, y, vec3ToColor(img.At(x, y), enc))
		}
	}
	return out
}

// EncodePNG writes the image as PNG
func EncodePNG(w io.Writer, img *Image, enc Encoding) error {
	if err := png.Encode(w, ToRGBA(img, enc)); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}

// SavePNG writes the image to a PNG file
func SavePNG(path string, img *Image, enc Encoding) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := EncodePNG(file, img, enc); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
