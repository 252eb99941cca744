package film

import (
	"math"

	"github.com/df07/glimmer/pkg/core"
)

// Saturate clamps each channel to [0,1]
func Saturate(c core.Vec3) core.Vec3 {
	return c.Clamp(0, 1)
}

// ClampColor clamps each channel to [lo,hi]
func ClampColor(c core.Vec3, lo, hi float64) core.Vec3 {
	return c.Clamp(lo, hi)
}

// Luminance returns Rec. 709 relative luminance; weights sum to 1 so gray maps to itself
func Luminance(c core.Vec3) float64 {
	return c.Luminance()
}

// LinearToSRGB applies the sRGB transfer curve per channel
func LinearToSRGB(c core.Vec3) core.Vec3 {
	return core.NewVec3(linearToSRGB(c.X), linearToSRGB(c.Y), linearToSRGB(c.Z))
}

// SRGBToLinear inverts LinearToSRGB
func SRGBToLinear(c core.Vec3) core.Vec3 {
	return core.NewVec3(srgbToLinear(c.X), srgbToLinear(c.Y), srgbToLinear(c.Z))
}

func linearToSRGB(x float64) float64 {
	if x <= 0.0031308 {
		return 12.92 * x
	}
	return 1.055*math.Pow(x, 1/2.4) - 0.055
}

func srgbToLinear(x float64) float64 {
	if x <= 0.04045 {
		return x / 12.92
	}
	return math.Pow((x+0.055)/1.055, 2.4)
}
