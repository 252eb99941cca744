package material

import (
	"math"

	"github.com/df07/glimmer/pkg/core"
)

// DefaultRefractiveIndex is the index of refraction used by Glass
const DefaultRefractiveIndex = 1.5

// Material bundles the UV-sampled channels read by the integrator.
// The zero value is a black, opaque, non-emissive surface.
// A nil property samples as zero, except RefractiveIndex which samples as 1.
type Material struct {
	Albedo          Property[core.Vec3]
	Roughness       Property[float64]
	Transparency    Property[float64]
	Emission        Property[float64] // Emitted power, scales Radiance
	Radiance        Property[core.Vec3]
	RefractiveIndex Property[float64]
}

// Lambertian creates an ideal diffuse material
func Lambertian(albedo core.Vec3) Material {
	return Material{
		Albedo:    NewUniform(albedo),
		Roughness: NewUniform(1.0),
	}
}

// Metal creates a reflective material; roughness is clamped to [0,1]
func Metal(albedo core.Vec3, roughness float64) Material {
	return Material{
		Albedo:    NewUniform(albedo),
		Roughness: NewUniform(clamp01(roughness)),
	}
}

// Glass creates a dielectric with the default refractive index.
// Roughness and transparency are clamped to [0,1].
func Glass(albedo core.Vec3, roughness, transparency float64) Material {
	return GlassIOR(albedo, roughness, transparency, DefaultRefractiveIndex)
}

// GlassIOR creates a dielectric with an explicit refractive index (clamped to >= 1)
func GlassIOR(albedo core.Vec3, roughness, transparency, ior float64) Material {
	return Material{
		Albedo:          NewUniform(albedo),
		Roughness:       NewUniform(clamp01(roughness)),
		Transparency:    NewUniform(clamp01(transparency)),
		RefractiveIndex: NewUniform(math.Max(ior, 1)),
	}
}

// Emissive creates a light source. Power defaults to 1 when omitted.
func Emissive(radiance core.Vec3, power ...float64) Material {
	p := 1.0
	if len(power) > 0 {
		p = math.Max(power[0], 0)
	}
	return Material{
		Roughness: NewUniform(1.0),
		Emission:  NewUniform(p),
		Radiance:  NewUniform(radiance),
	}
}

// FromParams creates a material from uniform values.
// Emission power is 1 so any non-zero radiance glows.
func FromParams(albedo core.Vec3, roughness, transparency float64, radiance core.Vec3) Material {
	return Material{
		Albedo:          NewUniform(albedo),
		Roughness:       NewUniform(clamp01(roughness)),
		Transparency:    NewUniform(clamp01(transparency)),
		Emission:        NewUniform(1.0),
		Radiance:        NewUniform(radiance),
		RefractiveIndex: NewUniform(DefaultRefractiveIndex),
	}
}

// WithAlbedo returns a copy using a spatially varying albedo
func (m Material) WithAlbedo(albedo Property[core.Vec3]) Material {
	m.Albedo = albedo
	return m
}

// WithRoughness returns a copy using a spatially varying roughness
func (m Material) WithRoughness(roughness Property[float64]) Material {
	m.Roughness = roughness
	return m
}

func (m Material) AlbedoAt(uv core.Vec2) core.Vec3 {
	if m.Albedo == nil {
		return core.Vec3{}
	}
	return m.Albedo.Sample(uv)
}

func (m Material) RoughnessAt(uv core.Vec2) float64 {
	if m.Roughness == nil {
		return 0
	}
	return clamp01(m.Roughness.Sample(uv))
}

func (m Material) TransparencyAt(uv core.Vec2) float64 {
	if m.Transparency == nil {
		return 0
	}
	return clamp01(m.Transparency.Sample(uv))
}

func (m Material) EmissionAt(uv core.Vec2) float64 {
	if m.Emission == nil {
		return 0
	}
	return math.Max(m.Emission.Sample(uv), 0)
}

func (m Material) RadianceAt(uv core.Vec2) core.Vec3 {
	if m.Radiance == nil {
		return core.Vec3{}
	}
	return m.Radiance.Sample(uv)
}

func (m Material) RefractiveIndexAt(uv core.Vec2) float64 {
	if m.RefractiveIndex == nil {
		return 1
	}
	return math.Max(m.RefractiveIndex.Sample(uv), 1)
}

// EmittedAt returns radiance scaled by emission power
func (m Material) EmittedAt(uv core.Vec2) core.Vec3 {
	e := m.EmissionAt(uv)
	if e == 0 {
		return core.Vec3{}
	}
	return m.RadianceAt(uv).Multiply(e)
}

func clamp01(x float64) float64 {
	return math.Min(math.Max(x, 0), 1)
}
