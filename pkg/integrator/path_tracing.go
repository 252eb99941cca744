package integrator

import (
	"math"

	"github.com/df07/glimmer/pkg/core"
	"github.com/df07/glimmer/pkg/scene"
)

const (
	// spawnEpsilon offsets new rays along their direction so they do not re-hit their origin surface
	spawnEpsilon = 1e-4
	// minProbability floors every branch probability used as a divisor
	minProbability = 1e-3
)

// PathTracingIntegrator implements unidirectional path tracing
type PathTracingIntegrator struct {
	config scene.SamplingConfig
}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator(config scene.SamplingConfig) *PathTracingIntegrator {
	return &PathTracingIntegrator{
		config: config,
	}
}

// RayColor computes the color for a single ray using unidirectional path tracing.
// The path is followed iteratively for at most MaxDepth surface interactions.
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, sc *scene.Scene, sampler core.Sampler) core.Vec3 {
	radiance := core.Vec3{}
	beta := core.NewVec3(1, 1, 1)

	for depth := 0; depth < pt.config.MaxDepth; depth++ {
		isect, isHit := sc.FindNearestHit(ray)
		if !isHit {
			radiance = radiance.Add(beta.MultiplyVec(sc.Background()))
			break
		}

		mat := isect.Material
		radiance = radiance.Add(beta.MultiplyVec(mat.EmittedAt(isect.UV)))

		if depth >= pt.config.RussianRouletteMinBounces {
			terminate, compensation := russianRoulette(beta, sampler)
			if terminate {
				break
			}
			beta = beta.Multiply(compensation)
		}

		var direction, weight core.Vec3
		if mat.TransparencyAt(isect.UV) > 0 {
			direction, weight = scatterDielectric(ray.Direction, isect, sampler)
		} else {
			direction, weight = scatterOpaque(ray.Direction, isect, sampler)
		}

		beta = beta.MultiplyVec(weight)
		if beta.IsZero() {
			break
		}
		ray = core.NewRay(isect.Point.Add(direction.Multiply(spawnEpsilon)), direction)
	}

	return radiance
}

// russianRoulette terminates with probability q = 1 - clamp(max(beta), 0, 1).
// Survivors are reweighted by 1/(1-q), with the survival probability floored like every other divisor.
func russianRoulette(beta core.Vec3, sampler core.Sampler) (bool, float64) {
	q := 1 - math.Min(math.Max(beta.MaxComponent(), 0), 1)
	if sampler.Get1D() < q {
		return true, 0
	}
	return false, 1 / math.Max(1-q, minProbability)
}

// faceForward flips n to point against the incoming direction
func faceForward(n, incoming core.Vec3) core.Vec3 {
	if incoming.Dot(n) > 0 {
		return n.Negate()
	}
	return n
}

// scatterDielectric picks reflection or refraction by Schlick reflectance.
// Each branch weight carries its Fresnel term divided by its selection probability.
func scatterDielectric(incoming core.Vec3, isect scene.Intersection, sampler core.Sampler) (core.Vec3, core.Vec3) {
	mat := isect.Material
	dir := incoming.Normalize()
	albedo := mat.AlbedoAt(isect.UV)

	entering := dir.Dot(isect.Normal) < 0
	normal := faceForward(isect.Normal, dir)

	etaI, etaT := 1.0, mat.RefractiveIndexAt(isect.UV)
	if !entering {
		etaI, etaT = etaT, etaI
	}

	cosI := math.Min(-dir.Dot(normal), 1)
	reflectance := Schlick(cosI, etaI, etaT)

	refracted, ok := Refract(dir, normal, etaI/etaT)
	if !ok {
		// Total internal reflection
		return Reflect(dir, normal), albedo
	}

	if sampler.Get1D() < reflectance {
		w := reflectance / math.Max(reflectance, minProbability)
		return Reflect(dir, normal), albedo.Multiply(w)
	}

	transmittance := 1 - reflectance
	w := transmittance / math.Max(transmittance, minProbability)
	return refracted, albedo.Multiply(mat.TransparencyAt(isect.UV) * w)
}

// scatterOpaque mixes a mirror lobe (probability 1-roughness) with a cosine-weighted diffuse lobe.
// Cosine-weighted sampling cancels the Lambertian BRDF and pdf, leaving albedo.
func scatterOpaque(incoming core.Vec3, isect scene.Intersection, sampler core.Sampler) (core.Vec3, core.Vec3) {
	mat := isect.Material
	dir := incoming.Normalize()
	albedo := mat.AlbedoAt(isect.UV)
	normal := faceForward(isect.Normal, dir)

	pSpecular := 1 - mat.RoughnessAt(isect.UV)
	if sampler.Get1D() < pSpecular {
		w := pSpecular / math.Max(pSpecular, minProbability)
		return Reflect(dir, normal), albedo.Multiply(w)
	}

	pDiffuse := 1 - pSpecular
	w := pDiffuse / math.Max(pDiffuse, minProbability)
	return core.SampleCosineHemisphere(normal, sampler.Get2D()), albedo.Multiply(w)
}

// Schlick approximates Fresnel reflectance at an interface from medium etaI into etaT.
// cosTheta is clamped to [0,1], so the result always lies in [0,1].
func Schlick(cosTheta, etaI, etaT float64) float64 {
	cosTheta = math.Min(math.Max(cosTheta, 0), 1)
	r0 := (etaI - etaT) / (etaI + etaT)
	r0 *= r0
	return r0 + (1-r0)*math.Pow(1-cosTheta, 5)
}

// Reflect mirrors d about the unit normal n
func Reflect(d, n core.Vec3) core.Vec3 {
	return d.Subtract(n.Multiply(2 * d.Dot(n)))
}

// Refract bends unit direction d through a surface with unit normal n facing against d.
// eta is etaI/etaT. It reports false on total internal reflection.
func Refract(d, n core.Vec3, eta float64) (core.Vec3, bool) {
	cosI := math.Min(-d.Dot(n), 1)
	sin2T := eta * eta * (1 - cosI*cosI)
	if sin2T > 1 {
		return core.Vec3{}, false
	}
	cosT := math.Sqrt(1 - sin2T)
	return d.Multiply(eta).Add(n.Multiply(eta*cosI - cosT)), true
}
