package integrator

import (
	"math"
	"testing"

	"github.com/df07/glimmer/pkg/core"
	"github.com/df07/glimmer/pkg/geometry"
	"github.com/df07/glimmer/pkg/material"
	"github.com/df07/glimmer/pkg/scene"
	"github.com/df07/glimmer/pkg/transform"
	"gonum.org/v1/gonum/stat"
)

// createTestScene creates a scene holding one unit sphere at the origin
func createTestScene(t *testing.T, mat material.Material, background core.Vec3) *scene.Scene {
	t.Helper()
	camera, err := geometry.NewCameraLookAt(core.NewVec3(0, 0, 5), core.Vec3{}, core.NewVec3(0, 1, 0), math.Pi/3, 1, 0.1, 100)
	if err != nil {
		t.Fatal(err)
	}
	sc := scene.New(camera, background)
	sc.Add(scene.NewObject(geometry.NewSphere(core.Vec3{}, 1), mat, transform.Identity()))
	return sc
}

func noRoulette(maxDepth int) scene.SamplingConfig {
	return scene.SamplingConfig{MaxDepth: maxDepth, RussianRouletteMinBounces: maxDepth}
}

var towardOrigin = core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))

func TestSchlick_Bounds(t *testing.T) {
	etas := []float64{0.1, 0.5, 1, 1.33, 1.5, 2.42, 10}
	for _, etaI := range etas {
		for _, etaT := range etas {
			for i := 0; i <= 100; i++ {
				cos := float64(i) / 100
				r := Schlick(cos, etaI, etaT)
				if r < 0 || r > 1 {
					t.Fatalf("Schlick(%f, %f, %f) = %f out of [0,1]", cos, etaI, etaT, r)
				}
			}
		}
	}

	if r := Schlick(1, 1, 1.5); math.Abs(r-0.04) > 1e-12 {
		t.Errorf("Expected normal incidence reflectance 0.04, got %f", r)
	}
	if r := Schlick(0, 1, 1.5); math.Abs(r-1) > 1e-12 {
		t.Errorf("Expected grazing reflectance 1, got %f", r)
	}
	if r := Schlick(0.5, 1.5, 1.5); math.Abs(r-math.Pow(0.5, 5)) > 1e-12 {
		t.Errorf("Expected matched media to reduce to (1-cos)^5, got %f", r)
	}
}

func TestReflectRefract(t *testing.T) {
	n := core.NewVec3(0, 1, 0)
	d := core.NewVec3(1, -1, 0).Normalize()

	r := Reflect(d, n)
	if r.Subtract(core.NewVec3(1, 1, 0).Normalize()).Length() > 1e-12 {
		t.Errorf("Unexpected reflection %v", r)
	}

	straight, ok := Refract(core.NewVec3(0, -1, 0), n, 1/1.5)
	if !ok || straight.Subtract(core.NewVec3(0, -1, 0)).Length() > 1e-12 {
		t.Errorf("Expected normal incidence to pass straight through, got %v", straight)
	}

	bent, ok := Refract(d, n, 1/1.5)
	if !ok {
		t.Fatal("Expected refraction into denser medium")
	}
	sinI := math.Sqrt(1 - math.Pow(d.Dot(n), 2))
	sinT := math.Sqrt(1 - math.Pow(bent.Dot(n), 2))
	if math.Abs(sinI/1.5-sinT) > 1e-12 {
		t.Errorf("Snell's law violated: sinI=%f sinT=%f", sinI, sinT)
	}
	if math.Abs(bent.Length()-1) > 1e-12 {
		t.Errorf("Expected unit refracted direction, got length %f", bent.Length())
	}

	// Leaving glass at 45 degrees exceeds the critical angle (~41.8)
	if _, ok := Refract(d, n, 1.5); ok {
		t.Error("Expected total internal reflection")
	}
}

// TestPathTracingDepthTermination tests that ray depth is properly limited
func TestPathTracingDepthTermination(t *testing.T) {
	sc := createTestScene(t, material.Emissive(core.NewVec3(1, 1, 1)), core.NewVec3(1, 1, 1))
	sampler := core.NewSeededSampler(42)

	colorDepth0 := NewPathTracingIntegrator(noRoulette(0)).RayColor(towardOrigin, sc, sampler)
	if colorDepth0 != (core.Vec3{}) {
		t.Errorf("Expected black color for depth 0, got %v", colorDepth0)
	}

	colorDepth1 := NewPathTracingIntegrator(noRoulette(1)).RayColor(towardOrigin, sc, sampler)
	if colorDepth1 != core.NewVec3(1, 1, 1) {
		t.Errorf("Expected emission only at depth 1, got %v", colorDepth1)
	}
}

func TestPathTracing_MissReturnsBackground(t *testing.T) {
	background := core.NewVec3(0.2, 0.3, 0.4)
	sc := createTestScene(t, material.Lambertian(core.NewVec3(0.5, 0.5, 0.5)), background)

	away := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, 1))
	got := NewPathTracingIntegrator(noRoulette(8)).RayColor(away, sc, core.NewSeededSampler(1))
	if got != background {
		t.Errorf("Expected background %v, got %v", background, got)
	}
}

func TestPathTracing_EmissiveSphere(t *testing.T) {
	sc := createTestScene(t, material.Emissive(core.NewVec3(1, 0, 0), 2), core.Vec3{})
	pt := NewPathTracingIntegrator(scene.DefaultSamplingConfig())

	// Emissive materials have black albedo, so the path ends after the first hit
	got := pt.RayColor(towardOrigin, sc, core.NewSeededSampler(7))
	if got != core.NewVec3(2, 0, 0) {
		t.Errorf("Expected (2,0,0), got %v", got)
	}
}

func TestPathTracing_DiffuseLitByBackground(t *testing.T) {
	sc := createTestScene(t, material.Lambertian(core.NewVec3(0.5, 0.5, 0.5)), core.NewVec3(1, 1, 1))
	pt := NewPathTracingIntegrator(noRoulette(8))
	sampler := core.NewSeededSampler(3)

	values := make([]float64, 256)
	for i := range values {
		c := pt.RayColor(towardOrigin, sc, sampler)
		if !(c.X > 0 && c.Y > 0 && c.Z > 0) {
			t.Fatalf("Expected non-black sample, got %v", c)
		}
		if c.X > 0.5+1e-9 {
			t.Fatalf("Expected at most albedo * background, got %v", c)
		}
		values[i] = c.X
	}

	// A convex diffuse sphere under a white sky returns exactly its albedo
	if mean := stat.Mean(values, nil); mean < 0.49 {
		t.Errorf("Expected mean near 0.5, got %f", mean)
	}
}

func TestPathTracing_MirrorReflectsBackground(t *testing.T) {
	sc := createTestScene(t, material.Metal(core.NewVec3(0.8, 0.6, 0.4), 0), core.NewVec3(1, 1, 1))
	got := NewPathTracingIntegrator(noRoulette(8)).RayColor(towardOrigin, sc, core.NewSeededSampler(5))

	if got.Subtract(core.NewVec3(0.8, 0.6, 0.4)).Length() > 1e-12 {
		t.Errorf("Expected albedo-tinted background, got %v", got)
	}
}

func TestPathTracing_GlassIsLossless(t *testing.T) {
	sc := createTestScene(t, material.Glass(core.NewVec3(1, 1, 1), 0, 1), core.NewVec3(1, 1, 1))
	pt := NewPathTracingIntegrator(noRoulette(64))
	sampler := core.NewSeededSampler(11)

	values := make([]float64, 512)
	for i := range values {
		c := pt.RayColor(towardOrigin, sc, sampler)
		if c.X > 1+1e-9 {
			t.Fatalf("Glass created energy: %v", c)
		}
		values[i] = c.X
	}
	if mean := stat.Mean(values, nil); mean < 0.95 {
		t.Errorf("Expected nearly all paths to escape with full weight, got mean %f", mean)
	}
}

func TestPathTracing_OpaqueGlassAbsorbsRefraction(t *testing.T) {
	// Transparency scales the refracted branch; a dim transparency darkens the result
	dim := material.Glass(core.NewVec3(1, 1, 1), 0, 0.2)
	sc := createTestScene(t, dim, core.NewVec3(1, 1, 1))
	pt := NewPathTracingIntegrator(noRoulette(64))
	sampler := core.NewSeededSampler(13)

	values := make([]float64, 512)
	for i := range values {
		values[i] = pt.RayColor(towardOrigin, sc, sampler).X
	}
	if mean := stat.Mean(values, nil); mean > 0.5 {
		t.Errorf("Expected mostly absorbed light, got mean %f", mean)
	}
}

// TestRussianRouletteUnbiased compares a closed emissive cavity with and without roulette.
// A ray inside a sphere of albedo a and emission e collects e * sum(a^k) for k < MaxDepth.
func TestRussianRouletteUnbiased(t *testing.T) {
	const (
		albedo   = 0.5
		emission = 1.0
		maxDepth = 10
		samples  = 20000
	)
	cavity := material.Material{
		Albedo:    material.NewUniform(core.NewVec3(albedo, albedo, albedo)),
		Roughness: material.NewUniform(1.0),
		Emission:  material.NewUniform(emission),
		Radiance:  material.NewUniform(core.NewVec3(1, 1, 1)),
	}
	sc := createTestScene(t, cavity, core.Vec3{})
	inside := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1))

	expected := 0.0
	for k := 0; k < maxDepth; k++ {
		expected += emission * math.Pow(albedo, float64(k))
	}

	estimate := func(cfg scene.SamplingConfig, seed int64) (mean, stdErr float64) {
		pt := NewPathTracingIntegrator(cfg)
		sampler := core.NewSeededSampler(seed)
		values := make([]float64, samples)
		for i := range values {
			values[i] = pt.RayColor(inside, sc, sampler).X
		}
		mean, std := stat.MeanStdDev(values, nil)
		return mean, std / math.Sqrt(samples)
	}

	plainMean, plainErr := estimate(noRoulette(maxDepth), 1)
	if math.Abs(plainMean-expected) > 1e-9 || plainErr > 1e-9 {
		t.Errorf("Expected deterministic %f without roulette, got %f (stderr %g)", expected, plainMean, plainErr)
	}

	rrMean, rrErr := estimate(scene.SamplingConfig{MaxDepth: maxDepth, RussianRouletteMinBounces: 1}, 2)
	if rrErr == 0 {
		t.Fatal("Expected roulette to introduce variance")
	}
	if math.Abs(rrMean-expected) > 5*rrErr {
		t.Errorf("Roulette biased the estimate: expected %f, got %f (stderr %f)", expected, rrMean, rrErr)
	}
}

func TestRussianRoulette(t *testing.T) {
	// Full throughput never terminates
	sampler := core.NewSeededSampler(9)
	for i := 0; i < 100; i++ {
		if terminate, w := russianRoulette(core.NewVec3(1, 0.2, 0.1), sampler); terminate || w != 1 {
			t.Fatalf("Expected survival with weight 1, got terminate=%t w=%f", terminate, w)
		}
	}

	// Zero throughput always terminates
	if terminate, _ := russianRoulette(core.Vec3{}, sampler); !terminate {
		t.Error("Expected zero throughput to terminate")
	}

	// Survivors are scaled by 1/max(beta)
	for i := 0; i < 100; i++ {
		if terminate, w := russianRoulette(core.NewVec3(0.25, 0.1, 0), sampler); !terminate && math.Abs(w-4) > 1e-12 {
			t.Fatalf("Expected compensation 4, got %f", w)
		}
	}
}

// fixedSampler returns the same value from every draw
type fixedSampler float64

func (f fixedSampler) Get1D() float64   { return float64(f) }
func (f fixedSampler) Get2D() core.Vec2 { return core.NewVec2(float64(f), float64(f)) }

func TestRussianRoulette_CompensationIsFloored(t *testing.T) {
	tests := []struct {
		name     string
		beta     core.Vec3
		expected float64
	}{
		{"tiny throughput", core.NewVec3(1e-6, 0, 0), 1 / minProbability},
		{"at the floor", core.NewVec3(minProbability, 0, 0), 1 / minProbability},
		{"above the floor", core.NewVec3(0.5, 0, 0), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// A draw just below 1 survives any q < 1
			terminate, w := russianRoulette(tt.beta, fixedSampler(1-1e-12))
			if terminate {
				t.Fatal("Expected survival")
			}
			if math.Abs(w-tt.expected) > 1e-6 {
				t.Errorf("Expected compensation %f, got %f", tt.expected, w)
			}
		})
	}
}
