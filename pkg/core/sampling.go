package core

import (
	"math"
	"math/rand"
)

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
}

// RandomSampler wraps a standard Go random generator.
// It is not safe for concurrent use; each worker owns its own.
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler with its own generator seeded with seed
func NewSeededSampler(seed int64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(seed)))
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// OrthonormalBasis builds tangent and bitangent vectors around a unit normal.
// World +Z is the reference axis unless the normal is nearly parallel to it,
// in which case world +X is used.
func OrthonormalBasis(normal Vec3) (tangent, bitangent Vec3) {
	reference := NewVec3(0, 0, 1)
	if math.Abs(normal.Z) > 0.999 {
		reference = NewVec3(1, 0, 0)
	}
	tangent = reference.Cross(normal).Normalize()
	bitangent = normal.Cross(tangent)
	return tangent, bitangent
}

// SampleCosineHemisphere generates a cosine-weighted direction in the hemisphere around normal.
// The disk sample uses r = sqrt(u1), theta = 2*pi*u2, lifted to z = sqrt(1 - u1).
func SampleCosineHemisphere(normal Vec3, sample Vec2) Vec3 {
	r := math.Sqrt(sample.X)
	theta := 2.0 * math.Pi * sample.Y

	x := r * math.Cos(theta)
	y := r * math.Sin(theta)
	z := math.Sqrt(max(0, 1.0-sample.X))

	tangent, bitangent := OrthonormalBasis(normal)
	return tangent.Multiply(x).Add(bitangent.Multiply(y)).Add(normal.Multiply(z))
}
