package renderer

import (
	"math"

	"github.com/df07/glimmer/pkg/core"
)

// RowRange is the half-open row interval [Start, End) owned by one worker
type RowRange struct {
	Start, End int
}

// Rows returns the number of rows in the range
func (r RowRange) Rows() int {
	return r.End - r.Start
}

// PartitionRows splits [0, height) into contiguous ranges, one per worker.
// Sizes differ by at most one; the earliest ranges take the remainder.
// At most height ranges are returned, so no range is empty.
func PartitionRows(height, workers int) []RowRange {
	if height <= 0 {
		return nil
	}
	workers = min(max(workers, 1), height)

	base := height / workers
	extra := height % workers

	ranges := make([]RowRange, workers)
	start := 0
	for i := range ranges {
		size := base
		if i < extra {
			size++
		}
		ranges[i] = RowRange{Start: start, End: start + size}
		start += size
	}
	return ranges
}

// splitmix64 is the finalizer of the SplitMix64 generator
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// WorkerSeed derives a per-worker seed from the global seed, its rows and its index
func WorkerSeed(globalSeed int64, rows RowRange, index int) int64 {
	h := splitmix64(uint64(globalSeed))
	h = splitmix64(h ^ uint64(rows.Start))
	h = splitmix64(h ^ uint64(rows.End))
	h = splitmix64(h ^ uint64(index))
	return int64(h)
}

// RaySeed hashes a ray's origin and direction bits into a seed
func RaySeed(ray core.Ray) int64 {
	h := uint64(0)
	for _, f := range []float64{
		ray.Origin.X, ray.Origin.Y, ray.Origin.Z,
		ray.Direction.X, ray.Direction.Y, ray.Direction.Z,
	} {
		h = splitmix64(h ^ math.Float64bits(f))
	}
	return int64(h)
}
