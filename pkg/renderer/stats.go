package renderer

import (
	"fmt"
	"time"

	"github.com/df07/glimmer/pkg/core"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	Width            int           // Image width
	Height           int           // Image height
	Workers          int           // Goroutines used
	RowsRendered     int           // Rows completed before return
	TotalPixels      int           // Total number of pixels rendered
	TotalSamples     int           // Total number of samples taken
	SamplesPerPixel  int           // Samples taken for each pixel
	AverageLuminance float64       // Mean luminance of the rendered pixels
	Duration         time.Duration // Wall time of the render
}

// String formats the stats for log output
func (s RenderStats) String() string {
	return fmt.Sprintf("%dx%d, %d workers, %d samples (%d spp), avg luminance %.4f, %v",
		s.Width, s.Height, s.Workers, s.TotalSamples, s.SamplesPerPixel, s.AverageLuminance, s.Duration)
}

func (s *RenderStats) merge(other RenderStats) {
	s.RowsRendered += other.RowsRendered
	s.TotalPixels += other.TotalPixels
	s.TotalSamples += other.TotalSamples
}

// PixelStats accumulates samples for a single pixel
type PixelStats struct {
	ColorAccum  core.Vec3 // RGB accumulator
	SampleCount int       // Number of samples taken
}

// AddSample adds a new color sample to the pixel statistics
func (ps *PixelStats) AddSample(color core.Vec3) {
	ps.ColorAccum = ps.ColorAccum.Add(color)
	ps.SampleCount++
}

// GetColor returns the current average color for this pixel
func (ps *PixelStats) GetColor() core.Vec3 {
	if ps.SampleCount == 0 {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}
	return ps.ColorAccum.Multiply(1.0 / float64(ps.SampleCount))
}

// CalculateAverageLuminance returns the mean Rec. 709 luminance over all pixels
func CalculateAverageLuminance(f Film) float64 {
	n := f.Width() * f.Height()
	if n == 0 {
		return 0
	}
	total := 0.0
	for y := 0; y < f.Height(); y++ {
		for x := 0; x < f.Width(); x++ {
			total += f.At(x, y).Luminance()
		}
	}
	return total / float64(n)
}
