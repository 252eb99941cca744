package renderer

import (
	"context"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/df07/glimmer/pkg/core"
	"github.com/df07/glimmer/pkg/geometry"
	"github.com/df07/glimmer/pkg/integrator"
	"github.com/df07/glimmer/pkg/scene"
)

// Film is the pixel sink a render writes into
type Film interface {
	Width() int
	Height() int
	Resize(width, height int, fill core.Vec3)
	At(x, y int) core.Vec3
	Set(x, y int, c core.Vec3)
}

// Options configures a Renderer
type Options struct {
	NumWorkers int                   // Number of parallel workers (0 = use CPU count)
	Seed       int64                 // Global seed mixed into every worker's generator
	Integrator integrator.Integrator // nil = path tracer built from the scene's SamplingConfig
	Logger     core.Logger           // nil = NopLogger
}

// Renderer splits an image into row ranges and renders each range on its own goroutine
type Renderer struct {
	options Options
	logger  core.Logger
}

// NewRenderer creates a renderer
func NewRenderer(options Options) *Renderer {
	logger := options.Logger
	if logger == nil {
		logger = NopLogger{}
	}
	return &Renderer{options: options, logger: logger}
}

func (r *Renderer) integratorFor(sc *scene.Scene) integrator.Integrator {
	if r.options.Integrator != nil {
		return r.options.Integrator
	}
	return integrator.NewPathTracingIntegrator(sc.SamplingConfig)
}

// Workers returns the worker count used for an image of the given height
func (r *Renderer) Workers(height int) int {
	n := r.options.NumWorkers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return max(min(n, height), 0)
}

// Render renders sc into film at width x height and runs to completion
func (r *Renderer) Render(sc *scene.Scene, film Film, width, height int) RenderStats {
	stats, _ := r.RenderContext(context.Background(), sc, film, width, height)
	return stats
}

// RenderContext is Render with cancellation checked between rows.
// On cancellation the rows already written stay in film and ctx.Err() is returned.
func (r *Renderer) RenderContext(ctx context.Context, sc *scene.Scene, film Film, width, height int) (RenderStats, error) {
	start := time.Now()
	if film.Width() != width || film.Height() != height {
		film.Resize(width, height, core.Vec3{})
	}

	spp := max(sc.SamplingConfig.SamplesPerPixel, 1)
	ranges := PartitionRows(height, r.Workers(height))
	integ := r.integratorFor(sc)
	sc.BuildIndex()

	r.logger.Printf("Rendering %dx%d with %d workers, %d spp\n", width, height, len(ranges), spp)

	// Each worker writes only its own slot and its own rows
	results := make([]RenderStats, len(ranges))
	var wg sync.WaitGroup
	for i, rows := range ranges {
		wg.Add(1)
		go func(i int, rows RowRange) {
			defer wg.Done()
			random := rand.New(rand.NewSource(WorkerSeed(r.options.Seed, rows, i)))
			w := &worker{
				scene:      sc,
				camera:     sc.Camera(),
				integrator: integ,
				sampler:    core.NewRandomSampler(random),
				width:      width,
				height:     height,
				spp:        spp,
			}
			results[i] = w.renderRows(ctx, rows, film)
		}(i, rows)
	}
	wg.Wait()

	stats := RenderStats{
		Width:           width,
		Height:          height,
		Workers:         len(ranges),
		SamplesPerPixel: spp,
	}
	for _, res := range results {
		stats.merge(res)
	}
	stats.AverageLuminance = CalculateAverageLuminance(film)
	stats.Duration = time.Since(start)

	if err := ctx.Err(); err != nil {
		r.logger.Printf("Render cancelled after %d of %d rows: %v\n", stats.RowsRendered, height, err)
		return stats, err
	}
	r.logger.Printf("Render completed: %s\n", stats)
	return stats, nil
}

// TracePixel estimates one pixel on the calling goroutine through the pixel center.
// The sampler is seeded from the primary ray, so repeated calls return the same value.
func (r *Renderer) TracePixel(sc *scene.Scene, x, y, width, height int) core.Vec3 {
	ray := sc.Camera().GenerateRay(float64(x), float64(y), width, height)
	sampler := core.NewSeededSampler(RaySeed(ray))
	integ := r.integratorFor(sc)

	var ps PixelStats
	for s := 0; s < max(sc.SamplingConfig.SamplesPerPixel, 1); s++ {
		ps.AddSample(integ.RayColor(ray, sc, sampler))
	}
	return ps.GetColor()
}

// worker holds the per-goroutine state; nothing in it is shared
type worker struct {
	scene      *scene.Scene
	camera     *geometry.Camera
	integrator integrator.Integrator
	sampler    core.Sampler
	width      int
	height     int
	spp        int
}

func (w *worker) renderRows(ctx context.Context, rows RowRange, film Film) RenderStats {
	var stats RenderStats
	for y := rows.Start; y < rows.End; y++ {
		if ctx.Err() != nil {
			break
		}
		for x := 0; x < w.width; x++ {
			film.Set(x, y, w.samplePixel(x, y))
		}
		stats.RowsRendered++
		stats.TotalPixels += w.width
		stats.TotalSamples += w.width * w.spp
	}
	return stats
}

// samplePixel averages spp rays, each offset from the pixel center by a uniform jitter in [0,1)
func (w *worker) samplePixel(x, y int) core.Vec3 {
	var ps PixelStats
	for s := 0; s < w.spp; s++ {
		jitter := w.sampler.Get2D()
		ray := w.camera.GenerateRay(float64(x)+jitter.X, float64(y)+jitter.Y, w.width, w.height)
		ps.AddSample(w.integrator.RayColor(ray, w.scene, w.sampler))
	}
	return ps.GetColor()
}
