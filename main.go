package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/glimmer/pkg/film"
	"github.com/df07/glimmer/pkg/loaders"
	"github.com/df07/glimmer/pkg/renderer"
	"github.com/df07/glimmer/pkg/scene"
)

// options holds the parsed command line
type options struct {
	sceneName string
	config    string
	width     int
	height    int
	spp       int
	depth     int
	seed      int64
	workers   int
	out       string
	help      bool
}

func parseFlags(args []string, output io.Writer) (*options, *flag.FlagSet, error) {
	opts := &options{}
	fs := flag.NewFlagSet("glimmer", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.sceneName, "scene", "default", "Built-in scene: "+strings.Join(scene.Names(), ", "))
	fs.StringVar(&opts.config, "config", "", "JSON scene description (overrides -scene)")
	fs.IntVar(&opts.width, "width", 0, "Image width (0 = scene default)")
	fs.IntVar(&opts.height, "height", 0, "Image height (0 = scene default)")
	fs.IntVar(&opts.spp, "spp", 0, "Samples per pixel (0 = scene default)")
	fs.IntVar(&opts.depth, "depth", 0, "Maximum bounce depth (0 = scene default)")
	fs.Int64Var(&opts.seed, "seed", 0, "Random seed")
	fs.IntVar(&opts.workers, "workers", 0, "Number of parallel workers (0 = auto-detect CPU count)")
	fs.StringVar(&opts.out, "out", "render.ppm", "Output file (.ppm or .png)")
	fs.BoolVar(&opts.help, "help", false, "Show help information")
	err := fs.Parse(args)
	return opts, fs, err
}

// samplingConfig applies command line overrides on top of base
func (o *options) samplingConfig(base scene.SamplingConfig) scene.SamplingConfig {
	if o.width > 0 {
		base.Width = o.width
	}
	if o.height > 0 {
		base.Height = o.height
	}
	if o.spp > 0 {
		base.SamplesPerPixel = o.spp
	}
	if o.depth > 0 {
		base.MaxDepth = o.depth
	}
	return base
}

// createScene builds either the JSON config or the named built-in scene
func createScene(opts *options) (*scene.Scene, error) {
	if opts.config != "" {
		file, err := os.Open(opts.config)
		if err != nil {
			return nil, fmt.Errorf("failed to open scene config: %w", err)
		}
		defer file.Close()

		cfg, err := loaders.LoadSceneConfig(file)
		if err != nil {
			return nil, err
		}
		sampling := opts.samplingConfig(cfg.SamplingConfig())
		cfg.Width, cfg.Height = sampling.Width, sampling.Height
		cfg.SamplesPerPixel, cfg.MaxDepth = sampling.SamplesPerPixel, sampling.MaxDepth
		return loaders.BuildScene(cfg, filepath.Dir(opts.config))
	}

	if opts.sceneName == "" {
		return nil, fmt.Errorf("scene name must not be empty")
	}
	return scene.Create(opts.sceneName, opts.samplingConfig(scene.DefaultSamplingConfig()))
}

// saveImage writes img in the format implied by the file extension
func saveImage(path string, img *film.Image) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating output directory: %w", err)
		}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ppm":
		return loaders.SavePPMFile(path, img)
	case ".png":
		return film.SavePNG(path, img, film.EncodingSRGB)
	default:
		return fmt.Errorf("unsupported output format %q (use .ppm or .png)", filepath.Ext(path))
	}
}

func run(args []string, stdout io.Writer) error {
	opts, fs, err := parseFlags(args, stdout)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	if opts.help {
		fmt.Fprintln(stdout, "Glimmer path tracer")
		fmt.Fprintln(stdout, "Usage: glimmer [options]")
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, "Options:")
		fs.PrintDefaults()
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, "Available scenes:")
		for _, info := range scene.ListBuiltinScenes() {
			fmt.Fprintf(stdout, "  %-10s %s\n", info.ID, info.Description)
		}
		return nil
	}

	sc, err := createScene(opts)
	if err != nil {
		return err
	}
	cfg := sc.SamplingConfig
	fmt.Fprintf(stdout, "Rendering %dx%d at %d spp, max depth %d\n", cfg.Width, cfg.Height, cfg.SamplesPerPixel, cfg.MaxDepth)

	r := renderer.NewRenderer(renderer.Options{
		NumWorkers: opts.workers,
		Seed:       opts.seed,
		Logger:     renderer.NewWriterLogger(stdout),
	})

	img := film.NewImage(cfg.Width, cfg.Height)
	startTime := time.Now()
	r.Render(sc, img, cfg.Width, cfg.Height)
	fmt.Fprintf(stdout, "Render completed in %v\n", time.Since(startTime))

	if err := saveImage(opts.out, img); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Render saved as %s\n", opts.out)
	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
