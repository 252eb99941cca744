package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/df07/glimmer/pkg/loaders"
	"github.com/df07/glimmer/pkg/scene"
)

// Image size limits shared by every endpoint that builds a scene
const (
	minImageSize = 1
	maxImageSize = 2000
)

// Server handles web requests for the path tracer
type Server struct {
	port      int
	scenesDir string // Directory scanned for JSON scene configs
	staticDir string // Directory served at "/"; empty disables static files
}

// NewServer creates a new web server
func NewServer(port int, scenesDir, staticDir string) *Server {
	return &Server{port: port, scenesDir: scenesDir, staticDir: staticDir}
}

// SceneRequest holds the scene parameters common to render and inspect requests
type SceneRequest struct {
	Scene        string `json:"scene"`        // Built-in name or "config:<file>"
	Width        int    `json:"width"`        // Image width
	Height       int    `json:"height"`       // Image height
	Samples      int    `json:"samples"`      // Samples per pixel (per pass when streaming)
	MaxDepth     int    `json:"maxDepth"`     // Maximum bounce depth
	RRMinBounces int    `json:"rrMinBounces"` // Russian Roulette minimum bounces
	Seed         int64  `json:"seed"`         // Global render seed
}

// samplingConfig returns the sampling settings requested by the client
func (req *SceneRequest) samplingConfig() scene.SamplingConfig {
	return scene.SamplingConfig{
		Width:                     req.Width,
		Height:                    req.Height,
		SamplesPerPixel:           req.Samples,
		MaxDepth:                  req.MaxDepth,
		RussianRouletteMinBounces: req.RRMinBounces,
	}
}

// Handler returns the routes served by the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	if s.staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
	}

	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/render/stream", s.handleRenderStream)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists built-in scenes and JSON configs from the scenes directory
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	scenes, err := scene.ListAllScenes(s.scenesDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, scenes)
}

// handleSceneConfig returns the default sampling configuration for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = "default"
	}

	sc, err := s.createScene(&SceneRequest{Scene: sceneName})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	config := sc.SamplingConfig
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"scene":   sceneName,
		"objects": sc.Len(),
		"defaults": map[string]interface{}{
			"width":                     config.Width,
			"height":                    config.Height,
			"samplesPerPixel":           config.SamplesPerPixel,
			"maxDepth":                  config.MaxDepth,
			"russianRouletteMinBounces": config.RussianRouletteMinBounces,
		},
		"limits": map[string]interface{}{
			"width":                     map[string]int{"min": minImageSize, "max": maxImageSize},
			"height":                    map[string]int{"min": minImageSize, "max": maxImageSize},
			"samples":                   map[string]int{"min": 1, "max": 10000},
			"maxDepth":                  map[string]int{"min": 1, "max": 1000},
			"russianRouletteMinBounces": map[string]int{"min": 1, "max": 1000},
		},
	})
}

// parseSceneRequest parses the scene parameters shared by all rendering endpoints.
// Omitted sampling parameters stay zero and fall back to the scene's own settings.
func parseSceneRequest(values url.Values) (*SceneRequest, error) {
	req := &SceneRequest{Scene: values.Get("scene")}
	if req.Scene == "" {
		req.Scene = "default"
	}

	var err error
	if req.Width, err = parseIntParam(values, "width", 0, minImageSize, maxImageSize); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(values, "height", 0, minImageSize, maxImageSize); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(values, "samples", 0, 1, 10000); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(values, "maxDepth", 0, 1, 1000); err != nil {
		return nil, err
	}
	if req.RRMinBounces, err = parseIntParam(values, "rrMinBounces", 0, 1, 1000); err != nil {
		return nil, err
	}
	seed, err := parseIntParam(values, "seed", 0, 0, 1<<31-1)
	if err != nil {
		return nil, err
	}
	req.Seed = int64(seed)
	return req, nil
}

// resolve copies the scene's final sampling settings back into req
func (req *SceneRequest) resolve(sc *scene.Scene) {
	cfg := sc.SamplingConfig
	req.Width, req.Height = cfg.Width, cfg.Height
	req.Samples, req.MaxDepth = cfg.SamplesPerPixel, cfg.MaxDepth
	req.RRMinBounces = cfg.RussianRouletteMinBounces

	// Performance warning
	if req.Width*req.Height > 800*600 && req.Samples > 100 {
		log.Printf("Render warning: Large image with high samples may render slowly")
	}
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// createScene builds a built-in scene or a "config:<name>" scene from the scenes directory.
// Zero fields in req keep the scene's own defaults.
func (s *Server) createScene(req *SceneRequest) (*scene.Scene, error) {
	if name, ok := strings.CutPrefix(req.Scene, "config:"); ok {
		return s.createConfigScene(name, req)
	}

	cfg := scene.DefaultSamplingConfig()
	overrideSampling(&cfg, req.samplingConfig())
	sc, err := scene.Create(req.Scene, cfg)
	if err != nil {
		return nil, err
	}
	req.resolve(sc)
	return sc, nil
}

func (s *Server) createConfigScene(name string, req *SceneRequest) (*scene.Scene, error) {
	configs, err := scene.ListConfigScenes(s.scenesDir)
	if err != nil {
		return nil, err
	}
	for _, info := range configs {
		if info.ID != "config:"+name {
			continue
		}
		cfg, err := loadConfig(info.FilePath)
		if err != nil {
			return nil, err
		}
		sampling := cfg.SamplingConfig()
		overrideSampling(&sampling, req.samplingConfig())
		cfg.Width, cfg.Height = sampling.Width, sampling.Height
		cfg.SamplesPerPixel, cfg.MaxDepth = sampling.SamplesPerPixel, sampling.MaxDepth
		cfg.RussianRouletteMinBounces = sampling.RussianRouletteMinBounces
		sc, err := loaders.BuildScene(cfg, filepath.Dir(info.FilePath))
		if err != nil {
			return nil, err
		}
		req.resolve(sc)
		return sc, nil
	}
	return nil, fmt.Errorf("unknown scene: config:%s", name)
}

func loadConfig(path string) (*loaders.SceneConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene config: %w", err)
	}
	defer file.Close()
	return loaders.LoadSceneConfig(file)
}

// overrideSampling copies the positive fields of req into cfg
func overrideSampling(cfg *scene.SamplingConfig, req scene.SamplingConfig) {
	if req.Width > 0 {
		cfg.Width = req.Width
	}
	if req.Height > 0 {
		cfg.Height = req.Height
	}
	if req.SamplesPerPixel > 0 {
		cfg.SamplesPerPixel = req.SamplesPerPixel
	}
	if req.MaxDepth > 0 {
		cfg.MaxDepth = req.MaxDepth
	}
	if req.RussianRouletteMinBounces > 0 {
		cfg.RussianRouletteMinBounces = req.RussianRouletteMinBounces
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
