package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/glimmer/pkg/loaders"
	"github.com/df07/glimmer/pkg/scene"
)

func TestCreateScene(t *testing.T) {
	tests := []struct {
		name        string
		sceneType   string
		expectError bool
	}{
		{"unknown scene", "nonexistent", true},
		{"empty scene name", "", true},
	}
	for _, name := range scene.Names() {
		tests = append(tests, struct {
			name        string
			sceneType   string
			expectError bool
		}{name + " scene", name, false})
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := createScene(&options{sceneName: tt.sceneType, width: 32, height: 16})

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for scene type '%s', but got none", tt.sceneType)
				}
				if sc != nil {
					t.Errorf("Expected nil scene for invalid scene type '%s'", tt.sceneType)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error for scene type '%s': %v", tt.sceneType, err)
			}
			if sc.SamplingConfig.Width != 32 || sc.SamplingConfig.Height != 16 {
				t.Errorf("Expected 32x16 override, got %dx%d", sc.SamplingConfig.Width, sc.SamplingConfig.Height)
			}
			if sc.Camera().Aspect() != 2 {
				t.Errorf("Expected camera aspect 2, got %f", sc.Camera().Aspect())
			}
			if sc.Empty() {
				t.Error("Expected built-in scene to contain objects")
			}
		})
	}
}

func TestCreateScene_Config(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.json")
	data := `{
  "width": 100, "height": 50, "spp": 2,
  "camera": {"eye": [0, 0, 5], "target": [0, 0, 0]},
  "materials": {"white": {"albedo": [1, 1, 1]}},
  "objects": [{"type": "sphere", "material": "white"}]
}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	sc, err := createScene(&options{sceneName: "default", config: path, spp: 7})
	if err != nil {
		t.Fatalf("createScene failed: %v", err)
	}
	if sc.Len() != 1 {
		t.Errorf("Expected config scene with 1 object, got %d", sc.Len())
	}
	cfg := sc.SamplingConfig
	if cfg.Width != 100 || cfg.Height != 50 || cfg.SamplesPerPixel != 7 {
		t.Errorf("Expected config size with spp override, got %+v", cfg)
	}

	if _, err := createScene(&options{config: filepath.Join(dir, "missing.json")}); err == nil {
		t.Error("Expected error for missing config")
	}
}

func TestRun_WritesImage(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		out  string
	}{
		{"ppm output", filepath.Join(dir, "out.ppm")},
		{"png output", filepath.Join(dir, "nested", "out.png")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout bytes.Buffer
			args := []string{"-scene", "emissive", "-width", "9", "-height", "9", "-spp", "1", "-workers", "2", "-out", tt.out}
			if err := run(args, &stdout); err != nil {
				t.Fatalf("run failed: %v", err)
			}
			if _, err := os.Stat(tt.out); err != nil {
				t.Fatalf("Expected output file: %v", err)
			}
			if !strings.Contains(stdout.String(), "Render saved as") {
				t.Errorf("Unexpected output %q", stdout.String())
			}
		})
	}

	img, err := loaders.LoadPPMFile(tests[0].out)
	if err != nil {
		t.Fatal(err)
	}
	if img.Width() != 9 || img.Height() != 9 {
		t.Fatalf("Expected 9x9 PPM, got %dx%d", img.Width(), img.Height())
	}
	if c := img.At(4, 4); c.X < 0.99 || c.Y != 0 || c.Z != 0 {
		t.Errorf("Expected saturated red center, got %v", c)
	}
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"-bogus"}},
		{"unknown scene", []string{"-scene", "nope"}},
		{"bad extension", []string{"-scene", "emissive", "-width", "2", "-height", "2", "-spp", "1", "-out", filepath.Join(dir, "out.bmp")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := run(tt.args, &bytes.Buffer{}); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestRun_Help(t *testing.T) {
	var stdout bytes.Buffer
	if err := run([]string{"-help"}, &stdout); err != nil {
		t.Fatalf("run -help failed: %v", err)
	}
	out := stdout.String()
	for _, name := range scene.Names() {
		if !strings.Contains(out, name) {
			t.Errorf("Expected help to list scene %q", name)
		}
	}
	if !strings.Contains(out, "-spp") {
		t.Error("Expected help to list flags")
	}
}

func TestCreateScene_BundledScenes(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("scenes", "*.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatal("Expected bundled scene configs")
	}
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			sc, err := createScene(&options{config: path, width: 16, height: 9})
			if err != nil {
				t.Fatalf("createScene failed: %v", err)
			}
			if sc.Empty() {
				t.Error("Expected objects in bundled scene")
			}
			if sc.SamplingConfig.Width != 16 || sc.SamplingConfig.Height != 9 {
				t.Errorf("Expected 16x9 override, got %dx%d", sc.SamplingConfig.Width, sc.SamplingConfig.Height)
			}
		})
	}
}
