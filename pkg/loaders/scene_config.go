package loaders

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/df07/glimmer/pkg/core"
	"github.com/df07/glimmer/pkg/geometry"
	"github.com/df07/glimmer/pkg/material"
	"github.com/df07/glimmer/pkg/scene"
	"github.com/df07/glimmer/pkg/transform"
	"github.com/go-gl/mathgl/mgl64"
)

// Triple is an [x, y, z] array in JSON
type Triple [3]float64

// Vec3 converts the triple to a vector
func (t Triple) Vec3() core.Vec3 {
	return core.NewVec3(t[0], t[1], t[2])
}

// CameraConfig places a perspective camera
type CameraConfig struct {
	Eye     Triple  `json:"eye"`
	Target  Triple  `json:"target"`
	Up      *Triple `json:"up,omitempty"`      // defaults to +Y
	VFovDeg float64 `json:"vfovDeg,omitempty"` // defaults to 60
	Near    float64 `json:"near,omitempty"`    // defaults to 0.01
	Far     float64 `json:"far,omitempty"`     // defaults to 1000
}

// CheckerConfig replaces a material's albedo with a checkerboard
type CheckerConfig struct {
	Odd       Triple  `json:"odd"`
	Frequency float64 `json:"frequency"`
}

// MaterialConfig describes a named material.
// Type is one of lambertian, metal, glass, emissive or params.
type MaterialConfig struct {
	Type         string         `json:"type"`
	Albedo       Triple         `json:"albedo"`
	Roughness    float64        `json:"roughness,omitempty"`
	Transparency float64        `json:"transparency,omitempty"`
	IOR          float64        `json:"ior,omitempty"`
	Radiance     Triple         `json:"radiance"`
	Power        float64        `json:"power,omitempty"`
	Texture      string         `json:"texture,omitempty"` // image file for albedo, relative to the config
	Checker      *CheckerConfig `json:"checker,omitempty"`
}

// ObjectConfig places one primitive with a material and a TRS transform.
// Type is one of sphere, plane, mesh, obj or ply.
type ObjectConfig struct {
	Type     string   `json:"type"`
	Material string   `json:"material"`
	Center   Triple   `json:"center"`
	Radius   float64  `json:"radius,omitempty"`
	Point    Triple   `json:"point"`
	Normal   Triple   `json:"normal"`
	Vertices []Triple `json:"vertices,omitempty"`
	Faces    []int    `json:"faces,omitempty"`
	File     string   `json:"file,omitempty"` // OBJ or PLY path, relative to the config

	Translate Triple  `json:"translate"`
	RotateDeg Triple  `json:"rotateDeg"` // Euler angles applied X, then Y, then Z
	Scale     *Triple `json:"scale,omitempty"`
}

// SceneConfig is a complete JSON scene description
type SceneConfig struct {
	Name                      string                    `json:"name"`
	Description               string                    `json:"description"`
	Width                     int                       `json:"width,omitempty"`
	Height                    int                       `json:"height,omitempty"`
	SamplesPerPixel           int                       `json:"spp,omitempty"`
	MaxDepth                  int                       `json:"maxDepth,omitempty"`
	RussianRouletteMinBounces int                       `json:"russianRouletteMinBounces,omitempty"`
	Background                Triple                    `json:"background"`
	Camera                    CameraConfig              `json:"camera"`
	Materials                 map[string]MaterialConfig `json:"materials"`
	Objects                   []ObjectConfig            `json:"objects"`
}

// SamplingConfig returns the sampling settings with defaults filled in
func (c *SceneConfig) SamplingConfig() scene.SamplingConfig {
	return scene.SamplingConfig{
		Width:                     c.Width,
		Height:                    c.Height,
		SamplesPerPixel:           c.SamplesPerPixel,
		MaxDepth:                  c.MaxDepth,
		RussianRouletteMinBounces: c.RussianRouletteMinBounces,
	}
}

// LoadSceneConfig decodes a scene description and applies defaults
func LoadSceneConfig(r io.Reader) (*SceneConfig, error) {
	var cfg SceneConfig
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse scene config: %w", err)
	}

	cfg.applyDefaults()
	if len(cfg.Objects) == 0 {
		return nil, fmt.Errorf("scene config has no objects")
	}
	return &cfg, nil
}

// applyDefaults fills zero-valued settings; it is safe to call more than once
func (c *SceneConfig) applyDefaults() {
	defaults := scene.DefaultSamplingConfig()
	if c.Width <= 0 {
		c.Width = defaults.Width
	}
	if c.Height <= 0 {
		c.Height = defaults.Height
	}
	if c.SamplesPerPixel <= 0 {
		c.SamplesPerPixel = defaults.SamplesPerPixel
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = defaults.MaxDepth
	}
	if c.RussianRouletteMinBounces <= 0 {
		c.RussianRouletteMinBounces = defaults.RussianRouletteMinBounces
	}
	if c.Camera.Up == nil {
		c.Camera.Up = &Triple{0, 1, 0}
	}
	if c.Camera.VFovDeg <= 0 {
		c.Camera.VFovDeg = 60
	}
	if c.Camera.Near <= 0 {
		c.Camera.Near = 0.01
	}
	if c.Camera.Far <= 0 {
		c.Camera.Far = 1000
	}
}

// LoadSceneFile reads a JSON scene description and builds it.
// Relative texture and mesh paths resolve against the file's directory.
func LoadSceneFile(path string) (*scene.Scene, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene config: %w", err)
	}
	defer file.Close()

	cfg, err := LoadSceneConfig(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return BuildScene(cfg, filepath.Dir(path))
}

// BuildScene constructs a scene from a decoded config.
// Objects referencing the same mesh file share one primitive.
func BuildScene(cfg *SceneConfig, baseDir string) (*scene.Scene, error) {
	cfg.applyDefaults()
	sampling := cfg.SamplingConfig()
	camera, err := geometry.NewCameraLookAt(
		cfg.Camera.Eye.Vec3(), cfg.Camera.Target.Vec3(), cfg.Camera.Up.Vec3(),
		mgl64.DegToRad(cfg.Camera.VFovDeg), float64(sampling.Width)/float64(sampling.Height),
		cfg.Camera.Near, cfg.Camera.Far,
	)
	if err != nil {
		return nil, fmt.Errorf("camera: %w", err)
	}

	sc := scene.New(camera, cfg.Background.Vec3())
	sc.SamplingConfig = sampling

	materials := make(map[string]material.Material, len(cfg.Materials))
	for name, mc := range cfg.Materials {
		mat, err := buildMaterial(mc, baseDir)
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}
		materials[name] = mat
	}

	meshes := map[string]*geometry.TriangleMesh{}
	for i, oc := range cfg.Objects {
		mat, ok := materials[oc.Material]
		if !ok {
			return nil, fmt.Errorf("object %d: unknown material %q", i, oc.Material)
		}
		prim, err := buildPrimitive(oc, baseDir, meshes)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		xf, err := oc.Transform()
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		sc.Add(scene.NewObject(prim, mat, xf))
	}
	return sc, nil
}

// ErrZeroScale is returned for an object scale with a zero component, which has no inverse
var ErrZeroScale = errors.New("scale components must be non-zero")

// Transform returns the object's T·S·R transform; a missing scale means 1
func (oc ObjectConfig) Transform() (transform.Transform, error) {
	scale := core.NewVec3(1, 1, 1)
	if oc.Scale != nil {
		scale = oc.Scale.Vec3()
	}
	if scale.X == 0 || scale.Y == 0 || scale.Z == 0 {
		return transform.Transform{}, fmt.Errorf("scale %v: %w", scale, ErrZeroScale)
	}
	rot := mgl64.AnglesToQuat(
		mgl64.DegToRad(oc.RotateDeg[2]),
		mgl64.DegToRad(oc.RotateDeg[1]),
		mgl64.DegToRad(oc.RotateDeg[0]),
		mgl64.ZYX,
	)
	return transform.FromTRS(oc.Translate.Vec3(), rot, scale), nil
}

func buildMaterial(mc MaterialConfig, baseDir string) (material.Material, error) {
	var mat material.Material
	switch mc.Type {
	case "lambertian", "":
		mat = material.Lambertian(mc.Albedo.Vec3())
	case "metal":
		mat = material.Metal(mc.Albedo.Vec3(), mc.Roughness)
	case "glass":
		ior := mc.IOR
		if ior == 0 {
			ior = material.DefaultRefractiveIndex
		}
		transparency := mc.Transparency
		if transparency == 0 {
			transparency = 1
		}
		mat = material.GlassIOR(mc.Albedo.Vec3(), mc.Roughness, transparency, ior)
	case "emissive":
		power := mc.Power
		if power == 0 {
			power = 1
		}
		mat = material.Emissive(mc.Radiance.Vec3(), power)
	case "params":
		mat = material.FromParams(mc.Albedo.Vec3(), mc.Roughness, mc.Transparency, mc.Radiance.Vec3())
	default:
		return material.Material{}, fmt.Errorf("unknown material type %q", mc.Type)
	}

	switch {
	case mc.Texture != "":
		tex, err := LoadImageTexture(resolvePath(baseDir, mc.Texture), true)
		if err != nil {
			return material.Material{}, err
		}
		mat = mat.WithAlbedo(tex)
	case mc.Checker != nil:
		mat = mat.WithAlbedo(material.NewCheckerboard(mc.Albedo.Vec3(), mc.Checker.Odd.Vec3(), mc.Checker.Frequency))
	}
	return mat, nil
}

func buildPrimitive(oc ObjectConfig, baseDir string, meshes map[string]*geometry.TriangleMesh) (geometry.Primitive, error) {
	switch oc.Type {
	case "sphere":
		radius := oc.Radius
		if radius <= 0 {
			radius = 1
		}
		return geometry.NewSphere(oc.Center.Vec3(), radius), nil
	case "plane":
		normal := oc.Normal.Vec3()
		if normal.IsZero() {
			normal = core.NewVec3(0, 1, 0)
		}
		return geometry.NewPlane(oc.Point.Vec3(), normal), nil
	case "mesh":
		vertices := make([]core.Vec3, len(oc.Vertices))
		for i, v := range oc.Vertices {
			vertices[i] = v.Vec3()
		}
		return geometry.NewTriangleMesh(vertices, oc.Faces)
	case "obj", "ply":
		path := resolvePath(baseDir, oc.File)
		if mesh, ok := meshes[path]; ok {
			return mesh, nil
		}
		load := LoadOBJFile
		if oc.Type == "ply" {
			load = LoadPLYFile
		}
		mesh, err := load(path)
		if err != nil {
			return nil, err
		}
		meshes[path] = mesh
		return mesh, nil
	default:
		return nil, fmt.Errorf("unknown object type %q", oc.Type)
	}
}

func resolvePath(baseDir, path string) string {
	if filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}
