package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/df07/glimmer/pkg/core"
	"github.com/df07/glimmer/pkg/geometry"
	"github.com/df07/glimmer/pkg/material"
	"github.com/df07/glimmer/pkg/renderer"
	"github.com/df07/glimmer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType,omitempty"`
	GeometryType string                 `json:"geometryType,omitempty"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Color        [3]float64             `json:"color"` // Traced radiance through the pixel center
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

func toArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(v core.Vec3) string {
	c := v.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}

// extractMaterialInfo samples every material channel at uv and names the dominant behavior
func extractMaterialInfo(mat material.Material, uv core.Vec2) (string, map[string]interface{}) {
	albedo := mat.AlbedoAt(uv)
	emitted := mat.EmittedAt(uv)
	properties := map[string]interface{}{
		"albedo":          toArray(albedo),
		"color":           hexColor(albedo),
		"roughness":       mat.RoughnessAt(uv),
		"transparency":    mat.TransparencyAt(uv),
		"emission":        mat.EmissionAt(uv),
		"radiance":        toArray(mat.RadianceAt(uv)),
		"refractiveIndex": mat.RefractiveIndexAt(uv),
	}

	switch {
	case !emitted.IsZero():
		properties["color"] = hexColor(emitted)
		return "emissive", properties
	case mat.TransparencyAt(uv) > 0:
		return "dielectric", properties
	case mat.RoughnessAt(uv) < 1:
		return "metal", properties
	default:
		return "lambertian", properties
	}
}

// extractGeometryInfo describes the primitive behind an object
func extractGeometryInfo(primitive geometry.Primitive) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch p := primitive.(type) {
	case *geometry.Sphere:
		properties["center"] = toArray(p.Center)
		properties["radius"] = p.Radius
		return "sphere", properties

	case *geometry.Plane:
		properties["point"] = toArray(p.Point)
		properties["normal"] = toArray(p.Normal)
		return "plane", properties

	case *geometry.TriangleMesh:
		box := p.BoundingBox()
		properties["vertexCount"] = p.VertexCount()
		properties["triangleCount"] = p.TriangleCount()
		properties["boundingBox"] = map[string][3]float64{
			"min": toArray(box.Min),
			"max": toArray(box.Max),
		}
		return "mesh", properties

	default:
		return "unknown", properties
	}
}

// inspectPixel casts a ray through the center of pixel (x, y) and reports the first hit
func inspectPixel(sc *scene.Scene, width, height, x, y int) InspectResponse {
	ray := sc.Camera().GenerateRay(float64(x), float64(y), width, height)
	rt := renderer.NewRenderer(renderer.Options{})
	response := InspectResponse{Color: toArray(rt.TracePixel(sc, x, y, width, height))}

	isect, ok := sc.FindNearestHit(ray)
	if !ok {
		return response
	}

	materialType, materialProps := extractMaterialInfo(isect.Material, isect.UV)
	geometryType, geometryProps := extractGeometryInfo(isect.Object.Primitive())
	properties := map[string]interface{}{
		"material": materialProps,
		"geometry": geometryProps,
		"uv":       [2]float64{isect.UV.X, isect.UV.Y},
	}

	response.Hit = true
	response.MaterialType = materialType
	response.GeometryType = geometryType
	response.Point = toArray(isect.Point)
	response.Normal = toArray(isect.Normal)
	response.Distance = isect.Point.Subtract(ray.Origin).Length()
	response.FrontFace = ray.Direction.Dot(isect.Normal) < 0
	response.Properties = properties
	return response
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req, err := parseSceneRequest(query)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	sc, err := s.createScene(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pixelX, err := strconv.Atoi(query.Get("x"))
	if err != nil || pixelX < 0 || pixelX >= req.Width {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("x must be between 0 and %d", req.Width-1))
		return
	}
	pixelY, err := strconv.Atoi(query.Get("y"))
	if err != nil || pixelY < 0 || pixelY >= req.Height {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("y must be between 0 and %d", req.Height-1))
		return
	}

	writeJSON(w, http.StatusOK, inspectPixel(sc, req.Width, req.Height, pixelX, pixelY))
}
