package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/df07/glimmer/pkg/core"
	"github.com/df07/glimmer/pkg/geometry"
)

// LoadOBJFile loads a Wavefront OBJ file into a triangle mesh
func LoadOBJFile(filename string) (*geometry.TriangleMesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open OBJ file: %w", err)
	}
	defer file.Close()
	return LoadOBJ(file)
}

// LoadOBJ reads vertex positions and faces from Wavefront OBJ data.
// Faces may use v, v/vt, v//vn or v/vt/vn references and negative (relative) indices.
// Polygons with more than three vertices are fan-triangulated.
// Texture coordinates, normals, groups and materials are ignored.
func LoadOBJ(r io.Reader) (*geometry.TriangleMesh, error) {
	mesh := geometry.NewMeshBuilder()
	scanner := bufio.NewScanner(r)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs 3 coordinates", lineNo)
			}
			var p [3]float64
			for i := range p {
				f, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: invalid coordinate %q: %w", lineNo, fields[i+1], err)
				}
				p[i] = f
			}
			mesh.AddVertex(core.NewVec3(p[0], p[1], p[2]))

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices", lineNo)
			}
			indices := make([]int, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				idx, err := resolveOBJIndex(ref, mesh.VertexCount())
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				indices = append(indices, idx)
			}
			for i := 1; i+1 < len(indices); i++ {
				if err := mesh.AddTriangle(indices[0], indices[i], indices[i+1]); err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read OBJ data: %w", err)
	}
	return mesh.Build(), nil
}

// resolveOBJIndex converts a face vertex reference to a zero-based vertex index
func resolveOBJIndex(ref string, vertexCount int) (int, error) {
	if i := strings.IndexByte(ref, '/'); i >= 0 {
		ref = ref[:i]
	}
	n, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fmt.Errorf("invalid vertex reference %q", ref)
	}
	switch {
	case n > 0:
		return n - 1, nil
	case n < 0:
		return vertexCount + n, nil
	default:
		return 0, fmt.Errorf("vertex reference 0 is not allowed")
	}
}
