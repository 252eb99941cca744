package geometry

import (
	"errors"
	"fmt"

	"github.com/df07/glimmer/pkg/core"
)

// ErrVertexIndex is returned when a triangle references a vertex that does not exist
var ErrVertexIndex = errors.New("vertex index out of range")

// TriangleMesh is an indexed triangle soup intersected by linear scan.
// It is immutable; use MeshBuilder to assemble one incrementally.
type TriangleMesh struct {
	vertices  []core.Vec3
	triangles [][3]int
	bbox      core.AABB
}

// NewTriangleMesh creates a mesh from vertices and face indices.
// Each group of 3 indices forms a triangle.
func NewTriangleMesh(vertices []core.Vec3, faces []int) (*TriangleMesh, error) {
	if len(faces)%3 != 0 {
		return nil, fmt.Errorf("face index count %d is not a multiple of 3", len(faces))
	}

	b := NewMeshBuilder()
	for _, v := range vertices {
		b.AddVertex(v)
	}
	for i := 0; i < len(faces); i += 3 {
		if err := b.AddTriangle(faces[i], faces[i+1], faces[i+2]); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

// NewEmptyTriangleMesh creates a mesh with no vertices
func NewEmptyTriangleMesh() *TriangleMesh {
	return &TriangleMesh{bbox: core.EmptyAABB()}
}

// MeshBuilder accumulates vertices and triangles. A TriangleMesh has no
// mutators; Build hands out a mesh that later builder calls cannot change.
type MeshBuilder struct {
	vertices  []core.Vec3
	triangles [][3]int
	bbox      core.AABB
}

// NewMeshBuilder creates an empty builder
func NewMeshBuilder() *MeshBuilder {
	return &MeshBuilder{bbox: core.EmptyAABB()}
}

// AddVertex appends a vertex and returns its index
func (b *MeshBuilder) AddVertex(p core.Vec3) int {
	b.vertices = append(b.vertices, p)
	b.bbox.Expand(p)
	return len(b.vertices) - 1
}

// AddTriangle appends a triangle referencing three existing vertices
func (b *MeshBuilder) AddTriangle(i0, i1, i2 int) error {
	for _, idx := range [3]int{i0, i1, i2} {
		if idx < 0 || idx >= len(b.vertices) {
			return fmt.Errorf("triangle (%d, %d, %d) with %d vertices: %w", i0, i1, i2, len(b.vertices), ErrVertexIndex)
		}
	}
	b.triangles = append(b.triangles, [3]int{i0, i1, i2})
	return nil
}

// VertexCount returns the number of vertices added so far
func (b *MeshBuilder) VertexCount() int {
	return len(b.vertices)
}

// Build returns a mesh holding copies of the accumulated geometry
func (b *MeshBuilder) Build() *TriangleMesh {
	return &TriangleMesh{
		vertices:  append([]core.Vec3(nil), b.vertices...),
		triangles: append([][3]int(nil), b.triangles...),
		bbox:      b.bbox,
	}
}

// VertexCount returns the number of vertices
func (m *TriangleMesh) VertexCount() int {
	return len(m.vertices)
}

// TriangleCount returns the number of triangles
func (m *TriangleMesh) TriangleCount() int {
	return len(m.triangles)
}

// Vertex returns the vertex at index i
func (m *TriangleMesh) Vertex(i int) core.Vec3 {
	return m.vertices[i]
}

// Hit returns the nearest triangle hit; UV holds the barycentric coordinates
func (m *TriangleMesh) Hit(ray core.Ray) (Hit, bool) {
	closest := Hit{}
	found := false

	for _, tri := range m.triangles {
		th, ok := IntersectTriangle(m.vertices[tri[0]], m.vertices[tri[1]], m.vertices[tri[2]], ray)
		if !ok {
			continue
		}
		if !found || th.T < closest.T {
			closest = Hit{T: th.T, Normal: th.Normal, UV: core.NewVec2(th.U, th.V)}
			found = true
			ray.TMax = th.T
		}
	}

	return closest, found
}

// BoundingBox returns the union of all vertex positions
func (m *TriangleMesh) BoundingBox() core.AABB {
	return m.bbox
}
