package loaders

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/df07/glimmer/pkg/core"
	"github.com/df07/glimmer/pkg/geometry"
)

// PLYHeader represents the parsed header information from a PLY file
type PLYHeader struct {
	Format      string // "binary_little_endian", "binary_big_endian", or "ascii"
	Version     string // Usually "1.0"
	VertexCount int
	FaceCount   int
	VertexProps []PLYProperty
	FaceProps   []PLYProperty
}

// PLYProperty represents a property definition in the PLY header
type PLYProperty struct {
	Name     string
	Type     string
	IsList   bool
	ListType string // For list properties, the type of the count
	DataType string // For list properties, the type of the data
}

// LoadPLYFile loads a PLY file into a triangle mesh
func LoadPLYFile(filename string) (*geometry.TriangleMesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PLY file: %w", err)
	}
	defer file.Close()
	return LoadPLY(file)
}

// LoadPLY reads vertex positions and faces from ASCII or binary PLY data.
// Vertex properties other than x, y, z are skipped; polygons are fan-triangulated.
func LoadPLY(r io.Reader) (*geometry.TriangleMesh, error) {
	br := bufio.NewReader(r)
	header, err := parsePLYHeader(br)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PLY header: %w", err)
	}

	var src plySource
	switch header.Format {
	case "ascii":
		src = &plyASCII{r: br}
	case "binary_little_endian":
		src = &plyBinary{r: br, order: binary.LittleEndian}
	case "binary_big_endian":
		src = &plyBinary{r: br, order: binary.BigEndian}
	default:
		return nil, fmt.Errorf("unsupported PLY format: %s", header.Format)
	}

	mesh := geometry.NewMeshBuilder()
	for i := 0; i < header.VertexCount; i++ {
		var p [3]float64
		for _, prop := range header.VertexProps {
			if prop.IsList {
				if err := skipPLYList(src, prop); err != nil {
					return nil, fmt.Errorf("vertex %d: %w", i, err)
				}
				continue
			}
			v, err := src.scalar(prop.Type)
			if err != nil {
				return nil, fmt.Errorf("vertex %d property %s: %w", i, prop.Name, err)
			}
			switch prop.Name {
			case "x":
				p[0] = v
			case "y":
				p[1] = v
			case "z":
				p[2] = v
			}
		}
		mesh.AddVertex(core.NewVec3(p[0], p[1], p[2]))
	}

	for i := 0; i < header.FaceCount; i++ {
		for _, prop := range header.FaceProps {
			if !prop.IsList || (prop.Name != "vertex_indices" && prop.Name != "vertex_index") {
				if err := skipPLYProperty(src, prop); err != nil {
					return nil, fmt.Errorf("face %d: %w", i, err)
				}
				continue
			}
			n, err := src.scalar(prop.ListType)
			if err != nil {
				return nil, fmt.Errorf("face %d vertex count: %w", i, err)
			}
			indices := make([]int, int(n))
			for j := range indices {
				v, err := src.scalar(prop.DataType)
				if err != nil {
					return nil, fmt.Errorf("face %d index %d: %w", i, j, err)
				}
				indices[j] = int(v)
			}
			for j := 1; j+1 < len(indices); j++ {
				if err := mesh.AddTriangle(indices[0], indices[j], indices[j+1]); err != nil {
					return nil, fmt.Errorf("face %d: %w", i, err)
				}
			}
		}
	}
	return mesh.Build(), nil
}

// parsePLYHeader reads up to and including the end_header line
func parsePLYHeader(br *bufio.Reader) (*PLYHeader, error) {
	magic, err := br.ReadString('\n')
	if err != nil || strings.TrimSpace(magic) != "ply" {
		return nil, fmt.Errorf("missing ply magic")
	}

	header := &PLYHeader{}
	var currentElement string
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("header not terminated by end_header")
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "end_header":
			return header, nil
		case "format":
			if len(parts) >= 3 {
				header.Format = parts[1]
				header.Version = parts[2]
			}
		case "comment", "obj_info":
		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("invalid element line %q", strings.TrimSpace(line))
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil {
				return nil, fmt.Errorf("invalid element count: %s", parts[2])
			}
			currentElement = parts[1]
			switch currentElement {
			case "vertex":
				header.VertexCount = count
			case "face":
				header.FaceCount = count
			default:
				if count > 0 {
					return nil, fmt.Errorf("unsupported element %q", currentElement)
				}
			}
		case "property":
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, fmt.Errorf("failed to parse property: %w", err)
			}
			switch currentElement {
			case "vertex":
				header.VertexProps = append(header.VertexProps, prop)
			case "face":
				header.FaceProps = append(header.FaceProps, prop)
			}
		}
	}
}

// parsePLYProperty parses a property line from the PLY header
func parsePLYProperty(parts []string) (PLYProperty, error) {
	if len(parts) < 2 {
		return PLYProperty{}, fmt.Errorf("invalid property definition")
	}
	if parts[0] == "list" {
		if len(parts) < 4 {
			return PLYProperty{}, fmt.Errorf("invalid list property definition")
		}
		return PLYProperty{IsList: true, ListType: parts[1], DataType: parts[2], Name: parts[3]}, nil
	}
	return PLYProperty{Type: parts[0], Name: parts[1]}, nil
}

func skipPLYProperty(src plySource, prop PLYProperty) error {
	if prop.IsList {
		return skipPLYList(src, prop)
	}
	_, err := src.scalar(prop.Type)
	return err
}

func skipPLYList(src plySource, prop PLYProperty) error {
	n, err := src.scalar(prop.ListType)
	if err != nil {
		return err
	}
	for j := 0; j < int(n); j++ {
		if _, err := src.scalar(prop.DataType); err != nil {
			return err
		}
	}
	return nil
}

// plySource reads one scalar of a PLY type as float64
type plySource interface {
	scalar(dataType string) (float64, error)
}

type plyASCII struct {
	r      *bufio.Reader
	fields []string
}

func (a *plyASCII) scalar(dataType string) (float64, error) {
	for len(a.fields) == 0 {
		line, err := a.r.ReadString('\n')
		if err != nil && line == "" {
			return 0, fmt.Errorf("unexpected end of data")
		}
		a.fields = strings.Fields(line)
	}
	tok := a.fields[0]
	a.fields = a.fields[1:]
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", dataType, tok)
	}
	return v, nil
}

type plyBinary struct {
	r     *bufio.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (b *plyBinary) scalar(dataType string) (float64, error) {
	size := plyTypeSize(dataType)
	if size == 0 {
		return 0, fmt.Errorf("unsupported property type: %s", dataType)
	}
	data := b.buf[:size]
	if _, err := io.ReadFull(b.r, data); err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", dataType, err)
	}

	switch dataType {
	case "char", "int8":
		return float64(int8(data[0])), nil
	case "uchar", "uint8":
		return float64(data[0]), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(data))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(data)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(data))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(data)), nil
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(data))), nil
	default: // double, float64
		return math.Float64frombits(b.order.Uint64(data)), nil
	}
}

// plyTypeSize returns the byte size of a PLY scalar type, or 0 if unknown
func plyTypeSize(dataType string) int {
	switch dataType {
	case "char", "uchar", "int8", "uint8":
		return 1
	case "short", "ushort", "int16", "uint16":
		return 2
	case "int", "uint", "float", "int32", "uint32", "float32":
		return 4
	case "double", "float64":
		return 8
	default:
		return 0
	}
}
