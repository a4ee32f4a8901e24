package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spaghettifunk/tundra/engine/core"
	"github.com/spaghettifunk/tundra/engine/math"
	"github.com/spaghettifunk/tundra/engine/renderer"
)

// OBJLoader reads Wavefront OBJ files. Every object or group becomes a
// mesh; polygons are triangulated as fans.
type OBJLoader struct{}

func (ol *OBJLoader) Load(path string) (any, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	model, err := ParseOBJ(name, file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return model, nil
}

type objIndex struct {
	position int
	texcoord int
	normal   int
}

type objMeshBuilder struct {
	mesh       *renderer.Mesh
	lookup     map[objIndex]uint32
	hasNormals bool
}

func newMeshBuilder(name, material string) *objMeshBuilder {
	return &objMeshBuilder{
		mesh:       &renderer.Mesh{Name: name, Material: material},
		lookup:     make(map[objIndex]uint32),
		hasNormals: true,
	}
}

// ParseOBJ builds a model from OBJ text.
func ParseOBJ(name string, r io.Reader) (*renderer.Model, error) {
	var (
		positions []math.Vec3
		texcoords []math.Vec2
		normals   []math.Vec3
		meshes    []*objMeshBuilder
		current   *objMeshBuilder
		material  string
		meshName  = name
	)

	flush := func() {
		if current != nil && len(current.mesh.Indices) > 0 {
			meshes = append(meshes, current)
		}
		current = nil
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			positions = append(positions, math.NewVec3(v[0], v[1], v[2]))
		case "vt":
			v, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			texcoords = append(texcoords, math.NewVec2(v[0], v[1]))
		case "vn":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			normals = append(normals, math.NewVec3(v[0], v[1], v[2]))
		case "o", "g":
			flush()
			if len(fields) > 1 {
				meshName = strings.Join(fields[1:], " ")
			}
		case "usemtl":
			if len(fields) > 1 {
				material = fields[1]
			}
			if current != nil && current.mesh.Material != material {
				flush()
			}
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face with %d vertices", lineNo, len(fields)-1)
			}
			if current == nil {
				current = newMeshBuilder(meshName, material)
			}
			corners := make([]uint32, 0, len(fields)-1)
			for _, f := range fields[1:] {
				idx, err := parseFaceIndex(f, len(positions), len(texcoords), len(normals))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				corners = append(corners, current.vertex(idx, positions, texcoords, normals))
			}
			for i := 1; i+1 < len(corners); i++ {
				current.mesh.Indices = append(current.mesh.Indices, corners[0], corners[i], corners[i+1])
			}
		case "mtllib", "s", "l", "p":
		default:
			core.LogDebug("obj %s: skipping '%s' at line %d", name, fields[0], lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	if len(meshes) == 0 {
		return nil, fmt.Errorf("no faces in model %s", name)
	}

	model := &renderer.Model{Name: name}
	for _, b := range meshes {
		if !b.hasNormals {
			math.GenerateNormals(b.mesh.Vertices, b.mesh.Indices)
		}
		b.mesh.Extents, b.mesh.Center = math.CalculateExtents(b.mesh.Vertices)
		model.Meshes = append(model.Meshes, b.mesh)
	}
	return model, nil
}

func (b *objMeshBuilder) vertex(idx objIndex, positions []math.Vec3, texcoords []math.Vec2, normals []math.Vec3) uint32 {
	if i, ok := b.lookup[idx]; ok {
		return i
	}
	v := math.Vertex3D{Position: positions[idx.position], Colour: math.NewVec4One()}
	if idx.texcoord >= 0 {
		v.Texcoord = texcoords[idx.texcoord]
	}
	if idx.normal >= 0 {
		v.Normal = normals[idx.normal]
	} else {
		b.hasNormals = false
	}
	i := uint32(len(b.mesh.Vertices))
	b.mesh.Vertices = append(b.mesh.Vertices, v)
	b.lookup[idx] = i
	return i
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("expected %d values, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}

// parseFaceIndex reads v, v/vt, v//vn or v/vt/vn. Indices are 1-based;
// negative ones count back from the last element.
func parseFaceIndex(s string, np, nt, nn int) (objIndex, error) {
	parts := strings.Split(s, "/")
	idx := objIndex{texcoord: -1, normal: -1}

	resolve := func(field string, count int) (int, error) {
		n, err := strconv.Atoi(field)
		if err != nil {
			return 0, fmt.Errorf("bad index %q", s)
		}
		if n < 0 {
			n = count + n
		} else {
			n--
		}
		if n < 0 || n >= count {
			return 0, fmt.Errorf("index %q out of range", s)
		}
		return n, nil
	}

	var err error
	if idx.position, err = resolve(parts[0], np); err != nil {
		return idx, err
	}
	if len(parts) > 1 && parts[1] != "" {
		if idx.texcoord, err = resolve(parts[1], nt); err != nil {
			return idx, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if idx.normal, err = resolve(parts[2], nn); err != nil {
			return idx, err
		}
	}
	return idx, nil
}
