// Package tessellate turns placed collision descriptors into flat triangle
// meshes. One mesh is produced per part.
package tessellate

import (
	"fmt"

	"github.com/chazu/collider/pkg/geom"
	"github.com/chazu/collider/pkg/kernel"
)

// Part is a collision object ready for display or export: its local
// geometry and the transform that places it in the world.
type Part struct {
	Name      string
	Mesh      *kernel.Descriptor
	Transform geom.Transform
}

// Tessellate produces one world-space triangle mesh per part. Parts without
// geometry are skipped. The parts are never mutated.
func Tessellate(parts []Part) ([]*kernel.Mesh, error) {
	var meshes []*kernel.Mesh
	for i, p := range parts {
		if p.Mesh == nil || p.Mesh.FaceCount() == 0 {
			continue
		}
		m, err := Triangulate(p.Mesh, p.Transform)
		if err != nil {
			return nil, fmt.Errorf("tessellate: part %d (%s): %w", i, p.Name, err)
		}
		// Set the part name: prefer the object name, fall back to the index.
		if p.Name != "" {
			m.PartName = p.Name
		} else {
			m.PartName = fmt.Sprintf("part-%d", i)
		}
		meshes = append(meshes, m)
	}
	return meshes, nil
}

// Triangulate fans every face of d into triangles, places them with t and
// returns a flat-shaded mesh. Faces must be convex, which holds for hulls
// and boxes. Loose vertices are ignored.
func Triangulate(d *kernel.Descriptor, t geom.Transform) (*kernel.Mesh, error) {
	if err := d.CheckFaces(); err != nil {
		return nil, err
	}

	numTri := 0
	for _, f := range d.Faces {
		numTri += len(f) - 2
	}
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	place := t.Matrix()
	// Rotation only: normals ignore the translation.
	turn := geom.EulerMatrix(t.Rotation)

	for i, f := range d.Faces {
		n := turn.MulPosition(d.FaceNormal(i))
		if l := n.Length(); l > 0 {
			n = n.MulScalar(1 / l)
		}
		nx, ny, nz := float32(n.X), float32(n.Y), float32(n.Z)

		for j := 1; j+1 < len(f); j++ {
			for _, vi := range [3]int{f[0], f[j], f[j+1]} {
				v := place.MulPosition(d.Vertices[vi])
				vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
				normals = append(normals, nx, ny, nz)
				indices = append(indices, uint32(len(indices)))
			}
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}
