// Package sdfx bridges collision meshes to the github.com/deadsy/sdfx
// triangle types so they can be written with its STL renderer.
package sdfx

import (
	"fmt"

	"github.com/chazu/collider/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
)

// Triangles converts the triangles of one or more meshes into sdfx
// triangles, in mesh order.
func Triangles(meshes ...*kernel.Mesh) []*sdf.Triangle3 {
	n := 0
	for _, m := range meshes {
		n += m.TriangleCount()
	}
	out := make([]*sdf.Triangle3, 0, n)
	for _, m := range meshes {
		for i := 0; i < m.TriangleCount(); i++ {
			t := m.Triangle(i)
			out = append(out, &t)
		}
	}
	return out
}

// SaveSTL writes the meshes to a single binary STL file at path.
func SaveSTL(path string, meshes ...*kernel.Mesh) error {
	tris := Triangles(meshes...)
	if len(tris) == 0 {
		return fmt.Errorf("sdfx: nothing to write to %s", path)
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return fmt.Errorf("sdfx: save %s: %w", path, err)
	}
	return nil
}
