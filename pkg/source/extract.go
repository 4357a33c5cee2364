// Package source supplies the points that collision proxies are built
// from: vertex subsets of scene objects, point and OBJ files, and remote
// files fetched with go-getter.
package source

import (
	"fmt"

	"github.com/chazu/collider/pkg/collision"
	"github.com/chazu/collider/pkg/geom"
	"github.com/chazu/collider/pkg/scene"
)

// Extract returns the world-space points of o that feed a proxy: the
// selected vertices in edit mode, every vertex in object mode. An empty
// subset is collision.ErrEmptyInput.
func Extract(o *scene.Object, mode scene.Mode) (geom.PointSet, error) {
	if o == nil || o.Mesh == nil {
		return nil, fmt.Errorf("source: no mesh object")
	}

	m := o.Transform.Matrix()
	var ps geom.PointSet
	switch mode {
	case scene.EditMode:
		ps = make(geom.PointSet, 0, len(o.Selected))
		for _, vi := range o.Selected {
			if vi < 0 || vi >= len(o.Mesh.Vertices) {
				return nil, fmt.Errorf("source: %s: selected vertex %d out of range", o.Name, vi)
			}
			ps = append(ps, m.MulPosition(o.Mesh.Vertices[vi]))
		}
	case scene.ObjectMode:
		ps = make(geom.PointSet, len(o.Mesh.Vertices))
		for i, v := range o.Mesh.Vertices {
			ps[i] = m.MulPosition(v)
		}
	default:
		return nil, fmt.Errorf("source: unsupported mode %s", mode)
	}

	if len(ps) == 0 {
		return nil, fmt.Errorf("source: %s: %w", o.Name, collision.ErrEmptyInput)
	}
	return ps, nil
}
