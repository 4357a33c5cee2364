package collision

import (
	"github.com/chazu/collider/pkg/geom"
	"github.com/chazu/collider/pkg/kernel"
)

// Pending returns the object transform after offset is added to the
// current translation and the rotation is replaced by the given Euler
// angles, before anything is baked into the vertices.
func Pending(current geom.Transform, offset, rotation geom.Point) geom.Transform {
	return geom.Transform{
		Translation: current.Translation.Add(offset),
		Rotation:    rotation,
	}
}

// Bake folds the pending placement into the vertex coordinates and returns
// the rewritten mesh with an identity transform. mesh is not modified.
func Bake(mesh *kernel.Descriptor, current geom.Transform, offset, rotation geom.Point) (*kernel.Descriptor, geom.Transform) {
	m := Pending(current, offset, rotation).Matrix()
	out := mesh.Clone()
	out.Map(m.MulPosition)
	return out, geom.Identity()
}

// Recenter moves the object origin to the center of the mesh bounds
// without moving the geometry in the world: vertices shift by -center and
// the translation moves to where that center sits under current. Running
// it on its own output changes nothing. mesh is not modified.
func Recenter(mesh *kernel.Descriptor, current geom.Transform) (*kernel.Descriptor, geom.Transform) {
	center := mesh.Bounds().Center()
	out := mesh.Clone()
	out.Translate(center.MulScalar(-1))
	return out, geom.Transform{
		Translation: current.Apply(center),
		Rotation:    current.Rotation,
	}
}

// Normalize bakes offset and rotation into mesh and then recenters the
// origin. Baking must come first so that the offset is applied in the
// world frame rather than around the recentered origin.
func Normalize(mesh *kernel.Descriptor, current geom.Transform, offset, rotation geom.Point) (*kernel.Descriptor, geom.Transform) {
	baked, t := Bake(mesh, current, offset, rotation)
	return Recenter(baked, t)
}
