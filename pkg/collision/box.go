package collision

import (
	"github.com/chazu/collider/pkg/geom"
	"github.com/chazu/collider/pkg/kernel"
)

// boxFaces lists the six outward quads of a box whose vertex i has
// x = max when bit 0 is set, y = max for bit 1 and z = max for bit 2.
var boxFaces = [6][4]int{
	{0, 4, 6, 2}, // -X
	{1, 3, 7, 5}, // +X
	{0, 1, 5, 4}, // -Y
	{2, 6, 7, 3}, // +Y
	{0, 2, 3, 1}, // -Z
	{4, 5, 7, 6}, // +Z
}

// BuildBox returns the box spanning the component-wise extent of ps, along
// with that extent. The box lives in whatever frame the points are
// expressed in; rotate the points first for an oriented box. Axes with zero
// thickness produce a flat box rather than an error.
func BuildBox(ps geom.PointSet) (mesh *kernel.Descriptor, min, max geom.Point, err error) {
	if len(ps) == 0 {
		return nil, geom.Point{}, geom.Point{}, ErrEmptyInput
	}
	bb := ps.Bounds()
	return BoxMesh(bb.Min, bb.Max), bb.Min, bb.Max, nil
}

// BoxMesh builds the 8-vertex, 6-quad box spanning [min, max].
func BoxMesh(min, max geom.Point) *kernel.Descriptor {
	d := &kernel.Descriptor{
		Vertices: make([]geom.Point, 8),
		Faces:    make([][]int, 0, len(boxFaces)),
	}
	for i := range d.Vertices {
		v := min
		if i&1 != 0 {
			v.X = max.X
		}
		if i&2 != 0 {
			v.Y = max.Y
		}
		if i&4 != 0 {
			v.Z = max.Z
		}
		d.Vertices[i] = v
	}
	for _, f := range boxFaces {
		d.Faces = append(d.Faces, []int{f[0], f[1], f[2], f[3]})
	}
	return d
}
