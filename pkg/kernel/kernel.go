// Package kernel defines the mesh data model shared by the collider
// builders. A Descriptor is the polygonal form produced by the hull and box
// builders; a Mesh is the flat triangle form handed to renderers and
// exporters.
package kernel

import (
	"fmt"

	"github.com/chazu/collider/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
)

// Descriptor is a polygonal mesh: vertex positions in the local frame plus
// faces, each an ordered list of vertex indices wound counter-clockwise
// when seen from outside.
type Descriptor struct {
	Vertices []geom.Point `json:"vertices"`
	Faces    [][]int      `json:"faces"`
}

// VertexCount returns the number of vertices.
func (d *Descriptor) VertexCount() int {
	return len(d.Vertices)
}

// FaceCount returns the number of faces.
func (d *Descriptor) FaceCount() int {
	return len(d.Faces)
}

// Clone returns a deep copy.
func (d *Descriptor) Clone() *Descriptor {
	out := &Descriptor{
		Vertices: make([]geom.Point, len(d.Vertices)),
		Faces:    make([][]int, len(d.Faces)),
	}
	copy(out.Vertices, d.Vertices)
	for i, f := range d.Faces {
		out.Faces[i] = append([]int(nil), f...)
	}
	return out
}

// Bounds returns the axis-aligned bounding box of the vertices.
func (d *Descriptor) Bounds() sdf.Box3 {
	return geom.PointSet(d.Vertices).Bounds()
}

// Translate shifts every vertex by v in place.
func (d *Descriptor) Translate(v geom.Point) {
	for i := range d.Vertices {
		d.Vertices[i] = d.Vertices[i].Add(v)
	}
}

// Map rewrites every vertex with fn in place.
func (d *Descriptor) Map(fn func(geom.Point) geom.Point) {
	for i := range d.Vertices {
		d.Vertices[i] = fn(d.Vertices[i])
	}
}

// Compact drops vertices referenced by no face and renumbers the faces.
// It returns the number of vertices removed.
func (d *Descriptor) Compact() int {
	remap := make([]int, len(d.Vertices))
	for i := range remap {
		remap[i] = -1
	}
	kept := make([]geom.Point, 0, len(d.Vertices))
	for _, f := range d.Faces {
		for j, idx := range f {
			if remap[idx] < 0 {
				remap[idx] = len(kept)
				kept = append(kept, d.Vertices[idx])
			}
			f[j] = remap[idx]
		}
	}
	removed := len(d.Vertices) - len(kept)
	d.Vertices = kept
	return removed
}

// CheckFaces verifies that every face has at least three distinct,
// in-range vertex indices. Loose vertices are allowed.
func (d *Descriptor) CheckFaces() error {
	_, err := d.faceUse()
	return err
}

// Validate checks the structural invariants: every face has at least three
// distinct in-range indices and every vertex is used by some face.
func (d *Descriptor) Validate() error {
	used, err := d.faceUse()
	if err != nil {
		return err
	}
	for vi, ok := range used {
		if !ok {
			return fmt.Errorf("kernel: vertex %d is not referenced by any face", vi)
		}
	}
	return nil
}

// faceUse checks the faces and marks which vertices they reference.
func (d *Descriptor) faceUse() ([]bool, error) {
	used := make([]bool, len(d.Vertices))
	for fi, f := range d.Faces {
		if len(f) < 3 {
			return nil, fmt.Errorf("kernel: face %d has %d indices, need at least 3", fi, len(f))
		}
		seen := make(map[int]bool, len(f))
		for _, idx := range f {
			if idx < 0 || idx >= len(d.Vertices) {
				return nil, fmt.Errorf("kernel: face %d references vertex %d, have %d vertices", fi, idx, len(d.Vertices))
			}
			if seen[idx] {
				return nil, fmt.Errorf("kernel: face %d repeats vertex %d", fi, idx)
			}
			seen[idx] = true
			used[idx] = true
		}
	}
	return used, nil
}

type edge struct{ from, to int }

// IsClosed reports whether the faces form a closed, consistently wound
// surface: every directed edge appears exactly once and its reverse
// appears exactly once.
func (d *Descriptor) IsClosed() bool {
	if len(d.Faces) == 0 {
		return false
	}
	count := make(map[edge]int)
	for _, f := range d.Faces {
		for i := range f {
			count[edge{f[i], f[(i+1)%len(f)]}]++
		}
	}
	for e, n := range count {
		if n != 1 || count[edge{e.to, e.from}] != 1 {
			return false
		}
	}
	return true
}

// FaceNormal returns the area-weighted normal of face i (Newell's method).
// Its length is twice the face area.
func (d *Descriptor) FaceNormal(i int) geom.Point {
	var n geom.Point
	f := d.Faces[i]
	for j := range f {
		a := d.Vertices[f[j]]
		b := d.Vertices[f[(j+1)%len(f)]]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return n
}

// FaceArea returns the area of face i.
func (d *Descriptor) FaceArea(i int) float64 {
	return d.FaceNormal(i).Length() / 2
}

// Volume returns the signed volume enclosed by the faces. It is positive
// for a closed surface wound outward.
func (d *Descriptor) Volume() float64 {
	var v float64
	for _, f := range d.Faces {
		a := d.Vertices[f[0]]
		for j := 1; j+1 < len(f); j++ {
			b := d.Vertices[f[j]]
			c := d.Vertices[f[j+1]]
			v += a.Dot(b.Cross(c))
		}
	}
	return v / 6
}

// Contains reports whether p lies inside or within tol of a convex
// descriptor, testing p against every outward face plane.
func (d *Descriptor) Contains(p geom.Point, tol float64) bool {
	for i, f := range d.Faces {
		n := d.FaceNormal(i)
		l := n.Length()
		if l == 0 {
			continue
		}
		dist := n.Dot(p.Sub(d.Vertices[f[0]])) / l
		if dist > tol {
			return false
		}
	}
	return true
}
